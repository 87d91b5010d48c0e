// Package fileloader provides centralized file reading and ingestion
// functionality for all supported survey export formats (CSV, XLSX, JSON).
// It abstracts source-file resolution, compression detection and
// decompression, header reading, and row iteration.
package fileloader

// FileType represents the type of data file being processed
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeXLSX
	FileTypeJSON
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeXLSX:
		return "XLSX"
	case FileTypeJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// FileOptions contains parsing options for a survey export.
type FileOptions struct {
	// NoHeaderRow treats the first row as data; synthetic headers are
	// generated in its place.
	NoHeaderRow bool `json:"noHeaderRow,omitempty" yaml:"noHeaderRow,omitempty"`

	// JPath selects the record array inside a JSON export
	// (e.g. "$.respondents"). Empty means the document root.
	JPath string `json:"jpath,omitempty" yaml:"jpath,omitempty"`
}

// DefaultFileOptions returns the default parsing options
func DefaultFileOptions() FileOptions {
	return FileOptions{}
}
