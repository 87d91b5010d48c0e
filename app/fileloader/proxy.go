package fileloader

import (
	"fmt"
	"io"
)

// Proxy functions that dispatch to format-specific readers based on
// detected file type and compression. Callers never need to know whether
// the export is a zipped CSV, a workbook, or a JSON dump.

// nopCloser satisfies io.Closer for readers with no underlying resource.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ReadHeader reads the header for any supported file type, decompressing
// as needed.
func ReadHeader(filePath string, options FileOptions) ([]string, error) {
	fileType, compression := DetectFileTypeAndCompression(filePath)

	switch fileType {
	case FileTypeXLSX:
		return ReadXLSXHeader(filePath, options)
	case FileTypeJSON:
		return ReadJSONHeader(filePath, options)
	case FileTypeCSV:
		if compression != CompressionNone {
			data, err := DecompressFile(filePath, compression)
			if err != nil {
				return nil, err
			}
			return ReadCSVHeaderFromBytes(data, options)
		}
		return ReadCSVHeader(filePath, options)
	default:
		return nil, fmt.Errorf("unsupported file type for %q", filePath)
	}
}

// GetRecords returns a record reader over the full file contents, header
// row included (unless the format has none). The returned closer must be
// closed by the caller; it is a no-op for fully-materialized sources.
func GetRecords(filePath string, options FileOptions) (RecordReader, io.Closer, error) {
	fileType, compression := DetectFileTypeAndCompression(filePath)

	switch fileType {
	case FileTypeXLSX:
		r, err := GetXLSXReader(filePath)
		if err != nil {
			return nil, nil, err
		}
		return r, nopCloser{}, nil

	case FileTypeJSON:
		r, err := GetJSONReader(filePath, options)
		if err != nil {
			return nil, nil, err
		}
		return r, nopCloser{}, nil

	case FileTypeCSV:
		if compression != CompressionNone {
			data, err := DecompressFile(filePath, compression)
			if err != nil {
				return nil, nil, err
			}
			r, err := GetCSVReaderFromBytes(data)
			if err != nil {
				return nil, nil, err
			}
			return r, nopCloser{}, nil
		}
		r, f, err := GetCSVReader(filePath)
		if err != nil {
			return nil, nil, err
		}
		return r, f, nil

	default:
		return nil, nil, fmt.Errorf("unsupported file type for %q", filePath)
	}
}
