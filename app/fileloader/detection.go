package fileloader

import (
	"strings"
)

// compressionExtensions maps compression extensions to their CompressionType
var compressionExtensions = map[string]CompressionType{
	".zip": CompressionZip,
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
}

// DetectFileType determines the file type based on the file extension.
//
// Supported file types:
//   - CSV (.csv)
//   - XLSX (.xlsx)
//   - JSON (.json)
//
// Returns FileTypeCSV as default because survey exports without a
// recognizable extension are overwhelmingly CSV.
// Note: this function does NOT handle compressed files. Use
// DetectFileTypeAndCompression instead.
func DetectFileType(filePath string) FileType {
	if filePath == "" {
		return FileTypeUnknown
	}
	return detectFileTypeFromPath(strings.ToLower(filePath))
}

// DetectFileTypeAndCompression determines both the file type and compression
// type. It first checks for double extensions (e.g., .csv.gz) and falls back
// to magic byte detection if no compression extension is found.
//
// A bare .zip with no inner extension (the common "data.zip" export) is
// reported as CSV, matching the contents of every known export.
func DetectFileTypeAndCompression(filePath string) (FileType, CompressionType) {
	if filePath == "" {
		return FileTypeUnknown, CompressionNone
	}

	lower := strings.ToLower(filePath)

	compressionType := CompressionNone
	innerPath := lower

	for ext, ct := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compressionType = ct
			innerPath = strings.TrimSuffix(lower, ext)
			break
		}
	}

	// If no compression extension found, check magic bytes. XLSX is
	// exempt: a workbook is itself a zip container and would be misread
	// as a zipped CSV.
	if compressionType == CompressionNone {
		if detectFileTypeFromPath(lower) == FileTypeXLSX {
			return FileTypeXLSX, CompressionNone
		}
		if magicType, err := DetectCompressionByMagic(filePath); err == nil && magicType != CompressionNone {
			// Inner type can't be derived from the extension here; CSV is
			// the only format shipped without one.
			return FileTypeCSV, magicType
		}
	}

	return detectFileTypeFromPath(innerPath), compressionType
}

// detectFileTypeFromPath determines file type from a path (without compression extension)
func detectFileTypeFromPath(path string) FileType {
	if strings.HasSuffix(path, ".csv") {
		return FileTypeCSV
	}
	if strings.HasSuffix(path, ".xlsx") {
		return FileTypeXLSX
	}
	if strings.HasSuffix(path, ".json") {
		return FileTypeJSON
	}
	return FileTypeCSV
}

// IsCompressedFile checks if a file is compressed based on extension or magic bytes
func IsCompressedFile(filePath string) bool {
	_, compression := DetectFileTypeAndCompression(filePath)
	return compression != CompressionNone
}
