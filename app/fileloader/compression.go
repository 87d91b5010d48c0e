package fileloader

import (
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a file
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZip
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionZip:
		return "zip"
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	// Zip magic bytes: 50 4b 03 04 ("PK")
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	// Gzip magic bytes: 1f 8b
	gzipMagic = []byte{0x1f, 0x8b}
	// Bzip2 magic bytes: 42 5a 68 ("BZh")
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	// XZ magic bytes: fd 37 7a 58 5a 00
	xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompressionByMagic reads the first few bytes of a file and detects
// compression type. Survey exports are usually shipped as .zip archives, so
// zip is checked first.
func DetectCompressionByMagic(filePath string) (CompressionType, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return CompressionNone, err
	}
	defer f.Close()

	// XZ has the longest magic (6 bytes)
	header := make([]byte, 6)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return CompressionNone, err
	}

	if n >= 4 && bytes.HasPrefix(header, zipMagic) {
		return CompressionZip, nil
	}
	if n >= 2 && bytes.HasPrefix(header, gzipMagic) {
		return CompressionGzip, nil
	}
	if n >= 3 && bytes.HasPrefix(header, bzip2Magic) {
		return CompressionBzip2, nil
	}
	if n >= 6 && bytes.HasPrefix(header, xzMagic) {
		return CompressionXZ, nil
	}

	return CompressionNone, nil
}

// DecompressFile reads a compressed file and returns the decompressed data.
// Zip archives must contain exactly one tabular entry; directory entries and
// OS metadata files are skipped.
func DecompressFile(filePath string, compressionType CompressionType) ([]byte, error) {
	if compressionType == CompressionNone {
		return os.ReadFile(filePath)
	}

	if compressionType == CompressionZip {
		return decompressZip(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader

	switch compressionType {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader

	case CompressionBzip2:
		reader = bzip2.NewReader(f)

	case CompressionXZ:
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzReader

	default:
		return nil, fmt.Errorf("unsupported compression type: %v", compressionType)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// decompressZip extracts the first usable file entry from a zip archive.
func decompressZip(filePath string) ([]byte, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := entry.Name
		// Skip OS metadata entries like __MACOSX/ and .DS_Store
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasSuffix(name, ".DS_Store") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip entry %q: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read zip entry %q: %w", name, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("zip archive contains no usable file entry")
}

// GetDecompressingReader returns a reader that decompresses the file
// on-the-fly. Zip is not supported here because it needs random access;
// callers fall back to DecompressFile for zip archives.
func GetDecompressingReader(filePath string, compressionType CompressionType) (io.ReadCloser, error) {
	if compressionType == CompressionNone {
		return os.Open(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	switch compressionType {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &decompressingReadCloser{reader: gzReader, file: f}, nil

	case CompressionBzip2:
		return &decompressingReadCloser{reader: bzip2.NewReader(f), file: f}, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &decompressingReadCloser{reader: xzReader, file: f}, nil

	default:
		f.Close()
		return nil, fmt.Errorf("unsupported streaming compression type: %v", compressionType)
	}
}

// decompressingReadCloser wraps a decompressing reader and the underlying file
type decompressingReadCloser struct {
	reader io.Reader
	file   *os.File
}

func (d *decompressingReadCloser) Read(p []byte) (n int, err error) {
	return d.reader.Read(p)
}

func (d *decompressingReadCloser) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		closer.Close()
	}
	return d.file.Close()
}
