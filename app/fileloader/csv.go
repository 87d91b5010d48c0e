package fileloader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSV file reading and ingestion functions
// This file contains all CSV-specific operations for reading headers,
// counting rows, and creating readers for CSV data.

// RecordReader yields one record per call and io.EOF at end of data.
type RecordReader interface {
	Read() ([]string, error)
}

// ReadCSVHeader reads and returns the header row from a CSV file with
// parsing options. If options.NoHeaderRow is true, the first row is treated
// as data and synthetic headers are generated. Empty column names are
// normalized to Unnamed_A, Unnamed_B, etc.
func ReadCSVHeader(filePath string, options FileOptions) ([]string, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	firstRow, err := reader.Read()
	if err != nil {
		return nil, err
	}

	return headerFromFirstRow(firstRow, options), nil
}

// ReadCSVHeaderFromBytes reads and returns the header row from CSV data in
// memory. Used after decompressing zipped exports.
func ReadCSVHeaderFromBytes(data []byte, options FileOptions) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	firstRow, err := reader.Read()
	if err != nil {
		return nil, err
	}

	return headerFromFirstRow(firstRow, options), nil
}

func headerFromFirstRow(firstRow []string, options FileOptions) []string {
	if options.NoHeaderRow {
		// Generate synthetic headers based on column count
		emptyHeaders := make([]string, len(firstRow))
		return NormalizeHeaders(emptyHeaders)
	}
	return NormalizeHeaders(firstRow)
}

// GetCSVReader returns a CSV record reader for the specified file.
// The caller is responsible for closing the returned file handle.
func GetCSVReader(filePath string) (*csv.Reader, *os.File, error) {
	if filePath == "" {
		return nil, nil, fmt.Errorf("file path is empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(f)
	// Allow variable number of fields per record to handle ragged exports
	reader.FieldsPerRecord = -1
	return reader, f, nil
}

// GetCSVReaderFromBytes returns a CSV reader for CSV data in memory.
// Unlike GetCSVReader, this does not return a file handle.
func GetCSVReaderFromBytes(data []byte) (*csv.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	return reader, nil
}

// GetCSVRowCountFromBytes returns the total number of data rows from CSV
// data in memory. If options.NoHeaderRow is true, all rows are counted.
func GetCSVRowCountFromBytes(data []byte, options FileOptions) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("data is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	if !options.NoHeaderRow {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return 0, nil
			}
			return 0, err
		}
	}

	count := 0
	for {
		rec, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			if rec == nil {
				break
			}
		}
		if rec != nil {
			count++
		}
	}
	return count, nil
}

// sliceRecordReader serves pre-materialized rows through the RecordReader
// interface. XLSX and JSON sources load fully before iteration.
type sliceRecordReader struct {
	rows [][]string
	pos  int
}

func (r *sliceRecordReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}
