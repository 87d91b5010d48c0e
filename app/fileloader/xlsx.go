package fileloader

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSX (Excel) file reading functions. Some partner organizations re-export
// the survey as a workbook; only the first sheet is read.

// ReadXLSXHeader reads and returns the header row from the first sheet of an
// XLSX file. If options.NoHeaderRow is true, synthetic headers are generated.
func ReadXLSXHeader(filePath string, options FileOptions) ([]string, error) {
	rows, err := readXLSXRows(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in XLSX file")
	}
	return headerFromFirstRow(rows[0], options), nil
}

// GetXLSXReader returns a record reader over all rows of the first sheet,
// including the header row so that callers can treat every format the same
// way (header first unless NoHeaderRow).
func GetXLSXReader(filePath string) (RecordReader, error) {
	rows, err := readXLSXRows(filePath)
	if err != nil {
		return nil, err
	}
	return &sliceRecordReader{rows: rows}, nil
}

// readXLSXRows loads all rows from the first sheet of a workbook.
func readXLSXRows(filePath string) ([][]string, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	// excelize trims trailing empty cells per row; pad to the header width
	// so downstream indexing stays rectangular.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}

	return rows, nil
}
