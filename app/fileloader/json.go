package fileloader

import (
	"fmt"
	"os"
	"sort"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSON file reading functions. A JSON export is an array of flat respondent
// objects, optionally nested under a JSONPath (options.JPath).

// ReadJSONHeader returns the header derived from a JSON export: the sorted
// union of keys across all record objects.
func ReadJSONHeader(filePath string, options FileOptions) ([]string, error) {
	header, _, err := loadJSONRecords(filePath, options)
	return header, err
}

// GetJSONReader returns a record reader over a JSON export. The header row
// is emitted first so JSON behaves like the other formats.
func GetJSONReader(filePath string, options FileOptions) (RecordReader, error) {
	header, rows, err := loadJSONRecords(filePath, options)
	if err != nil {
		return nil, err
	}
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	return &sliceRecordReader{rows: all}, nil
}

// loadJSONRecords parses a JSON export and flattens it into a header plus
// string rows. Missing keys become empty cells; non-string scalars are
// rendered with oj's JSON encoding minus the quotes for primitives.
func loadJSONRecords(filePath string, options FileOptions) ([]string, [][]string, error) {
	if filePath == "" {
		return nil, nil, fmt.Errorf("file path is empty")
	}

	_, compression := DetectFileTypeAndCompression(filePath)

	var data []byte
	var err error
	if compression != CompressionNone {
		data, err = DecompressFile(filePath, compression)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decompress file: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, nil, err
		}
	}

	doc, err := oj.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	records := doc
	if options.JPath != "" {
		x, err := jp.ParseString(options.JPath)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid JSONPath expression %q: %w", options.JPath, err)
		}
		results := x.Get(doc)
		if len(results) == 0 {
			return nil, nil, fmt.Errorf("JSONPath %q returned no results", options.JPath)
		}
		records = results[0]
	}

	arr, ok := records.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("JSON export must be an array of records, got %T", records)
	}

	// Header: sorted union of keys across all records, for determinism.
	keySet := map[string]bool{}
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("JSON record must be an object, got %T", item)
		}
		for k := range obj {
			keySet[k] = true
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(arr))
	for _, item := range arr {
		obj := item.(map[string]interface{})
		row := make([]string, len(header))
		for i, key := range header {
			if val, exists := obj[key]; exists && val != nil {
				row[i] = jsonCellString(val)
			}
		}
		rows = append(rows, row)
	}

	return NormalizeHeaders(header), rows, nil
}

// jsonCellString renders a JSON value as a cell string.
func jsonCellString(val interface{}) string {
	if s, ok := val.(string); ok {
		return s
	}
	return oj.JSON(val)
}
