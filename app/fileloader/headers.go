package fileloader

import (
	"strings"
)

// excelColumnName converts a 0-based index to an Excel-style column name.
// Examples: 0 -> A, 1 -> B, 25 -> Z, 26 -> AA, 27 -> AB
func excelColumnName(index int) string {
	result := ""
	index++ // 1-based for the algorithm

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders replaces empty headers with Excel-style column names.
// Survey exports occasionally carry unnamed trailing columns; giving them
// stable synthetic names keeps codebook renaming and column lookup working.
//
// Rules:
//   - Empty or whitespace-only headers become Unnamed_A, Unnamed_B, ...
//   - Non-empty headers are preserved as-is
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	emptyCount := 0

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			normalized[i] = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		} else {
			normalized[i] = h
		}
	}

	return normalized
}
