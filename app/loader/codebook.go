package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMissingCodebook indicates the codebook file does not exist.
// Non-fatal: the dashboard proceeds with raw field identifiers.
var ErrMissingCodebook = errors.New("codebook file not found")

// ProtectedColumns are geographic/demographic filter keys that must never
// be renamed by the codebook, so downstream keyword lookups stay stable.
var ProtectedColumns = []string{
	"Province",
	"District",
	"Region",
	"Tehsil",
	"Mouza",
	"Locality",
	"RSex",
}

// CodebookEntry is one identifier -> label mapping from the codebook file.
type CodebookEntry struct {
	Code  string
	Label string
}

// LoadCodebook reads the codebook CSV: first column raw identifier, second
// column human label. The header row is skipped when present (detected by a
// first row whose second cell is empty or whose first cell matches common
// header spellings).
func LoadCodebook(path string) ([]CodebookEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMissingCodebook, path)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var entries []CodebookEntry
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse codebook: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		if first {
			first = false
			if isCodebookHeader(rec) {
				continue
			}
		}
		entries = append(entries, CodebookEntry{Code: rec[0], Label: rec[1]})
	}

	return entries, nil
}

// isCodebookHeader heuristically detects a codebook header row.
func isCodebookHeader(rec []string) bool {
	switch rec[0] {
	case "Code", "code", "Variable", "variable", "Identifier", "identifier":
		return true
	}
	return false
}

// BuildRenameMapping converts codebook entries into a column rename mapping
// of the form "{label} ({identifier})", excluding protected identifiers.
func BuildRenameMapping(entries []CodebookEntry) map[string]string {
	protected := make(map[string]bool, len(ProtectedColumns))
	for _, p := range ProtectedColumns {
		protected[p] = true
	}

	mapping := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Code == "" || protected[e.Code] {
			continue
		}
		mapping[e.Code] = fmt.Sprintf("%s (%s)", e.Label, e.Code)
	}
	return mapping
}
