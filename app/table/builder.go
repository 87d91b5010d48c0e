package table

import (
	"fmt"
	"strconv"
)

// Builder accumulates row batches into dictionary-encoded columns.
// Each batch is interned as soon as it arrives, so only the compact
// representation (codes + dictionaries) is retained between batches;
// the caller can drop the raw string rows immediately. The result is
// identical to a single-pass build regardless of batch boundaries.
type Builder struct {
	header    []string
	codes     [][]int32
	dicts     [][]string
	index     []map[string]int32
	rows      int
	forcedCat map[string]bool
}

// NewBuilder creates a builder for the given header.
func NewBuilder(header []string) *Builder {
	n := len(header)
	b := &Builder{
		header: append([]string(nil), header...),
		codes:  make([][]int32, n),
		dicts:  make([][]string, n),
		index:  make([]map[string]int32, n),
	}
	for i := 0; i < n; i++ {
		b.index[i] = make(map[string]int32)
	}
	b.forcedCat = make(map[string]bool)
	return b
}

// ForceCategorical exempts the named columns from integer coercion in
// Finalize. Used for coded fields (e.g. gender) whose numeric codes are
// remapped to labels after the build.
func (b *Builder) ForceCategorical(names ...string) {
	for _, name := range names {
		b.forcedCat[name] = true
	}
}

// AppendBatch interns one batch of raw rows. Rows shorter than the header
// are padded with empty cells; longer rows are truncated.
func (b *Builder) AppendBatch(rows [][]string) error {
	if len(b.header) == 0 {
		return fmt.Errorf("builder has no header")
	}

	for _, row := range rows {
		for col := range b.header {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}

			code, ok := b.index[col][cell]
			if !ok {
				code = int32(len(b.dicts[col]))
				b.dicts[col] = append(b.dicts[col], cell)
				b.index[col][cell] = code
			}
			b.codes[col] = append(b.codes[col], code)
		}
		b.rows++
	}

	return nil
}

// RowCount returns the number of rows appended so far.
func (b *Builder) RowCount() int { return b.rows }

// Finalize produces the immutable table. Columns whose every distinct value
// parses as an integer are coerced to IntColumn and downcast to the
// smallest sufficient width; all other columns stay categorical.
// The builder must not be reused after Finalize.
func (b *Builder) Finalize() *Table {
	cols := make([]Column, len(b.header))

	for i, name := range b.header {
		if intDict, ok := intValues(b.dicts[i]); ok && !b.forcedCat[name] {
			values := make([]int64, len(b.codes[i]))
			for row, code := range b.codes[i] {
				values[row] = intDict[code]
			}
			cols[i] = NewIntColumn(name, values)
			continue
		}
		cols[i] = NewCategoricalColumn(name, b.codes[i], b.dicts[i])
	}

	// Release builder state
	b.codes = nil
	b.dicts = nil
	b.index = nil

	return New(cols)
}

// intValues parses every dictionary value as int64. Returns false if the
// dictionary is empty or any value fails to parse (including empty cells,
// which mark missing data and force the column to stay categorical).
func intValues(dict []string) ([]int64, bool) {
	if len(dict) == 0 {
		return nil, false
	}
	parsed := make([]int64, len(dict))
	for i, v := range dict {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false
		}
		parsed[i] = n
	}
	return parsed, true
}
