// Package table implements the in-memory columnar survey table.
// A Table is mutable only while the loader builds it (value remapping,
// codebook renames); after that it is shared read-only across all
// interactions and must never change.
package table

// Table is a columnar collection of survey fields.
// Rows are respondents, columns are survey fields.
type Table struct {
	cols   []Column
	byName map[string]int
}

// New creates a table from row-aligned columns. All columns must have the
// same length.
func New(cols []Column) *Table {
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[c.Name()] = i
	}
	return &Table{cols: cols, byName: byName}
}

// RowCount returns the number of respondent rows.
func (t *Table) RowCount() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.cols) }

// ColumnNames returns all column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the column with the exact given name.
func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[idx], true
}

// ColumnAt returns the column at table position i.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// Categorical returns the column as a CategoricalColumn if it is one.
func (t *Table) Categorical(name string) (*CategoricalColumn, bool) {
	col, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	cat, ok := col.(*CategoricalColumn)
	return cat, ok
}

// RenameColumns applies the given old-name -> new-name mapping.
// Columns absent from the mapping keep their names. Only legal during
// load, before the table is shared.
func (t *Table) RenameColumns(mapping map[string]string) {
	renamer := func(c Column, name string) {
		switch col := c.(type) {
		case *CategoricalColumn:
			col.setName(name)
		case *IntColumn:
			col.setName(name)
		}
	}

	for i, c := range t.cols {
		if newName, ok := mapping[c.Name()]; ok {
			delete(t.byName, c.Name())
			renamer(c, newName)
			t.byName[newName] = i
		}
	}
}

// MemoryFootprint estimates the table's in-memory size in bytes.
// Used by the dataset cache for eviction accounting.
func (t *Table) MemoryFootprint() int64 {
	var size int64
	for _, c := range t.cols {
		switch col := c.(type) {
		case *CategoricalColumn:
			size += col.footprint()
		case *IntColumn:
			size += col.footprint()
		default:
			// Unknown column implementations are charged a flat estimate
			size += int64(c.Len()) * 8
		}
	}
	return size
}
