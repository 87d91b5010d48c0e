package table

import (
	"strconv"
)

// Column is a read-only, row-aligned survey field.
type Column interface {
	// Name returns the column name (after any codebook rename).
	Name() string

	// Len returns the number of rows.
	Len() int

	// Value returns the string rendering of the cell at row.
	Value(row int) string
}

// IntAccessor is implemented by columns whose cells can be read as integers
// without string parsing.
type IntAccessor interface {
	// Int returns the integer value at row and whether it is valid.
	Int(row int) (int64, bool)
}

// CategoricalColumn stores repeated string values dictionary-encoded:
// one int32 code per row plus a shared dictionary of distinct values.
// For survey data (a few dozen distinct answers over hundreds of thousands
// of rows) this cuts the string storage by two orders of magnitude.
type CategoricalColumn struct {
	name  string
	codes []int32
	dict  []string
}

// NewCategoricalColumn builds a column directly from codes and dictionary.
// The codes slice is row-aligned; dict maps code -> value.
func NewCategoricalColumn(name string, codes []int32, dict []string) *CategoricalColumn {
	return &CategoricalColumn{name: name, codes: codes, dict: dict}
}

// Name returns the column name.
func (c *CategoricalColumn) Name() string { return c.name }

// Len returns the number of rows.
func (c *CategoricalColumn) Len() int { return len(c.codes) }

// Value returns the dictionary value for the given row.
func (c *CategoricalColumn) Value(row int) string {
	return c.dict[c.codes[row]]
}

// Code returns the dictionary code for the given row. Codes are stable for
// the lifetime of the column, so engine hot loops can compare codes instead
// of strings.
func (c *CategoricalColumn) Code(row int) int32 {
	return c.codes[row]
}

// Categories returns the distinct values in first-appearance order.
// The returned slice is shared; callers must not modify it.
func (c *CategoricalColumn) Categories() []string {
	return c.dict
}

// CodeOf returns the code for a value, or -1 if the value never occurs.
func (c *CategoricalColumn) CodeOf(value string) int32 {
	for i, v := range c.dict {
		if v == value {
			return int32(i)
		}
	}
	return -1
}

// Remap rewrites dictionary values through the given mapping, leaving
// unmapped values unchanged. Values that collapse onto the same target
// (e.g. "1" and "01" both mapping to "Male") are merged into one category.
// Remap is only legal during load, before the table is shared.
func (c *CategoricalColumn) Remap(mapping map[string]string) {
	newDict := make([]string, 0, len(c.dict))
	newIndex := make(map[string]int32, len(c.dict))
	codeRemap := make([]int32, len(c.dict))

	for oldCode, value := range c.dict {
		target := value
		if mapped, ok := mapping[value]; ok {
			target = mapped
		}
		newCode, exists := newIndex[target]
		if !exists {
			newCode = int32(len(newDict))
			newDict = append(newDict, target)
			newIndex[target] = newCode
		}
		codeRemap[oldCode] = newCode
	}

	for i, code := range c.codes {
		c.codes[i] = codeRemap[code]
	}
	c.dict = newDict
}

// setName is used by Table renaming during load.
func (c *CategoricalColumn) setName(name string) { c.name = name }

// footprint estimates the in-memory size in bytes.
func (c *CategoricalColumn) footprint() int64 {
	size := int64(len(c.codes)) * 4
	for _, v := range c.dict {
		size += int64(len(v)) + 16
	}
	return size
}

// intWidths supported by IntColumn after downcasting.
type intWidth int

const (
	width8 intWidth = iota
	width16
	width32
	width64
)

// IntColumn stores an integer survey field downcast to the smallest
// sufficient width.
type IntColumn struct {
	name  string
	width intWidth
	v8    []int8
	v16   []int16
	v32   []int32
	v64   []int64
}

// NewIntColumn builds an integer column from int64 values, downcasting to
// the smallest width that holds every value.
func NewIntColumn(name string, values []int64) *IntColumn {
	min, max := int64(0), int64(0)
	for i, v := range values {
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}

	col := &IntColumn{name: name}
	switch {
	case min >= -128 && max <= 127:
		col.width = width8
		col.v8 = make([]int8, len(values))
		for i, v := range values {
			col.v8[i] = int8(v)
		}
	case min >= -32768 && max <= 32767:
		col.width = width16
		col.v16 = make([]int16, len(values))
		for i, v := range values {
			col.v16[i] = int16(v)
		}
	case min >= -2147483648 && max <= 2147483647:
		col.width = width32
		col.v32 = make([]int32, len(values))
		for i, v := range values {
			col.v32[i] = int32(v)
		}
	default:
		col.width = width64
		col.v64 = values
	}
	return col
}

// Name returns the column name.
func (c *IntColumn) Name() string { return c.name }

// Len returns the number of rows.
func (c *IntColumn) Len() int {
	switch c.width {
	case width8:
		return len(c.v8)
	case width16:
		return len(c.v16)
	case width32:
		return len(c.v32)
	default:
		return len(c.v64)
	}
}

// Value returns the decimal rendering of the cell at row.
func (c *IntColumn) Value(row int) string {
	v, _ := c.Int(row)
	return strconv.FormatInt(v, 10)
}

// Int returns the integer value at row. Always valid for IntColumn.
func (c *IntColumn) Int(row int) (int64, bool) {
	switch c.width {
	case width8:
		return int64(c.v8[row]), true
	case width16:
		return int64(c.v16[row]), true
	case width32:
		return int64(c.v32[row]), true
	default:
		return c.v64[row], true
	}
}

func (c *IntColumn) setName(name string) { c.name = name }

func (c *IntColumn) footprint() int64 {
	switch c.width {
	case width8:
		return int64(len(c.v8))
	case width16:
		return int64(len(c.v16)) * 2
	case width32:
		return int64(len(c.v32)) * 4
	default:
		return int64(len(c.v64)) * 8
	}
}
