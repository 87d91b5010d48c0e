package engine

import (
	"strconv"
	"strings"

	"github.com/git-galluppakistan/survey-dashboard/app/schema"
	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// Inclusion vector construction. The mask is always built fresh from the
// full table: starting from all-true and intersecting one facet at a time.
// Reusing a previous mask would silently double-filter when the selection
// changes, so no mask is ever mutated across interactions.

// buildMask derives the row inclusion vector for a selection. Facets whose
// column is unresolved are skipped (the filter is disabled, not failed).
// Intersection order does not affect the result.
func (e *Engine) buildMask(sel *Selection) []bool {
	mask := make([]bool, e.tbl.RowCount())
	for i := range mask {
		mask[i] = true
	}
	if sel == nil {
		return mask
	}

	for _, f := range schema.AllFacets {
		if !sel.constrained(f) {
			continue
		}
		col, ok := e.resolver.Resolve(f)
		if !ok {
			continue
		}

		if f == schema.FacetAge {
			e.intersectAgeRange(mask, col, sel.AgeMin, sel.AgeMax)
			continue
		}
		e.intersectValueSet(mask, col, sel.valueSet(f))
	}

	return mask
}

// intersectValueSet ANDs "row's value is in the selected set" into the mask.
// Categorical columns are filtered on dictionary codes so the hot loop
// compares int32s, not strings.
func (e *Engine) intersectValueSet(mask []bool, colName string, allowed map[string]bool) {
	col, ok := e.tbl.Column(colName)
	if !ok {
		return
	}

	if cat, isCat := col.(*table.CategoricalColumn); isCat {
		allowedCodes := make(map[int32]bool, len(allowed))
		for code, value := range cat.Categories() {
			if allowed[value] {
				allowedCodes[int32(code)] = true
			}
		}
		for i := range mask {
			if mask[i] && !allowedCodes[cat.Code(i)] {
				mask[i] = false
			}
		}
		return
	}

	for i := range mask {
		if mask[i] && !allowed[col.Value(i)] {
			mask[i] = false
		}
	}
}

// intersectAgeRange ANDs "age lies within [min,max]" into the mask.
// Rows whose age cell is not a number (missing markers) are excluded by an
// active age constraint.
func (e *Engine) intersectAgeRange(mask []bool, colName string, min, max *int) {
	col, ok := e.tbl.Column(colName)
	if !ok {
		return
	}

	inRange := func(age int64) bool {
		if min != nil && age < int64(*min) {
			return false
		}
		if max != nil && age > int64(*max) {
			return false
		}
		return true
	}

	if ints, isInt := col.(table.IntAccessor); isInt {
		for i := range mask {
			if !mask[i] {
				continue
			}
			age, valid := ints.Int(i)
			if !valid || !inRange(age) {
				mask[i] = false
			}
		}
		return
	}

	for i := range mask {
		if !mask[i] {
			continue
		}
		age, err := strconv.ParseInt(strings.TrimSpace(col.Value(i)), 10, 64)
		if err != nil || !inRange(age) {
			mask[i] = false
		}
	}
}

// countMask returns the number of included rows.
func countMask(mask []bool) int {
	count := 0
	for _, included := range mask {
		if included {
			count++
		}
	}
	return count
}
