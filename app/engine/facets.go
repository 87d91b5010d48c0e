package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/git-galluppakistan/survey-dashboard/app/schema"
	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// FacetOption describes one sidebar filter: whether it resolved to a
// column, and the values currently offered. The age facet carries an
// observed min/max range instead of a value list.
type FacetOption struct {
	Facet   string   `json:"facet"`
	Column  string   `json:"column,omitempty"`
	Enabled bool     `json:"enabled"`
	Values  []string `json:"values,omitempty"`
	MinAge  *int64   `json:"min_age,omitempty"`
	MaxAge  *int64   `json:"max_age,omitempty"`
}

// FacetOptions returns the current option set for every facet. Geographic
// facets narrow hierarchically: district options reflect the selected
// provinces, tehsil options reflect the selected provinces and districts.
// The other facets always offer their full value list.
func (e *Engine) FacetOptions(sel *Selection) []FacetOption {
	if sel == nil {
		sel = NewSelection()
	}

	opts := make([]FacetOption, 0, len(schema.AllFacets))
	for _, f := range schema.AllFacets {
		col, ok := e.resolver.Resolve(f)
		opt := FacetOption{Facet: f.String(), Column: col, Enabled: ok}
		if !ok {
			opts = append(opts, opt)
			continue
		}

		switch f {
		case schema.FacetAge:
			opt.MinAge, opt.MaxAge = e.ageExtent(col)
		case schema.FacetDistrict:
			opt.Values = e.distinctValues(col, e.narrowingMask(sel, schema.FacetProvince))
		case schema.FacetTehsil:
			opt.Values = e.distinctValues(col, e.narrowingMask(sel, schema.FacetProvince, schema.FacetDistrict))
		default:
			opt.Values = e.distinctValues(col, nil)
		}
		opts = append(opts, opt)
	}
	return opts
}

// narrowingMask builds an inclusion vector from only the named parent
// facets of the selection, ignoring everything else. Used to narrow a
// dependent facet's options without the facet filtering itself.
func (e *Engine) narrowingMask(sel *Selection, parents ...schema.Facet) []bool {
	narrowed := NewSelection()
	for _, f := range parents {
		if values := sel.Values[f]; len(values) > 0 {
			narrowed.Select(f, values...)
		}
	}
	return e.buildMask(narrowed)
}

// distinctValues returns the sorted distinct values of a column among
// included rows. A nil mask means all rows. Null markers and empty cells
// are never offered as options.
func (e *Engine) distinctValues(colName string, mask []bool) []string {
	col, ok := e.tbl.Column(colName)
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	for i := 0; i < col.Len(); i++ {
		if mask != nil && !mask[i] {
			continue
		}
		value := col.Value(i)
		if value == "" || value == e.nullMarker {
			continue
		}
		seen[value] = true
	}

	values := make([]string, 0, len(seen))
	for value := range seen {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// ageExtent scans the age column for its observed min and max. Both are
// nil when no cell parses as a non-negative age.
func (e *Engine) ageExtent(colName string) (*int64, *int64) {
	col, ok := e.tbl.Column(colName)
	if !ok {
		return nil, nil
	}

	var lo, hi int64
	found := false
	ints, isInt := col.(table.IntAccessor)
	for i := 0; i < col.Len(); i++ {
		var age int64
		var valid bool
		if isInt {
			age, valid = ints.Int(i)
		} else {
			parsed, err := strconv.ParseInt(strings.TrimSpace(col.Value(i)), 10, 64)
			age, valid = parsed, err == nil
		}
		if !valid || age < 0 {
			continue
		}
		if !found || age < lo {
			lo = age
		}
		if !found || age > hi {
			hi = age
		}
		found = true
	}

	if !found {
		return nil, nil
	}
	return &lo, &hi
}
