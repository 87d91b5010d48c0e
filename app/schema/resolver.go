// Package schema resolves logical dashboard facets to concrete table
// columns. Codebook renaming alters column names, so facets are located by
// substring keyword match rather than exact name: for each facet the
// candidate keywords are tried in a fixed priority order and the first
// column containing a candidate wins. A facet with no match is simply
// disabled; the dashboard stays usable with partial metadata.
package schema

import (
	"strings"
)

// Facet identifies one logical sidebar filter.
type Facet int

const (
	FacetProvince Facet = iota
	FacetRegion
	FacetDistrict
	FacetTehsil
	FacetGender
	FacetEducation
	FacetAge
)

// AllFacets lists every facet in display order.
var AllFacets = []Facet{
	FacetProvince,
	FacetRegion,
	FacetDistrict,
	FacetTehsil,
	FacetGender,
	FacetEducation,
	FacetAge,
}

// String returns the facet's display name.
func (f Facet) String() string {
	switch f {
	case FacetProvince:
		return "province"
	case FacetRegion:
		return "region"
	case FacetDistrict:
		return "district"
	case FacetTehsil:
		return "tehsil"
	case FacetGender:
		return "gender"
	case FacetEducation:
		return "education"
	case FacetAge:
		return "age"
	default:
		return "unknown"
	}
}

// facetKeywords maps each facet to its candidate keywords in priority
// order. Raw field identifiers come before label fragments so that an
// unrenamed export resolves to the canonical field.
var facetKeywords = map[Facet][]string{
	FacetProvince:  {"Province"},
	FacetRegion:    {"Region"},
	FacetDistrict:  {"District"},
	FacetTehsil:    {"Tehsil"},
	FacetGender:    {"S4C5", "RSex", "Gender"},
	FacetEducation: {"S4C9", "Highest class"},
	FacetAge:       {"S4C6", "Age"},
}

// excludedQuestionColumns are identifier columns that are never offered as
// analyzable questions, in addition to the resolved facet columns.
var excludedQuestionColumns = []string{"Mouza", "Locality", "PCode", "EBCode"}

// Resolver maps facets to columns of one loaded table.
type Resolver struct {
	columns  []string
	resolved map[Facet]string
}

// NewResolver resolves every facet against the given column names.
func NewResolver(columns []string) *Resolver {
	r := &Resolver{
		columns:  append([]string(nil), columns...),
		resolved: make(map[Facet]string, len(AllFacets)),
	}
	for _, f := range AllFacets {
		if col, ok := r.match(f); ok {
			r.resolved[f] = col
		}
	}
	return r
}

// match finds the first column matching the facet's keywords.
// Keyword priority is the outer loop: a lower-priority keyword can never
// shadow a higher-priority one, regardless of column order.
func (r *Resolver) match(f Facet) (string, bool) {
	for _, keyword := range facetKeywords[f] {
		for _, col := range r.columns {
			if strings.Contains(col, keyword) {
				return col, true
			}
		}
	}
	return "", false
}

// Resolve returns the column for a facet, or false if the facet is
// disabled because no column matched.
func (r *Resolver) Resolve(f Facet) (string, bool) {
	col, ok := r.resolved[f]
	return col, ok
}

// FilterColumns returns the set of columns consumed by facets.
func (r *Resolver) FilterColumns() map[string]bool {
	set := make(map[string]bool, len(r.resolved))
	for _, col := range r.resolved {
		set[col] = true
	}
	return set
}

// QuestionColumns returns the columns offered for question analysis:
// all table columns minus facet filter columns and known identifier
// columns. Filter and question columns never collide.
func (r *Resolver) QuestionColumns() []string {
	filter := r.FilterColumns()
	for _, name := range excludedQuestionColumns {
		filter[name] = true
	}

	var questions []string
	for _, col := range r.columns {
		if !filter[col] {
			questions = append(questions, col)
		}
	}
	return questions
}
