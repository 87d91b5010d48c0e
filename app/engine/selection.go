package engine

import (
	"github.com/git-galluppakistan/survey-dashboard/app/schema"
)

// Selection is the transient per-interaction facet state. It is recreated
// on every user interaction and never persisted.
//
// Semantics (fixed across the whole dashboard): an absent or empty value
// set means "no constraint" — all values pass. This matches a multi-select
// widget that starts empty, and a "select all" default is equivalent to no
// constraint. An unset age bound means that side of the range is open.
type Selection struct {
	// Values holds the selected value set per value facet. A missing key
	// or an empty slice imposes no constraint.
	Values map[schema.Facet][]string

	// AgeMin and AgeMax bound the age facet inclusively; nil = unbounded.
	AgeMin *int
	AgeMax *int
}

// NewSelection returns an unconstrained selection.
func NewSelection() *Selection {
	return &Selection{Values: make(map[schema.Facet][]string)}
}

// Select sets the value set for a facet.
func (s *Selection) Select(f schema.Facet, values ...string) *Selection {
	s.Values[f] = values
	return s
}

// SelectAgeRange bounds the age facet.
func (s *Selection) SelectAgeRange(min, max int) *Selection {
	s.AgeMin = &min
	s.AgeMax = &max
	return s
}

// constrained reports whether the facet carries an active constraint.
func (s *Selection) constrained(f schema.Facet) bool {
	if f == schema.FacetAge {
		return s.AgeMin != nil || s.AgeMax != nil
	}
	return len(s.Values[f]) > 0
}

// valueSet returns the selected values as a set for membership tests.
func (s *Selection) valueSet(f schema.Facet) map[string]bool {
	set := make(map[string]bool, len(s.Values[f]))
	for _, v := range s.Values[f] {
		set[v] = true
	}
	return set
}
