package engine

import (
	"sort"

	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// topCategories returns the n most frequent values of a column among
// included rows, excluding blanks and the null marker. Ties are broken by
// the values' first-appearance order in the table (stable), so repeated
// interactions rank identically.
func (e *Engine) topCategories(col table.Column, mask []bool, n int) []string {
	counts := make(map[string]int)
	var order []string

	for i := range mask {
		if !mask[i] {
			continue
		}
		value := col.Value(i)
		if value == "" || value == e.nullMarker {
			continue
		}
		if _, seen := counts[value]; !seen {
			order = append(order, value)
		}
		counts[value]++
	}

	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
