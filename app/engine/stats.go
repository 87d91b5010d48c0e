package engine

import (
	"sort"

	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// AnswerCount is one row of a response distribution: a distinct answer,
// its frequency among included rows, and its share of the distribution.
type AnswerCount struct {
	Answer     string  `json:"answer"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// countAnswers tallies the target column over included rows, excluding
// blank cells and the null marker. Returned in descending count order; ties
// keep the answers' first-appearance order in the table (stable).
func (e *Engine) countAnswers(col table.Column, mask []bool) []AnswerCount {
	counts := make(map[string]int)
	var order []string // first-appearance order for stable ties

	if cat, isCat := col.(*table.CategoricalColumn); isCat {
		// Tally codes first, then resolve to strings once.
		codeCounts := make([]int, len(cat.Categories()))
		for i := range mask {
			if mask[i] {
				codeCounts[cat.Code(i)]++
			}
		}
		for code, n := range codeCounts {
			value := cat.Categories()[code]
			if n == 0 || value == "" || value == e.nullMarker {
				continue
			}
			counts[value] = n
			order = append(order, value)
		}
	} else {
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
	}

	answers := make([]AnswerCount, 0, len(order))
	for _, value := range order {
		answers = append(answers, AnswerCount{Answer: value, Count: counts[value]})
	}

	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Count > answers[j].Count
	})

	applyPercentages(answers)
	return answers
}

// applyPercentages fills in each answer's share of the grand total.
// An empty distribution leaves every percentage at 0; there is never a
// division by zero or a NaN.
func applyPercentages(answers []AnswerCount) {
	total := 0
	for _, a := range answers {
		total += a.Count
	}
	if total == 0 {
		for i := range answers {
			answers[i].Percentage = 0
		}
		return
	}
	for i := range answers {
		answers[i].Percentage = float64(answers[i].Count) / float64(total) * 100
	}
}
