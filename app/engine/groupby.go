package engine

import (
	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// GroupDistribution is the response distribution of the target question
// within one value of the grouping dimension. Percentages are normalized
// against the group's own total, so every group independently sums to 100.
type GroupDistribution struct {
	Group   string        `json:"group"`
	Total   int           `json:"total"`
	Answers []AnswerCount `json:"answers"`
}

// GroupBreakdown is a cross-tabulation of the target question against one
// grouping dimension. Insufficient is set when the filtered population
// produced no groups at all; the display degrades to an explicit
// "insufficient data" state instead of an empty chart.
type GroupBreakdown struct {
	Dimension    string              `json:"dimension"`
	Groups       []GroupDistribution `json:"groups"`
	Insufficient bool                `json:"insufficient"`
}

// groupLabelFunc returns the group label for a row; empty string means the
// row does not belong to any group and is skipped.
type groupLabelFunc func(row int) string

// crossTabulate counts (group, answer) pairs over included rows, dropping
// blank and null-marker answers, then normalizes each group independently.
// groupOrder fixes the output order of groups; groups not listed there are
// appended in first-appearance order.
func (e *Engine) crossTabulate(questionCol table.Column, mask []bool, dimension string, label groupLabelFunc, groupOrder []string) *GroupBreakdown {
	type groupTally struct {
		counts map[string]int
		order  []string
		total  int
	}

	tallies := make(map[string]*groupTally)
	var seenOrder []string

	for i := range mask {
		if !mask[i] {
			continue
		}
		group := label(i)
		if group == "" {
			continue
		}
		answer := questionCol.Value(i)
		if answer == "" || answer == e.nullMarker {
			continue
		}

		tally, ok := tallies[group]
		if !ok {
			tally = &groupTally{counts: make(map[string]int)}
			tallies[group] = tally
			seenOrder = append(seenOrder, group)
		}
		if _, seen := tally.counts[answer]; !seen {
			tally.order = append(tally.order, answer)
		}
		tally.counts[answer]++
		tally.total++
	}

	breakdown := &GroupBreakdown{Dimension: dimension}
	if len(tallies) == 0 {
		breakdown.Insufficient = true
		return breakdown
	}

	// Fixed order first (e.g. age buckets), then any remaining groups.
	ordered := make([]string, 0, len(tallies))
	emitted := make(map[string]bool, len(tallies))
	for _, g := range groupOrder {
		if _, ok := tallies[g]; ok && !emitted[g] {
			ordered = append(ordered, g)
			emitted[g] = true
		}
	}
	for _, g := range seenOrder {
		if !emitted[g] {
			ordered = append(ordered, g)
			emitted[g] = true
		}
	}

	for _, group := range ordered {
		tally := tallies[group]
		answers := make([]AnswerCount, 0, len(tally.order))
		for _, answer := range tally.order {
			count := tally.counts[answer]
			pct := 0.0
			if tally.total > 0 {
				pct = float64(count) / float64(tally.total) * 100
			}
			answers = append(answers, AnswerCount{Answer: answer, Count: count, Percentage: pct})
		}
		breakdown.Groups = append(breakdown.Groups, GroupDistribution{
			Group:   group,
			Total:   tally.total,
			Answers: answers,
		})
	}

	return breakdown
}
