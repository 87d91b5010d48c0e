// Package engine answers dashboard queries against a loaded survey table:
// population summaries, per-question response distributions, and
// cross-tabulations against demographic dimensions. All queries are
// read-only over an immutable table, so an Engine is safe for concurrent
// use once constructed.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/git-galluppakistan/survey-dashboard/app/schema"
	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrUnknownDimension = errors.New("unknown breakdown dimension")
)

// defaultNullMarker matches the SPSS export's missing-value sentinel.
const defaultNullMarker = "#NULL!"

// topDistrictCount caps how many districts a district breakdown shows.
const topDistrictCount = 10

// Engine evaluates queries against one loaded table.
type Engine struct {
	tbl        *table.Table
	resolver   *schema.Resolver
	nullMarker string
}

// New builds an engine over a loaded table, resolving facets against its
// column names.
func New(tbl *table.Table) *Engine {
	return &Engine{
		tbl:        tbl,
		resolver:   schema.NewResolver(tbl.ColumnNames()),
		nullMarker: defaultNullMarker,
	}
}

// Questions returns the columns offered for analysis.
func (e *Engine) Questions() []string {
	return e.resolver.QuestionColumns()
}

// Summary describes the current population under a selection.
type Summary struct {
	TotalRows    int     `json:"total_rows"`
	FilteredRows int     `json:"filtered_rows"`
	SharePct     float64 `json:"share_pct"`
	Questions    int     `json:"questions"`
}

// Summary reports total and filtered row counts for a selection. SharePct
// is the filtered share of the full table, 0 on an empty table.
func (e *Engine) Summary(sel *Selection) Summary {
	total := e.tbl.RowCount()
	filtered := countMask(e.buildMask(sel))

	share := 0.0
	if total > 0 {
		share = float64(filtered) / float64(total) * 100
	}
	return Summary{
		TotalRows:    total,
		FilteredRows: filtered,
		SharePct:     share,
		Questions:    len(e.Questions()),
	}
}

// QuestionStats is the response distribution of one question under a
// selection. Total counts non-null answers; TopAnswer is the most frequent
// one. Insufficient is set when the filtered population yields no answers.
type QuestionStats struct {
	Column       string        `json:"column"`
	Total        int           `json:"total"`
	Answers      []AnswerCount `json:"answers"`
	TopAnswer    string        `json:"top_answer,omitempty"`
	Insufficient bool          `json:"insufficient"`
}

// QuestionStats computes the distribution of a question column under a
// selection. The column may be named by exact match or unique fragment.
func (e *Engine) QuestionStats(column string, sel *Selection) (*QuestionStats, error) {
	colName, err := e.resolveColumn(column)
	if err != nil {
		return nil, err
	}
	col, _ := e.tbl.Column(colName)

	answers := e.countAnswers(col, e.buildMask(sel))
	stats := &QuestionStats{Column: colName, Answers: answers}
	for _, a := range answers {
		stats.Total += a.Count
	}
	if len(answers) == 0 {
		stats.Insufficient = true
		return stats, nil
	}
	stats.TopAnswer = answers[0].Answer
	return stats, nil
}

// Breakdown cross-tabulates a question against a demographic dimension:
// "province", "gender", "age" (fixed buckets) or "district" (capped to the
// most frequent districts in the filtered population).
func (e *Engine) Breakdown(column, dimension string, sel *Selection) (*GroupBreakdown, error) {
	colName, err := e.resolveColumn(column)
	if err != nil {
		return nil, err
	}
	col, _ := e.tbl.Column(colName)
	mask := e.buildMask(sel)

	switch dimension {
	case "province":
		return e.facetBreakdown(col, mask, schema.FacetProvince, dimension)
	case "gender":
		return e.facetBreakdown(col, mask, schema.FacetGender, dimension)
	case "age":
		return e.ageBreakdown(col, mask)
	case "district":
		return e.districtBreakdown(col, mask)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}
}

// facetBreakdown groups by a facet column's values directly.
func (e *Engine) facetBreakdown(col table.Column, mask []bool, f schema.Facet, dimension string) (*GroupBreakdown, error) {
	groupColName, ok := e.resolver.Resolve(f)
	if !ok {
		return &GroupBreakdown{Dimension: dimension, Insufficient: true}, nil
	}
	groupCol, ok := e.tbl.Column(groupColName)
	if !ok {
		return &GroupBreakdown{Dimension: dimension, Insufficient: true}, nil
	}

	return e.crossTabulate(col, mask, dimension, e.columnLabeler(groupCol), nil), nil
}

// ageBreakdown groups by fixed age buckets in bucket order.
func (e *Engine) ageBreakdown(col table.Column, mask []bool) (*GroupBreakdown, error) {
	ageColName, ok := e.resolver.Resolve(schema.FacetAge)
	if !ok {
		return &GroupBreakdown{Dimension: "age", Insufficient: true}, nil
	}
	ageCol, ok := e.tbl.Column(ageColName)
	if !ok {
		return &GroupBreakdown{Dimension: "age", Insufficient: true}, nil
	}

	labels := ageBucketLabels(ageCol)
	order := make([]string, len(DefaultAgeBuckets))
	for i, b := range DefaultAgeBuckets {
		order[i] = b.Label
	}

	return e.crossTabulate(col, mask, "age", func(row int) string {
		return labels[row]
	}, order), nil
}

// districtBreakdown groups by district, keeping only the most frequent
// districts in the filtered population so the chart stays readable.
func (e *Engine) districtBreakdown(col table.Column, mask []bool) (*GroupBreakdown, error) {
	distColName, ok := e.resolver.Resolve(schema.FacetDistrict)
	if !ok {
		return &GroupBreakdown{Dimension: "district", Insufficient: true}, nil
	}
	distCol, ok := e.tbl.Column(distColName)
	if !ok {
		return &GroupBreakdown{Dimension: "district", Insufficient: true}, nil
	}

	top := e.topCategories(distCol, mask, topDistrictCount)
	topSet := make(map[string]bool, len(top))
	for _, d := range top {
		topSet[d] = true
	}

	label := func(row int) string {
		value := distCol.Value(row)
		if !topSet[value] {
			return ""
		}
		return value
	}
	return e.crossTabulate(col, mask, "district", label, top), nil
}

// TopDistricts returns the n most common districts in the filtered
// population with their counts, for the overview chart. Nil when the
// district facet did not resolve.
func (e *Engine) TopDistricts(sel *Selection, n int) []AnswerCount {
	distColName, ok := e.resolver.Resolve(schema.FacetDistrict)
	if !ok {
		return nil
	}
	distCol, ok := e.tbl.Column(distColName)
	if !ok {
		return nil
	}

	answers := e.countAnswers(distCol, e.buildMask(sel))
	if n > 0 && len(answers) > n {
		answers = answers[:n]
	}
	return answers
}

// columnLabeler adapts a column into a group label source, mapping null
// markers to "no group".
func (e *Engine) columnLabeler(col table.Column) groupLabelFunc {
	return func(row int) string {
		value := col.Value(row)
		if value == e.nullMarker {
			return ""
		}
		return value
	}
}

// resolveColumn maps a requested name to a real column: exact match first,
// then the first column containing the name as a substring. Codebook
// renaming appends labels to raw field names, so fragment lookup lets
// callers keep using the raw name.
func (e *Engine) resolveColumn(name string) (string, error) {
	if _, ok := e.tbl.Column(name); ok {
		return name, nil
	}
	for _, col := range e.tbl.ColumnNames() {
		if strings.Contains(col, name) {
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}
