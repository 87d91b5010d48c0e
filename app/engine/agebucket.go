package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/git-galluppakistan/survey-dashboard/app/table"
)

// AgeBucket is one fixed age range used when grouping by age.
// Max is inclusive.
type AgeBucket struct {
	Label string
	Min   int64
	Max   int64
}

// DefaultAgeBuckets are the dashboard's fixed, ordered age ranges.
var DefaultAgeBuckets = []AgeBucket{
	{Label: "<18", Min: 0, Max: 17},
	{Label: "18-30", Min: 18, Max: 30},
	{Label: "31-45", Min: 31, Max: 45},
	{Label: "46-60", Min: 46, Max: 60},
	{Label: "60+", Min: 61, Max: math.MaxInt64},
}

// bucketLabelForAge returns the bucket label covering the given age.
func bucketLabelForAge(age int64) (string, bool) {
	for _, b := range DefaultAgeBuckets {
		if age >= b.Min && age <= b.Max {
			return b.Label, true
		}
	}
	return "", false
}

// ageBucketLabels derives a row-aligned label slice from a continuous age
// column. Rows with unparseable ages get an empty label and are skipped by
// grouped views.
func ageBucketLabels(col table.Column) []string {
	labels := make([]string, col.Len())

	ints, isInt := col.(table.IntAccessor)
	for i := range labels {
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
		if label, ok := bucketLabelForAge(age); ok {
			labels[i] = label
		}
	}

	return labels
}
