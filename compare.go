package nereval

import (
	"cmp"
	"slices"

	"github.com/jamesainslie/go-nereval/score"
)

// Ranking places one tool's result in a comparison.
type Ranking struct {
	Rank   int // 1-based
	Result *Result
}

// Compare ranks results by F-measure, then precision, then recall, all descending.
// Undefined metrics rank below every defined value; remaining ties keep argument order.
func Compare(results ...*Result) []Ranking {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b *Result) int {
		if c := compareMetric(a.Metrics.FMeasure, b.Metrics.FMeasure); c != 0 {
			return c
		}
		if c := compareMetric(a.Metrics.Precision, b.Metrics.Precision); c != 0 {
			return c
		}
		return compareMetric(a.Metrics.Recall, b.Metrics.Recall)
	})

	rankings := make([]Ranking, len(sorted))
	for i, r := range sorted {
		rankings[i] = Ranking{Rank: i + 1, Result: r}
	}
	return rankings
}

// compareMetric orders a before b when a is the better metric.
func compareMetric(a, b score.Metric) int {
	switch {
	case a.Defined && !b.Defined:
		return -1
	case !a.Defined && b.Defined:
		return 1
	case !a.Defined && !b.Defined:
		return 0
	}
	return cmp.Compare(b.Value, a.Value)
}
