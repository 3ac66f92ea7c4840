// Package score turns match counts into precision, recall and F-measure.
package score

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jamesainslie/go-nereval/match"
)

// ErrUndefinedMetric indicates a metric whose denominator is zero.
var ErrUndefinedMetric = errors.New("score: undefined metric")

// Metric is a ratio that may be undefined because its denominator is zero.
type Metric struct {
	Value   float64
	Defined bool
}

func defined(v float64) Metric { return Metric{Value: v, Defined: true} }

// String formats the value with full precision, or "undefined".
func (m Metric) String() string {
	if !m.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64)
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives int
	Predictions   int
	Labels        int
	Precision     Metric
	Recall        Metric
	FMeasure      Metric
}

// FalsePositives returns the number of predictions not counted as true positives.
func (m Metrics) FalsePositives() int { return m.Predictions - m.TruePositives }

// FalseNegatives returns the number of labels not counted as true positives.
func (m Metrics) FalseNegatives() int { return m.Labels - m.TruePositives }

// Compute derives the metrics from match counts:
//
//	precision = tp / predictions
//	recall    = tp / labels
//	f         = 2 * precision * recall / (precision + recall)
//
// A zero denominator leaves the metric undefined rather than zero. F-measure is undefined
// when either input is undefined or when precision + recall is zero.
func Compute(c match.Counts) Metrics {
	m := Metrics{
		TruePositives: c.TruePositives,
		Predictions:   c.Predictions,
		Labels:        c.Labels,
	}

	if c.Predictions > 0 {
		m.Precision = defined(float64(c.TruePositives) / float64(c.Predictions))
	}
	if c.Labels > 0 {
		m.Recall = defined(float64(c.TruePositives) / float64(c.Labels))
	}
	if m.Precision.Defined && m.Recall.Defined && m.Precision.Value+m.Recall.Value > 0 {
		p, r := m.Precision.Value, m.Recall.Value
		m.FMeasure = defined(2 * p * r / (p + r))
	}
	return m
}

// Err reports every undefined metric, each wrapping ErrUndefinedMetric.
// It returns nil when all three metrics are defined.
func (m Metrics) Err() error {
	var errs []error
	if !m.Precision.Defined {
		errs = append(errs, fmt.Errorf("%w: precision (0 predictions)", ErrUndefinedMetric))
	}
	if !m.Recall.Defined {
		errs = append(errs, fmt.Errorf("%w: recall (0 labels)", ErrUndefinedMetric))
	}
	if !m.FMeasure.Defined {
		errs = append(errs, fmt.Errorf("%w: f-measure (precision + recall is 0 or undefined)", ErrUndefinedMetric))
	}
	return errors.Join(errs...)
}
