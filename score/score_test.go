package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-nereval/match"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		counts        match.Counts
		wantPrecision Metric
		wantRecall    Metric
		wantF         Metric
	}{
		{
			name:          "perfect",
			counts:        match.Counts{TruePositives: 3, Predictions: 3, Labels: 3},
			wantPrecision: Metric{Value: 1, Defined: true},
			wantRecall:    Metric{Value: 1, Defined: true},
			wantF:         Metric{Value: 1, Defined: true},
		},
		{
			name:          "one of two predictions",
			counts:        match.Counts{TruePositives: 1, Predictions: 2, Labels: 1},
			wantPrecision: Metric{Value: 0.5, Defined: true},
			wantRecall:    Metric{Value: 1, Defined: true},
			wantF:         Metric{Value: 2.0 / 3.0, Defined: true},
		},
		{
			name:       "no predictions",
			counts:     match.Counts{TruePositives: 0, Predictions: 0, Labels: 1},
			wantRecall: Metric{Value: 0, Defined: true},
		},
		{
			name:          "no labels",
			counts:        match.Counts{TruePositives: 0, Predictions: 4, Labels: 0},
			wantPrecision: Metric{Value: 0, Defined: true},
		},
		{
			name:          "nothing matched",
			counts:        match.Counts{TruePositives: 0, Predictions: 4, Labels: 2},
			wantPrecision: Metric{Value: 0, Defined: true},
			wantRecall:    Metric{Value: 0, Defined: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.counts)
			assert.Equal(t, tt.wantPrecision.Defined, got.Precision.Defined)
			assert.InDelta(t, tt.wantPrecision.Value, got.Precision.Value, 1e-9)
			assert.Equal(t, tt.wantRecall.Defined, got.Recall.Defined)
			assert.InDelta(t, tt.wantRecall.Value, got.Recall.Value, 1e-9)
			assert.Equal(t, tt.wantF.Defined, got.FMeasure.Defined)
			assert.InDelta(t, tt.wantF.Value, got.FMeasure.Value, 1e-9)
		})
	}
}

func TestCompute_RatiosWithinUnitInterval(t *testing.T) {
	for tp := 0; tp <= 5; tp++ {
		for preds := tp; preds <= 6; preds++ {
			for labels := tp; labels <= 6; labels++ {
				if preds == 0 || labels == 0 {
					continue
				}
				m := Compute(match.Counts{TruePositives: tp, Predictions: preds, Labels: labels})
				require.True(t, m.Precision.Defined)
				require.True(t, m.Recall.Defined)
				assert.GreaterOrEqual(t, m.Precision.Value, 0.0)
				assert.LessOrEqual(t, m.Precision.Value, 1.0)
				assert.GreaterOrEqual(t, m.Recall.Value, 0.0)
				assert.LessOrEqual(t, m.Recall.Value, 1.0)
				assert.Equal(t, tp > 0, m.FMeasure.Defined, "f-measure undefined iff precision+recall is 0")
			}
		}
	}
}

func TestMetrics_Err(t *testing.T) {
	ok := Compute(match.Counts{TruePositives: 1, Predictions: 1, Labels: 1})
	assert.NoError(t, ok.Err())

	undefined := Compute(match.Counts{Labels: 1})
	err := undefined.Err()
	require.ErrorIs(t, err, ErrUndefinedMetric)
	assert.Contains(t, err.Error(), "precision")
	assert.Contains(t, err.Error(), "f-measure")
	assert.NotContains(t, err.Error(), "recall (0 labels)")
}

func TestMetric_String(t *testing.T) {
	assert.Equal(t, "undefined", Metric{}.String())
	assert.Equal(t, "0.5", Metric{Value: 0.5, Defined: true}.String())
}

func TestMetrics_FalseCounts(t *testing.T) {
	m := Compute(match.Counts{TruePositives: 1, Predictions: 2, Labels: 4})
	assert.Equal(t, 1, m.FalsePositives())
	assert.Equal(t, 3, m.FalseNegatives())
}
