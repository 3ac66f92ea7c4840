package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-nereval"
	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/score"
)

func result(tool string, c match.Counts) *nereval.Result {
	return &nereval.Result{Tool: tool, Counts: c, Metrics: score.Compute(c), Diagnostics: &diag.Collection{}}
}

func TestReport_WriteTo(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	res := result("clamp", match.Counts{TruePositives: 1, Predictions: 2, Labels: 1})
	res.Diagnostics.Add(diag.KindUnmatchedDocument, "9.txt", "labels without predictions")

	loading := &diag.Collection{}
	loading.Add(diag.KindMalformedRow, "preds.csv:4", "bad start")

	r := New(res, start, start.Add(90*time.Second), loading)
	r.Files = []string{"out/clamp_true_positive.csv"}

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "clamp results\n"))
	assert.Contains(t, out, "Run id = "+r.RunID.String())
	assert.Contains(t, out, "Start time = 09:05:07")
	assert.Contains(t, out, "End time = 09:06:37")
	assert.Contains(t, out, "Number of true positives = 1\n")
	assert.Contains(t, out, "Number of positive labels = 1\n")
	assert.Contains(t, out, "Number of positive predictions = 2\n")
	assert.Contains(t, out, "Precision = 0.5\n")
	assert.Contains(t, out, "Recall = 1\n")
	assert.Contains(t, out, "F-Measure = 0.6666666666666666\n")
	assert.Contains(t, out, "malformed_row = 1")
	assert.Contains(t, out, "unmatched_document = 1")
	assert.Contains(t, out, "out/clamp_true_positive.csv")
}

func TestReport_UndefinedMetrics(t *testing.T) {
	res := result("ctakes", match.Counts{Labels: 1})
	res.Filtered = true
	now := time.Now()

	var buf bytes.Buffer
	_, err := New(res, now, now, nil).WriteTo(&buf)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(buf.String(), "filtered ctakes results\n"))
	assert.Contains(t, buf.String(), "Precision = undefined (division by zero)")
	assert.Contains(t, buf.String(), "Recall = 0\n")
	assert.NotContains(t, buf.String(), "Diagnostics:")
}

func TestReport_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	now := time.Now()
	r := New(result("metamap", match.Counts{TruePositives: 1, Predictions: 1, Labels: 1}), now, now, nil)

	require.NoError(t, r.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "F-Measure = 1\n")
}

func TestNew_UniqueRunIDs(t *testing.T) {
	now := time.Now()
	res := result("t", match.Counts{})
	assert.NotEqual(t, New(res, now, now, nil).RunID, New(res, now, now, nil).RunID)
}

func TestWriteRanking(t *testing.T) {
	rankings := nereval.Compare(
		result("ctakes", match.Counts{TruePositives: 1, Predictions: 4, Labels: 2}),
		result("clamp", match.Counts{TruePositives: 2, Predictions: 2, Labels: 2}),
		result("empty", match.Counts{Labels: 2}),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteRanking(&buf, rankings))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "clamp")
	assert.Contains(t, lines[1], "1.0000")
	assert.Contains(t, lines[3], "empty")
	assert.Contains(t, lines[3], "n/a")
}
