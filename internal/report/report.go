// Package report renders the human-readable summary of an evaluation run.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/go-nereval"
	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/score"
)

const clock = "15:04:05"

// Report is one run's summary.
type Report struct {
	RunID       uuid.UUID
	Result      *nereval.Result
	Started     time.Time
	Finished    time.Time
	Diagnostics *diag.Collection
	Files       []string // output tables written by the run
}

// New returns a report with a fresh run id. Diagnostics gathered while loading are merged
// with the result's own.
func New(res *nereval.Result, started, finished time.Time, loading *diag.Collection) *Report {
	all := &diag.Collection{}
	all.Merge(loading)
	all.Merge(res.Diagnostics)
	return &Report{
		RunID:       uuid.New(),
		Result:      res,
		Started:     started,
		Finished:    finished,
		Diagnostics: all,
	}
}

// WriteTo writes the report as text.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	res := r.Result
	m := res.Metrics

	title := res.Tool + " results"
	if res.Filtered {
		title = "filtered " + title
	}
	fmt.Fprintln(&b, title)
	fmt.Fprintf(&b, "Run id = %s\n", r.RunID)
	fmt.Fprintf(&b, "Start time = %s\n", r.Started.Format(clock))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Number of true positives = %d\n", m.TruePositives)
	fmt.Fprintf(&b, "Number of positive labels = %d\n", m.Labels)
	fmt.Fprintf(&b, "Number of positive predictions = %d\n", m.Predictions)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Precision = %s\n", metric(m.Precision))
	fmt.Fprintf(&b, "Recall = %s\n", metric(m.Recall))
	fmt.Fprintf(&b, "F-Measure = %s\n", metric(m.FMeasure))

	if r.Diagnostics.Len() > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Diagnostics:")
		counts := r.Diagnostics.Counts()
		for _, kind := range r.Diagnostics.Kinds() {
			fmt.Fprintf(&b, "  %s = %d\n", kind, counts[kind])
		}
		for _, e := range r.Diagnostics.Entries() {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	if len(r.Files) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Output files:")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "End time = %s\n", r.Finished.Format(clock))

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// WriteFile writes the report to path.
func (r *Report) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	_, err = r.WriteTo(f)
	return err
}

func metric(m score.Metric) string {
	if !m.Defined {
		return "undefined (division by zero)"
	}
	return m.String()
}

// WriteRanking writes a comparison table of several tools, best first.
func WriteRanking(w io.Writer, rankings []nereval.Ranking) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s  %-20s  %8s  %8s  %8s  %6s  %6s  %6s\n", "Rank", "Tool", "F", "P", "R", "TP", "Pred", "Label")
	for _, r := range rankings {
		m := r.Result.Metrics
		fmt.Fprintf(&b, "%-4d  %-20s  %8s  %8s  %8s  %6d  %6d  %6d\n",
			r.Rank, r.Result.Tool, short(m.FMeasure), short(m.Precision), short(m.Recall),
			m.TruePositives, m.Predictions, m.Labels)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func short(m score.Metric) string {
	if !m.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.Value)
}
