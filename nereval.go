package nereval

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jamesainslie/go-nereval/category"
	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/filter"
	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/score"
	"github.com/jamesainslie/go-nereval/span"
)

// Evaluator scores one tool's predictions against a label set.
// It holds no per-run state and is safe for concurrent use.
type Evaluator struct {
	filter *filter.Filter
	logger *slog.Logger
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{
		filter: cfg.filter,
		logger: cfg.logger,
	}
}

// Filtered reports whether predictions are filtered before matching.
func (e *Evaluator) Filtered() bool { return e.filter != nil }

// Result is the outcome of one evaluation.
type Result struct {
	Tool      string
	Filtered  bool
	Counts    match.Counts
	Metrics   score.Metrics
	Match     *match.Result
	Breakdown *category.Breakdown

	// Diagnostics lists documents that appear on only one side.
	Diagnostics *diag.Collection

	Started  time.Time
	Finished time.Time
}

// Evaluate filters preds (when a filter is configured), matches them against labels and
// scores and categorises the result. Neither input is modified.
//
// An error is returned only for spans that could not have come from a table, i.e. a
// negative offset or Start > End. Undefined metrics are not errors.
func (e *Evaluator) Evaluate(tool string, preds, labels span.Set) (*Result, error) {
	if err := errors.Join(validate("prediction", preds), validate("label", labels)); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", tool, err)
	}

	res := &Result{
		Tool:        tool,
		Filtered:    e.filter != nil,
		Diagnostics: &diag.Collection{},
		Started:     time.Now(),
	}
	e.logger.Info("evaluation started", "tool", tool, "predictions", len(preds), "labels", len(labels))

	if e.filter != nil {
		before := len(preds)
		preds = e.filter.Apply(preds)
		e.logger.Debug("predictions filtered", "tool", tool, "kept", len(preds), "dropped", before-len(preds))
	}

	res.Match = match.Match(preds, labels)
	res.Counts = res.Match.Counts
	res.Metrics = score.Compute(res.Counts)
	res.Breakdown = category.Categorize(preds, labels, res.Match)
	recordUnmatchedDocuments(res.Diagnostics, preds, labels)

	res.Finished = time.Now()
	e.logger.Info("evaluation finished",
		"tool", tool,
		"true_positives", res.Counts.TruePositives,
		"predictions", res.Counts.Predictions,
		"labels", res.Counts.Labels,
		"precision", res.Metrics.Precision.String(),
		"recall", res.Metrics.Recall.String(),
		"f_measure", res.Metrics.FMeasure.String(),
		"duration", res.Finished.Sub(res.Started),
	)
	if err := res.Metrics.Err(); err != nil {
		e.logger.Warn("undefined metrics", "tool", tool, "error", err)
	}
	return res, nil
}

func validate(side string, set span.Set) error {
	for i, s := range set {
		if s.Start < 0 || s.End < s.Start {
			return fmt.Errorf("%w: %s %d in %q has range [%d, %d)", span.ErrInvalidSpan, side, i, s.Doc, s.Start, s.End)
		}
	}
	return nil
}

func recordUnmatchedDocuments(diags *diag.Collection, preds, labels span.Set) {
	predDocs := make(map[string]struct{})
	for _, d := range preds.Docs() {
		predDocs[d] = struct{}{}
	}
	labelDocs := make(map[string]struct{})
	for _, d := range labels.Docs() {
		labelDocs[d] = struct{}{}
		if _, ok := predDocs[d]; !ok {
			diags.Add(diag.KindUnmatchedDocument, d, "labels without predictions")
		}
	}
	for _, d := range preds.Docs() {
		if _, ok := labelDocs[d]; !ok {
			diags.Add(diag.KindUnmatchedDocument, d, "predictions without labels")
		}
	}
}
