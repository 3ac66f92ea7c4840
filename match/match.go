// Package match aligns predicted spans to gold label spans by character-offset overlap.
//
// Matching runs in two passes. Sweep walks both sorted sets once with two pointers and
// yields the predictions that touch some label of their document. Every such prediction is
// then joined with all labels of the same document, and a pair is confirmed when the start
// of either span lies inside the closed interval of the other (see Overlaps).
//
// At most one true positive is counted per distinct label span, however many predictions
// it absorbs; all confirmed pairs stay visible in Result.Pairs.
package match

import (
	"cmp"
	"slices"

	"github.com/jamesainslie/go-nereval/span"
)

// Draft is a candidate (prediction, label) pair produced by Sweep, as indices into the
// sorted prediction and label sets.
type Draft struct {
	Pred  int
	Label int
}

// Sweep runs the two-pointer document-then-interval sweep over preds and labels, which
// must both be sorted by (document, start, end).
//
// Documents are resynchronised by advancing whichever side has the smaller id. Within a
// document a prediction ending before the label starts advances the prediction, a label
// ending before the prediction starts advances the label, and anything else is recorded
// as a draft that advances the prediction only. The label pointer therefore stays put
// while consecutive predictions overlap it, and predictions are visited in (start, end)
// order. The sweep stops when either side is exhausted.
func Sweep(preds, labels span.Set) []Draft {
	var drafts []Draft
	i, j := 0, 0
	for i < len(labels) && j < len(preds) {
		t, p := labels[i], preds[j]
		switch {
		case t.Doc < p.Doc:
			i++
			continue
		case t.Doc > p.Doc:
			j++
			continue
		}

		switch {
		case p.End < t.Start:
			j++
		case t.End < p.Start:
			i++
		default:
			drafts = append(drafts, Draft{Pred: j, Label: i})
			j++
		}
	}
	return drafts
}

// Overlaps reports whether pred and label are confirmed as matching: the start of one
// lies within the closed interval [start, end] of the other. Spans that merely touch
// (one ends where the other starts) match. The test is symmetric in its arguments.
func Overlaps(pred, label span.Span) bool {
	return (pred.Start >= label.Start && pred.Start <= label.End) ||
		(label.Start >= pred.Start && label.Start <= pred.End)
}

// Pair is one row of the match join table. A nil side is absent.
type Pair struct {
	Doc   string
	Pred  *span.Span
	Label *span.Span
}

// Confirmed reports whether both sides are present.
func (p Pair) Confirmed() bool { return p.Pred != nil && p.Label != nil }

// Counts holds the scalar outcome of a match.
type Counts struct {
	TruePositives int // distinct label spans with at least one confirmed prediction
	Labels        int
	Predictions   int
}

// Result is the outcome of Match.
type Result struct {
	// Predictions and Labels are the inputs after deduplication by (document, start, end),
	// sorted. Pair pointers point into these slices.
	Predictions span.Set
	Labels      span.Set

	// Pairs holds every confirmed (prediction, label) pair ordered by document, then
	// prediction offsets, then label offsets.
	Pairs []Pair

	// Join is the full overlap join table: Pairs followed by one row per unmatched label
	// (absent prediction) and one row per unmatched prediction (absent label), each group
	// in (document, start, end) order.
	Join []Pair

	Counts Counts
}

// Match deduplicates both sets by (document, start, end), sorts them, and aligns them.
// Empty inputs produce an empty result.
func Match(preds, labels span.Set) *Result {
	p := preds.Dedupe(span.SpanKey).Sorted()
	t := labels.Dedupe(span.SpanKey).Sorted()

	res := &Result{
		Predictions: p,
		Labels:      t,
		Counts: Counts{
			Labels:      len(t),
			Predictions: len(p),
		},
	}

	drafted := make(map[int]struct{})
	for _, d := range Sweep(p, t) {
		drafted[d.Pred] = struct{}{}
	}

	labelsByDoc := make(map[string][]int)
	for i := range t {
		labelsByDoc[t[i].Doc] = append(labelsByDoc[t[i].Doc], i)
	}

	predHit := make([]bool, len(p))
	labelHit := make([]bool, len(t))
	for j := range p {
		if _, ok := drafted[j]; !ok {
			continue
		}
		for _, i := range labelsByDoc[p[j].Doc] {
			if !Overlaps(p[j], t[i]) {
				continue
			}
			res.Pairs = append(res.Pairs, Pair{Doc: p[j].Doc, Pred: &p[j], Label: &t[i]})
			predHit[j] = true
			labelHit[i] = true
		}
	}
	slices.SortStableFunc(res.Pairs, comparePairs)

	res.Counts.TruePositives = countLabels(res.Pairs)

	res.Join = slices.Clone(res.Pairs)
	for i := range t {
		if !labelHit[i] {
			res.Join = append(res.Join, Pair{Doc: t[i].Doc, Label: &t[i]})
		}
	}
	for j := range p {
		if !predHit[j] {
			res.Join = append(res.Join, Pair{Doc: p[j].Doc, Pred: &p[j]})
		}
	}
	return res
}

// countLabels counts distinct label spans among confirmed pairs.
func countLabels(pairs []Pair) int {
	seen := make(map[span.Key]struct{}, len(pairs))
	for _, pr := range pairs {
		seen[span.SpanKey(*pr.Label)] = struct{}{}
	}
	return len(seen)
}

func comparePairs(a, b Pair) int {
	if c := span.Compare(*a.Pred, *b.Pred); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Label.Start, b.Label.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.Label.End, b.Label.End)
}
