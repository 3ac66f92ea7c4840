// Package category partitions predictions and labels into true positives, false
// positives and false negatives, and groups them by entity text for error analysis.
package category

import (
	"cmp"
	"slices"

	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/span"
)

// PairGroup counts how often a predicted surface form was confirmed against a label
// surface form.
type PairGroup struct {
	EntityLabel string
	EntityPred  string
	PredCount   int // confirmed pairs with this (label text, predicted text)
	LabelCount  int // confirmed pairs with this label text, over all predicted texts
}

// EntityCount counts unmatched spans sharing entity text, concept id and type code.
type EntityCount struct {
	Entity string
	CUI    string
	TUI    string
	Count  int
}

// Breakdown is the categorised view of one evaluation.
type Breakdown struct {
	TruePositives       []match.Pair
	TruePositiveGroups  []PairGroup
	FalsePositives      span.Set
	FalsePositiveGroups []EntityCount
	FalseNegatives      span.Set
	FalseNegativeGroups []EntityCount
}

// Categorize splits preds and labels using the confirmed pairs of m.
//
// Both sets are deduplicated by (document, start, end, concept id) first. A prediction is a
// false positive when no confirmed pair has its (document, start, end); a label is a false
// negative under the same rule and false negatives are collapsed to one row per
// (document, start, end). Ungrouped rows are ordered by (document, entity).
func Categorize(preds, labels span.Set, m *match.Result) *Breakdown {
	preds = preds.Dedupe(span.ConceptKey)
	labels = labels.Dedupe(span.ConceptKey)

	matchedPreds := make(map[span.Key]struct{})
	matchedLabels := make(map[span.Key]struct{})
	for _, pr := range m.Pairs {
		matchedPreds[span.SpanKey(*pr.Pred)] = struct{}{}
		matchedLabels[span.SpanKey(*pr.Label)] = struct{}{}
	}

	b := &Breakdown{
		TruePositives:      m.Pairs,
		TruePositiveGroups: GroupPairs(m.Pairs),
	}

	b.FalsePositives = preds.Filter(func(s span.Span) bool {
		_, ok := matchedPreds[span.SpanKey(s)]
		return !ok
	})
	sortByDocEntity(b.FalsePositives)
	b.FalsePositiveGroups = GroupEntities(b.FalsePositives)

	b.FalseNegatives = labels.Filter(func(s span.Span) bool {
		_, ok := matchedLabels[span.SpanKey(s)]
		return !ok
	}).Dedupe(span.SpanKey)
	sortByDocEntity(b.FalseNegatives)
	b.FalseNegativeGroups = GroupEntities(b.FalseNegatives)

	return b
}

// GroupPairs counts confirmed pairs per (label text, predicted text). Groups are sorted by
// label-text total descending, then pair count descending, then by the two texts.
func GroupPairs(pairs []match.Pair) []PairGroup {
	type pairKey struct{ label, pred string }

	counts := make(map[pairKey]int)
	totals := make(map[string]int)
	for _, pr := range pairs {
		if !pr.Confirmed() {
			continue
		}
		counts[pairKey{pr.Label.Entity, pr.Pred.Entity}]++
		totals[pr.Label.Entity]++
	}

	groups := make([]PairGroup, 0, len(counts))
	for k, n := range counts {
		groups = append(groups, PairGroup{
			EntityLabel: k.label,
			EntityPred:  k.pred,
			PredCount:   n,
			LabelCount:  totals[k.label],
		})
	}
	slices.SortFunc(groups, func(a, b PairGroup) int {
		if c := cmp.Compare(b.LabelCount, a.LabelCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PredCount, a.PredCount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.EntityLabel, b.EntityLabel); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityPred, b.EntityPred)
	})
	return groups
}

// GroupEntities counts spans per (entity text, concept id, type code), sorted by count
// descending, then by the key.
func GroupEntities(set span.Set) []EntityCount {
	counts := make(map[EntityCount]int)
	for _, s := range set {
		counts[EntityCount{Entity: s.Entity, CUI: s.CUI, TUI: s.TUI}]++
	}
	return sortedCounts(counts)
}

// Merge sums entity counts from several partial breakdowns, e.g. evaluations run on
// disjoint sets of documents. The result does not depend on argument order.
func Merge(parts ...[]EntityCount) []EntityCount {
	counts := make(map[EntityCount]int)
	for _, part := range parts {
		for _, ec := range part {
			key := ec
			key.Count = 0
			counts[key] += ec.Count
		}
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[EntityCount]int) []EntityCount {
	out := make([]EntityCount, 0, len(counts))
	for k, n := range counts {
		k.Count = n
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b EntityCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Entity, b.Entity); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CUI, b.CUI); c != 0 {
			return c
		}
		return cmp.Compare(a.TUI, b.TUI)
	})
	return out
}

func sortByDocEntity(set span.Set) {
	slices.SortStableFunc(set, func(a, b span.Span) int {
		if c := cmp.Compare(a.Doc, b.Doc); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
}
