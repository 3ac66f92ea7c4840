// Package span holds the in-memory span tables compared by the evaluator: one Span per
// predicted or gold entity mention, grouped into Sets read from the formatted CSV tables.
package span

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Span is one predicted or labeled entity mention.
//
// Start and End are half-open, zero-based offsets into the source text counted in
// Unicode code points. Empty strings mean "absent" for the optional fields.
type Span struct {
	Doc         string
	Start       int
	End         int
	Entity      string
	EntityLower string
	CUI         string
	TUI         string
	Sentence    string
	Semantic    string

	// Extra holds every input column that has no dedicated field, keyed by column name.
	Extra map[string]string
}

// Len returns the number of code points covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Lower returns the lowercase form of the entity text, deriving it when the table
// did not provide one.
func (s Span) Lower() string {
	if s.EntityLower != "" {
		return s.EntityLower
	}
	return lower(s.Entity)
}

var lowerCaser = cases.Lower(language.Und)

func lower(text string) string {
	return lowerCaser.String(text)
}

// Key identifies a span for deduplication.
type Key struct {
	Doc   string
	Start int
	End   int
	CUI   string
}

// KeyFunc derives a deduplication key from a span.
type KeyFunc func(Span) Key

// SpanKey keys a span by (document, start, end).
func SpanKey(s Span) Key {
	return Key{Doc: s.Doc, Start: s.Start, End: s.End}
}

// ConceptKey keys a span by (document, start, end, concept id).
func ConceptKey(s Span) Key {
	return Key{Doc: s.Doc, Start: s.Start, End: s.End, CUI: s.CUI}
}

// Compare orders spans by document, then start, then end.
func Compare(a, b Span) int {
	if c := cmp.Compare(a.Doc, b.Doc); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.End, b.End)
}

// Set is an ordered sequence of spans from one source (predictions or labels).
type Set []Span

// Dedupe returns the spans with duplicate keys removed. The first span seen for each key
// is kept and input order is preserved, so Dedupe is deterministic and idempotent.
func (s Set) Dedupe(key KeyFunc) Set {
	seen := make(map[Key]struct{}, len(s))
	out := make(Set, 0, len(s))
	for _, sp := range s {
		k := key(sp)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, sp)
	}
	return out
}

// Sorted returns a copy sorted by (document, start, end). Ties keep their input order.
func (s Set) Sorted() Set {
	out := slices.Clone(s)
	slices.SortStableFunc(out, Compare)
	return out
}

// IsSorted reports whether the set is ordered by (document, start, end).
func (s Set) IsSorted() bool {
	return slices.IsSortedFunc(s, Compare)
}

// Docs returns the distinct document ids in ascending order.
func (s Set) Docs() []string {
	seen := make(map[string]struct{})
	var docs []string
	for _, sp := range s {
		if _, ok := seen[sp.Doc]; ok {
			continue
		}
		seen[sp.Doc] = struct{}{}
		docs = append(docs, sp.Doc)
	}
	slices.Sort(docs)
	return docs
}

// ByDoc groups the spans by document id, keeping input order within each group.
func (s Set) ByDoc() map[string]Set {
	groups := make(map[string]Set)
	for _, sp := range s {
		groups[sp.Doc] = append(groups[sp.Doc], sp)
	}
	return groups
}

// Filter returns the spans for which keep reports true.
func (s Set) Filter(keep func(Span) bool) Set {
	out := make(Set, 0, len(s))
	for _, sp := range s {
		if keep(sp) {
			out = append(out, sp)
		}
	}
	return out
}
