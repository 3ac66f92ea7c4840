// Package diag collects non-fatal anomalies found while loading and evaluating span tables.
//
// A Collection is an explicit accumulator: stages receive it as an argument and append to
// it, and the caller reports its contents when the run ends. Nothing in here aborts a run.
package diag

import (
	"fmt"
	"sort"
)

// Kind classifies a recorded anomaly.
type Kind string

const (
	KindMalformedRow      Kind = "malformed_row"
	KindEmptyFile         Kind = "empty_file"
	KindMissingText       Kind = "missing_text"
	KindUnmatchedDocument Kind = "unmatched_document"
	KindSentenceFailed    Kind = "sentence_failed"
)

// Entry is one recorded anomaly.
type Entry struct {
	Kind    Kind
	Subject string // file name, document id or row reference
	Detail  string
}

func (e Entry) String() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Subject, e.Detail)
}

// Collection accumulates entries in insertion order. The zero value is ready to use.
// A nil *Collection discards everything, so stages can be called without one.
// It is not safe for concurrent use.
type Collection struct {
	entries []Entry
}

// Add records an anomaly.
func (c *Collection) Add(kind Kind, subject, detail string) {
	if c == nil {
		return
	}
	c.entries = append(c.entries, Entry{Kind: kind, Subject: subject, Detail: detail})
}

// Addf records an anomaly with a formatted detail.
func (c *Collection) Addf(kind Kind, subject, format string, args ...any) {
	c.Add(kind, subject, fmt.Sprintf(format, args...))
}

// Merge appends all entries of other.
func (c *Collection) Merge(other *Collection) {
	if c == nil || other == nil {
		return
	}
	c.entries = append(c.entries, other.entries...)
}

// Entries returns the recorded entries in insertion order.
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of recorded entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Subjects returns the subjects recorded under kind, in insertion order.
func (c *Collection) Subjects(kind Kind) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, e := range c.entries {
		if e.Kind == kind {
			out = append(out, e.Subject)
		}
	}
	return out
}

// Counts returns the number of entries per kind.
func (c *Collection) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	if c == nil {
		return counts
	}
	for _, e := range c.entries {
		counts[e.Kind]++
	}
	return counts
}

// Kinds returns the recorded kinds sorted by name.
func (c *Collection) Kinds() []Kind {
	counts := c.Counts()
	kinds := make([]Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
