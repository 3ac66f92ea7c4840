// Package sentence splits source documents into sentences and fills the sentence and
// entity columns of span tables from the document text.
package sentence

import (
	"context"
	"sort"
)

// Sentence is a sentence with offsets into its document. Start and End are half-open rune
// offsets, and Text equals the document runes in [Start, End).
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Contains reports whether the rune offset pos falls inside the sentence.
func (s Sentence) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// Splitter splits a document into sentences ordered by Start.
type Splitter interface {
	Split(ctx context.Context, text string) ([]Sentence, error)
}

// SplitterFunc adapts a function to the Splitter interface.
type SplitterFunc func(ctx context.Context, text string) ([]Sentence, error)

// Split calls f.
func (f SplitterFunc) Split(ctx context.Context, text string) ([]Sentence, error) {
	return f(ctx, text)
}

// Locate returns the sentence containing the rune offset pos. sents must be ordered by
// Start and must not overlap.
func Locate(sents []Sentence, pos int) (Sentence, bool) {
	i := sort.Search(len(sents), func(i int) bool { return sents[i].End > pos })
	if i < len(sents) && sents[i].Contains(pos) {
		return sents[i], true
	}
	return Sentence{}, false
}
