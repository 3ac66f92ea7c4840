package sentence

import (
	"context"
	"regexp"
	"unicode"
)

// Common abbreviations that shouldn't end sentences
var abbreviations = regexp.MustCompile(`(?i)\b(Mr|Mrs|Ms|Dr|Prof|Sr|Jr|vs|etc|al|Fig|Figs|approx|i\.e|e\.g|U\.S|U\.K)\.$`)

// RuleSplitter splits at sentence-ending punctuation followed by whitespace or end of
// text. Common abbreviations do not end a sentence.
type RuleSplitter struct{}

// Split implements Splitter. It never fails.
func (RuleSplitter) Split(_ context.Context, text string) ([]Sentence, error) {
	return splitRules(text), nil
}

func splitRules(text string) []Sentence {
	runes := []rune(text)
	n := len(runes)

	var sentences []Sentence
	start := skipSpace(runes, 0)

	for i := start; i < n; i++ {
		ch := runes[i]
		if ch != '.' && ch != '?' && ch != '!' {
			continue
		}
		if i+1 < n && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if ch == '.' && abbreviations.MatchString(string(runes[start:i+1])) {
			continue
		}

		sentences = append(sentences, newSentence(runes, start, i+1))
		start = skipSpace(runes, i+1)
		i = start - 1
	}

	// Handle remaining text without terminal punctuation
	if start < n {
		end := n
		for end > start && unicode.IsSpace(runes[end-1]) {
			end--
		}
		if end > start {
			sentences = append(sentences, newSentence(runes, start, end))
		}
	}

	return sentences
}

func newSentence(runes []rune, start, end int) Sentence {
	return Sentence{Text: string(runes[start:end]), Start: start, End: end}
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
