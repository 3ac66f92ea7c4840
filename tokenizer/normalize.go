package tokenizer

import (
	"unicode"
)

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalized is the tokenizer's view of the input text. For each rune of text, starts and
// ends give the half-open rune range of the original text it came from; an inserted ▁ is
// zero-width at the start of the word it precedes.
type normalized struct {
	text   []rune
	starts []int
	ends   []int
}

// normalize prepares text for tokenization following XLM-RoBERTa conventions.
// - Adds dummy prefix (space at start)
// - Replaces spaces with ▁
// - Normalizes whitespace (collapses runs, trims trailing)
func normalize(text string) normalized {
	var out normalized
	needSpace := true // start true to add dummy prefix before first non-space

	pos := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			if len(out.text) > 0 {
				needSpace = true
			}
			pos++
			continue
		}
		if needSpace {
			out.push(sentencePieceSpace, pos, pos)
			needSpace = false
		}
		out.push(r, pos, pos+1)
		pos++
	}
	return out
}

func (n *normalized) push(r rune, start, end int) {
	n.text = append(n.text, r)
	n.starts = append(n.starts, start)
	n.ends = append(n.ends, end)
}

func (n normalized) String() string { return string(n.text) }
