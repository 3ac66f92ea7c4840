package tokenizer

import "math"

// EncodeIDs returns HuggingFace-compatible token IDs for the input text.
func (t *Tokenizer) EncodeIDs(text string) []int32 {
	tokens := t.Encode(text)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids
}

// Encode tokenizes text using Viterbi algorithm, returning tokens with offsets.
func (t *Tokenizer) Encode(text string) []TokenInfo {
	if text == "" {
		return nil
	}

	norm := normalize(text)
	runes := norm.text
	n := len(runes)
	if n == 0 {
		return nil
	}

	// best[i] = best log probability to tokenize runes[0:i]
	best := make([]float64, n+1)
	// parent[i] = start position of the token ending at position i
	parent := make([]int, n+1)
	// known[i] reports whether the token ending at i is in the vocabulary
	known := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		best[i] = math.Inf(-1)
		parent[i] = -1
	}

	for i := 1; i <= n; i++ {
		maxLen := min(t.maxTokenLen, i)
		for length := 1; length <= maxLen; length++ {
			j := i - length
			if math.IsInf(best[j], -1) {
				continue
			}
			score, exists := t.scores[string(runes[j:i])]
			if !exists {
				continue
			}
			if candidate := best[j] + float64(score); candidate > best[i] {
				best[i] = candidate
				parent[i] = j
				known[i] = true
			}
		}

		// A character no piece covers becomes a single <unk> token.
		if candidate := best[i-1] + t.unkScore; candidate > best[i] {
			best[i] = candidate
			parent[i] = i - 1
			known[i] = false
		}
	}

	var tokens []TokenInfo
	for pos := n; pos > 0; pos = parent[pos] {
		start := parent[pos]
		tokenStr := string(runes[start:pos])

		id := t.unkID
		if known[pos] {
			id = t.spIndexToHFID(t.pieces[tokenStr])
		}

		tokens = append(tokens, TokenInfo{
			ID:    id,
			Text:  tokenStr,
			Start: norm.starts[start],
			End:   norm.ends[pos-1],
		})
	}

	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
	return tokens
}
