// Package segment detects sentence boundaries with wtpsplit/SaT ONNX models.
//
// A Segmenter satisfies sentence.Splitter, so it can replace the rule splitter when
// filling sentence columns:
//
//	seg, err := segment.New("model.onnx", "sentencepiece.bpe.model")
//	if err != nil {
//	    return err
//	}
//	defer seg.Close()
//
//	resolver := sentence.NewResolver(seg)
//
// Segmenter is safe for concurrent use. It manages an internal pool of ONNX sessions,
// configurable via WithPoolSize.
//
// Model files are published on HuggingFace:
//   - Model: https://huggingface.co/segment-any-text/sat-1l-sm/resolve/main/model_optimized.onnx
//   - Tokenizer: https://huggingface.co/xlm-roberta-base/resolve/main/sentencepiece.bpe.model
package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"unicode"

	"github.com/jamesainslie/go-nereval/sentence"
	"github.com/jamesainslie/go-nereval/tokenizer"
)

const (
	// maxSeqLen is the maximum sequence length supported by the model.
	// The model supports positions 0-513, so max is 514 tokens.
	maxSeqLen = 512

	// chunkOverlap is the number of overlapping tokens between chunks.
	chunkOverlap = 64
)

// inferer runs the boundary model on one token sequence.
type inferer interface {
	io.Closer
	Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error)
}

// Segmenter detects sentence boundaries using wtpsplit/SaT ONNX models.
type Segmenter struct {
	tokenizer *tokenizer.Tokenizer
	pool      *Pool[inferer]
	threshold float32
	logger    *slog.Logger
}

var _ sentence.Splitter = (*Segmenter)(nil)

// New creates a Segmenter with the specified model files.
func New(modelPath, tokenizerPath string, opts ...Option) (*Segmenter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	tok, err := tokenizer.New(tokenizerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTokenizerFailed, tokenizerPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenizerFailed, err)
	}

	pool, err := NewPool(cfg.poolSize, func() (inferer, error) {
		return NewSession(modelPath)
	})
	if err != nil {
		_ = tok.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	cfg.logger.Debug("segmenter ready", "model", modelPath, "pool_size", pool.Size(), "threshold", cfg.threshold)
	return newSegmenter(tok, pool, cfg), nil
}

func newSegmenter(tok *tokenizer.Tokenizer, pool *Pool[inferer], cfg config) *Segmenter {
	return &Segmenter{
		tokenizer: tok,
		pool:      pool,
		threshold: cfg.threshold,
		logger:    cfg.logger,
	}
}

// IsComplete returns whether text appears to be a complete sentence.
func (s *Segmenter) IsComplete(ctx context.Context, text string) (complete bool, confidence float32, err error) {
	tokens := s.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return false, 0.0, nil
	}

	logits, err := s.getLogits(ctx, tokens)
	if err != nil {
		return false, 0, err
	}

	prob := sigmoid(logits[len(logits)-1])
	return prob > s.threshold, prob, nil
}

// Segment splits text into sentences.
func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	sents, err := s.Split(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(sents))
	for i, sent := range sents {
		out[i] = sent.Text
	}
	return out, nil
}

// Split implements sentence.Splitter. A sentence ends after every token whose boundary
// probability exceeds the threshold; offsets are runes and exclude surrounding whitespace.
func (s *Segmenter) Split(ctx context.Context, text string) ([]sentence.Sentence, error) {
	tokens := s.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	logits, err := s.getLogits(ctx, tokens)
	if err != nil {
		return nil, err
	}

	var boundaries []int
	for i, logit := range logits {
		if sigmoid(logit) > s.threshold {
			boundaries = append(boundaries, tokens[i].End)
		}
	}

	return cut([]rune(text), boundaries), nil
}

// cut splits runes at the given end offsets, trimming whitespace around each sentence.
func cut(runes []rune, boundaries []int) []sentence.Sentence {
	var sents []sentence.Sentence
	start := 0
	emit := func(end int) {
		lo, hi := start, end
		for lo < hi && unicode.IsSpace(runes[lo]) {
			lo++
		}
		for hi > lo && unicode.IsSpace(runes[hi-1]) {
			hi--
		}
		if hi > lo {
			sents = append(sents, sentence.Sentence{Text: string(runes[lo:hi]), Start: lo, End: hi})
		}
		start = end
	}

	for _, end := range boundaries {
		if end > start && end <= len(runes) {
			emit(end)
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return sents
}

// getLogits returns logits for all tokens, chunking if necessary.
func (s *Segmenter) getLogits(ctx context.Context, tokens []tokenizer.TokenInfo) ([]float32, error) {
	session, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(session)

	if len(tokens) <= maxSeqLen {
		return s.inferChunk(ctx, session, tokens)
	}

	// Overlapping chunks; logits in overlap regions are averaged.
	logits := make([]float32, len(tokens))
	counts := make([]int, len(tokens))

	stride := maxSeqLen - chunkOverlap
	for start := 0; start < len(tokens); start += stride {
		end := min(start+maxSeqLen, len(tokens))

		chunkLogits, err := s.inferChunk(ctx, session, tokens[start:end])
		if err != nil {
			return nil, err
		}
		for i, logit := range chunkLogits {
			logits[start+i] += logit
			counts[start+i]++
		}

		if end >= len(tokens) {
			break
		}
	}

	for i := range logits {
		if counts[i] > 1 {
			logits[i] /= float32(counts[i])
		}
	}

	return logits, nil
}

// inferChunk runs inference on a single chunk of tokens.
func (s *Segmenter) inferChunk(ctx context.Context, session inferer, tokens []tokenizer.TokenInfo) ([]float32, error) {
	inputIDs := make([]int64, len(tokens))
	attentionMask := make([]int64, len(tokens))
	for i, t := range tokens {
		inputIDs[i] = int64(t.ID)
		attentionMask[i] = 1
	}

	logits, err := session.Infer(ctx, inputIDs, attentionMask)
	if err != nil {
		return nil, err
	}
	if len(logits) != len(tokens) {
		return nil, fmt.Errorf("expected %d logits, got %d", len(tokens), len(logits))
	}
	return logits, nil
}

// Close releases all resources.
func (s *Segmenter) Close() error {
	var errs []error

	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.tokenizer != nil {
		if err := s.tokenizer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}
