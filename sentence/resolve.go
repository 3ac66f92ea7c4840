package sentence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/span"
)

// Option configures a Resolver.
type Option func(*config)

type config struct {
	workers int
	logger  *slog.Logger
}

func defaultConfig() config {
	return config{
		workers: 4,
		logger:  slog.Default(),
	}
}

// WithWorkers sets how many documents are processed concurrently (default: 4).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Resolver fills missing entity and sentence text of spans from their source documents.
type Resolver struct {
	splitter Splitter
	workers  int
	logger   *slog.Logger
}

// NewResolver returns a Resolver that splits documents with splitter.
func NewResolver(splitter Splitter, opts ...Option) *Resolver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver{
		splitter: splitter,
		workers:  cfg.workers,
		logger:   cfg.logger,
	}
}

// Resolve returns a copy of set in which empty Entity, EntityLower and Sentence fields are
// filled from docs, keyed by document id. Entity text is the trimmed document text in
// [Start, End); the sentence is the one containing Start.
//
// Documents are processed concurrently but each document's spans are written by one
// goroutine, and the result keeps the input order. A document without text, or one the
// splitter fails on, is recorded in diags and its spans are left as they are. Only
// context cancellation aborts the call.
func (r *Resolver) Resolve(ctx context.Context, set span.Set, docs map[string]string, diags *diag.Collection) (span.Set, error) {
	out := slices.Clone(set)

	indexes := make(map[string][]int)
	var order []string
	for i, s := range out {
		if _, ok := indexes[s.Doc]; !ok {
			order = append(order, s.Doc)
		}
		indexes[s.Doc] = append(indexes[s.Doc], i)
	}
	slices.Sort(order)

	// One collection per document, merged in document order after the wait.
	perDoc := make([]diag.Collection, len(order))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for d, doc := range order {
		g.Go(func() error {
			return r.resolveDoc(ctx, doc, docs, out, indexes[doc], &perDoc[d])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range perDoc {
		diags.Merge(&perDoc[i])
	}
	return out, nil
}

func (r *Resolver) resolveDoc(ctx context.Context, doc string, docs map[string]string, out span.Set, idx []int, diags *diag.Collection) error {
	text, ok := docs[doc]
	if !ok || strings.TrimSpace(text) == "" {
		diags.Add(diag.KindMissingText, doc, "no source text")
		return nil
	}

	runes := []rune(text)
	var sents []Sentence
	needSentences := slices.ContainsFunc(idx, func(i int) bool { return out[i].Sentence == "" })
	if needSentences {
		var err error
		sents, err = r.splitter.Split(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("split %s: %w", doc, errors.Join(ctxErr, err))
			}
			r.logger.Warn("sentence split failed", "doc", doc, "error", err)
			diags.Add(diag.KindSentenceFailed, doc, err.Error())
		}
	}

	for _, i := range idx {
		s := &out[i]
		if s.Entity == "" && s.End <= len(runes) {
			s.Entity = strings.TrimSpace(string(runes[s.Start:s.End]))
		}
		if s.EntityLower == "" && s.Entity != "" {
			s.EntityLower = s.Lower()
		}
		if s.Sentence == "" {
			if sent, ok := Locate(sents, s.Start); ok {
				s.Sentence = sent.Text
			}
		}
	}
	return nil
}
