// Package filter restricts a prediction set to the concepts under evaluation.
package filter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jamesainslie/go-nereval/span"
)

// Config selects which predictions survive filtering.
type Config struct {
	// AllowedTypes lists the semantic type codes that are kept.
	AllowedTypes []string `mapstructure:"allowed_types"`
	// ExceptionConcepts are kept regardless of their type code.
	ExceptionConcepts []string `mapstructure:"exception_concepts"`
	ConceptLength     int      `mapstructure:"concept_length"`
	ConceptPrefix     string   `mapstructure:"concept_prefix"`
	// ProblemOnly additionally requires Semantic == ProblemSemantic.
	ProblemOnly     bool   `mapstructure:"problem_only"`
	ProblemSemantic string `mapstructure:"problem_semantic"`
}

// DefaultConfig returns the disorder allow-list: mental or behavioral dysfunction (T048),
// findings (T033) and atrial septal defect (C0018817).
func DefaultConfig() Config {
	return Config{
		AllowedTypes:      []string{"T033", "T048"},
		ExceptionConcepts: []string{"C0018817"},
		ConceptLength:     8,
		ConceptPrefix:     "C",
		ProblemSemantic:   "problem",
	}
}

// Filter applies a Config and an exclusion list to span sets.
type Filter struct {
	cfg        Config
	allowed    map[string]struct{}
	exceptions map[string]struct{}
	excluded   map[string]struct{}
}

// New returns a Filter. Concept ids in excluded are always dropped.
func New(cfg Config, excluded []string) *Filter {
	return &Filter{
		cfg:        cfg,
		allowed:    toSet(cfg.AllowedTypes),
		exceptions: toSet(cfg.ExceptionConcepts),
		excluded:   toSet(excluded),
	}
}

// Config returns the configuration the filter was built with.
func (f *Filter) Config() Config { return f.cfg }

// Excluded returns the exclusion list in ascending order.
func (f *Filter) Excluded() []string {
	out := make([]string, 0, len(f.excluded))
	for id := range f.excluded {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Keep reports whether s passes every filter condition.
func (f *Filter) Keep(s span.Span) bool {
	if !f.validConcept(s.CUI) {
		return false
	}
	_, typed := f.allowed[s.TUI]
	_, exception := f.exceptions[s.CUI]
	if !typed && !exception {
		return false
	}
	if _, ok := f.excluded[s.CUI]; ok {
		return false
	}
	if f.cfg.ProblemOnly && s.Semantic != f.cfg.ProblemSemantic {
		return false
	}
	return true
}

// Apply returns the spans of set that pass Keep, in input order.
func (f *Filter) Apply(set span.Set) span.Set {
	return set.Filter(f.Keep)
}

func (f *Filter) validConcept(id string) bool {
	if id == "" {
		return false
	}
	if f.cfg.ConceptLength > 0 && len(id) != f.cfg.ConceptLength {
		return false
	}
	return strings.HasPrefix(id, f.cfg.ConceptPrefix)
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// ReadExclusionsFile reads an exclusion list from a CSV file with a CUI column.
func ReadExclusionsFile(path string) (ids []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclusions: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return ReadExclusions(f)
}

// ReadExclusions reads the CUI column of a CSV table. Empty cells are skipped.
func ReadExclusions(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CUI (empty exclusion table)", span.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read exclusions header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.TrimPrefix(strings.TrimSpace(name), "\ufeff") == span.ColCUI {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: CUI", span.ErrMissingColumn)
	}

	var ids []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read exclusions: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if id := strings.TrimSpace(rec[col]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
