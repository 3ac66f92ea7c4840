// Package tabular writes evaluation results as CSV or Parquet files.
package tabular

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/go-nereval/category"
	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/span"
)

// Format selects the output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("tabular: unknown format")

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Table names one output table. The file name is [filtered_]<tool>_<table>.<format>.
type Table string

const (
	TruePositive     Table = "true_positive"
	FalsePositive    Table = "false_positive"
	FalseNegative    Table = "false_negative"
	TruePositiveAll  Table = "true_positive_all"
	FalsePositiveAll Table = "false_positive_all"
	FalseNegativeAll Table = "false_negative_all"
	OverlapJoin      Table = "overlap_join"
)

// absentMarker fills the cells of the missing side of a join row.
const absentMarker = "NA"

// Writer writes one tool's tables into a directory.
type Writer struct {
	dir    string
	prefix string
	format Format
}

// NewWriter creates dir if needed. Filtered runs get a "filtered_" prefix.
func NewWriter(dir, tool string, filtered bool, format Format) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	prefix := tool + "_"
	if filtered {
		prefix = "filtered_" + prefix
	}
	return &Writer{dir: dir, prefix: prefix, format: format}, nil
}

// Path returns the file path of table t.
func (w *Writer) Path(t Table) string {
	return filepath.Join(w.dir, w.prefix+string(t)+"."+string(w.format))
}

// WriteAll writes every breakdown table and the overlap join table, returning the
// written paths in a fixed order.
func (w *Writer) WriteAll(b *category.Breakdown, m *match.Result) ([]string, error) {
	steps := []struct {
		table Table
		write func(string) error
	}{
		{TruePositive, func(p string) error { return w.writePairGroups(p, b.TruePositiveGroups) }},
		{FalsePositive, func(p string) error { return w.writeEntityCounts(p, b.FalsePositiveGroups) }},
		{FalseNegative, func(p string) error { return w.writeEntityCounts(p, b.FalseNegativeGroups) }},
		{TruePositiveAll, func(p string) error { return w.writePairs(p, b.TruePositives) }},
		{FalsePositiveAll, func(p string) error { return w.writeSpans(p, b.FalsePositives) }},
		{FalseNegativeAll, func(p string) error { return w.writeSpans(p, b.FalseNegatives) }},
		{OverlapJoin, func(p string) error { return w.writePairs(p, m.Join) }},
	}

	paths := make([]string, 0, len(steps))
	for _, step := range steps {
		path := w.Path(step.table)
		if err := step.write(path); err != nil {
			return paths, fmt.Errorf("write %s: %w", step.table, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) writePairGroups(path string, groups []category.PairGroup) error {
	if w.format == FormatParquet {
		return writeParquet(path, pairGroupRows(groups))
	}
	return writeCSVFile(path, pairGroupTable(groups))
}

func (w *Writer) writeEntityCounts(path string, counts []category.EntityCount) error {
	if w.format == FormatParquet {
		return writeParquet(path, entityCountRows(counts))
	}
	return writeCSVFile(path, entityCountTable(counts))
}

func (w *Writer) writeSpans(path string, set span.Set) error {
	if w.format == FormatParquet {
		rows, err := spanRows(set)
		if err != nil {
			return err
		}
		return writeParquet(path, rows)
	}
	return writeCSVFile(path, spanTable(set))
}

func (w *Writer) writePairs(path string, pairs []match.Pair) error {
	if w.format == FormatParquet {
		rows, err := pairRows(pairs)
		if err != nil {
			return err
		}
		return writeParquet(path, rows)
	}
	return writeCSVFile(path, pairTable(pairs))
}
