package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/jamesainslie/go-nereval/category"
	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/span"
)

// table is a header plus rows of cells, ready for CSV output.
type table struct {
	header []string
	rows   [][]string
}

// detailColumns lead every span detail table; extra columns follow sorted by name.
var detailColumns = []string{
	span.ColDoc, span.ColStart, span.ColEnd, span.ColEntity, span.ColEntityLower,
	span.ColCUI, span.ColTUI, span.ColSentence, span.ColSemantic,
}

// pairSideColumns are suffixed with _pred or _label in pair tables.
var pairSideColumns = []string{
	span.ColStart, span.ColEnd, span.ColEntity, span.ColEntityLower,
	span.ColCUI, span.ColTUI, span.ColSentence, span.ColSemantic,
}

func pairGroupTable(groups []category.PairGroup) table {
	t := table{header: []string{"Entity_label", "Entity_pred", "Entity_pred_count", "Entity_label_count"}}
	for _, g := range groups {
		t.rows = append(t.rows, []string{g.EntityLabel, g.EntityPred, strconv.Itoa(g.PredCount), strconv.Itoa(g.LabelCount)})
	}
	return t
}

func entityCountTable(counts []category.EntityCount) table {
	t := table{header: []string{span.ColEntity, span.ColCUI, span.ColTUI, "count"}}
	for _, c := range counts {
		t.rows = append(t.rows, []string{c.Entity, c.CUI, c.TUI, strconv.Itoa(c.Count)})
	}
	return t
}

// detailValue returns the cell for a detail column. The sentence column reads the span's
// sentence whatever its input name was.
func detailValue(s span.Span, col string) string {
	if col == span.ColSentence {
		return s.Sentence
	}
	return span.LabelSchema.Value(s, col)
}

func spanTable(set span.Set) table {
	extras := extraColumns(set)
	t := table{header: append(slices.Clone(detailColumns), extras...)}
	for _, s := range set {
		row := make([]string, 0, len(t.header))
		for _, col := range detailColumns {
			row = append(row, detailValue(s, col))
		}
		for _, col := range extras {
			row = append(row, s.Extra[col])
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// pairTable renders join rows: paper, then the prediction side, then the label side.
// Extra columns present on both sides are suffixed like the core columns. A missing side
// is filled with NA.
func pairTable(pairs []match.Pair) table {
	var preds, labels span.Set
	for _, p := range pairs {
		if p.Pred != nil {
			preds = append(preds, *p.Pred)
		}
		if p.Label != nil {
			labels = append(labels, *p.Label)
		}
	}
	predExtras, labelExtras := extraColumns(preds), extraColumns(labels)
	predNames := sideNames(predExtras, labelExtras, "_pred")
	labelNames := sideNames(labelExtras, predExtras, "_label")

	t := table{header: []string{span.ColDoc}}
	for _, col := range pairSideColumns {
		t.header = append(t.header, col+"_pred")
	}
	t.header = append(t.header, predNames...)
	for _, col := range pairSideColumns {
		t.header = append(t.header, col+"_label")
	}
	t.header = append(t.header, labelNames...)

	for _, p := range pairs {
		row := []string{p.Doc}
		row = appendSide(row, p.Pred, predExtras)
		row = appendSide(row, p.Label, labelExtras)
		t.rows = append(t.rows, row)
	}
	return t
}

func appendSide(row []string, s *span.Span, extras []string) []string {
	for _, col := range pairSideColumns {
		if s == nil {
			row = append(row, absentMarker)
			continue
		}
		row = append(row, detailValue(*s, col))
	}
	for _, col := range extras {
		if s == nil {
			row = append(row, absentMarker)
			continue
		}
		row = append(row, s.Extra[col])
	}
	return row
}

// sideNames suffixes the extra columns of one side that the other side also has.
func sideNames(own, other []string, suffix string) []string {
	names := make([]string, len(own))
	for i, col := range own {
		names[i] = col
		if _, found := slices.BinarySearch(other, col); found {
			names[i] = col + suffix
		}
	}
	return names
}

// extraColumns returns the union of extra column names, sorted.
func extraColumns(set span.Set) []string {
	seen := make(map[string]struct{})
	for _, s := range set {
		for k := range s.Extra {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// WriteSpans writes set in the input layout of schema: its dedicated columns (plus Semantic
// when any span has one) followed by every extra column, sorted by name.
func WriteSpans(w io.Writer, set span.Set, schema span.Schema) error {
	columns := slices.Clone(schema.Columns)
	if !slices.Contains(columns, span.ColSemantic) && slices.ContainsFunc(set, func(s span.Span) bool { return s.Semantic != "" }) {
		columns = append(columns, span.ColSemantic)
	}
	extras := extraColumns(set)
	t := table{header: append(slices.Clone(columns), extras...)}
	for _, s := range set {
		row := make([]string, 0, len(t.header))
		for _, col := range columns {
			row = append(row, schema.Value(s, col))
		}
		for _, col := range extras {
			row = append(row, s.Extra[col])
		}
		t.rows = append(t.rows, row)
	}
	return writeCSV(w, t)
}

// WriteSpansFile writes set to path. See WriteSpans.
func WriteSpansFile(path string, set span.Set, schema span.Schema) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return WriteSpans(f, set, schema)
}

func writeCSVFile(path string, t table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return writeCSV(f, t)
}

func writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return err
	}
	return cw.Error()
}
