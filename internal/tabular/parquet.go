package tabular

import (
	"encoding/json"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/jamesainslie/go-nereval/category"
	"github.com/jamesainslie/go-nereval/match"
	"github.com/jamesainslie/go-nereval/span"
)

// PairGroupRow is the Parquet schema of the grouped true-positive table.
type PairGroupRow struct {
	EntityLabel      string `parquet:"Entity_label"`
	EntityPred       string `parquet:"Entity_pred"`
	EntityPredCount  int64  `parquet:"Entity_pred_count"`
	EntityLabelCount int64  `parquet:"Entity_label_count"`
}

// EntityCountRow is the Parquet schema of the grouped false-positive and false-negative
// tables.
type EntityCountRow struct {
	Entity string `parquet:"Entity"`
	CUI    string `parquet:"CUI"`
	TUI    string `parquet:"TUI"`
	Count  int64  `parquet:"count"`
}

// SpanRow is the Parquet schema of span detail tables.
type SpanRow struct {
	Paper       string `parquet:"paper"`
	Start       int64  `parquet:"Start"`
	End         int64  `parquet:"End"`
	Entity      string `parquet:"Entity"`
	EntityLower string `parquet:"Entity_lower"`
	CUI         string `parquet:"CUI"`
	TUI         string `parquet:"TUI"`
	Sentence    string `parquet:"Sentence"`
	Semantic    string `parquet:"Semantic"`
	Extra       string `parquet:"extra"` // JSON object
}

// PairRow is the Parquet schema of pair detail tables. A nil side is absent.
type PairRow struct {
	Paper string   `parquet:"paper"`
	Pred  *SpanRow `parquet:"pred,optional"`
	Label *SpanRow `parquet:"label,optional"`
}

func writeParquet[Row any](path string, rows []Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

func pairGroupRows(groups []category.PairGroup) []PairGroupRow {
	rows := make([]PairGroupRow, len(groups))
	for i, g := range groups {
		rows[i] = PairGroupRow{
			EntityLabel:      g.EntityLabel,
			EntityPred:       g.EntityPred,
			EntityPredCount:  int64(g.PredCount),
			EntityLabelCount: int64(g.LabelCount),
		}
	}
	return rows
}

func entityCountRows(counts []category.EntityCount) []EntityCountRow {
	rows := make([]EntityCountRow, len(counts))
	for i, c := range counts {
		rows[i] = EntityCountRow{Entity: c.Entity, CUI: c.CUI, TUI: c.TUI, Count: int64(c.Count)}
	}
	return rows
}

func spanRow(s span.Span) (SpanRow, error) {
	extra := "{}"
	if len(s.Extra) > 0 {
		b, err := json.Marshal(s.Extra)
		if err != nil {
			return SpanRow{}, fmt.Errorf("marshal extra columns: %w", err)
		}
		extra = string(b)
	}
	return SpanRow{
		Paper:       s.Doc,
		Start:       int64(s.Start),
		End:         int64(s.End),
		Entity:      s.Entity,
		EntityLower: s.EntityLower,
		CUI:         s.CUI,
		TUI:         s.TUI,
		Sentence:    s.Sentence,
		Semantic:    s.Semantic,
		Extra:       extra,
	}, nil
}

func spanRows(set span.Set) ([]SpanRow, error) {
	rows := make([]SpanRow, len(set))
	for i, s := range set {
		row, err := spanRow(s)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func pairRows(pairs []match.Pair) ([]PairRow, error) {
	rows := make([]PairRow, len(pairs))
	for i, p := range pairs {
		rows[i].Paper = p.Doc
		for _, side := range []struct {
			src *span.Span
			dst **SpanRow
		}{{p.Pred, &rows[i].Pred}, {p.Label, &rows[i].Label}} {
			if side.src == nil {
				continue
			}
			row, err := spanRow(*side.src)
			if err != nil {
				return nil, err
			}
			*side.dst = &row
		}
	}
	return rows, nil
}
