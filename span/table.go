package span

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-nereval/diag"
)

// Column names of the formatted prediction and label tables.
const (
	ColStart        = "Start"
	ColEnd          = "End"
	ColDoc          = "paper"
	ColEntity       = "Entity"
	ColEntityLower  = "Entity_lower"
	ColCUI          = "CUI"
	ColTUI          = "TUI"
	ColSemType      = "SemType"
	ColSemantic     = "Semantic"
	ColSentence     = "Sentence"
	ColSentencePred = "Sentence_pred"
)

// Schema describes the columns of one kind of span table.
type Schema struct {
	Name     string
	Columns  []string // dedicated columns, in output order
	Required []string
	Sentence string // column holding the containing sentence
}

// PredictionSchema is the layout written by the per-tool format converters.
var PredictionSchema = Schema{
	Name:     "prediction",
	Columns:  []string{ColStart, ColEnd, ColCUI, ColEntity, ColDoc, ColEntityLower, ColSentencePred, ColTUI},
	Required: []string{ColStart, ColEnd, ColCUI, ColEntity, ColDoc},
	Sentence: ColSentencePred,
}

// LabelSchema is the layout written by the benchmark-term labeller.
var LabelSchema = Schema{
	Name:     "label",
	Columns:  []string{ColEntity, ColEntityLower, ColDoc, ColStart, ColEnd, ColSentence, ColCUI, ColTUI},
	Required: []string{ColEntity, ColDoc, ColStart, ColEnd},
	Sentence: ColSentence,
}

// Value returns the cell for column col of s under this schema.
func (sc Schema) Value(s Span, col string) string {
	switch col {
	case ColStart:
		return strconv.Itoa(s.Start)
	case ColEnd:
		return strconv.Itoa(s.End)
	case ColDoc:
		return s.Doc
	case ColEntity:
		return s.Entity
	case ColEntityLower:
		return s.EntityLower
	case ColCUI:
		return s.CUI
	case ColTUI:
		return s.TUI
	case ColSemantic:
		return s.Semantic
	case sc.Sentence:
		return s.Sentence
	default:
		return s.Extra[col]
	}
}

func (sc Schema) dedicated(col string) bool {
	switch col {
	case ColStart, ColEnd, ColDoc, ColEntity, ColEntityLower, ColCUI, ColTUI, ColSemantic, sc.Sentence:
		return true
	}
	return false
}

// absent lists the cell values read as missing, matching the NA markers the converters emit.
var absent = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "NULL": {}, "null": {},
}

func cell(v string) string {
	if _, ok := absent[strings.TrimSpace(v)]; ok {
		return ""
	}
	return v
}

// ReadFile reads a span table from path. See Read.
func ReadFile(path string, schema Schema, diags *diag.Collection) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", schema.Name, err)
	}
	defer func() { _ = f.Close() }() // read-only

	set, err := read(f, filepath.Base(path), schema, diags)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return set, nil
}

// Read parses a CSV span table with a header row.
//
// A missing required column fails the whole table with ErrMissingColumn. Rows whose
// offsets are not integers, are negative, or have start > end are skipped and recorded in
// diags as diag.KindMalformedRow.
func Read(r io.Reader, schema Schema, diags *diag.Collection) (Set, error) {
	return read(r, schema.Name, schema, diags)
}

func read(r io.Reader, source string, schema Schema, diags *diag.Collection) (Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s table is empty", ErrMissingColumn, schema.Name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range schema.Required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s table has no %q column", ErrMissingColumn, schema.Name, col)
		}
	}

	var set Set
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				diags.Addf(diag.KindMalformedRow, fmt.Sprintf("%s:%d", source, perr.Line), "%v", perr.Err)
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		ref := fmt.Sprintf("%s:%d", source, line)

		if len(record) != len(header) {
			diags.Addf(diag.KindMalformedRow, ref, "%d fields, header has %d", len(record), len(header))
			continue
		}

		sp, err := parseRow(record, header, index, schema)
		if err != nil {
			diags.Add(diag.KindMalformedRow, ref, err.Error())
			continue
		}
		set = append(set, sp)
	}
	return set, nil
}

func parseRow(record, header []string, index map[string]int, schema Schema) (Span, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok {
			return ""
		}
		return cell(record[i])
	}

	start, err := parseOffset(get(ColStart))
	if err != nil {
		return Span{}, fmt.Errorf("%w: start: %w", ErrInvalidSpan, err)
	}
	end, err := parseOffset(get(ColEnd))
	if err != nil {
		return Span{}, fmt.Errorf("%w: end: %w", ErrInvalidSpan, err)
	}
	if start > end {
		return Span{}, fmt.Errorf("%w: start %d after end %d", ErrInvalidSpan, start, end)
	}

	sp := Span{
		Doc:         get(ColDoc),
		Start:       start,
		End:         end,
		Entity:      get(ColEntity),
		EntityLower: get(ColEntityLower),
		CUI:         strings.TrimSpace(get(ColCUI)),
		TUI:         strings.TrimSpace(get(ColTUI)),
		Sentence:    get(schema.Sentence),
		Semantic:    get(ColSemantic),
	}
	if sp.Doc == "" {
		return Span{}, fmt.Errorf("%w: empty %s", ErrInvalidSpan, ColDoc)
	}
	if sp.TUI == "" {
		sp.TUI = strings.TrimSpace(get(ColSemType))
	}
	if sp.EntityLower == "" && sp.Entity != "" {
		sp.EntityLower = lower(sp.Entity)
	}

	for i, col := range header {
		if schema.dedicated(col) || col == "" {
			continue
		}
		if v := cell(record[i]); v != "" {
			if sp.Extra == nil {
				sp.Extra = make(map[string]string)
			}
			sp.Extra[col] = v
		}
	}
	return sp, nil
}

// parseOffset accepts integers and integral floats ("12.0"), which appear when a
// dataframe column held missing values before being written out.
func parseOffset(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("missing")
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative offset %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative offset %v", f)
	}
	return int(f), nil
}
