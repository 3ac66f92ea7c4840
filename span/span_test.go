package span

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-nereval/diag"
)

func TestSet_Dedupe(t *testing.T) {
	set := Set{
		{Doc: "doc1", Start: 10, End: 15, CUI: "C0000001", Entity: "first"},
		{Doc: "doc1", Start: 10, End: 15, CUI: "C0000002", Entity: "second"},
		{Doc: "doc1", Start: 10, End: 15, CUI: "C0000001", Entity: "third"},
		{Doc: "doc2", Start: 10, End: 15, CUI: "C0000001", Entity: "fourth"},
	}

	t.Run("concept key", func(t *testing.T) {
		got := set.Dedupe(ConceptKey)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"first", "second", "fourth"}, entities(got))
	})

	t.Run("span key", func(t *testing.T) {
		got := set.Dedupe(SpanKey)
		require.Len(t, got, 2)
		assert.Equal(t, []string{"first", "fourth"}, entities(got))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, key := range []KeyFunc{SpanKey, ConceptKey} {
			once := set.Dedupe(key)
			assert.Equal(t, once, once.Dedupe(key))
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Set(nil).Dedupe(SpanKey))
	})
}

func TestSet_Sorted(t *testing.T) {
	set := Set{
		{Doc: "b", Start: 1, End: 2},
		{Doc: "a", Start: 5, End: 9},
		{Doc: "a", Start: 5, End: 6},
		{Doc: "a", Start: 0, End: 3},
	}

	got := set.Sorted()

	assert.True(t, got.IsSorted())
	assert.False(t, set.IsSorted(), "Sorted must not reorder the receiver")
	assert.Equal(t, Set{
		{Doc: "a", Start: 0, End: 3},
		{Doc: "a", Start: 5, End: 6},
		{Doc: "a", Start: 5, End: 9},
		{Doc: "b", Start: 1, End: 2},
	}, got)
}

func TestSet_DocsAndByDoc(t *testing.T) {
	set := Set{
		{Doc: "b", Start: 1, End: 2},
		{Doc: "a", Start: 5, End: 9},
		{Doc: "b", Start: 0, End: 3},
	}

	assert.Equal(t, []string{"a", "b"}, set.Docs())
	groups := set.ByDoc()
	assert.Len(t, groups["a"], 1)
	assert.Equal(t, Set{{Doc: "b", Start: 1, End: 2}, {Doc: "b", Start: 0, End: 3}}, groups["b"])
}

func TestSpan_Lower(t *testing.T) {
	assert.Equal(t, "autism spectrum disorder", Span{Entity: "Autism Spectrum Disorder"}.Lower())
	assert.Equal(t, "given", Span{Entity: "ASD", EntityLower: "given"}.Lower())
}

func TestRead_Predictions(t *testing.T) {
	input := `Start,End,CUI,Entity,paper,Entity_lower,Sentence_pred,TUI,Semantic
10,15,C0004352,Autism,p1.txt,autism,Autism is common.,T048,problem
20,23.0,C0018817,ASD,p1.txt,,,T047,
`
	var diags diag.Collection
	set, err := Read(strings.NewReader(input), PredictionSchema, &diags)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Zero(t, diags.Len())

	assert.Equal(t, Span{
		Doc: "p1.txt", Start: 10, End: 15, Entity: "Autism", EntityLower: "autism",
		CUI: "C0004352", TUI: "T048", Sentence: "Autism is common.", Semantic: "problem",
	}, set[0])
	assert.Equal(t, 23, set[1].End)
	assert.Equal(t, "asd", set[1].EntityLower, "missing lowercase form is derived")
	assert.Empty(t, set[1].Sentence)
}

func TestRead_LabelsKeepExtraColumns(t *testing.T) {
	input := `Entity,Entity_lower,paper,Start,End,Sentence,CUI,TUI,NEGATED
Autism,autism,p1.txt,0,6,Autism.,C0004352,T048,False
`
	set, err := Read(strings.NewReader(input), LabelSchema, nil)
	require.NoError(t, err)
	require.Len(t, set, 1)

	assert.Equal(t, "Autism.", set[0].Sentence)
	assert.Equal(t, map[string]string{"NEGATED": "False"}, set[0].Extra)
	assert.Equal(t, "False", LabelSchema.Value(set[0], "NEGATED"))
	assert.Equal(t, "0", LabelSchema.Value(set[0], ColStart))
}

func TestRead_SemTypeFallsBackToTypeCode(t *testing.T) {
	input := `Start,End,CUI,Entity,paper,SemType
0,4,C0000001,pain,p1,sosy
`
	set, err := Read(strings.NewReader(input), PredictionSchema, nil)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "sosy", set[0].TUI)
}

func TestRead_MissingColumn(t *testing.T) {
	input := "Start,End,Entity,paper\n0,1,a,p\n"

	_, err := Read(strings.NewReader(input), PredictionSchema, nil)

	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `"CUI"`)
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), LabelSchema, nil)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestRead_MalformedRowsAreRecorded(t *testing.T) {
	input := `Entity,paper,Start,End
good,p1,0,4
bad,p1,x,4
reversed,p1,9,4
negative,p1,-1,4
short,p1
,,0,1
point,p1,7,7
`
	var diags diag.Collection
	set, err := Read(strings.NewReader(input), LabelSchema, &diags)
	require.NoError(t, err)

	assert.Equal(t, []string{"good", "point"}, entities(set))
	assert.Equal(t, 5, diags.Counts()[diag.KindMalformedRow])
	assert.Equal(t, []string{"label:3", "label:4", "label:5", "label:6", "label:7"}, diags.Subjects(diag.KindMalformedRow))
}

func TestRead_AbsentMarkers(t *testing.T) {
	input := `Start,End,CUI,Entity,paper,TUI
0,4,NA,pain,p1,nan
`
	set, err := Read(strings.NewReader(input), PredictionSchema, nil)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Empty(t, set[0].CUI)
	assert.Empty(t, set[0].TUI)
}

func entities(set Set) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = s.Entity
	}
	return out
}
