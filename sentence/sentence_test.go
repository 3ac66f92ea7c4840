package sentence

import (
	"context"
	"errors"
	"testing"

	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/span"
)

func TestRuleSplitter_Split(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Sentence
	}{
		{
			name:  "two sentences",
			input: "Hello world. How are you?",
			want: []Sentence{
				{Text: "Hello world.", Start: 0, End: 12},
				{Text: "How are you?", Start: 13, End: 25},
			},
		},
		{
			name:  "abbreviation",
			input: "Dr. Smith saw it. Then left.",
			want: []Sentence{
				{Text: "Dr. Smith saw it.", Start: 0, End: 17},
				{Text: "Then left.", Start: 18, End: 28},
			},
		},
		{
			name:  "citation abbreviation",
			input: "Kanner et al. described autism. ",
			want: []Sentence{
				{Text: "Kanner et al. described autism.", Start: 0, End: 31},
			},
		},
		{
			name:  "decimal point",
			input: "A score of 2.5 was found",
			want: []Sentence{
				{Text: "A score of 2.5 was found", Start: 0, End: 24},
			},
		},
		{
			name:  "leading whitespace and newlines",
			input: "  First!\n\nSecond.",
			want: []Sentence{
				{Text: "First!", Start: 2, End: 8},
				{Text: "Second.", Start: 10, End: 17},
			},
		},
		{
			name:  "rune offsets",
			input: "Ça va. Très bien.",
			want: []Sentence{
				{Text: "Ça va.", Start: 0, End: 6},
				{Text: "Très bien.", Start: 7, End: 17},
			},
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RuleSplitter{}.Split(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Split() = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRuleSplitter_TextMatchesOffsets(t *testing.T) {
	input := "Über 3 Kinder. Dr. Ärzte sagen: nein!  Ende"
	runes := []rune(input)

	sents, _ := RuleSplitter{}.Split(context.Background(), input)
	for _, s := range sents {
		if got := string(runes[s.Start:s.End]); got != s.Text {
			t.Errorf("text %q does not match offsets [%d,%d) = %q", s.Text, s.Start, s.End, got)
		}
	}
}

func TestLocate(t *testing.T) {
	sents := []Sentence{
		{Text: "a", Start: 0, End: 10},
		{Text: "b", Start: 11, End: 20},
	}

	tests := []struct {
		pos  int
		want string
		ok   bool
	}{
		{0, "a", true},
		{9, "a", true},
		{10, "", false}, // gap between sentences
		{11, "b", true},
		{20, "", false},
	}

	for _, tt := range tests {
		got, ok := Locate(sents, tt.pos)
		if ok != tt.ok || got.Text != tt.want {
			t.Errorf("Locate(%d) = %q, %v; want %q, %v", tt.pos, got.Text, ok, tt.want, tt.ok)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	docs := map[string]string{
		"1.txt": "Autism was noted. Later, ADHD was ruled out.",
		"2.txt": "   ",
	}
	set := span.Set{
		{Doc: "1.txt", Start: 25, End: 29},
		{Doc: "3.txt", Start: 0, End: 4},
		{Doc: "1.txt", Start: 0, End: 6, Entity: "Autism", Sentence: "given"},
		{Doc: "2.txt", Start: 0, End: 2},
	}

	var diags diag.Collection
	r := NewResolver(RuleSplitter{}, WithWorkers(2))
	got, err := r.Resolve(context.Background(), set, docs, &diags)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(got) != len(set) {
		t.Fatalf("expected %d spans, got %d", len(set), len(got))
	}
	if got[0].Entity != "ADHD" || got[0].EntityLower != "adhd" {
		t.Errorf("entity not filled: %+v", got[0])
	}
	if got[0].Sentence != "Later, ADHD was ruled out." {
		t.Errorf("sentence = %q", got[0].Sentence)
	}
	if got[2].Sentence != "given" {
		t.Errorf("existing sentence overwritten: %q", got[2].Sentence)
	}
	if got[1].Entity != "" || got[3].Entity != "" {
		t.Errorf("spans without text must be left untouched: %+v %+v", got[1], got[3])
	}
	if set[0].Entity != "" {
		t.Error("input set was modified")
	}

	missing := diags.Subjects(diag.KindMissingText)
	if len(missing) != 2 || missing[0] != "2.txt" || missing[1] != "3.txt" {
		t.Errorf("missing text = %v, want [2.txt 3.txt]", missing)
	}
}

func TestResolver_SplitterFailure(t *testing.T) {
	failing := SplitterFunc(func(context.Context, string) ([]Sentence, error) {
		return nil, errors.New("model unavailable")
	})
	set := span.Set{{Doc: "a", Start: 0, End: 3}}

	var diags diag.Collection
	got, err := NewResolver(failing).Resolve(context.Background(), set, map[string]string{"a": "abc def"}, &diags)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got[0].Entity != "abc" {
		t.Errorf("entity should still be filled, got %q", got[0].Entity)
	}
	if got[0].Sentence != "" {
		t.Errorf("sentence should stay empty, got %q", got[0].Sentence)
	}
	if n := diags.Counts()[diag.KindSentenceFailed]; n != 1 {
		t.Errorf("expected 1 sentence failure, got %d", n)
	}
}

func TestResolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := SplitterFunc(func(ctx context.Context, _ string) ([]Sentence, error) {
		return nil, ctx.Err()
	})
	set := span.Set{{Doc: "a", Start: 0, End: 1}}

	_, err := NewResolver(blocking).Resolve(ctx, set, map[string]string{"a": "x"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
