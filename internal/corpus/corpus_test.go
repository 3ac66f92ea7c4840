package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/go-nereval/diag"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Header
		wantBody string
	}{
		{
			name:     "with header",
			input:    "# Document: 123\n# Source: https://pubmed.example/123\nAutism was noted.",
			want:     Header{Document: "123", Source: "https://pubmed.example/123"},
			wantBody: "Autism was noted.",
		},
		{
			name:     "no header",
			input:    "Autism was noted.\n# not a header",
			wantBody: "Autism was noted.\n# not a header",
		},
		{
			name:     "leading whitespace kept",
			input:    "# Document: 9\n  Body",
			want:     Header{Document: "9"},
			wantBody: "  Body",
		},
		{
			name:  "header only",
			input: "# Document: 9",
			want:  Header{Document: "9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body := ParseHeader(tt.input)
			if got != tt.want {
				t.Errorf("ParseHeader() header = %+v, want %+v", got, tt.want)
			}
			if body != tt.wantBody {
				t.Errorf("ParseHeader() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestLoad_Whole(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"1.txt":     "First abstract.",
		"2.txt":     "  \n",
		"notes.csv": "ignored",
	})

	var diags diag.Collection
	c, err := Load(dir, Options{}, &diags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ids := c.IDs(); len(ids) != 1 || ids[0] != "1.txt" {
		t.Errorf("IDs() = %v, want [1.txt]", ids)
	}
	if got := c.Texts()["1.txt"]; got != "First abstract." {
		t.Errorf("text = %q", got)
	}
	if empty := diags.Subjects(diag.KindEmptyFile); len(empty) != 1 || empty[0] != "2.txt" {
		t.Errorf("empty files = %v, want [2.txt]", empty)
	}
}

func TestLoad_Chunked(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"77_10.txt": "# Document: 77_10\nlast",
		"77_2.txt":  "second",
		"77_1.txt":  "first",
		"80_1.txt":  "",
		"81.txt":    "whole",
	})

	var diags diag.Collection
	c, err := Load(dir, Options{Chunked: true}, &diags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	doc := c["77"]
	if doc == nil {
		t.Fatalf("missing document 77 in %v", c.IDs())
	}
	if doc.Text != "first second last " {
		t.Errorf("text = %q, want parts in numeric order", doc.Text)
	}
	if doc.Parts != 3 {
		t.Errorf("parts = %d, want 3", doc.Parts)
	}
	if c["81"] == nil {
		t.Error("file without chunk suffix should load as its own document")
	}
	if _, ok := c["80"]; ok {
		t.Error("empty chunk should not create a document")
	}
	if n := diags.Counts()[diag.KindEmptyFile]; n != 1 {
		t.Errorf("expected 1 empty file, got %d", n)
	}
}

func TestLoad_DocumentMismatch(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"77_1.txt": "# Document: 78_1\ntext",
	})

	_, err := Load(dir, Options{Chunked: true}, nil)
	if !errors.Is(err, ErrDocumentMismatch) {
		t.Errorf("expected ErrDocumentMismatch, got %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing"), Options{}, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
