// Package corpus loads the source texts that span offsets refer to.
package corpus

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-nereval/diag"
)

// ErrDocumentMismatch indicates a file whose header names a different document than its
// file name. Loading stops at the first mismatch.
var ErrDocumentMismatch = errors.New("corpus: document id mismatch")

// Header contains metadata parsed from a text file header.
type Header struct {
	Document string
	Source   string
}

// ParseHeader extracts metadata from leading "# Key: value" comment lines and returns the
// text after them. Text without a header is returned unchanged, so offsets into the body
// are offsets into the document.
func ParseHeader(text string) (Header, string) {
	var h Header
	rest := text
	for strings.HasPrefix(rest, "#") {
		line, after, _ := strings.Cut(rest, "\n")
		rest = after

		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(line, "Document:"); ok {
			h.Document = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		}
	}
	return h, rest
}

// Options controls how a directory is read.
type Options struct {
	// Chunked joins files named <id>_<n>[_<m>].txt into one document <id>, ordered by the
	// numeric parts, each part followed by a single space.
	Chunked bool
	// Ext is the text file extension (default ".txt").
	Ext string
}

// Document is one loaded source text.
type Document struct {
	ID    string
	Text  string
	Parts int
}

// Corpus maps document ids to their texts.
type Corpus map[string]*Document

// Texts returns the document texts keyed by id.
func (c Corpus) Texts() map[string]string {
	out := make(map[string]string, len(c))
	for id, d := range c {
		out[id] = d.Text
	}
	return out
}

// IDs returns the document ids in ascending order.
func (c Corpus) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Load reads every text file in dir. Without chunking a document's id is its file name,
// the value upstream tables use as paper. Empty files are skipped and recorded in diags.
func Load(dir string, opts Options, diags *diag.Collection) (Corpus, error) {
	ext := cmp.Or(opts.Ext, ".txt")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []file
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		f := file{name: entry.Name(), doc: entry.Name()}
		if opts.Chunked {
			f = chunkOf(entry.Name(), ext)
		}
		files = append(files, f)
	}
	slices.SortFunc(files, compareFiles)

	corpus := make(Corpus)
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}

		header, body := ParseHeader(string(data))
		if header.Document != "" && documentOf(header.Document, opts.Chunked) != f.doc {
			return nil, fmt.Errorf("%w: %s declares %q, expected %q", ErrDocumentMismatch, f.name, header.Document, f.doc)
		}

		if strings.TrimSpace(body) == "" {
			diags.Add(diag.KindEmptyFile, f.name, "no text")
			continue
		}

		d, ok := corpus[f.doc]
		if !ok {
			d = &Document{ID: f.doc}
			corpus[f.doc] = d
		}
		if opts.Chunked {
			d.Text += body + " "
		} else {
			d.Text = body
		}
		d.Parts++
	}

	return corpus, nil
}

type file struct {
	name  string
	doc   string
	parts []int // numeric chunk suffixes
}

// chunkOf splits "<id>_<n>[_<m>].ext" into its document id and chunk numbers. Names
// without numeric suffixes form a single-part document named after the file stem.
func chunkOf(name, ext string) file {
	stem := strings.TrimSuffix(name, ext)
	fields := strings.Split(stem, "_")

	f := file{name: name, doc: fields[0]}
	for _, s := range fields[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return file{name: name, doc: stem}
		}
		f.parts = append(f.parts, n)
	}
	return f
}

func documentOf(declared string, chunked bool) string {
	if !chunked {
		return declared
	}
	id, _, _ := strings.Cut(declared, "_")
	return id
}

func compareFiles(a, b file) int {
	if c := cmp.Compare(a.doc, b.doc); c != 0 {
		return c
	}
	if c := slices.Compare(a.parts, b.parts); c != 0 {
		return c
	}
	return cmp.Compare(a.name, b.name)
}
