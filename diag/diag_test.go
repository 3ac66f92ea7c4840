package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollection_AddAndQuery(t *testing.T) {
	var c Collection
	c.Add(KindEmptyFile, "a.txt", "")
	c.Addf(KindMalformedRow, "preds.csv:4", "start %q is not an integer", "x")
	c.Add(KindEmptyFile, "b.txt", "")

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a.txt", "b.txt"}, c.Subjects(KindEmptyFile))
	assert.Equal(t, map[Kind]int{KindEmptyFile: 2, KindMalformedRow: 1}, c.Counts())
	assert.Equal(t, []Kind{KindEmptyFile, KindMalformedRow}, c.Kinds())
	assert.Equal(t, `malformed_row: preds.csv:4 (start "x" is not an integer)`, c.Entries()[1].String())
}

func TestCollection_NilIsNoop(t *testing.T) {
	var c *Collection
	c.Add(KindEmptyFile, "a.txt", "")
	c.Merge(&Collection{})

	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Entries())
	assert.Empty(t, c.Counts())
}

func TestCollection_Merge(t *testing.T) {
	var a, b Collection
	a.Add(KindEmptyFile, "a.txt", "")
	b.Add(KindMissingText, "doc2", "")
	a.Merge(&b)

	assert.Equal(t, []Entry{
		{Kind: KindEmptyFile, Subject: "a.txt"},
		{Kind: KindMissingText, Subject: "doc2"},
	}, a.Entries())
}
