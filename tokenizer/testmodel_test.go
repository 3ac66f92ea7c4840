package tokenizer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// testPieces is a tiny unigram vocabulary. SentencePiece index = slice index.
var testPieces = []Piece{
	{Piece: "<unk>", Type: PieceUnknown},
	{Piece: "<s>", Type: PieceControl},
	{Piece: "</s>", Type: PieceControl},
	{Piece: "▁He", Score: -1},
	{Piece: "llo", Score: -2},
	{Piece: "▁Hello", Score: -1.5},
	{Piece: "▁world", Score: -2},
	{Piece: "▁", Score: -5},
	{Piece: "H", Score: -8},
	{Piece: "e", Score: -8},
	{Piece: "l", Score: -8},
	{Piece: "o", Score: -8},
	{Piece: ".", Score: -3},
	{Piece: "▁é", Score: -4},
}

func encodeModel(pieces []Piece, modelType ModelType) []byte {
	var b []byte
	for _, p := range pieces {
		var pb []byte
		pb = protowire.AppendTag(pb, fieldPiece, protowire.BytesType)
		pb = protowire.AppendString(pb, p.Piece)
		pb = protowire.AppendTag(pb, fieldScore, protowire.Fixed32Type)
		pb = protowire.AppendFixed32(pb, math.Float32bits(p.Score))
		if p.Type != 0 && p.Type != PieceNormal {
			pb = protowire.AppendTag(pb, fieldType, protowire.VarintType)
			pb = protowire.AppendVarint(pb, uint64(p.Type))
		}
		b = protowire.AppendTag(b, fieldPieces, protowire.BytesType)
		b = protowire.AppendBytes(b, pb)
	}

	var spec []byte
	spec = protowire.AppendTag(spec, 1, protowire.BytesType) // input
	spec = protowire.AppendString(spec, "corpus.txt")
	spec = protowire.AppendTag(spec, fieldModelType, protowire.VarintType)
	spec = protowire.AppendVarint(spec, uint64(modelType))
	b = protowire.AppendTag(b, fieldTrainerSpec, protowire.BytesType)
	b = protowire.AppendBytes(b, spec)

	// normalizer_spec, skipped by the decoder
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0x0a, 0x04, 'n', 'm', 'k', 'c'})
	return b
}

func writeTestModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.model")
	if err := os.WriteFile(path, encodeModel(testPieces, ModelUnigram), 0o600); err != nil {
		t.Fatalf("writing model: %v", err)
	}
	return path
}
