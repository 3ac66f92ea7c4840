package tokenizer

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType mirrors sentencepiece.ModelProto.SentencePiece.Type.
type PieceType int32

// Piece types.
const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// ModelType mirrors sentencepiece.TrainerSpec.ModelType.
type ModelType int32

// Model types.
const (
	ModelUnigram ModelType = 1
	ModelBPE     ModelType = 2
	ModelWord    ModelType = 3
	ModelChar    ModelType = 4
)

// ModelProto field numbers used by the decoder.
const (
	fieldPieces      protowire.Number = 1
	fieldTrainerSpec protowire.Number = 2

	fieldPiece protowire.Number = 1
	fieldScore protowire.Number = 2
	fieldType  protowire.Number = 3

	fieldModelType protowire.Number = 3
)

// ErrMalformedModel indicates the model file is not a SentencePiece ModelProto.
var ErrMalformedModel = errors.New("tokenizer: malformed model")

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model represents a loaded SentencePiece model.
type Model struct {
	Pieces []Piece
	Type   ModelType
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a serialized ModelProto. Only the vocabulary and the trainer's model
// type are read; normalizer and self-test sections are skipped.
func ParseModel(data []byte) (*Model, error) {
	m := &Model{Type: ModelUnigram}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldPieces && typ == protowire.BytesType:
			p, err := parsePiece(b)
			if err != nil {
				return fmt.Errorf("piece %d: %w", len(m.Pieces), err)
			}
			m.Pieces = append(m.Pieces, p)
		case num == fieldTrainerSpec && typ == protowire.BytesType:
			return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) error {
				if num == fieldModelType && typ == protowire.VarintType {
					v, _ := protowire.ConsumeVarint(b)
					m.Type = ModelType(v)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(m.Pieces) == 0 {
		return nil, fmt.Errorf("%w: no pieces", ErrMalformedModel)
	}
	return m, nil
}

func parsePiece(data []byte) (Piece, error) {
	p := Piece{Type: PieceNormal}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldPiece && typ == protowire.BytesType:
			v, _ := protowire.ConsumeBytes(b)
			p.Piece = string(v)
		case num == fieldScore && typ == protowire.Fixed32Type:
			v, _ := protowire.ConsumeFixed32(b)
			p.Score = math.Float32frombits(v)
		case num == fieldType && typ == protowire.VarintType:
			v, _ := protowire.ConsumeVarint(b)
			p.Type = PieceType(v)
		}
		return nil
	})
	return p, err
}

// walk calls fn for every top-level field of a message. The byte slice passed to fn
// starts at the field value.
func walk(data []byte, fn func(protowire.Number, protowire.Type, []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformedModel, protowire.ParseError(n))
		}
		data = data[n:]

		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformedModel, num, protowire.ParseError(m))
		}
		if err := fn(num, typ, data[:m]); err != nil {
			return err
		}
		data = data[m:]
	}
	return nil
}
