package span

import "errors"

var (
	// ErrMissingColumn indicates a table lacks a required column. The whole table is rejected.
	ErrMissingColumn = errors.New("span: missing required column")

	// ErrInvalidSpan indicates a row whose offsets cannot form a span.
	ErrInvalidSpan = errors.New("span: invalid span")
)
