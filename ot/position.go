package ot

// MaxLineLength is the column bound assumed by the position encoding. The
// codec packs (line, column) into a single integer as line*MaxLineLength +
// column, so columns at or beyond the bound are clamped. Lines longer than
// this are not supported by the index arithmetic.
const MaxLineLength = 10000

// Position is a (line, column) location inside a document. Both fields are
// zero-based and never negative.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Index encodes the position as a single sortable integer, line-major.
func (p Position) Index() int {
	line, col := p.Line, p.Column
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	if col >= MaxLineLength {
		col = MaxLineLength - 1
	}
	return line*MaxLineLength + col
}

// FromIndex is the exact inverse of Index for any valid position.
func FromIndex(idx int) Position {
	if idx < 0 {
		idx = 0
	}
	return Position{
		Line:   idx / MaxLineLength,
		Column: idx % MaxLineLength,
	}
}

// Adjust shifts the position by offset index units, clamping at the document
// start so the result is never negative.
func (p Position) Adjust(offset int) Position {
	idx := p.Index() + offset
	if idx < 0 {
		idx = 0
	}
	return FromIndex(idx)
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	return p.Index() < q.Index()
}
