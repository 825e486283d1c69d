package ot

// Type identifies the kind of edit an operation carries. The string values
// are fixed: they appear on the wire.
type Type string

const (
	Insert    Type = "insert"
	Delete    Type = "delete"
	Retain    Type = "retain"
	Cursor    Type = "cursor"
	Selection Type = "selection"
)

// Operation is a single edit with identity, authorship and versioning
// metadata. Operations are values: Transform returns adjusted copies and
// never mutates its arguments, so the same operation can safely sit in
// multiple pending contexts. The ID survives any number of transforms.
type Operation struct {
	ID        string   `json:"id"`
	Type      Type     `json:"type"`
	Position  Position `json:"position"`
	Content   string   `json:"content"`
	Length    int      `json:"length,omitempty"`
	UserID    string   `json:"userId"`
	Timestamp int64    `json:"timestamp"`
	Version   int      `json:"version"`
}

// Width is the number of index units the operation occupies: the content
// length for an insert, the deleted length for a delete, zero otherwise.
// A missing length counts as zero.
func (op Operation) Width() int {
	switch op.Type {
	case Insert:
		return len(op.Content)
	case Delete:
		if op.Length < 0 {
			return 0
		}
		return op.Length
	default:
		return 0
	}
}

// Valid reports whether the operation is structurally sound enough to apply.
// Malformed operations are dropped at the boundary, never applied.
func (op Operation) Valid() bool {
	switch op.Type {
	case Insert, Delete, Retain, Cursor, Selection:
	default:
		return false
	}
	if op.ID == "" || op.UserID == "" {
		return false
	}
	return op.Position.Line >= 0 && op.Position.Column >= 0
}

// span returns the index-space interval [start, end) a delete removes.
// The position marks the end of the deleted text (backward-delete caret
// semantics), so the span extends Length units to the left, clamped at 0.
func (op Operation) span() (start, end int) {
	end = op.Position.Index()
	start = end - op.Width()
	if start < 0 {
		start = 0
	}
	return start, end
}

// shifted returns a copy of the operation moved by offset index units.
func (op Operation) shifted(offset int) Operation {
	op.Position = op.Position.Adjust(offset)
	return op
}
