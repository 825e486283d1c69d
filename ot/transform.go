// Package ot implements the operational-transform algebra that lets
// concurrent edits from independent replicas converge: given two operations
// generated against the same base document, Transform derives the adjusted
// pair so that applying either ordering yields the same text.
package ot

// Transform derives the bottom two sides of the OT diamond, transforming the
// concurrent pair (a, b) into (a', b'). It is pure and total: unknown or
// positional no-op types (retain, cursor, selection) pass through unchanged,
// missing lengths count as zero, and no input can make it fail.
func Transform(a, b Operation) (Operation, Operation) {
	switch {
	case a.Type == Insert && b.Type == Insert:
		return transformInsertInsert(a, b)
	case a.Type == Insert && b.Type == Delete:
		return transformInsertDelete(a, b)
	case a.Type == Delete && b.Type == Insert:
		// Delegate to the insert/delete case with the arguments swapped,
		// then swap the results back.
		bp, ap := transformInsertDelete(b, a)
		return ap, bp
	case a.Type == Delete && b.Type == Delete:
		return transformDeleteDelete(a, b)
	}
	return a, b
}

// transformInsertInsert orders two concurrent inserts. Position decides;
// equal positions fall back to the author id so that every replica picks the
// same winner without a shared clock. The winner keeps its position and the
// other insert shifts right by the winner's length.
func transformInsertInsert(a, b Operation) (Operation, Operation) {
	ia, ib := a.Position.Index(), b.Position.Index()
	if ia < ib || (ia == ib && a.UserID <= b.UserID) {
		return a, b.shifted(len(a.Content))
	}
	return a.shifted(len(b.Content)), b
}

// transformInsertDelete resolves an insert against a concurrent delete.
// An insert at or before the deleted span pushes the delete right; an insert
// strictly past the span shifts left by the deleted length. An insert landing
// inside the span is pulled to the span's resolved start so the inserted
// content survives the deletion instead of vanishing with it.
func transformInsertDelete(a, b Operation) (Operation, Operation) {
	start, end := b.span()
	i := a.Position.Index()
	switch {
	case i <= start:
		return a, b.shifted(len(a.Content))
	case i > end:
		return a.shifted(-b.Width()), b
	default:
		a.Position = FromIndex(start)
		return a, b
	}
}

// transformDeleteDelete resolves two concurrent deletes. Disjoint spans shift
// each other by the other's length. Overlapping spans merge: the first
// operand widens to cover the union and the second degrades to a zero-length
// retain, so the shared overlap is removed exactly once.
func transformDeleteDelete(a, b Operation) (Operation, Operation) {
	// A zero-length delete removes nothing and adjusts nothing.
	if a.Width() == 0 || b.Width() == 0 {
		return a, b
	}
	sa, ea := a.span()
	sb, eb := b.span()
	switch {
	case ea <= sb:
		return a, b.shifted(-a.Width())
	case eb <= sa:
		return a.shifted(-b.Width()), b
	}
	start := minInt(sa, sb)
	end := maxInt(ea, eb)
	a.Position = FromIndex(end)
	a.Length = end - start
	b.Type = Retain
	b.Length = 0
	b.Content = ""
	b.Position = FromIndex(start)
	return a, b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
