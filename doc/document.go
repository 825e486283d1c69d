// Package doc owns the authoritative text buffer of a shared document and
// applies one operation at a time, advancing a monotonic version counter.
// There is no rollback: the document only moves forward.
package doc

import (
	"slices"
	"strings"
	"time"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
)

// Document is a shared plain-text document: an ordered line buffer plus the
// version counter that orders everything else in the system. Content always
// holds at least one line; an empty document is one empty line.
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       []string  `json:"content"`
	Language      string    `json:"language,omitempty"`
	Version       int       `json:"version"`
	LastModified  time.Time `json:"lastModified"`
	Collaborators []string  `json:"collaborators,omitempty"`
}

// New creates an empty document at version 0.
func New(id, title string) *Document {
	return &Document{
		ID:           id,
		Title:        title,
		Content:      []string{""},
		LastModified: time.Now(),
	}
}

// Clone returns a deep copy, safe to hand to another goroutine or serializer
// while the original keeps mutating.
func (d *Document) Clone() *Document {
	c := *d
	c.Content = slices.Clone(d.Content)
	c.Collaborators = slices.Clone(d.Collaborators)
	return &c
}

// Text returns the document joined with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Content, "\n")
}

// Apply mutates the document with a single operation and advances the
// version by exactly one. Malformed operations are dropped without touching
// anything and Apply reports false; every structurally valid operation
// succeeds, out-of-range positions are recovered by expanding the buffer
// (insert) or doing nothing (delete) rather than failing. Retain, cursor and
// selection operations change no text but still count as an applied step.
func (d *Document) Apply(op ot.Operation) bool {
	if !op.Valid() {
		return false
	}
	switch op.Type {
	case ot.Insert:
		d.applyInsert(op.Position, op.Content)
	case ot.Delete:
		d.applyDelete(op.Position, op.Width())
	case ot.Retain, ot.Cursor, ot.Selection:
		// Positional no-ops.
	}
	d.Version++
	d.LastModified = time.Now()
	d.addCollaborator(op.UserID)
	return true
}

// applyInsert splices content into the target line, creating empty lines
// first if the target is past the end of the buffer. Inserted newlines split
// the line into multiple entries; this is the only way the line count grows.
func (d *Document) applyInsert(pos ot.Position, content string) {
	for pos.Line >= len(d.Content) {
		d.Content = append(d.Content, "")
	}
	line := d.Content[pos.Line]
	col := pos.Column
	if col > len(line) {
		col = len(line)
	}
	head, tail := line[:col], line[col:]

	if !strings.Contains(content, "\n") {
		d.Content[pos.Line] = head + content + tail
		return
	}
	parts := strings.Split(content, "\n")
	lines := make([]string, len(parts))
	lines[0] = head + parts[0]
	copy(lines[1:], parts[1:])
	lines[len(lines)-1] += tail
	d.Content = slices.Replace(d.Content, pos.Line, pos.Line+1, lines...)
}

// applyDelete removes length characters ending at the position's column
// (backward-delete caret semantics). At column 0 it merges the line into the
// previous one, which is how a line break is deleted; at column 0 of the
// first line there is nothing to remove.
func (d *Document) applyDelete(pos ot.Position, length int) {
	if pos.Line >= len(d.Content) {
		return
	}
	line := d.Content[pos.Line]
	col := pos.Column
	if col > len(line) {
		col = len(line)
	}
	if col == 0 {
		if pos.Line == 0 {
			return
		}
		d.Content[pos.Line-1] += line
		d.Content = slices.Delete(d.Content, pos.Line, pos.Line+1)
		return
	}
	start := col - length
	if start < 0 {
		start = 0
	}
	d.Content[pos.Line] = line[:start] + line[col:]
}

func (d *Document) addCollaborator(userID string) {
	if userID == "" || slices.Contains(d.Collaborators, userID) {
		return
	}
	d.Collaborators = append(d.Collaborators, userID)
}
