package completion

import (
	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/syntax"
)

// Text gives byte-offset access to the text being completed.
type Text interface {
	// Slice returns the text between two byte offsets. Offsets are
	// clamped to the text.
	Slice(from, to int) string
	Len() int
}

// Document is a Text together with its syntax tree.
type Document interface {
	Text
	Tree() syntax.Node
}

// Snapshot is an immutable Document parsed once at creation.
type Snapshot struct {
	text string
	tree *syntax.Tree
}

// NewSnapshot parses text with d.
func NewSnapshot(text string, d *dialect.Dialect) *Snapshot {
	return &Snapshot{text: text, tree: syntax.Parse(text, d)}
}

// Slice implements Text.
func (s *Snapshot) Slice(from, to int) string {
	from = clamp(from, 0, len(s.text))
	to = clamp(to, from, len(s.text))
	return s.text[from:to]
}

// Len implements Text.
func (s *Snapshot) Len() int { return len(s.text) }

// Tree implements Document.
func (s *Snapshot) Tree() syntax.Node { return s.tree.Root() }

// String returns the whole text.
func (s *Snapshot) String() string { return s.text }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
