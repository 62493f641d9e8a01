package document

import (
	"errors"
	"fmt"
)

// ErrBlockIndex is returned when a block index falls outside the document.
var ErrBlockIndex = errors.New("block index out of range")

// Document is an ordered list of top-level blocks.
type Document struct {
	blocks []*Node
}

// New creates a document from top-level blocks. Inline nodes passed at the
// top level are wrapped in a paragraph.
func New(blocks ...*Node) *Document {
	out := make([]*Node, 0, len(blocks))
	var inline []*Node
	flush := func() {
		if len(inline) > 0 {
			out = append(out, Paragraph(inline...))
			inline = nil
		}
	}
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if !b.IsBlock() {
			inline = append(inline, b)
			continue
		}
		flush()
		out = append(out, b)
	}
	flush()
	return &Document{blocks: out}
}

// Empty returns a document with a single empty paragraph, the state of a
// freshly opened editor.
func Empty() *Document {
	return New(Paragraph())
}

// Blocks returns a copy of the top-level block slice.
func (d *Document) Blocks() []*Node {
	out := make([]*Node, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// ChildCount returns the number of top-level blocks.
func (d *Document) ChildCount() int {
	return len(d.blocks)
}

// Child returns the top-level block at index i.
func (d *Document) Child(i int) *Node {
	return d.blocks[i]
}

// Size is the total content size of the document.
func (d *Document) Size() int {
	size := 0
	for _, b := range d.blocks {
		size += b.Size()
	}
	return size
}

// ForEach calls fn for each top-level block with its starting position.
func (d *Document) ForEach(fn func(node *Node, pos int, index int)) {
	pos := 0
	for i, b := range d.blocks {
		fn(b, pos, i)
		pos += b.Size()
	}
}

// Positions returns the starting position of every top-level block. The
// offsets are only valid for this revision of the document.
func (d *Document) Positions() []int {
	out := make([]int, 0, len(d.blocks))
	d.ForEach(func(_ *Node, pos int, _ int) {
		out = append(out, pos)
	})
	return out
}

// PosOfIndex returns the start position of block i. i == ChildCount() yields
// the end of the document.
func (d *Document) PosOfIndex(i int) (int, error) {
	if i < 0 || i > len(d.blocks) {
		return 0, fmt.Errorf("%w: %d", ErrBlockIndex, i)
	}
	pos := 0
	for _, b := range d.blocks[:i] {
		pos += b.Size()
	}
	return pos, nil
}

// IndexAt returns the index of the top-level block starting exactly at pos.
func (d *Document) IndexAt(pos int) (int, bool) {
	found := -1
	d.ForEach(func(_ *Node, p int, i int) {
		if found < 0 && p == pos {
			found = i
		}
	})
	return found, found >= 0
}

// Eq reports structural equality.
func (d *Document) Eq(other *Document) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if len(d.blocks) != len(other.blocks) {
		return false
	}
	for i := range d.blocks {
		if !d.blocks[i].Eq(other.blocks[i]) {
			return false
		}
	}
	return true
}

// Replace returns a new document with blocks [from, to) replaced by nodes.
func (d *Document) Replace(from, to int, nodes ...*Node) (*Document, error) {
	if from < 0 || to > len(d.blocks) || from > to {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrBlockIndex, from, to)
	}
	blocks := make([]*Node, 0, len(d.blocks)-(to-from)+len(nodes))
	blocks = append(blocks, d.blocks[:from]...)
	blocks = append(blocks, nodes...)
	blocks = append(blocks, d.blocks[to:]...)
	return New(blocks...), nil
}
