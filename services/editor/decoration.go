package editor

import (
	"sort"

	"case_strategy_editor/services/document"
)

// WidgetSpec describes the inert element a widget decoration paints.
type WidgetSpec struct {
	Key   string
	Class string
	Label string
	Attrs map[string]string
}

// Decoration is a widget anchored at a document position. Side < 0 renders
// it before any content at that position, side > 0 after.
type Decoration struct {
	Pos  int
	Side int
	Spec WidgetSpec
}

// DecorationSet is an immutable, position-ordered set of decorations. It is
// never part of the document and never serialized with it.
type DecorationSet struct {
	items []Decoration
}

// EmptyDecorations is the set with no decorations.
var EmptyDecorations = &DecorationSet{}

// NewDecorationSet builds a set for doc, dropping decorations that fall
// outside the document.
func NewDecorationSet(doc *document.Document, decorations []Decoration) *DecorationSet {
	size := doc.Size()
	items := make([]Decoration, 0, len(decorations))
	for _, d := range decorations {
		if d.Pos < 0 || d.Pos > size {
			continue
		}
		items = append(items, d)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Pos != items[j].Pos {
			return items[i].Pos < items[j].Pos
		}
		return items[i].Side < items[j].Side
	})
	return &DecorationSet{items: items}
}

// Len returns the number of decorations.
func (s *DecorationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// All returns a copy of every decoration in position order.
func (s *DecorationSet) All() []Decoration {
	if s == nil {
		return nil
	}
	out := make([]Decoration, len(s.items))
	copy(out, s.items)
	return out
}

// At returns the decorations anchored exactly at pos.
func (s *DecorationSet) At(pos int) []Decoration {
	if s == nil {
		return nil
	}
	var out []Decoration
	for _, d := range s.items {
		if d.Pos == pos {
			out = append(out, d)
		}
	}
	return out
}

// Map moves every decoration through a transaction's mapping.
func (s *DecorationSet) Map(m Mapping, doc *document.Document) *DecorationSet {
	if s.Len() == 0 || m.Empty() {
		return s
	}
	moved := make([]Decoration, len(s.items))
	for i, d := range s.items {
		d.Pos = m.MapPos(d.Pos, d.Side)
		moved[i] = d
	}
	return NewDecorationSet(doc, moved)
}

// Merge combines several sets into one.
func Merge(doc *document.Document, sets ...*DecorationSet) *DecorationSet {
	var all []Decoration
	for _, s := range sets {
		all = append(all, s.All()...)
	}
	if len(all) == 0 {
		return EmptyDecorations
	}
	return NewDecorationSet(doc, all)
}
