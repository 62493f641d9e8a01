package pagination

import (
	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"
)

// BoxSource maps the position of a top-level node to its rendered box.
// editor.Surface satisfies it.
type BoxSource interface {
	NodeBox(pos int) (editor.Box, bool)
}

// Extent is the measured box of one top-level block for a single pass.
type Extent struct {
	Pos    int     `json:"pos"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Bottom is the lower edge of the block.
func (e Extent) Bottom() float64 {
	return e.Top + e.Height
}

// Boundary is a synthetic page break placed before the block starting at
// Pos. Page is the number of the page that begins there (the first break
// starts page 2). A block taller than a page yields several boundaries at
// the same Pos with increasing Page.
type Boundary struct {
	Pos  int `json:"pos"`
	Page int `json:"page"`
}

// Measure reads the rendered box of every top-level block in document
// order. Blocks that produced no box, or a box of zero height, are left out.
func Measure(doc *document.Document, boxes BoxSource) []Extent {
	extents := make([]Extent, 0, doc.ChildCount())
	doc.ForEach(func(node *document.Node, pos int, _ int) {
		if !node.IsBlock() {
			return
		}
		box, ok := boxes.NodeBox(pos)
		if !ok || box.Height <= 0 {
			return
		}
		extents = append(extents, Extent{Pos: pos, Top: box.Top, Height: box.Height})
	})
	return extents
}

// Breaks runs the threshold walk over measured extents: every time a block's
// bottom passes the current page limit a boundary is recorded at the block's
// start and the limit advances by one page height.
func Breaks(extents []Extent, pageHeight float64) []Boundary {
	if pageHeight <= 0 {
		return nil
	}
	var boundaries []Boundary
	pageLimit := pageHeight
	for _, ext := range extents {
		bottom := ext.Bottom()
		for bottom > pageLimit {
			boundaries = append(boundaries, Boundary{Pos: ext.Pos, Page: len(boundaries) + 2})
			pageLimit += pageHeight
		}
	}
	return boundaries
}

// CalculateBreaks computes the page boundary set for doc as currently laid
// out on boxes. Breaks fall every g.ContentHeight(), the same content height
// the print @page rule leaves per sheet.
//
// Blocks are never split: an oversized block repeats its own position once
// per page it spills onto.
func CalculateBreaks(doc *document.Document, boxes BoxSource, g Geometry) []Boundary {
	return Breaks(Measure(doc, boxes), g.ContentHeight())
}

// PageCount is the number of synthetic pages implied by boundaries.
func PageCount(boundaries []Boundary) int {
	return len(boundaries) + 1
}
