package pagination

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PluginKey tags the pagination plugin state and its overlay transactions.
const PluginKey = "pagination"

// PosAttr carries the document position of a rendered top-level block.
const PosAttr = "data-pm-pos"

// overlayUpdate is the metadata of a transaction installing a new overlay.
type overlayUpdate struct {
	decorations *editor.DecorationSet
}

// Renderer turns page boundaries into widget decorations.
type Renderer struct {
	// LabelFormat is formatted with the number of the page that starts at
	// the widget.
	LabelFormat string
}

// NewRenderer returns a renderer with the default label.
func NewRenderer() *Renderer {
	return &Renderer{LabelFormat: "Page %d"}
}

// Decorations builds one non-editable widget per boundary, anchored at the
// boundary position and biased before the content there.
func (r *Renderer) Decorations(doc *document.Document, boundaries []Boundary) *editor.DecorationSet {
	if len(boundaries) == 0 {
		return editor.EmptyDecorations
	}
	decorations := make([]editor.Decoration, 0, len(boundaries))
	for _, b := range boundaries {
		decorations = append(decorations, editor.Decoration{
			Pos:  b.Pos,
			Side: -1,
			Spec: editor.WidgetSpec{
				Key:   "page-break-" + strconv.Itoa(b.Page),
				Class: MarkerClass,
				Label: fmt.Sprintf(r.LabelFormat, b.Page),
				Attrs: map[string]string{
					MarkerAttr:        "",
					"contenteditable": "false",
					"data-page":       strconv.Itoa(b.Page),
				},
			},
		})
	}
	return editor.NewDecorationSet(doc, decorations)
}

// Apply installs set as the pagination overlay in a single transaction
// tagged with PluginKey. The document is not touched.
func (r *Renderer) Apply(view *editor.View, set *editor.DecorationSet) error {
	tr := view.State().Tr()
	tr.SetMeta(PluginKey, overlayUpdate{decorations: set})
	return view.Dispatch(tr)
}

// IsOverlayUpdate reports whether tr only installs a pagination overlay.
func IsOverlayUpdate(tr *editor.Transaction) bool {
	_, ok := tr.Meta(PluginKey).(overlayUpdate)
	return ok
}

// Overlay returns the pagination overlay of state.
func Overlay(state *editor.State) *editor.DecorationSet {
	if set, ok := state.PluginState(PluginKey).(*editor.DecorationSet); ok {
		return set
	}
	return editor.EmptyDecorations
}

// DecoratedHTML renders the editing surface: each top-level block carries its
// position in PosAttr and widgets are painted immediately before the block
// they anchor to. Document serialization never goes through here.
func DecoratedHTML(doc *document.Document, set *editor.DecorationSet) string {
	var buf bytes.Buffer
	doc.ForEach(func(node *document.Node, pos int, _ int) {
		for _, d := range set.At(pos) {
			_ = html.Render(&buf, widgetElement(d))
		}
		el := document.BlockElement(node)
		el.Attr = append(el.Attr, html.Attribute{Key: PosAttr, Val: strconv.Itoa(pos)})
		_ = html.Render(&buf, el)
	})
	for _, d := range set.At(doc.Size()) {
		_ = html.Render(&buf, widgetElement(d))
	}
	return buf.String()
}

func widgetElement(d editor.Decoration) *html.Node {
	attrs := []html.Attribute{{Key: "class", Val: d.Spec.Class}}
	if d.Spec.Label != "" {
		attrs = append(attrs, html.Attribute{Key: "data-label", Val: d.Spec.Label})
	}
	for _, k := range sortedKeys(d.Spec.Attrs) {
		attrs = append(attrs, html.Attribute{Key: k, Val: d.Spec.Attrs[k]})
	}
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div, Attr: attrs}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
