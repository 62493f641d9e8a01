package printbridge

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	alignValue = regexp.MustCompile(`^(left|center|right|justify)$`)
	colorValue = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgba?\([0-9.,\s%]+\)|[a-zA-Z]+)$`)
	fontValue  = regexp.MustCompile(`^[\w\s,"'.-]+$`)
	sizeValue  = regexp.MustCompile(`^[0-9.]+(px|pt|em|rem|%)$`)
)

// NewPolicy returns the sanitizer applied to markup before it is printed:
// the UGC policy plus the alignment, font and highlight styles the editor
// produces. Classes and data attributes survive so the print stylesheet can
// hide pagination artifacts by selector.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles("text-align").Matching(alignValue).OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th")
	p.AllowStyles("color", "background-color").Matching(colorValue).OnElements("span", "mark")
	p.AllowStyles("font-family").Matching(fontValue).OnElements("span")
	p.AllowStyles("font-size").Matching(sizeValue).OnElements("span")
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	return p
}
