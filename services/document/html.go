package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class and attribute names that mark presentational artifacts of the live
// editor (page-break widgets, pagination chrome). They are dropped on parse so
// rendered editor markup can never smuggle overlay elements into content.
var artifactClasses = []string{
	"page-break-marker",
	"rm-pagination-gap",
	"tiptap-page-break-background",
	"rm-page-number",
	"rm-page-header",
	"rm-page-footer",
	"rm-pages-wrapper",
}

var artifactAttrs = []string{"data-page-break", "data-rm-pagination"}

var textAlignRegex = regexp.MustCompile(`text-align:\s*(left|center|right|justify)`)

// ParseHTML builds a document from serialized editor markup.
func ParseHTML(markup string) (*Document, error) {
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	blocks := parseBlocks(root)
	if len(blocks) == 0 {
		return Empty(), nil
	}
	return New(blocks...), nil
}

func isArtifact(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		for _, name := range artifactAttrs {
			if a.Key == name {
				return true
			}
		}
		if a.Key == "class" {
			for _, cls := range strings.Fields(a.Val) {
				for _, artifact := range artifactClasses {
					if cls == artifact {
						return true
					}
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func blockAttrs(n *html.Node) map[string]string {
	m := textAlignRegex.FindStringSubmatch(attr(n, "style"))
	if m == nil {
		return nil
	}
	return map[string]string{"textAlign": m[1]}
}

// parseBlocks converts the children of n into block nodes, wrapping runs of
// inline content in paragraphs.
func parseBlocks(n *html.Node) []*Node {
	var blocks []*Node
	var inline []*Node
	flush := func() {
		if len(inline) > 0 {
			blocks = append(blocks, Paragraph(mergeText(inline)...))
			inline = nil
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isArtifact(c) {
			continue
		}
		if c.Type == html.TextNode {
			if strings.TrimSpace(c.Data) == "" && len(inline) == 0 {
				continue
			}
			inline = append(inline, parseInline(c, nil)...)
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		block := parseBlock(c)
		if block == nil {
			if c.DataAtom == atom.Div || c.DataAtom == atom.Section || c.DataAtom == atom.Article {
				flush()
				blocks = append(blocks, parseBlocks(c)...)
				continue
			}
			inline = append(inline, parseInline(c, nil)...)
			continue
		}
		flush()
		blocks = append(blocks, block...)
	}
	flush()
	return blocks
}

// parseBlock returns nil when c is not a block element.
func parseBlock(c *html.Node) []*Node {
	switch c.DataAtom {
	case atom.P:
		return []*Node{{Type: TypeParagraph, Attrs: blockAttrs(c), Content: parseInlineChildren(c, nil)}}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		attrs := blockAttrs(c)
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrs["level"] = c.Data[1:]
		return []*Node{{Type: TypeHeading, Attrs: attrs, Content: parseInlineChildren(c, nil)}}
	case atom.Blockquote:
		return []*Node{{Type: TypeBlockquote, Content: nonEmpty(parseBlocks(c))}}
	case atom.Pre:
		text := textOf(c)
		var content []*Node
		if text != "" {
			content = []*Node{Text(text)}
		}
		return []*Node{{Type: TypeCodeBlock, Content: content}}
	case atom.Ul, atom.Ol:
		typ := TypeBulletList
		if c.DataAtom == atom.Ol {
			typ = TypeOrderedList
		}
		list := &Node{Type: typ}
		if start := attr(c, "start"); start != "" && start != "1" {
			list.Attrs = map[string]string{"start": start}
		}
		for li := c.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == html.ElementNode && li.DataAtom == atom.Li {
				list.Content = append(list.Content, &Node{Type: TypeListItem, Content: nonEmpty(parseBlocks(li))})
			}
		}
		return []*Node{list}
	case atom.Table:
		table := &Node{Type: TypeTable}
		collectRows(c, table)
		return []*Node{table}
	case atom.Hr:
		return []*Node{HorizontalRule()}
	}
	return nil
}

func collectRows(n *html.Node, table *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			collectRows(c, table)
		case atom.Tr:
			row := &Node{Type: TypeTableRow}
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode {
					continue
				}
				typ := TypeTableCell
				if cell.DataAtom == atom.Th {
					typ = TypeTableHeader
				} else if cell.DataAtom != atom.Td {
					continue
				}
				node := &Node{Type: typ, Content: nonEmpty(parseBlocks(cell))}
				for _, key := range []string{"colspan", "rowspan"} {
					if v := attr(cell, key); v != "" && v != "1" {
						if node.Attrs == nil {
							node.Attrs = map[string]string{}
						}
						node.Attrs[key] = v
					}
				}
				row.Content = append(row.Content, node)
			}
			table.Content = append(table.Content, row)
		}
	}
}

// nonEmpty guarantees container nodes hold at least one paragraph.
func nonEmpty(blocks []*Node) []*Node {
	if len(blocks) == 0 {
		return []*Node{Paragraph()}
	}
	return blocks
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

func parseInlineChildren(n *html.Node, marks []Mark) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isArtifact(c) {
			continue
		}
		out = append(out, parseInline(c, marks)...)
	}
	return mergeText(out)
}

func parseInline(n *html.Node, marks []Mark) []*Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return []*Node{Text(n.Data, copyMarks(marks)...)}
	case html.ElementNode:
	default:
		return nil
	}

	if n.DataAtom == atom.Br {
		return []*Node{{Type: TypeHardBreak}}
	}

	var mark *Mark
	switch n.DataAtom {
	case atom.Strong, atom.B:
		mark = &Mark{Type: MarkBold}
	case atom.Em, atom.I:
		mark = &Mark{Type: MarkItalic}
	case atom.U:
		mark = &Mark{Type: MarkUnderline}
	case atom.S, atom.Strike, atom.Del:
		mark = &Mark{Type: MarkStrike}
	case atom.Code:
		mark = &Mark{Type: MarkCode}
	case atom.A:
		mark = &Mark{Type: MarkLink, Attrs: map[string]string{"href": attr(n, "href")}}
	case atom.Mark:
		mark = &Mark{Type: MarkHighlight}
		if color := attr(n, "data-color"); color != "" {
			mark.Attrs = map[string]string{"color": color}
		}
	case atom.Span:
		if style := attr(n, "style"); style != "" {
			mark = &Mark{Type: MarkTextStyle, Attrs: map[string]string{"style": style}}
		}
	}

	next := marks
	if mark != nil {
		next = append(copyMarks(marks), *mark)
	}
	return parseInlineChildren(n, next)
}

func copyMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]Mark, len(marks))
	copy(out, marks)
	return out
}

// mergeText joins adjacent text nodes that carry identical marks.
func mergeText(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && n.IsText() && marksEq(last.Marks, n.Marks) {
				out[len(out)-1] = Text(last.Text+n.Text, last.Marks...)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// HTML serializes the document to editor markup. Only content is written:
// decorations live outside the document and never appear here.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	for _, b := range d.blocks {
		_ = html.Render(&buf, BlockElement(b))
	}
	return buf.String()
}

// BlockElement converts a block node into an HTML element tree.
func BlockElement(n *Node) *html.Node {
	switch n.Type {
	case TypeParagraph:
		return withInline(element("p", alignAttr(n)...), n.Content)
	case TypeHeading:
		level := n.Attr("level")
		if level == "" {
			level = "1"
		}
		return withInline(element("h"+level, alignAttr(n)...), n.Content)
	case TypeBlockquote:
		return withBlocks(element("blockquote"), n.Content)
	case TypeCodeBlock:
		pre := element("pre")
		code := element("code")
		code.AppendChild(&html.Node{Type: html.TextNode, Data: n.TextContent()})
		pre.AppendChild(code)
		return pre
	case TypeBulletList, TypeOrderedList:
		tag := "ul"
		var attrs []html.Attribute
		if n.Type == TypeOrderedList {
			tag = "ol"
			if start := n.Attr("start"); start != "" {
				attrs = append(attrs, html.Attribute{Key: "start", Val: start})
			}
		}
		list := element(tag, attrs...)
		for _, item := range n.Content {
			list.AppendChild(withBlocks(element("li"), item.Content))
		}
		return list
	case TypeTable:
		table := element("table")
		tbody := element("tbody")
		for _, row := range n.Content {
			tr := element("tr")
			for _, cell := range row.Content {
				tag := "td"
				if cell.Type == TypeTableHeader {
					tag = "th"
				}
				var attrs []html.Attribute
				for _, key := range []string{"colspan", "rowspan"} {
					if v := cell.Attr(key); v != "" {
						attrs = append(attrs, html.Attribute{Key: key, Val: v})
					}
				}
				tr.AppendChild(withBlocks(element(tag, attrs...), cell.Content))
			}
			tbody.AppendChild(tr)
		}
		table.AppendChild(tbody)
		return table
	case TypeHorizontalRule:
		return element("hr")
	}
	return withInline(element("p"), n.Content)
}

func alignAttr(n *Node) []html.Attribute {
	if align := n.Attr("textAlign"); align != "" {
		return []html.Attribute{{Key: "style", Val: "text-align: " + align}}
	}
	return nil
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag)), Attr: attrs}
}

func withBlocks(parent *html.Node, blocks []*Node) *html.Node {
	for _, b := range blocks {
		parent.AppendChild(BlockElement(b))
	}
	return parent
}

func withInline(parent *html.Node, inline []*Node) *html.Node {
	for _, n := range inline {
		parent.AppendChild(inlineElement(n))
	}
	return parent
}

func inlineElement(n *Node) *html.Node {
	if n.Type == TypeHardBreak {
		return element("br")
	}
	out := &html.Node{Type: html.TextNode, Data: n.Text}
	for i := len(n.Marks) - 1; i >= 0; i-- {
		wrapper := markElement(n.Marks[i])
		wrapper.AppendChild(out)
		out = wrapper
	}
	return out
}

func markElement(m Mark) *html.Node {
	switch m.Type {
	case MarkBold:
		return element("strong")
	case MarkItalic:
		return element("em")
	case MarkUnderline:
		return element("u")
	case MarkStrike:
		return element("s")
	case MarkCode:
		return element("code")
	case MarkLink:
		return element("a", html.Attribute{Key: "href", Val: m.Attrs["href"]})
	case MarkHighlight:
		if color := m.Attrs["color"]; color != "" {
			return element("mark", html.Attribute{Key: "data-color", Val: color})
		}
		return element("mark")
	}
	return element("span", html.Attribute{Key: "style", Val: m.Attrs["style"]})
}
