// Package document holds the block-structured rich-text model edited by the
// case strategy editor. Documents are immutable values: every edit produces a
// new *Document, so a document can be shared freely between editor revisions.
package document

import (
	"strconv"
	"unicode/utf8"
)

// NodeType identifies the kind of a node.
type NodeType string

const (
	TypeParagraph      NodeType = "paragraph"
	TypeHeading        NodeType = "heading"
	TypeBlockquote     NodeType = "blockquote"
	TypeCodeBlock      NodeType = "code_block"
	TypeBulletList     NodeType = "bullet_list"
	TypeOrderedList    NodeType = "ordered_list"
	TypeListItem       NodeType = "list_item"
	TypeTable          NodeType = "table"
	TypeTableRow       NodeType = "table_row"
	TypeTableHeader    NodeType = "table_header"
	TypeTableCell      NodeType = "table_cell"
	TypeHorizontalRule NodeType = "horizontal_rule"
	TypeHardBreak      NodeType = "hard_break"
	TypeText           NodeType = "text"
)

// MarkType identifies an inline mark applied to text.
type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
	MarkHighlight MarkType = "highlight"
	MarkTextStyle MarkType = "text_style"
)

// Mark is an inline annotation carried by a text node.
type Mark struct {
	Type  MarkType          `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Node is one element of the document tree.
type Node struct {
	Type    NodeType          `json:"type"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Content []*Node           `json:"content,omitempty"`
	Text    string            `json:"text,omitempty"`
	Marks   []Mark            `json:"marks,omitempty"`
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Type == TypeText
}

// IsLeaf reports whether n can never hold content.
func (n *Node) IsLeaf() bool {
	return n.Type == TypeHorizontalRule || n.Type == TypeHardBreak
}

// IsBlock reports whether n is a block-level node.
func (n *Node) IsBlock() bool {
	return n.Type != TypeText && n.Type != TypeHardBreak
}

// Size is the number of positions the node occupies: rune count for text,
// one for leaves, and two (open + close) plus the content for the rest.
func (n *Node) Size() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	size := 2
	for _, child := range n.Content {
		size += child.Size()
	}
	return size
}

// TextContent concatenates the text of every descendant text node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var out []byte
	for _, child := range n.Content {
		out = append(out, child.TextContent()...)
	}
	return string(out)
}

// Attr returns the attribute value or "".
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// Eq reports deep structural equality.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.Type != other.Type || n.Text != other.Text {
		return false
	}
	if !attrsEq(n.Attrs, other.Attrs) || !marksEq(n.Marks, other.Marks) {
		return false
	}
	if len(n.Content) != len(other.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

func attrsEq(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func marksEq(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !attrsEq(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

// Constructors used by commands, tests and the HTML parser.

// Text creates a text node.
func Text(s string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: marks}
}

// Paragraph creates a paragraph holding the given inline nodes.
func Paragraph(content ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: content}
}

// Heading creates a heading of the given level (1-6).
func Heading(level int, content ...*Node) *Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Node{Type: TypeHeading, Attrs: map[string]string{"level": strconv.Itoa(level)}, Content: content}
}

// HorizontalRule creates a horizontal rule.
func HorizontalRule() *Node {
	return &Node{Type: TypeHorizontalRule}
}
