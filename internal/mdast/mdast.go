// Package mdast defines the parsed Markdown/JSX syntax tree consumed by the
// converter. Every node kind is a distinct pointer type implementing the
// sealed Node interface.
package mdast

import "github.com/gerunddev/mdxbridge/internal/meta"

// Kind names a node variant. The values match the mdast "type" field.
type Kind string

const (
	KindRoot          Kind = "root"
	KindText          Kind = "text"
	KindHeading       Kind = "heading"
	KindParagraph     Kind = "paragraph"
	KindBlockquote    Kind = "blockquote"
	KindList          Kind = "list"
	KindListItem      Kind = "listItem"
	KindThematicBreak Kind = "thematicBreak"
	KindCode          Kind = "code"
	KindLink          Kind = "link"
	KindStrong        Kind = "strong"
	KindEmphasis      Kind = "emphasis"
	KindInlineCode    Kind = "inlineCode"
	KindImage         Kind = "image"
	KindBreak         Kind = "break"
	KindYaml          Kind = "yaml"
	KindImport        Kind = "import"
	KindExport        Kind = "export"
	KindJSX           Kind = "jsx"
)

// Node is any node of the syntax tree.
//
//sumtype:decl
type Node interface {
	Kind() Kind
	sealed()
}

// Parent is implemented by nodes that own children.
type Parent interface {
	Node
	GetChildren() []Node
	SetChildren([]Node)
}

// Root is the document wrapper. Meta is set once metadata blocks have been
// extracted from the tree.
type Root struct {
	Children []Node
	Meta     *meta.Map
}

type Text struct {
	Value string
}

type Heading struct {
	Depth    int
	Children []Node
}

type Paragraph struct {
	Children []Node
}

type Blockquote struct {
	Children []Node
}

// List is an ordered or bullet list. Start is nil for bullet lists.
type List struct {
	Ordered  bool
	Start    *int
	Spread   bool
	Children []Node
}

// ListItem is one item of a List. Spread reports blank lines between its
// children (a "loose" item).
type ListItem struct {
	Spread   bool
	Checked  *bool
	Children []Node
}

type ThematicBreak struct{}

// Code is a fenced or indented code block
type Code struct {
	Lang  string
	Meta  string
	Value string
}

type Link struct {
	URL      string
	Title    string
	Children []Node
}

type Strong struct {
	Children []Node
}

type Emphasis struct {
	Children []Node
}

type InlineCode struct {
	Value string
}

type Image struct {
	URL   string
	Title string
	Alt   string
}

// Break is a hard line break
type Break struct{}

// Yaml is a metadata block holding the raw YAML payload
type Yaml struct {
	Value string
}

// Import holds the verbatim text of an import statement block
type Import struct {
	Value string
}

// Export holds the verbatim text of an export statement block
type Export struct {
	Value string
}

// JSX holds verbatim embedded component markup, either a whole block or an
// inline tag.
type JSX struct {
	Value string
}

func (*Root) Kind() Kind          { return KindRoot }
func (*Text) Kind() Kind          { return KindText }
func (*Heading) Kind() Kind       { return KindHeading }
func (*Paragraph) Kind() Kind     { return KindParagraph }
func (*Blockquote) Kind() Kind    { return KindBlockquote }
func (*List) Kind() Kind          { return KindList }
func (*ListItem) Kind() Kind      { return KindListItem }
func (*ThematicBreak) Kind() Kind { return KindThematicBreak }
func (*Code) Kind() Kind          { return KindCode }
func (*Link) Kind() Kind          { return KindLink }
func (*Strong) Kind() Kind        { return KindStrong }
func (*Emphasis) Kind() Kind      { return KindEmphasis }
func (*InlineCode) Kind() Kind    { return KindInlineCode }
func (*Image) Kind() Kind         { return KindImage }
func (*Break) Kind() Kind         { return KindBreak }
func (*Yaml) Kind() Kind          { return KindYaml }
func (*Import) Kind() Kind        { return KindImport }
func (*Export) Kind() Kind        { return KindExport }
func (*JSX) Kind() Kind           { return KindJSX }

func (*Root) sealed()          {}
func (*Text) sealed()          {}
func (*Heading) sealed()       {}
func (*Paragraph) sealed()     {}
func (*Blockquote) sealed()    {}
func (*List) sealed()          {}
func (*ListItem) sealed()      {}
func (*ThematicBreak) sealed() {}
func (*Code) sealed()          {}
func (*Link) sealed()          {}
func (*Strong) sealed()        {}
func (*Emphasis) sealed()      {}
func (*InlineCode) sealed()    {}
func (*Image) sealed()         {}
func (*Break) sealed()         {}
func (*Yaml) sealed()          {}
func (*Import) sealed()        {}
func (*Export) sealed()        {}
func (*JSX) sealed()           {}

func (n *Root) GetChildren() []Node       { return n.Children }
func (n *Heading) GetChildren() []Node    { return n.Children }
func (n *Paragraph) GetChildren() []Node  { return n.Children }
func (n *Blockquote) GetChildren() []Node { return n.Children }
func (n *List) GetChildren() []Node       { return n.Children }
func (n *ListItem) GetChildren() []Node   { return n.Children }
func (n *Link) GetChildren() []Node       { return n.Children }
func (n *Strong) GetChildren() []Node     { return n.Children }
func (n *Emphasis) GetChildren() []Node   { return n.Children }

func (n *Root) SetChildren(c []Node)       { n.Children = c }
func (n *Heading) SetChildren(c []Node)    { n.Children = c }
func (n *Paragraph) SetChildren(c []Node)  { n.Children = c }
func (n *Blockquote) SetChildren(c []Node) { n.Children = c }
func (n *List) SetChildren(c []Node)       { n.Children = c }
func (n *ListItem) SetChildren(c []Node)   { n.Children = c }
func (n *Link) SetChildren(c []Node)       { n.Children = c }
func (n *Strong) SetChildren(c []Node)     { n.Children = c }
func (n *Emphasis) SetChildren(c []Node)   { n.Children = c }

// Visit walks the tree depth-first in document order, calling fn with each
// node and its parent (nil for the starting node). Returning false skips the
// node's children.
func Visit(n Node, fn func(node Node, parent Parent) bool) {
	visit(n, nil, fn)
}

func visit(n Node, parent Parent, fn func(node Node, parent Parent) bool) {
	if !fn(n, parent) {
		return
	}
	p, ok := n.(Parent)
	if !ok {
		return
	}
	for _, child := range p.GetChildren() {
		visit(child, p, fn)
	}
}
