// Package model is the editable document tree: typed nodes with attributes,
// child content and inline marks, shaped after ProseMirror's document model.
package model

import (
	"reflect"
	"strings"
)

// Attrs holds the attribute values of a node or mark
type Attrs map[string]any

// Mark is an inline annotation such as emphasis or a link
type Mark struct {
	Type  string
	Attrs Attrs
}

// Eq reports whether two marks have the same type and attributes
func (m Mark) Eq(other Mark) bool {
	if m.Type != other.Type {
		return false
	}
	if len(m.Attrs) == 0 && len(other.Attrs) == 0 {
		return true
	}
	return reflect.DeepEqual(m.Attrs, other.Attrs)
}

// IsInSet reports whether an equal mark is part of set
func (m Mark) IsInSet(set []Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// AddToSet returns a copy of set with m added. A mark of the same type is
// replaced in place.
func (m Mark) AddToSet(set []Mark) []Mark {
	out := make([]Mark, 0, len(set)+1)
	replaced := false
	for _, other := range set {
		if other.Type == m.Type {
			out = append(out, m)
			replaced = true
			continue
		}
		out = append(out, other)
	}
	if !replaced {
		out = append(out, m)
	}
	return out
}

// SameMarkup reports whether two mark sets hold equal marks in the same order
func SameMarkup(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// Node is one node of a document tree. Text nodes carry Text and no
// Content.
type Node struct {
	Type    string
	Attrs   Attrs
	Content []*Node
	Marks   []Mark
	Text    string
}

// TextType is the node type name of text nodes
const TextType = "text"

// IsText reports whether n is a text node
func (n *Node) IsText() bool {
	return n.Type == TextType
}

// ChildCount returns the number of children
func (n *Node) ChildCount() int {
	return len(n.Content)
}

// Child returns the child at index i
func (n *Node) Child(i int) *Node {
	return n.Content[i]
}

// Attr returns the named attribute, or nil
func (n *Node) Attr(name string) any {
	return n.Attrs[name]
}

// TextContent concatenates the text of all descendant text nodes
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, child := range n.Content {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// WithMarks returns a shallow copy of n carrying marks
func (n *Node) WithMarks(marks []Mark) *Node {
	c := *n
	c.Marks = marks
	return &c
}

// WithText returns a shallow copy of a text node holding text
func (n *Node) WithText(text string) *Node {
	c := *n
	c.Text = text
	return &c
}

// Walk calls fn for n and every descendant in document order until fn
// returns false
func (n *Node) Walk(fn func(node *Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Content {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
