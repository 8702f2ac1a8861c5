// Package convert maps a parsed MDX syntax tree onto a schema-checked
// document tree. Markdown structure becomes document nodes, inline
// formatting becomes marks and embedded code and markup is carried through
// verbatim in passthrough nodes.
package convert

import (
	"fmt"
	"strings"

	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/schema"
)

// Position tells a JSX hook where the markup sits. Markup directly inside
// the root, a blockquote or a list item is Block, so the hook must return a
// block node there; markup inside paragraphs, headings or marks is Inline.
type Position string

const (
	Block  Position = "block"
	Inline Position = "inline"
)

// JSXFunc turns embedded markup into a custom document node. Returning nil
// falls back to the generic passthrough node.
type JSXFunc func(node *mdast.JSX, pos Position) *model.Node

// Options configures a Converter
type Options struct {
	JSXToNode JSXFunc
}

// UnreachableNodeKindError reports a syntax tree node the converter has no
// rule for
type UnreachableNodeKindError struct {
	Kind mdast.Kind
}

func (e *UnreachableNodeKindError) Error() string {
	return fmt.Sprintf("unexpected syntax tree node kind %q", e.Kind)
}

// Converter turns syntax trees into document trees of one schema
type Converter struct {
	schema *schema.Schema
	opts   Options
}

// New creates a converter producing nodes of s
func New(s *schema.Schema, opts Options) *Converter {
	return &Converter{schema: s, opts: opts}
}

// Convert maps root to a document node and validates the result
func (c *Converter) Convert(root *mdast.Root) (*model.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("nil syntax tree")
	}
	nodes, err := c.convert(root, nil)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("root converted to %d nodes", len(nodes))
	}
	doc := nodes[0]
	if err := c.schema.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Converter) convert(n mdast.Node, parent mdast.Node) ([]*model.Node, error) {
	s := c.schema
	switch n := n.(type) {
	case *mdast.Root:
		children, err := c.convertChildren(n.Children, n)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			para, err := s.Node(schema.Paragraph, nil)
			if err != nil {
				return nil, err
			}
			children = []*model.Node{para}
		}
		var front any
		if n.Meta != nil {
			front = n.Meta
		}
		return one(s.Node(s.TopNode, model.Attrs{schema.FrontmatterAttr: front}, children...))

	case *mdast.Text:
		if n.Value == "" {
			return nil, nil
		}
		return one(s.Text(n.Value))

	case *mdast.Import:
		return one(s.Node(schema.MDXImport, model.Attrs{"value": n.Value}))

	case *mdast.Export:
		return one(s.Node(schema.MDXExport, model.Attrs{"value": n.Value}))

	case *mdast.JSX:
		return one(c.convertJSX(n, parent))

	case *mdast.Heading:
		return c.structural(schema.Heading, model.Attrs{"level": n.Depth}, n.Children, n)

	case *mdast.Paragraph:
		return c.structural(schema.Paragraph, nil, n.Children, n)

	case *mdast.Blockquote:
		return c.structural(schema.Blockquote, nil, n.Children, n)

	case *mdast.ThematicBreak:
		return one(s.Node(schema.HorizontalRule, nil))

	case *mdast.List:
		if n.Ordered {
			order := 1
			if n.Start != nil {
				order = *n.Start
			}
			return c.structural(schema.OrderedList, model.Attrs{"order": order, "tight": !n.Spread}, n.Children, n)
		}
		return c.structural(schema.BulletList, model.Attrs{"tight": !n.Spread}, n.Children, n)

	case *mdast.ListItem:
		children, err := c.convertChildren(n.Children, n)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 || children[0].Type != schema.Paragraph {
			para, err := s.Node(schema.Paragraph, nil)
			if err != nil {
				return nil, err
			}
			children = append([]*model.Node{para}, children...)
		}
		return one(s.Node(schema.ListItem, nil, children...))

	case *mdast.Code:
		params := n.Lang
		if n.Meta != "" {
			params = strings.TrimSpace(params + " " + n.Meta)
		}
		var content []*model.Node
		if n.Value != "" {
			text, err := s.Text(n.Value)
			if err != nil {
				return nil, err
			}
			content = append(content, text)
		}
		return one(s.Node(schema.CodeBlock, model.Attrs{"params": params}, content...))

	case *mdast.Image:
		attrs := model.Attrs{"src": n.URL, "alt": optional(n.Alt), "title": optional(n.Title)}
		return one(s.Node(schema.Image, attrs))

	case *mdast.Break:
		return one(s.Node(schema.HardBreak, nil))

	case *mdast.Link:
		mark, err := s.Mark(schema.Link, model.Attrs{"href": n.URL, "title": optional(n.Title)})
		if err != nil {
			return nil, err
		}
		return c.marked(n.Children, n, mark)

	case *mdast.Strong:
		mark, err := s.Mark(schema.Strong, nil)
		if err != nil {
			return nil, err
		}
		return c.marked(n.Children, n, mark)

	case *mdast.Emphasis:
		mark, err := s.Mark(schema.Em, nil)
		if err != nil {
			return nil, err
		}
		return c.marked(n.Children, n, mark)

	case *mdast.InlineCode:
		if n.Value == "" {
			return nil, nil
		}
		mark, err := s.Mark(schema.Code, nil)
		if err != nil {
			return nil, err
		}
		return one(s.Text(n.Value, mark))

	case *mdast.Yaml:
		return nil, nil
	}
	return nil, &UnreachableNodeKindError{Kind: n.Kind()}
}

func (c *Converter) convertChildren(children []mdast.Node, parent mdast.Node) ([]*model.Node, error) {
	var out []*model.Node
	for _, child := range children {
		nodes, err := c.convert(child, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (c *Converter) structural(typ string, attrs model.Attrs, children []mdast.Node, n mdast.Node) ([]*model.Node, error) {
	content, err := c.convertChildren(children, n)
	if err != nil {
		return nil, err
	}
	return one(c.schema.Node(typ, attrs, content...))
}

// marked converts children and adds mark to every resulting node, keeping
// the marks they already carry in schema order
func (c *Converter) marked(children []mdast.Node, n mdast.Node, mark model.Mark) ([]*model.Node, error) {
	nodes, err := c.convertChildren(children, n)
	if err != nil {
		return nil, err
	}
	for i, node := range nodes {
		nodes[i] = node.WithMarks(c.schema.SortMarks(mark.AddToSet(node.Marks)))
	}
	return nodes, nil
}

func (c *Converter) convertJSX(n *mdast.JSX, parent mdast.Node) (*model.Node, error) {
	pos := positionOf(parent)
	if c.opts.JSXToNode != nil {
		if custom := c.opts.JSXToNode(n, pos); custom != nil {
			return custom, nil
		}
	}
	typ := schema.MDXJSX
	if pos == Inline {
		typ = schema.MDXInlineJSX
	}
	return c.schema.Node(typ, model.Attrs{"value": n.Value})
}

// positionOf places markup whose parent holds blocks at block level and
// markup inside inline content inline
func positionOf(parent mdast.Node) Position {
	switch parent.(type) {
	case nil, *mdast.Root, *mdast.Blockquote, *mdast.ListItem:
		return Block
	}
	return Inline
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func one(n *model.Node, err error) ([]*model.Node, error) {
	if err != nil {
		return nil, err
	}
	return []*model.Node{n}, nil
}
