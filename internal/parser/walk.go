package parser

import (
	"bytes"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/gerunddev/mdxbridge/internal/mdast"
)

// builder maps a goldmark document onto mdast nodes
type builder struct {
	source []byte
}

func (b *builder) children(n gast.Node) []mdast.Node {
	var out []mdast.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, b.node(child)...)
	}
	return mergeText(out)
}

func (b *builder) node(n gast.Node) []mdast.Node {
	switch node := n.(type) {
	case *ESMBlock:
		value := b.lines(node.Lines())
		if node.Export {
			return []mdast.Node{&mdast.Export{Value: value}}
		}
		return []mdast.Node{&mdast.Import{Value: value}}

	case *JSXBlock:
		return []mdast.Node{&mdast.JSX{Value: b.lines(node.Lines())}}

	case *gast.HTMLBlock:
		value := b.lines(node.Lines())
		if node.HasClosure() {
			value += "\n" + strings.TrimRight(string(node.ClosureLine.Value(b.source)), "\r\n")
		}
		return []mdast.Node{&mdast.JSX{Value: value}}

	case *gast.Paragraph, *gast.TextBlock:
		return []mdast.Node{&mdast.Paragraph{Children: b.children(node)}}

	case *gast.Heading:
		return []mdast.Node{&mdast.Heading{Depth: node.Level, Children: b.children(node)}}

	case *gast.ThematicBreak:
		return []mdast.Node{&mdast.ThematicBreak{}}

	case *gast.Blockquote:
		return []mdast.Node{&mdast.Blockquote{Children: b.children(node)}}

	case *gast.List:
		list := &mdast.List{Ordered: node.IsOrdered(), Spread: !node.IsTight}
		if list.Ordered {
			start := node.Start
			list.Start = &start
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			list.Children = append(list.Children, &mdast.ListItem{
				Spread:   list.Spread,
				Children: b.children(item),
			})
		}
		return []mdast.Node{list}

	case *gast.FencedCodeBlock:
		code := &mdast.Code{Value: b.lines(node.Lines())}
		if node.Info != nil {
			info := strings.TrimSpace(string(unescape(node.Info.Segment.Value(b.source))))
			lang, rest, _ := strings.Cut(info, " ")
			code.Lang = lang
			code.Meta = strings.TrimSpace(rest)
		}
		return []mdast.Node{code}

	case *gast.CodeBlock:
		return []mdast.Node{&mdast.Code{Value: strings.TrimRight(b.lines(node.Lines()), "\n")}}

	case *gast.Text:
		raw := node.Segment.Value(b.source)
		if !node.IsRaw() {
			raw = unescape(raw)
		}
		value := string(raw)
		if node.SoftLineBreak() {
			value += "\n"
		}
		out := []mdast.Node{&mdast.Text{Value: value}}
		if node.HardLineBreak() {
			out = append(out, &mdast.Break{})
		}
		return out

	case *gast.String:
		return []mdast.Node{&mdast.Text{Value: string(node.Value)}}

	case *gast.Emphasis:
		if node.Level >= 2 {
			return []mdast.Node{&mdast.Strong{Children: b.children(node)}}
		}
		return []mdast.Node{&mdast.Emphasis{Children: b.children(node)}}

	case *gast.CodeSpan:
		var buf bytes.Buffer
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*gast.Text); ok {
				buf.Write(t.Segment.Value(b.source))
			}
		}
		return []mdast.Node{&mdast.InlineCode{Value: strings.ReplaceAll(buf.String(), "\n", " ")}}

	case *gast.Link:
		return []mdast.Node{&mdast.Link{
			URL:      string(unescape(node.Destination)),
			Title:    string(unescape(node.Title)),
			Children: b.children(node),
		}}

	case *gast.AutoLink:
		label := string(node.Label(b.source))
		url := string(node.URL(b.source))
		if node.AutoLinkType == gast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		return []mdast.Node{&mdast.Link{URL: url, Children: []mdast.Node{&mdast.Text{Value: label}}}}

	case *gast.Image:
		return []mdast.Node{&mdast.Image{
			URL:   string(unescape(node.Destination)),
			Title: string(unescape(node.Title)),
			Alt:   plainText(b.children(node)),
		}}

	case *gast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			segment := node.Segments.At(i)
			buf.Write(segment.Value(b.source))
		}
		return []mdast.Node{&mdast.JSX{Value: buf.String()}}
	}

	// Nodes outside CommonMark, such as link reference definitions, carry no
	// content of their own.
	return b.children(n)
}

// lines joins block lines verbatim, without the final line ending
func (b *builder) lines(lines *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(b.source))
	}
	value := strings.TrimSuffix(buf.String(), "\n")
	return strings.TrimSuffix(value, "\r")
}

func unescape(v []byte) []byte {
	return util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(v)))
}

func plainText(nodes []mdast.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		mdast.Visit(n, func(node mdast.Node, _ mdast.Parent) bool {
			switch v := node.(type) {
			case *mdast.Text:
				sb.WriteString(v.Value)
			case *mdast.InlineCode:
				sb.WriteString(v.Value)
			}
			return true
		})
	}
	return sb.String()
}

// mergeText joins runs of adjacent text nodes. goldmark splits text at every
// character that might start an inline construct.
func mergeText(nodes []mdast.Node) []mdast.Node {
	out := nodes[:0]
	for _, n := range nodes {
		t, ok := n.(*mdast.Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*mdast.Text); ok {
				prev.Value += t.Value
				continue
			}
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
