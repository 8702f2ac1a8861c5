package mdast

import (
	"fmt"
	"strconv"
	"strings"
)

// Children returns the child slice of n, or nil for leaf nodes
func Children(n Node) []Node {
	if p, ok := n.(Parent); ok {
		return p.GetChildren()
	}
	return nil
}

// Inspect renders the tree as an indented outline, one node per line, in the
// style of unist-util-inspect:
//
//	root[2]
//	├─0 heading[1] depth=1
//	│   └─0 text "Hello"
//	└─1 jsx "<Meta />"
func Inspect(n Node) string {
	var b strings.Builder
	b.WriteString(describe(n))
	b.WriteByte('\n')
	inspectChildren(&b, n, "")
	return b.String()
}

func inspectChildren(b *strings.Builder, n Node, indent string) {
	children := Children(n)
	for i, child := range children {
		last := i == len(children)-1
		branch, next := "├─", "│   "
		if last {
			branch, next = "└─", "    "
		}
		fmt.Fprintf(b, "%s%s%d %s\n", indent, branch, i, describe(child))
		inspectChildren(b, child, indent+next)
	}
}

func describe(n Node) string {
	head := string(n.Kind())
	if p, ok := n.(Parent); ok {
		head += "[" + strconv.Itoa(len(p.GetChildren())) + "]"
	}

	var fields []string
	switch v := n.(type) {
	case *Root:
		if v.Meta.Len() > 0 {
			fields = append(fields, "meta="+strings.Join(v.Meta.Keys(), ","))
		}
	case *Heading:
		fields = append(fields, "depth="+strconv.Itoa(v.Depth))
	case *List:
		fields = append(fields, "ordered="+strconv.FormatBool(v.Ordered))
		if v.Start != nil {
			fields = append(fields, "start="+strconv.Itoa(*v.Start))
		}
		fields = append(fields, "spread="+strconv.FormatBool(v.Spread))
	case *ListItem:
		fields = append(fields, "spread="+strconv.FormatBool(v.Spread))
	case *Code:
		if v.Lang != "" {
			fields = append(fields, "lang="+v.Lang)
		}
		if v.Meta != "" {
			fields = append(fields, "meta="+strconv.Quote(v.Meta))
		}
		fields = append(fields, strconv.Quote(v.Value))
	case *Link:
		fields = append(fields, "url="+strconv.Quote(v.URL))
		if v.Title != "" {
			fields = append(fields, "title="+strconv.Quote(v.Title))
		}
	case *Image:
		fields = append(fields, "url="+strconv.Quote(v.URL), "alt="+strconv.Quote(v.Alt))
		if v.Title != "" {
			fields = append(fields, "title="+strconv.Quote(v.Title))
		}
	case *Text:
		fields = append(fields, strconv.Quote(v.Value))
	case *InlineCode:
		fields = append(fields, strconv.Quote(v.Value))
	case *Yaml:
		fields = append(fields, strconv.Quote(v.Value))
	case *Import:
		fields = append(fields, strconv.Quote(v.Value))
	case *Export:
		fields = append(fields, strconv.Quote(v.Value))
	case *JSX:
		fields = append(fields, strconv.Quote(v.Value))
	case *Paragraph, *Blockquote, *Strong, *Emphasis, *ThematicBreak, *Break:
	}

	if len(fields) == 0 {
		return head
	}
	return head + " " + strings.Join(fields, " ")
}
