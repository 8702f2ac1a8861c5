package serialize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/schema"
)

var (
	fenceRun    = regexp.MustCompile("`{3,}")
	backtickRun = regexp.MustCompile("`+")
	urlScheme   = regexp.MustCompile(`^\w+:`)
	linkEscapes = strings.NewReplacer("(", `\(`, ")", `\)`, `"`, `\"`)
	srcEscapes  = strings.NewReplacer("(", `\(`, ")", `\)`)
	quoteEscape = strings.NewReplacer(`"`, `\"`)
)

// DefaultNodes returns the rules for the Markdown node types
func DefaultNodes() NodeRules {
	return NodeRules{
		schema.Blockquote: func(s *State, node, _ *model.Node, _ int) {
			s.WrapBlock("> ", "", node, func() { s.RenderContent(node) })
		},
		schema.CodeBlock: func(s *State, node, _ *model.Node, _ int) {
			text := node.TextContent()
			fence := "```"
			if runs := fenceRun.FindAllString(text, -1); len(runs) > 0 {
				sort.Strings(runs)
				fence = runs[len(runs)-1] + "`"
			}
			s.Write(fence + stringAttr(node, "params") + "\n")
			s.Text(text, false)
			s.Write("\n")
			s.Write(fence)
			s.CloseBlock(node)
		},
		schema.Heading: func(s *State, node, _ *model.Node, _ int) {
			s.Write(s.Repeat("#", intAttr(node, "level", 1)) + " ")
			s.RenderInline(node)
			s.CloseBlock(node)
		},
		schema.HorizontalRule: func(s *State, node, _ *model.Node, _ int) {
			s.Write("***")
			s.CloseBlock(node)
		},
		schema.BulletList: func(s *State, node, _ *model.Node, _ int) {
			s.RenderList(node, "  ", func(int) string { return "* " })
		},
		schema.OrderedList: func(s *State, node, _ *model.Node, _ int) {
			start := intAttr(node, "order", 1)
			width := len(strconv.Itoa(start + node.ChildCount() - 1))
			space := s.Repeat(" ", width+2)
			s.RenderList(node, space, func(i int) string {
				n := strconv.Itoa(start + i)
				return s.Repeat(" ", width-len(n)) + n + ". "
			})
		},
		schema.ListItem: func(s *State, node, _ *model.Node, _ int) {
			s.RenderContent(node)
		},
		schema.Paragraph: func(s *State, node, _ *model.Node, _ int) {
			s.RenderInline(node)
			s.CloseBlock(node)
		},
		schema.Image: func(s *State, node, _ *model.Node, _ int) {
			out := "![" + s.Esc(stringAttr(node, "alt"), false) + "](" + srcEscapes.Replace(stringAttr(node, "src"))
			if title := stringAttr(node, "title"); title != "" {
				out += ` "` + quoteEscape.Replace(title) + `"`
			}
			s.Write(out + ")")
		},
		schema.HardBreak: func(s *State, node, parent *model.Node, index int) {
			for _, next := range parent.Content[index+1:] {
				if next.Type != node.Type {
					s.Write("\\\n")
					return
				}
			}
		},
		schema.Text: func(s *State, node, _ *model.Node, _ int) {
			s.Text(node.Text, !s.inAutolink)
		},
	}
}

// DefaultMarks returns the rules for the Markdown mark types
func DefaultMarks() MarkRules {
	return MarkRules{
		schema.Em: {
			Open:                     Static("*"),
			Close:                    Static("*"),
			Mixable:                  true,
			ExpelEnclosingWhitespace: true,
		},
		schema.Strong: {
			Open:                     Static("**"),
			Close:                    Static("**"),
			Mixable:                  true,
			ExpelEnclosingWhitespace: true,
		},
		schema.Link: {
			Open: Computed(func(s *State, mark model.Mark, parent *model.Node, index int) string {
				s.inAutolink = isPlainURL(mark, parent, index)
				if s.inAutolink {
					return "<"
				}
				return "["
			}),
			Close: Computed(func(s *State, mark model.Mark, _ *model.Node, _ int) string {
				autolink := s.inAutolink
				s.inAutolink = false
				if autolink {
					return ">"
				}
				out := "](" + linkEscapes.Replace(markString(mark, "href"))
				if title := markString(mark, "title"); title != "" {
					out += ` "` + quoteEscape.Replace(title) + `"`
				}
				return out + ")"
			}),
			Mixable: true,
		},
		schema.Code: {
			Open: Computed(func(_ *State, _ model.Mark, parent *model.Node, index int) string {
				return backticksFor(parent.Content[index], -1)
			}),
			Close: Computed(func(_ *State, _ model.Mark, parent *model.Node, index int) string {
				return backticksFor(parent.Content[index-1], 1)
			}),
			NoEscape: true,
		},
	}
}

// PassthroughBlock writes a passthrough node's value verbatim on lines of
// its own. Every line carries the enclosing block prefix.
func PassthroughBlock(s *State, node, _ *model.Node, _ int) {
	s.EnsureNewLine()
	s.Text(stringAttr(node, "value"), false)
	s.EnsureNewLine()
	s.CloseBlock(node)
}

// PassthroughInline writes a passthrough node's value verbatim within the
// current line
func PassthroughInline(s *State, node, _ *model.Node, _ int) {
	s.Text(stringAttr(node, "value"), false)
}

// PassthroughNodes returns the rules for the passthrough node types
func PassthroughNodes() NodeRules {
	return NodeRules{
		schema.MDXImport:    PassthroughBlock,
		schema.MDXExport:    PassthroughBlock,
		schema.MDXJSX:       PassthroughBlock,
		schema.MDXInlineJSX: PassthroughInline,
	}
}

// backticksFor returns a code span delimiter longer than any backtick run
// in node. side < 0 gives the opening delimiter.
func backticksFor(node *model.Node, side int) string {
	longest := 0
	if node.IsText() {
		for _, run := range backtickRun.FindAllString(node.Text, -1) {
			longest = max(longest, len(run))
		}
	}
	result := "`"
	if longest > 0 && side > 0 {
		result = " `"
	}
	result += strings.Repeat("`", longest)
	if longest > 0 && side < 0 {
		result += " "
	}
	return result
}

// isPlainURL reports whether a link can be written as an autolink: its
// text is exactly its URL and it has no title
func isPlainURL(link model.Mark, parent *model.Node, index int) bool {
	href := markString(link, "href")
	if markString(link, "title") != "" || !urlScheme.MatchString(href) {
		return false
	}
	content := parent.Content[index]
	if !content.IsText() || content.Text != href || len(content.Marks) == 0 || !content.Marks[len(content.Marks)-1].Eq(link) {
		return false
	}
	return index == len(parent.Content)-1 || !link.IsInSet(parent.Content[index+1].Marks)
}

func stringAttr(node *model.Node, name string) string {
	return toString(node.Attr(name))
}

func markString(mark model.Mark, name string) string {
	return toString(mark.Attrs[name])
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func intAttr(node *model.Node, name string, def int) int {
	switch v := node.Attr(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case interface{ Int64() (int64, error) }:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}
