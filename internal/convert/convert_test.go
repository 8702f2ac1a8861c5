package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/parser"
	"github.com/gerunddev/mdxbridge/internal/schema"
)

func newSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Compose(schema.NodeSpecs{
		"my_custom_component": {
			Atom:  true,
			Group: "block",
			Attrs: map[string]schema.AttrSpec{"count": schema.Required()},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return s
}

func convertSource(t *testing.T, c *Converter, source string) *model.Node {
	t.Helper()
	root, err := parser.Parse(source, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	doc, err := c.Convert(root)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return doc
}

func childTypes(n *model.Node) []string {
	var types []string
	for _, child := range n.Content {
		types = append(types, child.Type)
	}
	return types
}

func TestConvertFrontmatter(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "---\ntitle: Design System\n---\n\n# Design System\n\n> Design system for NIBR")

	front, ok := doc.Attr(schema.FrontmatterAttr).(*meta.Map)
	if !ok {
		t.Fatalf("frontmatter = %#v, want *meta.Map", doc.Attr(schema.FrontmatterAttr))
	}
	if title, _ := front.Get("title"); title != "Design System" {
		t.Errorf("title = %v, want Design System", title)
	}

	got := strings.Join(childTypes(doc), ",")
	if got != "heading,blockquote" {
		t.Errorf("children = %s, want heading,blockquote", got)
	}
	for _, child := range doc.Content {
		if child.Type == schema.HorizontalRule {
			t.Error("metadata fence converted to a horizontal rule")
		}
	}
}

func TestConvertWithoutFrontmatter(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "Hello")

	if front := doc.Attr(schema.FrontmatterAttr); front != nil {
		t.Errorf("frontmatter = %#v, want nil", front)
	}
}

func TestConvertPassthrough(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "---\ntitle: Example JSX\n---\nimport Button from '@material-ui/core/Button';\n\n<Button color=\"primary\">Click me</Button>\n\nexport const meta = {};\n")

	want := []struct {
		typ   string
		value string
	}{
		{schema.MDXImport, "import Button from '@material-ui/core/Button';"},
		{schema.MDXJSX, `<Button color="primary">Click me</Button>`},
		{schema.MDXExport, "export const meta = {};"},
	}
	if len(doc.Content) != len(want) {
		t.Fatalf("children = %v, want %d nodes", childTypes(doc), len(want))
	}
	for i, w := range want {
		got := doc.Content[i]
		if got.Type != w.typ || got.Attr("value") != w.value {
			t.Errorf("child %d = %s %q, want %s %q", i, got.Type, got.Attr("value"), w.typ, w.value)
		}
	}
}

func TestConvertInlineJSX(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "Status: <Badge kind=\"ok\" /> done")

	para := doc.Child(0)
	if got := strings.Join(childTypes(para), ","); got != "text,mdx_inline_jsx,text" {
		t.Fatalf("paragraph children = %s", got)
	}
	if v := para.Child(1).Attr("value"); v != `<Badge kind="ok" />` {
		t.Errorf("inline value = %q", v)
	}
}

func TestConvertJSXInContainersIsBlock(t *testing.T) {
	var positions []Position
	hook := func(_ *mdast.JSX, pos Position) *model.Node {
		positions = append(positions, pos)
		return nil
	}
	c := New(newSchema(t), Options{JSXToNode: hook})
	doc := convertSource(t, c, "> <Foo />\n\n- a\n\n  <Bar />\n")

	if got := strings.Join(childTypes(doc.Child(0)), ","); got != "mdx_jsx" {
		t.Errorf("blockquote children = %s", got)
	}
	if got := strings.Join(childTypes(doc.Child(1).Child(0)), ","); got != "paragraph,mdx_jsx" {
		t.Errorf("list item children = %s", got)
	}
	if len(positions) != 2 || positions[0] != Block || positions[1] != Block {
		t.Errorf("positions = %v, want [block block]", positions)
	}
}

func TestConvertJSXHook(t *testing.T) {
	s := newSchema(t)
	var positions []Position
	hook := func(n *mdast.JSX, pos Position) *model.Node {
		positions = append(positions, pos)
		if !strings.HasPrefix(n.Value, "<MyCustomComponent") {
			return nil
		}
		node, err := s.Node("my_custom_component", model.Attrs{"count": 1})
		if err != nil {
			t.Fatalf("Node() error = %v", err)
		}
		return node
	}
	c := New(s, Options{JSXToNode: hook})
	doc := convertSource(t, c, "---\ntitle: Custom components\n---\n\n<MyCustomComponent prop=\"value\" />\n\n<Other />\n\nText <em>inline</em>\n")

	if got := strings.Join(childTypes(doc), ","); got != "my_custom_component,mdx_jsx,paragraph" {
		t.Fatalf("children = %s", got)
	}
	if count := doc.Child(0).Attr("count"); count != 1 {
		t.Errorf("count = %v, want 1", count)
	}

	want := []Position{Block, Block, Inline, Inline}
	if len(positions) != len(want) {
		t.Fatalf("hook called %d times, want %d", len(positions), len(want))
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Errorf("call %d position = %s, want %s", i, positions[i], want[i])
		}
	}
}

func TestConvertMarkAccumulation(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "**_x_**")

	para := doc.Child(0)
	if para.ChildCount() != 1 {
		t.Fatalf("paragraph has %d children, want 1", para.ChildCount())
	}
	text := para.Child(0)
	if text.Text != "x" {
		t.Errorf("text = %q", text.Text)
	}
	if !(model.Mark{Type: schema.Strong}).IsInSet(text.Marks) || !(model.Mark{Type: schema.Em}).IsInSet(text.Marks) {
		t.Errorf("marks = %v, want strong and em", text.Marks)
	}
	if len(text.Marks) != 2 {
		t.Errorf("got %d marks, want 2", len(text.Marks))
	}
}

func TestConvertLinkMarks(t *testing.T) {
	c := New(newSchema(t), Options{})
	doc := convertSource(t, c, "[**bold** link](https://example.com \"Example\") and `code`")

	para := doc.Child(0)
	link := model.Mark{Type: schema.Link, Attrs: model.Attrs{"href": "https://example.com", "title": "Example"}}

	tests := []struct {
		text  string
		marks []model.Mark
	}{
		{"bold", []model.Mark{{Type: schema.Strong}, link}},
		{" link", []model.Mark{link}},
		{" and ", nil},
		{"code", []model.Mark{{Type: schema.Code}}},
	}
	if para.ChildCount() != len(tests) {
		t.Fatalf("paragraph has %d children, want %d", para.ChildCount(), len(tests))
	}
	for i, tt := range tests {
		got := para.Child(i)
		if got.Text != tt.text {
			t.Errorf("child %d text = %q, want %q", i, got.Text, tt.text)
		}
		if !model.SameMarkup(got.Marks, tt.marks) {
			t.Errorf("child %d marks = %v, want %v", i, got.Marks, tt.marks)
		}
	}
}

func TestConvertBlocks(t *testing.T) {
	c := New(newSchema(t), Options{})

	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, doc *model.Node)
	}{
		{
			name:   "heading level",
			source: "### Three",
			check: func(t *testing.T, doc *model.Node) {
				if level := doc.Child(0).Attr("level"); level != 3 {
					t.Errorf("level = %v, want 3", level)
				}
			},
		},
		{
			name:   "tight bullet list",
			source: "- a\n- b\n",
			check: func(t *testing.T, doc *model.Node) {
				list := doc.Child(0)
				if list.Type != schema.BulletList || list.Attr("tight") != true || list.ChildCount() != 2 {
					t.Errorf("list = %s tight=%v items=%d", list.Type, list.Attr("tight"), list.ChildCount())
				}
			},
		},
		{
			name:   "loose ordered list",
			source: "3. a\n\n4. b\n",
			check: func(t *testing.T, doc *model.Node) {
				list := doc.Child(0)
				if list.Type != schema.OrderedList || list.Attr("order") != 3 || list.Attr("tight") != false {
					t.Errorf("list = %s order=%v tight=%v", list.Type, list.Attr("order"), list.Attr("tight"))
				}
			},
		},
		{
			name:   "code block",
			source: "```js title=\"a\"\nlet x = 1\n```\n",
			check: func(t *testing.T, doc *model.Node) {
				code := doc.Child(0)
				if code.Attr("params") != `js title="a"` || code.TextContent() != "let x = 1" {
					t.Errorf("code = params %q text %q", code.Attr("params"), code.TextContent())
				}
			},
		},
		{
			name:   "empty code block",
			source: "```\n```\n",
			check: func(t *testing.T, doc *model.Node) {
				if code := doc.Child(0); code.Type != schema.CodeBlock || code.ChildCount() != 0 {
					t.Errorf("code = %s with %d children", code.Type, code.ChildCount())
				}
			},
		},
		{
			name:   "thematic break",
			source: "a\n\n***\n\nb",
			check: func(t *testing.T, doc *model.Node) {
				if got := strings.Join(childTypes(doc), ","); got != "paragraph,horizontal_rule,paragraph" {
					t.Errorf("children = %s", got)
				}
			},
		},
		{
			name:   "image and hard break",
			source: "![alt text](/img.png)  \nnext",
			check: func(t *testing.T, doc *model.Node) {
				para := doc.Child(0)
				if got := strings.Join(childTypes(para), ","); got != "image,hard_break,text" {
					t.Fatalf("children = %s", got)
				}
				img := para.Child(0)
				if img.Attr("src") != "/img.png" || img.Attr("alt") != "alt text" || img.Attr("title") != nil {
					t.Errorf("image attrs = %v", img.Attrs)
				}
			},
		},
		{
			name:   "list item starting with code",
			source: "- ```\n  x\n  ```\n",
			check: func(t *testing.T, doc *model.Node) {
				item := doc.Child(0).Child(0)
				if got := strings.Join(childTypes(item), ","); got != "paragraph,code_block" {
					t.Errorf("item children = %s", got)
				}
				if item.Child(0).ChildCount() != 0 {
					t.Error("leading paragraph is not empty")
				}
			},
		},
		{
			name:   "empty document",
			source: "",
			check: func(t *testing.T, doc *model.Node) {
				if got := strings.Join(childTypes(doc), ","); got != "paragraph" {
					t.Errorf("children = %s", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, convertSource(t, c, tt.source))
		})
	}
}

func TestConvertInvalidHookResult(t *testing.T) {
	hook := func(*mdast.JSX, Position) *model.Node {
		return &model.Node{Type: "not_in_schema"}
	}
	c := New(newSchema(t), Options{JSXToNode: hook})
	root := &mdast.Root{Children: []mdast.Node{&mdast.JSX{Value: "<X />"}}}

	_, err := c.Convert(root)
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Convert() error = %v, want *schema.ValidationError", err)
	}
}

func TestUnreachableNodeKindError(t *testing.T) {
	err := error(&UnreachableNodeKindError{Kind: "mystery"})
	if err.Error() != `unexpected syntax tree node kind "mystery"` {
		t.Errorf("Error() = %q", err.Error())
	}
}
