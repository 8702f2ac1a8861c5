package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gerunddev/mdxbridge/internal/convert"
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/schema"
	"github.com/gerunddev/mdxbridge/internal/serialize"
)

func newConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	c, err := NewConverter(opts, nil)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return c
}

func documentJSON(t *testing.T, doc *model.Node) string {
	t.Helper()
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	return string(data)
}

func TestRoundTripStability(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	tests := []struct {
		name   string
		source string
	}{
		{"headings", "# One\n\n## Two\n\n###### Six"},
		{"paragraphs", "First paragraph\nwith a soft break.\n\nSecond paragraph."},
		{"blockquote", "> quoted\n>\n> > nested"},
		{"bullet list", "- a\n- b\n- c"},
		{"loose list", "- a\n\n- b"},
		{"ordered list", "3. three\n4. four"},
		{"nested list", "- a\n  1. x\n  2. y\n- b"},
		{"marks", "Some **bold**, _italic_, ***both*** and `code` text."},
		{"links", "A [link](https://example.com \"Title\") and <https://example.com>."},
		{"escaped", "Not \\*emphasis\\* and not \\[a link\\]."},
		{"mixed", "# Title\n\n> **Note:** see [docs](/docs).\n\n- one\n- two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := c.Import(tt.source)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			text, err := c.FromDocument(first)
			if err != nil {
				t.Fatalf("FromDocument() error = %v", err)
			}
			second, err := c.Import(text)
			if err != nil {
				t.Fatalf("Import(serialized) error = %v\n%s", err, text)
			}
			if got, want := documentJSON(t, second), documentJSON(t, first); got != want {
				t.Errorf("round trip changed the document\nserialized:\n%s\ngot:  %s\nwant: %s", text, got, want)
			}
		})
	}
}

func TestRoundTripJSXInContainers(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"blockquote", "> <Foo>\n> bar\n> </Foo>\n", "> <Foo>\n> bar\n> </Foo>\n"},
		{"list item", "- a\n\n  <Foo>\n    x\n  </Foo>\n", "* a\n\n  <Foo>\n    x\n  </Foo>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := c.Import(tt.source)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			text, err := c.FromDocument(first)
			if err != nil {
				t.Fatalf("FromDocument() error = %v", err)
			}
			if text != tt.want {
				t.Errorf("FromDocument() = %q, want %q", text, tt.want)
			}

			second, err := c.Import(text)
			if err != nil {
				t.Fatalf("Import(serialized) error = %v", err)
			}
			if got, want := second.ChildCount(), first.ChildCount(); got != want {
				t.Errorf("top-level nodes after round trip = %d, want %d\n%s", got, want, text)
			}
			if got, want := documentJSON(t, second), documentJSON(t, first); got != want {
				t.Errorf("round trip changed the document\ngot:  %s\nwant: %s", got, want)
			}
		})
	}
}

func TestRoundTripFixture(t *testing.T) {
	opts := DefaultOptions()
	opts.EmitMetaTag = true
	c := newConverter(t, opts)

	source, err := os.ReadFile(filepath.Join("testdata", "design-system.mdx"))
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", "design-system.golden.mdx"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.RoundTrip(string(source))
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	if !bytes.Equal([]byte(got), want) {
		t.Errorf("RoundTrip() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestImportFrontmatter(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	doc, err := c.Import("---\ntitle: Colors\ncomponent: !JsRef Button\n---\n# Colors\n")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	front, ok := doc.Attr(schema.FrontmatterAttr).(*meta.Map)
	if !ok {
		t.Fatalf("frontmatter = %#v", doc.Attr(schema.FrontmatterAttr))
	}
	if v, _ := front.Get("component"); v != (meta.JSRef{Value: "Button"}) {
		t.Errorf("component = %#v", v)
	}
	if got := documentJSON(t, doc); !strings.Contains(got, `"component":{"$type":"JsRef","value":"Button"}`) {
		t.Errorf("document JSON = %s", got)
	}
}

func TestImportWithoutFrontmatterIsUnchanged(t *testing.T) {
	source := "import { Meta } from '@storybook/addon-docs/blocks';\n\n# Plain\n\nNo metadata here."

	plain := newConverter(t, DefaultOptions())
	opts := DefaultOptions()
	opts.EmitMetaTag = true
	rewriting := newConverter(t, opts)

	want, err := plain.Import(source)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	got, err := rewriting.Import(source)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if documentJSON(t, got) != documentJSON(t, want) {
		t.Errorf("metadata rewrite changed a document without metadata")
	}
}

func TestImportMetadataError(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	_, err := c.Import("---\ntitle: [unclosed\n---\nBody")
	var decodeErr *meta.MetadataDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Import() error = %v, want *meta.MetadataDecodeError", err)
	}
}

func TestNormalize(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	root, err := c.Parse("---\ntitle: Design System\n---\nimport { Meta } from '@storybook/addon-docs/blocks';\n\nBody")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	root = c.Normalize(root)

	last, ok := root.Children[len(root.Children)-1].(*mdast.JSX)
	if !ok {
		t.Fatalf("last child = %T, want *mdast.JSX", root.Children[len(root.Children)-1])
	}
	if last.Value != "\n<Meta title=\"Design System\" />\n" {
		t.Errorf("tag = %q", last.Value)
	}
	imports := 0
	for _, child := range root.Children {
		if _, ok := child.(*mdast.Import); ok {
			imports++
		}
	}
	if imports != 1 {
		t.Errorf("got %d imports, want 1", imports)
	}
}

func TestCustomComponents(t *testing.T) {
	opts := DefaultOptions()
	opts.Nodes = schema.NodeSpecs{
		"callout": {Atom: true, Group: "block", Attrs: map[string]schema.AttrSpec{"text": schema.Required()}},
	}
	opts.NodeRules = serialize.NodeRules{
		"callout": func(s *serialize.State, n, _ *model.Node, _ int) {
			s.Write("<Callout>" + n.Attr("text").(string) + "</Callout>")
			s.CloseBlock(n)
		},
	}

	var c *Converter
	opts.JSXToNode = func(n *mdast.JSX, _ convert.Position) *model.Node {
		inner, found := strings.CutPrefix(n.Value, "<Callout>")
		if !found {
			return nil
		}
		node, err := c.Schema().Node("callout", model.Attrs{"text": strings.TrimSuffix(inner, "</Callout>")})
		if err != nil {
			t.Fatalf("Node() error = %v", err)
		}
		return node
	}
	c = newConverter(t, opts)

	doc, err := c.Import("Intro\n\n<Callout>Careful</Callout>\n")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if doc.Child(1).Type != "callout" {
		t.Fatalf("second child = %s, want callout", doc.Child(1).Type)
	}
	out, err := c.FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if out != "Intro\n\n<Callout>Careful</Callout>" {
		t.Errorf("FromDocument() = %q", out)
	}
}

func TestNewConverterRejectsBadSchema(t *testing.T) {
	opts := DefaultOptions()
	opts.Nodes = schema.NodeSpecs{"box": {Content: "missing+", Group: "block"}}
	if _, err := NewConverter(opts, nil); err == nil {
		t.Error("NewConverter() expected an error")
	}
}
