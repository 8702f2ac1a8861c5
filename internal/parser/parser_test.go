package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
)

func kinds(nodes []mdast.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = string(n.Kind())
	}
	return out
}

func mustParse(t *testing.T, source string) *mdast.Root {
	t.Helper()
	root, err := Parse(source, DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func TestParseMetadata(t *testing.T) {
	source := `---
title: Test page
component: !<JsRef> 'Button'
---

# Colors
`
	root := mustParse(t, source)

	if got := kinds(root.Children); !reflect.DeepEqual(got, []string{"heading"}) {
		t.Fatalf("children = %v, want [heading]", got)
	}
	if v, _ := root.Meta.Get("title"); v != "Test page" {
		t.Errorf("title = %v", v)
	}
	if v, _ := root.Meta.Get("component"); v != (meta.JSRef{Value: "Button"}) {
		t.Errorf("component = %#v", v)
	}
}

func TestParseTreeKeepsMetadataBlock(t *testing.T) {
	root, err := ParseTree("---yaml\ntitle: Colors\n---\nBody\n", DefaultOptions())
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}
	if got := kinds(root.Children); !reflect.DeepEqual(got, []string{"yaml", "paragraph"}) {
		t.Fatalf("children = %v", got)
	}
	if y := root.Children[0].(*mdast.Yaml); y.Value != "title: Colors" {
		t.Errorf("yaml value = %q", y.Value)
	}
}

func TestParseWithoutMetadata(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"plain", "Just text\n", []string{"paragraph"}},
		{"unterminated fence", "---\ntitle: nope\n", []string{"thematicBreak", "paragraph"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.source)
			if root.Meta != nil {
				t.Errorf("Meta = %v, want nil", root.Meta)
			}
			if got := kinds(root.Children); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("children = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDisabledMetadata(t *testing.T) {
	root, err := Parse("---\ntitle: x\n---\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if root.Meta != nil {
		t.Errorf("Meta = %v, want nil", root.Meta)
	}
}

func TestParseMetadataDecodeError(t *testing.T) {
	_, err := Parse("---\n- a\n- b\n---\n", DefaultOptions())
	var decodeErr *meta.MetadataDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected MetadataDecodeError, got %v", err)
	}
	if decodeErr.Raw != "- a\n- b" {
		t.Errorf("Raw = %q", decodeErr.Raw)
	}
}

func TestParseESMAndJSX(t *testing.T) {
	source := `import { Meta } from '@storybook/addon-docs/blocks';
import Button from './Button';

export const meta = { title: 'Buttons' };

# Buttons

<Button variant="primary">
  Click
</Button>

Text with <Badge /> inline.
`
	root := mustParse(t, source)

	want := []string{"import", "export", "heading", "jsx", "paragraph"}
	if got := kinds(root.Children); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	imp := root.Children[0].(*mdast.Import)
	if imp.Value != "import { Meta } from '@storybook/addon-docs/blocks';\nimport Button from './Button';" {
		t.Errorf("import value = %q", imp.Value)
	}
	exp := root.Children[1].(*mdast.Export)
	if exp.Value != "export const meta = { title: 'Buttons' };" {
		t.Errorf("export value = %q", exp.Value)
	}
	jsx := root.Children[3].(*mdast.JSX)
	if jsx.Value != "<Button variant=\"primary\">\n  Click\n</Button>" {
		t.Errorf("jsx value = %q", jsx.Value)
	}

	para := root.Children[4].(*mdast.Paragraph)
	if got := kinds(para.Children); !reflect.DeepEqual(got, []string{"text", "jsx", "text"}) {
		t.Fatalf("paragraph children = %v", got)
	}
	if inline := para.Children[1].(*mdast.JSX); inline.Value != "<Badge />" {
		t.Errorf("inline jsx = %q", inline.Value)
	}
}

func TestParseImportWordInProse(t *testing.T) {
	root := mustParse(t, "important things\n\nexports grew\n")
	if got := kinds(root.Children); !reflect.DeepEqual(got, []string{"paragraph", "paragraph"}) {
		t.Errorf("children = %v", got)
	}
}

func TestParseMarkdown(t *testing.T) {
	source := "## Heading\n\n" +
		"Some **bold _nested_** and `code` with [a link](https://example.com \"Example\").\n" +
		"Second line\\\nafter break\n\n" +
		"> quoted\n\n" +
		"1. one\n2. two\n\n" +
		"* loose\n\n* list\n\n" +
		"```js title=x\nconst a = 1;\n```\n\n" +
		"---\n\n" +
		"![alt text](/img.png) <https://example.org> \\*not emphasis\\* &amp;\n"
	root := mustParse(t, source)

	want := []string{"heading", "paragraph", "blockquote", "list", "list", "code", "thematicBreak", "paragraph"}
	if got := kinds(root.Children); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	heading := root.Children[0].(*mdast.Heading)
	if heading.Depth != 2 {
		t.Errorf("depth = %d", heading.Depth)
	}

	para := root.Children[1].(*mdast.Paragraph)
	wantInline := []string{"text", "strong", "text", "inlineCode", "text", "link", "text", "break", "text"}
	if got := kinds(para.Children); !reflect.DeepEqual(got, wantInline) {
		t.Fatalf("paragraph children = %v, want %v", got, wantInline)
	}
	strong := para.Children[1].(*mdast.Strong)
	if got := kinds(strong.Children); !reflect.DeepEqual(got, []string{"text", "emphasis"}) {
		t.Errorf("strong children = %v", got)
	}
	link := para.Children[5].(*mdast.Link)
	if link.URL != "https://example.com" || link.Title != "Example" {
		t.Errorf("link = %+v", link)
	}
	if tail := para.Children[6].(*mdast.Text); tail.Value != ".\nSecond line" {
		t.Errorf("text before break = %q", tail.Value)
	}

	ordered := root.Children[3].(*mdast.List)
	if !ordered.Ordered || ordered.Start == nil || *ordered.Start != 1 || ordered.Spread {
		t.Errorf("ordered list = %+v", ordered)
	}
	if len(ordered.Children) != 2 {
		t.Errorf("ordered items = %d", len(ordered.Children))
	}
	bullet := root.Children[4].(*mdast.List)
	if bullet.Ordered || bullet.Start != nil || !bullet.Spread {
		t.Errorf("bullet list = %+v", bullet)
	}

	code := root.Children[5].(*mdast.Code)
	if code.Lang != "js" || code.Meta != "title=x" || code.Value != "const a = 1;" {
		t.Errorf("code = %+v", code)
	}

	last := root.Children[7].(*mdast.Paragraph)
	if got := kinds(last.Children); !reflect.DeepEqual(got, []string{"image", "text", "link", "text"}) {
		t.Fatalf("last paragraph = %v", got)
	}
	img := last.Children[0].(*mdast.Image)
	if img.URL != "/img.png" || img.Alt != "alt text" {
		t.Errorf("image = %+v", img)
	}
	auto := last.Children[2].(*mdast.Link)
	if auto.URL != "https://example.org" {
		t.Errorf("autolink url = %q", auto.URL)
	}
	if tail := last.Children[3].(*mdast.Text); !strings.Contains(tail.Value, "*not emphasis* &") {
		t.Errorf("escapes not resolved: %q", tail.Value)
	}
}
