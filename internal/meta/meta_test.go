package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("title", "Colors")
	m.Set("tags", []any{"a"})
	m.Set("title", "Palette")

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"title", "tags"}) {
		t.Errorf("Keys() = %v, want [title tags]", got)
	}
	if v, _ := m.Get("title"); v != "Palette" {
		t.Errorf("Get(title) = %v, want Palette", v)
	}
}

func TestFoldLaterKeysWin(t *testing.T) {
	first := NewMap()
	first.Set("title", "First")
	first.Set("draft", true)

	second := NewMap()
	second.Set("title", "Second")
	second.Set("order", 2)

	folded := Fold([]*Map{first, second})

	if got := folded.Keys(); !reflect.DeepEqual(got, []string{"title", "draft", "order"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := folded.Get("title"); v != "Second" {
		t.Errorf("title = %v, want Second", v)
	}
	if first.Len() != 2 {
		t.Errorf("Fold mutated its input: len = %d", first.Len())
	}
}

func TestDecode(t *testing.T) {
	source := `title: Test page
truthyValue: true
falseyValue: false
count: 3
ratio: 0.5
empty:
tags: [MaterialDesign, Buttons]
nestedObject:
  hello: world
component: !<JsRef> 'Button'
other: !JsRef Card
`
	m, err := Decode(source)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	wantKeys := []string{"title", "truthyValue", "falseyValue", "count", "ratio", "empty", "tags", "nestedObject", "component", "other"}
	if got := m.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("Keys() = %v, want %v", got, wantKeys)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"title", "Test page"},
		{"truthyValue", true},
		{"falseyValue", false},
		{"count", 3},
		{"ratio", 0.5},
		{"empty", nil},
		{"tags", []any{"MaterialDesign", "Buttons"}},
		{"component", JSRef{Value: "Button"}},
		{"other", JSRef{Value: "Card"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := m.Get(tt.key)
			if !ok {
				t.Fatalf("missing key %q", tt.key)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get(%q) = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}

	nested, _ := m.Get("nestedObject")
	nm, ok := nested.(*Map)
	if !ok {
		t.Fatalf("nestedObject is %T, want *Map", nested)
	}
	if v, _ := nm.Get("hello"); v != "world" {
		t.Errorf("nestedObject.hello = %v", v)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, source := range []string{"", "\n", "# just a comment\n"} {
		m, err := Decode(source)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", source, err)
		}
		if m.Len() != 0 {
			t.Errorf("Decode(%q) len = %d, want 0", source, m.Len())
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"malformed", "title: [unclosed\n"},
		{"not a mapping", "- one\n- two\n"},
		{"scalar", "just text\n"},
		{"unknown tag", "title: !Custom value\n"},
		{"reference to mapping", "component: !JsRef {a: b}\n"},
		{"self-referencing anchor", "items: &a [one, *a]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.source)
			var decodeErr *MetadataDecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected MetadataDecodeError, got %v", err)
			}
			if decodeErr.Raw != tt.source {
				t.Errorf("Raw = %q, want %q", decodeErr.Raw, tt.source)
			}
		})
	}
}

func TestMapJSON(t *testing.T) {
	m := NewMap()
	m.Set("title", "<Colors & Co>")
	m.Set("tags", []any{"a", 1, true})
	nested := NewMap()
	nested.Set("z", 1)
	nested.Set("a", nil)
	m.Set("nested", nested)
	m.Set("component", JSRef{Value: "Button"})

	got, err := JSON(m)
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	want := `{"title":"<Colors & Co>","tags":["a",1,true],"nested":{"z":1,"a":null},"component":{"$type":"JsRef","value":"Button"}}`
	if got != want {
		t.Errorf("JSON() =\n%s\nwant\n%s", got, want)
	}

	decoded, err := DecodeJSON([]byte(got))
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, m) {
		t.Errorf("DecodeJSON() = %#v, want %#v", decoded, m)
	}
}

func TestEncodeDecode(t *testing.T) {
	m := NewMap()
	m.Set("title", "Buttons")
	m.Set("quoted", "true")
	m.Set("draft", false)
	m.Set("order", 4)
	m.Set("tags", []any{"x", "y"})
	m.Set("component", JSRef{Value: "Button"})

	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	back, err := Decode(string(out))
	if err != nil {
		t.Fatalf("Decode of encoded output failed: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(back, m) {
		t.Errorf("round trip mismatch\nencoded:\n%s\ngot:  %#v\nwant: %#v", out, back, m)
	}
}

// nestedAliases builds a mapping whose last key expands to width^depth
// strings through anchors and aliases
func nestedAliases(depth, width int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [" + strings.TrimSuffix(strings.Repeat("lol, ", width), ", ") + "]\n")
	for i := 1; i < depth; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), width), ", ")
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, refs)
	}
	return b.String()
}

func TestDecodeAliases(t *testing.T) {
	m, err := Decode("base: &base {size: small}\nbutton: *base\nwide:\n  <<: *base\n  width: 2\n")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	button, _ := m.Get("button")
	if size, _ := button.(*Map).Get("size"); size != "small" {
		t.Errorf("button.size = %v, want small", size)
	}
	wide, _ := m.Get("wide")
	if got := wide.(*Map).Keys(); !reflect.DeepEqual(got, []string{"size", "width"}) {
		t.Errorf("wide keys = %v", got)
	}

	if _, err := Decode(nestedAliases(3, 9)); err != nil {
		t.Errorf("Decode() of modest aliasing failed: %v", err)
	}
}

func TestDecodeExcessiveAliasing(t *testing.T) {
	source := nestedAliases(8, 9)
	_, err := Decode(source)
	var decodeErr *MetadataDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected MetadataDecodeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "excessive aliasing") {
		t.Errorf("error = %v", err)
	}
}
