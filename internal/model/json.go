package model

import (
	"fmt"

	"github.com/gerunddev/mdxbridge/internal/meta"
)

type jsonMark struct {
	Type  string `json:"type"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

type jsonNode struct {
	Type    string     `json:"type"`
	Attrs   Attrs      `json:"attrs,omitempty"`
	Content []*Node    `json:"content,omitempty"`
	Marks   []jsonMark `json:"marks,omitempty"`
	Text    *string    `json:"text,omitempty"`
}

// MarshalJSON writes the ProseMirror JSON form of a mark
func (m Mark) MarshalJSON() ([]byte, error) {
	return marshal(jsonMark{Type: m.Type, Attrs: m.Attrs})
}

// MarshalJSON writes the ProseMirror JSON form of a node
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{Type: n.Type, Attrs: n.Attrs, Content: n.Content}
	for _, m := range n.Marks {
		out.Marks = append(out.Marks, jsonMark{Type: m.Type, Attrs: m.Attrs})
	}
	if n.IsText() {
		text := n.Text
		out.Text = &text
	}
	return marshal(out)
}

// marshal encodes without escaping HTML characters, which markup values are
// full of
func marshal(v any) ([]byte, error) {
	s, err := meta.JSON(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// FromJSON reads a node tree from its ProseMirror JSON form. Object-valued
// attributes decode to *meta.Map so key order survives.
func FromJSON(data []byte) (*Node, error) {
	v, err := meta.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	obj, ok := v.(*meta.Map)
	if !ok {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	return nodeFromMap(obj)
}

func nodeFromMap(obj *meta.Map) (*Node, error) {
	typ, _ := obj.Get("type")
	name, ok := typ.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("node without a type")
	}
	n := &Node{Type: name}

	if raw, ok := obj.Get("attrs"); ok && raw != nil {
		attrs, err := attrsFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		n.Attrs = attrs
	}

	if raw, ok := obj.Get("content"); ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: content must be an array", name)
		}
		for i, item := range items {
			childObj, ok := item.(*meta.Map)
			if !ok {
				return nil, fmt.Errorf("%s: content[%d] must be an object", name, i)
			}
			child, err := nodeFromMap(childObj)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
	}

	if raw, ok := obj.Get("marks"); ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: marks must be an array", name)
		}
		for i, item := range items {
			markObj, ok := item.(*meta.Map)
			if !ok {
				return nil, fmt.Errorf("%s: marks[%d] must be an object", name, i)
			}
			mark, err := markFromMap(markObj)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			n.Marks = append(n.Marks, mark)
		}
	}

	if raw, ok := obj.Get("text"); ok {
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s: text must be a string", name)
		}
		n.Text = text
	}
	return n, nil
}

func markFromMap(obj *meta.Map) (Mark, error) {
	typ, _ := obj.Get("type")
	name, ok := typ.(string)
	if !ok || name == "" {
		return Mark{}, fmt.Errorf("mark without a type")
	}
	m := Mark{Type: name}
	if raw, ok := obj.Get("attrs"); ok && raw != nil {
		attrs, err := attrsFrom(raw)
		if err != nil {
			return Mark{}, fmt.Errorf("mark %s: %w", name, err)
		}
		m.Attrs = attrs
	}
	return m, nil
}

func attrsFrom(raw any) (Attrs, error) {
	obj, ok := raw.(*meta.Map)
	if !ok {
		return nil, fmt.Errorf("attrs must be an object")
	}
	attrs := make(Attrs, obj.Len())
	obj.Range(func(key string, value any) bool {
		attrs[key] = value
		return true
	})
	return attrs, nil
}
