package schema

import (
	"fmt"

	"github.com/gerunddev/mdxbridge/internal/model"
)

// Node creates a node of the given type, filling attribute defaults
func (s *Schema) Node(typ string, attrs model.Attrs, content ...*model.Node) (*model.Node, error) {
	if typ == Text {
		return nil, fmt.Errorf("use Text to create text nodes")
	}
	spec, ok := s.nodes[typ]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
	computed, err := computeAttrs(spec.Attrs, attrs)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", typ, err)
	}
	return &model.Node{Type: typ, Attrs: computed, Content: content}, nil
}

// Text creates a text node. Empty text nodes are not allowed.
func (s *Schema) Text(text string, marks ...model.Mark) (*model.Node, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text nodes are not allowed")
	}
	for _, mark := range marks {
		if _, ok := s.marks[mark.Type]; !ok {
			return nil, fmt.Errorf("unknown mark type %q", mark.Type)
		}
	}
	var set []model.Mark
	if len(marks) > 0 {
		set = marks
	}
	return &model.Node{Type: Text, Text: text, Marks: set}, nil
}

// Mark creates a mark of the given type, filling attribute defaults
func (s *Schema) Mark(typ string, attrs model.Attrs) (model.Mark, error) {
	spec, ok := s.marks[typ]
	if !ok {
		return model.Mark{}, fmt.Errorf("unknown mark type %q", typ)
	}
	computed, err := computeAttrs(spec.Attrs, attrs)
	if err != nil {
		return model.Mark{}, fmt.Errorf("mark %s: %w", typ, err)
	}
	return model.Mark{Type: typ, Attrs: computed}, nil
}

func computeAttrs(specs map[string]AttrSpec, given model.Attrs) (model.Attrs, error) {
	for name := range given {
		if _, ok := specs[name]; !ok {
			return nil, fmt.Errorf("unknown attribute %q", name)
		}
	}
	if len(specs) == 0 {
		return nil, nil
	}
	attrs := make(model.Attrs, len(specs))
	for _, name := range sortedKeys(specs) {
		spec := specs[name]
		if value, ok := given[name]; ok {
			attrs[name] = value
			continue
		}
		if !spec.HasDefault {
			return nil, fmt.Errorf("missing required attribute %q", name)
		}
		attrs[name] = spec.Default
	}
	return attrs, nil
}
