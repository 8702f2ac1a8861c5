// Package serialize writes document trees back to MDX text. Every node and
// mark type is rendered by a rule; the passthrough types write their raw
// value verbatim.
package serialize

import (
	"fmt"
	"sort"

	"github.com/gerunddev/mdxbridge/internal/meta"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/schema"
)

// NodeRule renders node, the index-th child of parent
type NodeRule func(s *State, node, parent *model.Node, index int)

// NodeRules maps node type names to rules
type NodeRules map[string]NodeRule

// DelimFunc computes a mark delimiter for the mark on parent's index-th
// child
type DelimFunc func(s *State, mark model.Mark, parent *model.Node, index int) string

// Delim is a mark delimiter, either fixed text or computed per mark
type Delim struct {
	text string
	fn   DelimFunc
}

// Static returns a fixed delimiter
func Static(text string) Delim {
	return Delim{text: text}
}

// Computed returns a delimiter computed by fn
func Computed(fn DelimFunc) Delim {
	return Delim{fn: fn}
}

func (d Delim) render(s *State, mark model.Mark, parent *model.Node, index int) string {
	if d.fn != nil {
		return d.fn(s, mark, parent, index)
	}
	return d.text
}

// MarkRule describes how a mark is written.
//
// Mixable marks may be opened and closed in a different order than they
// were applied. ExpelEnclosingWhitespace moves leading and trailing
// whitespace of marked text outside the delimiters. NoEscape writes the
// marked text without escaping.
type MarkRule struct {
	Open                     Delim
	Close                    Delim
	Mixable                  bool
	ExpelEnclosingWhitespace bool
	NoEscape                 bool
}

// MarkRules maps mark type names to rules
type MarkRules map[string]MarkRule

// Options configures one serialization
type Options struct {
	// TightLists is the list spacing for lists without a tight attribute
	TightLists bool
	// Frontmatter writes the document's frontmatter attribute as a leading
	// YAML block
	Frontmatter bool
}

// MissingRuleError reports a node or mark type without a rule
type MissingRuleError struct {
	Kind string
	Type string
}

func (e *MissingRuleError) Error() string {
	return fmt.Sprintf("no serializer rule for %s type %q", e.Kind, e.Type)
}

// Serializer writes documents with a fixed rule set
type Serializer struct {
	nodes NodeRules
	marks MarkRules
}

// New creates a serializer using exactly the given rules
func New(nodes NodeRules, marks MarkRules) *Serializer {
	return &Serializer{nodes: nodes, marks: marks}
}

// Compose creates a serializer with the Markdown rules, then the custom
// rules, then the passthrough rules. Custom mark rules override the
// Markdown ones.
func Compose(customNodes NodeRules, customMarks MarkRules) *Serializer {
	nodes := DefaultNodes()
	for name, rule := range customNodes {
		nodes[name] = rule
	}
	for name, rule := range PassthroughNodes() {
		nodes[name] = rule
	}
	marks := DefaultMarks()
	for name, rule := range customMarks {
		marks[name] = rule
	}
	return New(nodes, marks)
}

// Serialize renders the content of doc
func (z *Serializer) Serialize(doc *model.Node, opts Options) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("nil document")
	}
	if err := z.checkRules(doc); err != nil {
		return "", err
	}

	s := newState(z.nodes, z.marks, opts)
	s.RenderContent(doc)
	if s.err != nil {
		return "", s.err
	}
	out := s.String()

	if opts.Frontmatter {
		block, err := frontmatterBlock(doc.Attr(schema.FrontmatterAttr))
		if err != nil {
			return "", err
		}
		out = block + out
	}
	return out, nil
}

// checkRules makes sure every node and mark below doc has a rule
func (z *Serializer) checkRules(doc *model.Node) error {
	var err error
	for _, child := range doc.Content {
		child.Walk(func(n *model.Node) bool {
			if _, ok := z.nodes[n.Type]; !ok {
				err = &MissingRuleError{Kind: "node", Type: n.Type}
				return false
			}
			for _, m := range n.Marks {
				if _, ok := z.marks[m.Type]; !ok {
					err = &MissingRuleError{Kind: "mark", Type: m.Type}
					return false
				}
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func frontmatterBlock(v any) (string, error) {
	var m *meta.Map
	switch v := v.(type) {
	case nil:
		return "", nil
	case *meta.Map:
		m = v
	case map[string]any:
		m = meta.NewMap()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, v[k])
		}
	default:
		return "", fmt.Errorf("frontmatter must be a mapping, got %T", v)
	}
	if m.Len() == 0 {
		return "", nil
	}
	data, err := meta.Encode(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n", nil
}
