package schema

import (
	"fmt"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gerunddev/mdxbridge/internal/model"
)

// Schema is a compiled set of node and mark types with one designated top
// node type
type Schema struct {
	TopNode string

	nodes     NodeSpecs
	marks     MarkSpecs
	content   map[string][]contentTerm
	markRank  map[string]int
	validator *jsonschema.Schema
	document  []byte
}

// Compose builds the document schema: the Markdown baseline with the
// frontmatter attribute on the document type, the passthrough types, then
// custom types. Baseline types other than the document type are applied
// last, so custom specs cannot replace them. Custom marks override
// baseline marks of the same name.
func Compose(customNodes NodeSpecs, customMarks MarkSpecs) (*Schema, error) {
	baseline := BaselineNodes()

	doc := baseline[Doc]
	docAttrs := make(map[string]AttrSpec, len(doc.Attrs)+1)
	for name, attr := range doc.Attrs {
		docAttrs[name] = attr
	}
	docAttrs[FrontmatterAttr] = Optional(nil)
	doc.Attrs = docAttrs
	delete(baseline, Doc)

	nodes := NodeSpecs{Doc: doc}
	for _, layer := range []NodeSpecs{PassthroughNodes(), customNodes, baseline} {
		for name, spec := range layer {
			nodes[name] = spec
		}
	}

	marks := BaselineMarks()
	for name, spec := range customMarks {
		marks[name] = spec
	}

	return New(Doc, nodes, marks)
}

// New compiles a schema with top as its root node type
func New(top string, nodes NodeSpecs, marks MarkSpecs) (*Schema, error) {
	if _, ok := nodes[top]; !ok {
		return nil, fmt.Errorf("top node type %q is not defined", top)
	}
	if _, ok := nodes[Text]; !ok {
		return nil, fmt.Errorf("schema must define the %q node type", Text)
	}

	s := &Schema{
		TopNode: top,
		nodes:   nodes,
		marks:   marks,
		content: make(map[string][]contentTerm, len(nodes)),
	}
	for _, name := range s.NodeNames() {
		terms, err := parseContent(nodes[name].Content, nodes)
		if err != nil {
			return nil, fmt.Errorf("node type %s: %w", name, err)
		}
		s.content[name] = terms
	}
	s.markRank = rankMarks(marks)
	for _, name := range s.NodeNames() {
		for _, allowed := range nodes[name].Marks {
			if _, ok := marks[allowed]; !ok && !s.isMarkGroup(allowed) && allowed != "_" {
				return nil, fmt.Errorf("node type %s: unknown mark type or group %q", name, allowed)
			}
		}
	}

	if err := s.compile(); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return s, nil
}

// NodeSpec returns the spec of a node type
func (s *Schema) NodeSpec(name string) (NodeSpec, bool) {
	spec, ok := s.nodes[name]
	return spec, ok
}

// MarkSpec returns the spec of a mark type
func (s *Schema) MarkSpec(name string) (MarkSpec, bool) {
	spec, ok := s.marks[name]
	return spec, ok
}

// NodeNames returns the node type names in sorted order
func (s *Schema) NodeNames() []string {
	return sortedKeys(s.nodes)
}

// MarkNames returns the mark type names in sorted order
func (s *Schema) MarkNames() []string {
	return sortedKeys(s.marks)
}

// JSONSchema returns the JSON Schema document the validator was compiled
// from
func (s *Schema) JSONSchema() []byte {
	return s.document
}

// SortMarks returns marks ordered by mark type rank: the Markdown marks in
// the order em, strong, link, code, then other marks by name. Text carrying
// the same marks always ends up with the same mark order.
func (s *Schema) SortMarks(marks []model.Mark) []model.Mark {
	if len(marks) < 2 {
		return marks
	}
	sorted := make([]model.Mark, len(marks))
	copy(sorted, marks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.markRank[sorted[i].Type] < s.markRank[sorted[j].Type]
	})
	return sorted
}

func rankMarks(marks MarkSpecs) map[string]int {
	rank := make(map[string]int, len(marks))
	for _, name := range []string{Em, Strong, Link, Code} {
		if _, ok := marks[name]; ok {
			rank[name] = len(rank)
		}
	}
	for _, name := range sortedKeys(marks) {
		if _, ok := rank[name]; !ok {
			rank[name] = len(rank)
		}
	}
	return rank
}

func (s *Schema) isMarkGroup(name string) bool {
	for _, spec := range s.marks {
		if inList(spec.Group, name) {
			return true
		}
	}
	return false
}

// markMatches reports whether mark type name is covered by a list entry,
// either by name, by group, or by "_"
func (s *Schema) markMatches(entry, name string) bool {
	if entry == "_" || entry == name {
		return true
	}
	spec, ok := s.marks[name]
	return ok && inList(spec.Group, entry)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
