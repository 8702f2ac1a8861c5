package schema

import (
	"bytes"
	"encoding/json"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "schema.json"

// compile renders the node and mark specs as a draft 2020-12 JSON Schema
// over the document's JSON form and compiles it
func (s *Schema) compile() error {
	defs := make(map[string]any, len(s.nodes)+len(s.marks)+1)
	for _, name := range s.NodeNames() {
		defs["node_"+name] = s.nodeDef(name)
	}
	markNames := s.MarkNames()
	for _, name := range markNames {
		defs["mark_"+name] = markDef(name, s.marks[name])
	}
	defs["mark"] = dispatch("mark_", markNames)

	document := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$ref":    "#/$defs/node_" + s.TopNode,
		"$defs":   defs,
	}
	encoded, err := json.Marshal(document)
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceName, bytes.NewReader(encoded)); err != nil {
		return err
	}
	validator, err := compiler.Compile(resourceName)
	if err != nil {
		return err
	}
	s.validator = validator
	s.document = encoded
	return nil
}

func (s *Schema) nodeDef(name string) map[string]any {
	spec := s.nodes[name]
	properties := map[string]any{
		"type": map[string]any{"const": name},
	}
	required := []string{"type"}

	attrs, attrsRequired := attrsDef(spec.Attrs)
	properties["attrs"] = attrs
	if attrsRequired {
		required = append(required, "attrs")
	}

	if spec.Inline {
		properties["marks"] = map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/mark"},
		}
	}

	if name == Text {
		properties["text"] = map[string]any{"type": "string", "minLength": 1}
		required = append(required, "text")
	}

	if content, minimum := s.contentDef(name); content != nil {
		properties["content"] = content
		if minimum > 0 {
			required = append(required, "content")
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// contentDef returns the array schema for a node's children and the minimum
// child count, or nil when the node takes no children
func (s *Schema) contentDef(name string) (map[string]any, int) {
	terms := s.content[name]
	if len(terms) == 0 {
		return nil, 0
	}

	fixed := terms[:len(terms)-1]
	last := terms[len(terms)-1]
	def := map[string]any{"type": "array"}
	if len(fixed) > 0 {
		prefix := make([]any, 0, len(fixed))
		for _, term := range fixed {
			prefix = append(prefix, dispatch("node_", term.names))
		}
		def["prefixItems"] = prefix
	}
	def["items"] = dispatch("node_", last.names)

	minimum := len(fixed) + last.min
	if minimum > 0 {
		def["minItems"] = minimum
	}
	if last.max >= 0 {
		def["maxItems"] = len(fixed) + last.max
	}
	return def, minimum
}

// dispatch accepts an object whose type is one of names and validates it
// against the matching definition
func dispatch(prefix string, names []string) map[string]any {
	enum := make([]any, 0, len(names))
	branches := make([]any, 0, len(names))
	for _, name := range names {
		enum = append(enum, name)
		branches = append(branches, map[string]any{
			"if": map[string]any{
				"properties": map[string]any{"type": map[string]any{"const": name}},
			},
			"then": map[string]any{"$ref": "#/$defs/" + prefix + name},
		})
	}
	def := map[string]any{
		"type":       "object",
		"required":   []string{"type"},
		"properties": map[string]any{"type": map[string]any{"enum": enum}},
	}
	if len(branches) > 0 {
		def["allOf"] = branches
	}
	return def
}

func markDef(name string, spec MarkSpec) map[string]any {
	attrs, attrsRequired := attrsDef(spec.Attrs)
	required := []string{"type"}
	if attrsRequired {
		required = append(required, "attrs")
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":  map[string]any{"const": name},
			"attrs": attrs,
		},
		"required":             required,
		"additionalProperties": false,
	}
}

// attrsDef returns the schema of an attrs object and whether the object
// itself is required
func attrsDef(specs map[string]AttrSpec) (map[string]any, bool) {
	properties := make(map[string]any, len(specs))
	var required []string
	for _, name := range sortedKeys(specs) {
		properties[name] = true
		if !specs[name].HasDefault {
			required = append(required, name)
		}
	}
	def := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		def["required"] = required
	}
	return def, len(required) > 0
}
