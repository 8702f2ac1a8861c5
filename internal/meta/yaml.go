package meta

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MetadataDecodeError reports a metadata block whose payload is not a valid
// YAML mapping. Raw holds the offending block text.
type MetadataDecodeError struct {
	Raw string
	Err error
}

func (e *MetadataDecodeError) Error() string {
	return fmt.Sprintf("failed to decode metadata block: %v", e.Err)
}

func (e *MetadataDecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a YAML metadata payload into an ordered map.
// An empty payload decodes to an empty map.
func Decode(source string) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return nil, &MetadataDecodeError{Raw: source, Err: err}
	}

	// Empty input leaves the document node zeroed
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewMap(), nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return NewMap(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &MetadataDecodeError{
			Raw: source,
			Err: fmt.Errorf("line %d: metadata must be a mapping", root.Line),
		}
	}

	d := &decoder{expanding: make(map[*yaml.Node]bool)}
	value, err := d.decode(root)
	if err != nil {
		return nil, &MetadataDecodeError{Raw: source, Err: err}
	}
	return value.(*Map), nil
}

func isJSRefTag(tag string) bool {
	return tag == JSRefType || tag == "!"+JSRefType
}

// decoder walks a YAML node tree, expanding aliases under the same budget
// yaml.v3 applies when it decodes into Go values
type decoder struct {
	decodeCount int
	aliasCount  int
	aliasDepth  int
	expanding   map[*yaml.Node]bool
}

// allowedAliasRatio returns the share of nodes that may come from alias
// expansion once count nodes have been decoded
func allowedAliasRatio(count int) float64 {
	switch {
	case count <= 400000:
		return 0.99
	case count >= 4000000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(count-400000)/3600000)
	}
}

func (d *decoder) decode(n *yaml.Node) (any, error) {
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, fmt.Errorf("document contains excessive aliasing")
	}

	if isJSRefTag(n.Tag) {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s reference must be a scalar", n.Line, JSRefType)
		}
		return JSRef{Value: n.Value}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.decode(n.Content[0])

	case yaml.AliasNode:
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		d.aliasDepth++
		value, err := d.decode(n.Alias)
		d.aliasDepth--
		delete(d.expanding, n.Alias)
		return value, err

	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]

			// Merge keys splice the referenced mapping(s) in place
			if keyNode.ShortTag() == "!!merge" {
				merged, err := d.decode(valueNode)
				if err != nil {
					return nil, err
				}
				switch v := merged.(type) {
				case *Map:
					m.Merge(v)
				case []any:
					for _, item := range v {
						if sub, ok := item.(*Map); ok {
							m.Merge(sub)
						}
					}
				}
				continue
			}

			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: metadata keys must be scalars", keyNode.Line)
			}
			value, err := d.decode(valueNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, value)
		}
		return m, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			value, err := d.decode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil

	case yaml.ScalarNode:
		return decodeScalar(n)
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func decodeScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!str", "!!timestamp", "!!binary":
		// Timestamps stay in their literal spelling
		return n.Value, nil
	}
	return nil, fmt.Errorf("line %d: unknown tag %q", n.Line, n.Tag)
}

// Encode renders the map back into a YAML document. Code references are
// written with the `!JsRef` shorthand tag so Decode reads them back.
func Encode(m *Map) ([]byte, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	node, err := encodeValue(m)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func encodeValue(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}, nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(val, 'f', 1, 64)}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(val, 'g', -1, 64)}, nil
	case JSRef:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!" + JSRefType, Value: val.Value}, nil
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		val.Range(func(key string, value any) bool {
			var child *yaml.Node
			child, err = encodeValue(value)
			if err != nil {
				return false
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	}
	return nil, fmt.Errorf("unsupported metadata value %T", v)
}
