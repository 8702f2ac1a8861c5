// Package meta holds the decoded document metadata: an ordered mapping of keys
// to YAML-derived values, plus the code reference marker used for component
// references.
package meta

// JSRefType is the tag name of a code reference value, both in YAML
// (`!<JsRef> Button` or `!JsRef Button`) and in its JSON form
// (`{"$type": "JsRef", "value": "Button"}`).
const JSRefType = "JsRef"

// JSRef is a bare code reference. Its Value is emitted verbatim wherever the
// metadata is rendered as markup, so it must already be a valid identifier.
type JSRef struct {
	Value string
}

// Map is an insertion-ordered mapping from metadata keys to values.
//
// Values are one of: string, int, float64, bool, nil, *Map, []any or JSRef.
// Setting an existing key replaces its value but keeps its position.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty map
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys. A nil map has length zero.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in insertion order until fn returns false
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Merge copies every entry of other into m, overwriting keys that already
// exist. It returns m so that merges can be chained.
func (m *Map) Merge(other *Map) *Map {
	other.Range(func(key string, value any) bool {
		m.Set(key, value)
		return true
	})
	return m
}

// Fold merges maps left to right into a fresh map: later keys win.
func Fold(maps []*Map) *Map {
	result := NewMap()
	for _, m := range maps {
		result.Merge(m)
	}
	return result
}
