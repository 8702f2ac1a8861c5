package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// JSON renders v as compact JSON text without HTML escaping, so that
// `<`, `>` and `&` come out the way a JavaScript JSON.stringify would write
// them.
func JSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MarshalJSON writes the map as a JSON object in insertion order
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := JSON(key)
		if err != nil {
			return nil, err
		}
		v, err := JSON(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", key, err)
		}
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Map)
	if !ok {
		return fmt.Errorf("metadata must be a JSON object, got %T", v)
	}
	*m = *decoded
	return nil
}

// MarshalJSON writes the reference in its tagged object form
func (r JSRef) MarshalJSON() ([]byte, error) {
	value, err := JSON(r.Value)
	if err != nil {
		return nil, err
	}
	return []byte(`{"$type":"` + JSRefType + `","value":` + value + `}`), nil
}

// DecodeJSON decodes an arbitrary JSON value, turning objects into ordered
// maps and tagged reference objects back into JSRef values. Integral numbers
// decode as int.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if ref, ok := asJSRef(m); ok {
				return ref, nil
			}
			return m, nil
		case '[':
			items := []any{}
			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		return t.Float64()
	default:
		// string, bool or nil
		return t, nil
	}
}

func asJSRef(m *Map) (JSRef, bool) {
	if m.Len() != 2 {
		return JSRef{}, false
	}
	typ, _ := m.Get("$type")
	value, ok := m.Get("value")
	s, isString := value.(string)
	if typ != JSRefType || !ok || !isString {
		return JSRef{}, false
	}
	return JSRef{Value: s}, true
}
