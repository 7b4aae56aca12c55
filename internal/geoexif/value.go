package geoexif

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Value is a normalized EXIF tag value. The set of shapes is closed: a
// scalar (String or Number), an ordered List, or a nested Map. Anything an
// EXIF decoder produces outside these shapes is converted to its string
// representation at the boundary rather than carried through as an opaque
// type.
type Value interface {
	isValue()
}

// String is a scalar text value.
type String string

// Number is a scalar numeric value. Rational tag encodings are reduced to a
// plain float before they become a Number.
type Number float64

// List is an ordered sequence of values.
type List []Value

// Map is a nested mapping of tag names to values.
type Map map[string]Value

func (String) isValue() {}
func (Number) isValue() {}
func (List) isValue()   {}
func (Map) isValue()    {}

// Normalize converts an arbitrary decoded value into the closed Value set.
// Byte sequences decode as UTF-8 when valid, otherwise they degrade to their
// decimal string representation; this conversion never fails.
func Normalize(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return String("")
	case Value:
		return t
	case string:
		return String(t)
	case []byte:
		return normalizeBytes(t)
	case bool:
		return String(strconv.FormatBool(t))
	case int:
		return Number(t)
	case int32:
		return Number(t)
	case int64:
		return Number(t)
	case uint:
		return Number(t)
	case uint32:
		return Number(t)
	case uint64:
		return Number(t)
	case float32:
		return Number(t)
	case float64:
		return Number(t)
	case []interface{}:
		list := make(List, 0, len(t))
		for _, el := range t {
			list = append(list, Normalize(el))
		}
		return list
	case map[string]interface{}:
		m := make(Map, len(t))
		for k, el := range t {
			m[k] = Normalize(el)
		}
		return m
	default:
		// Fallback-to-string rule for every shape outside the closed set.
		return String(fmt.Sprint(t))
	}
}

func normalizeBytes(b []byte) String {
	if utf8.Valid(b) {
		return String(b)
	}
	return String(fmt.Sprint(b))
}

// UnmarshalJSON reconstructs a Map from persisted metadata. Each raw member
// is routed back into the closed Value set, so a store survives a
// save/load cycle with identical shapes.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Map, len(raw))
	for k, v := range raw {
		val, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("tag %q: %w", k, err)
		}
		out[k] = val
	}
	*m = out
	return nil
}

// UnmarshalJSON reconstructs a List from persisted metadata.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(List, 0, len(raw))
	for _, v := range raw {
		val, err := decodeValue(v)
		if err != nil {
			return err
		}
		out = append(out, val)
	}
	*l = out
	return nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			return String(s), nil
		case '{':
			var m Map
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			var l List
			if err := json.Unmarshal(raw, &l); err != nil {
				return nil, err
			}
			return l, nil
		case 't', 'f':
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, err
			}
			return String(strconv.FormatBool(b)), nil
		case 'n':
			return String(""), nil
		default:
			var n float64
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, err
			}
			return Number(n), nil
		}
	}
	return nil, fmt.Errorf("empty value")
}
