package oasdoc

import (
	"encoding/json"
	"io"
	"reflect"
)

// Extension is a single specification-extension entry.
type Extension struct {
	Key   string
	Value any
}

// Ext builds an extension entry. Keys conventionally carry the "x-" prefix.
func Ext(key string, value any) Extension { return Extension{Key: key, Value: value} }

// Map is a string-keyed map that remembers insertion order. Setting an
// existing key updates the value in place and keeps the key's original
// position; new keys append. Deserialized values use the generic wire forms:
// nil, bool, string, json.Number, []any and *Map.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap builds a Map from the given entries, applying Set semantics in order.
func NewMap(pairs ...Extension) *Map {
	m := &Map{}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores value under key, appending the key when it is new.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.values == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key and closes the gap in the order. It reports whether the
// key was present.
func (m *Map) Delete(key string) bool {
	if m == nil || m.values == nil {
		return false
	}
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil || len(m.keys) == 0 {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// At returns the entry at position i in insertion order.
func (m *Map) At(i int) (string, any) {
	k := m.keys[i]
	return k, m.values[k]
}

// Range calls fn for each entry in insertion order until fn returns false.
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

// Clone returns a deep copy: nested Maps and slices are cloned, scalar values
// are shared.
func (m *Map) Clone() *Map {
	out := &Map{}
	if m == nil || len(m.keys) == 0 {
		return out
	}
	out.keys = append([]string(nil), m.keys...)
	out.values = make(map[string]any, len(m.keys))
	for k, v := range m.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return (*Map)(nil)
		}
		return t.Clone()
	case Map:
		return *t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Equal reports order-sensitive structural equality. A nil Map equals an
// empty one.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m == nil || o == nil {
		return true
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !deepEqualValue(m.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

// deepEqualValue compares two generic wire values. Numbers compare by literal
// text, nested Maps by their own Equal.
func deepEqualValue(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqualValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		return ok && av.Equal(bv)
	case Map:
		bv, ok := b.(Map)
		return ok && av.Equal(&bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func equalOptStr(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// equalStrSlice treats nil and empty as equal.
func equalStrSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MarshalJSON emits the entries in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	m.Range(func(k string, v any) bool {
		w.Any(k, v)
		return true
	})
	return w.Finish()
}

// UnmarshalJSON replaces the Map with the decoded object, resolving repeated
// keys to the last value at the first position.
func (m *Map) UnmarshalJSON(data []byte) error {
	src := JSONBytes(data)
	tok, err := src.NextToken()
	if err != nil {
		return Issues{{Path: "/", Code: CodeParseError, Message: "unexpected end of input", Cause: err, Offset: -1}}
	}
	if tok.Kind != TokenBeginObject {
		return Issues{{Path: "/", Code: CodeInvalidType, Message: "object expected", Offset: tok.Offset,
			Params: map[string]any{"expected": "object", "got": tokenTypeName(tok)}}}
	}
	v, err := decodeValue(src, tok)
	if err != nil {
		return Issues{{Path: "/", Code: CodeParseError, Message: "malformed input", Cause: err, Offset: -1}}
	}
	if _, err := src.NextToken(); err != io.EOF {
		return Issues{{Path: "/", Code: CodeParseError, Message: "trailing data after document", Offset: -1}}
	}
	*m = *v.(*Map)
	return nil
}

// decodeValue decodes the generic value forms from src, starting at the
// already-read token tok. Object values become *Map, preserving key order.
func decodeValue(src Source, tok Token) (any, error) {
	switch tok.Kind {
	case TokenString:
		return tok.String, nil
	case TokenNumber:
		return json.Number(tok.Number), nil
	case TokenBool:
		return tok.Bool, nil
	case TokenNull:
		return nil, nil
	case TokenBeginArray:
		arr := []any{}
		for {
			t, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if t.Kind == TokenEndArray {
				return arr, nil
			}
			v, err := decodeValue(src, t)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	case TokenBeginObject:
		m := &Map{}
		for {
			t, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if t.Kind == TokenEndObject {
				return m, nil
			}
			if t.Kind != TokenKey {
				return nil, io.ErrUnexpectedEOF
			}
			vt, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(src, vt)
			if err != nil {
				return nil, err
			}
			m.Set(t.String, v)
		}
	default:
		return nil, io.ErrUnexpectedEOF
	}
}
