package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single object field. Member order follows the source document.
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON value: exactly one of null, bool, number, string,
// array or object. Values are immutable once constructed; accessors return
// internal slices which callers must not modify.
//
// Object member order is preserved for stable output but is not semantically
// significant: Equal treats objects as unordered key/value sets.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	items   []Value
	members []Member
}

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, boolVal: b} }
func Number(f float64) Value { return Value{kind: KindNumber, numVal: f} }
func String(s string) Value  { return Value{kind: KindString, strVal: s} }

func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindArray, items: copied}
}

func Object(members ...Member) Value {
	copied := make([]Member, len(members))
	copy(copied, members)
	return Value{kind: KindObject, members: copied}
}

// Field builds an object member; convenience for Object literals.
func Field(key string, v Value) Member { return Member{Key: key, Value: v} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) Bool() bool        { return v.boolVal }
func (v Value) Number() float64   { return v.numVal }
func (v Value) Text() string      { return v.strVal }
func (v Value) Items() []Value    { return v.items }
func (v Value) Members() []Member { return v.members }

// Lookup returns the value of the first member with the given key.
func (v Value) Lookup(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether two values hold the same variant and content.
// Arrays compare element-wise in order; objects compare as key/value sets.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Lookup(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface converts the value to the generic form produced by
// encoding/json.Unmarshal (map[string]any, []any, float64, ...). Object
// member order is lost; intended for schema validation and similar bridges.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the value as compact JSON, preserving object member
// order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String renders the value as compact JSON for display.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		data, err := json.Marshal(v.numVal)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindString:
		data, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
