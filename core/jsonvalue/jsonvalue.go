// Package jsonvalue defines a closed, tagged-union representation of
// arbitrary JSON data. It exists so the streaming state machines in
// providers/ai can carry vendor tool-call arguments and other dynamic
// payloads without resorting to a bare `any`, which would let unsupported
// shapes (channels, funcs, complex numbers) slip through unnoticed.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonrepair"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindDouble
	KindString
	KindBool
	KindArray
	KindObject
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// Value is a closed tagged union over the JSON data model plus an
// "unsupported" escape hatch for Go values with no JSON representation.
// Only the field matching Kind is meaningful; constructors are responsible
// for keeping the two in sync, never the caller.
type Value struct {
	kind    Kind
	intVal  int64
	dblVal  float64
	strVal  string
	boolVal bool
	arrVal  []Value
	objVal  map[string]Value
	// objKeys records object key order (see ObjectKeys). Encode does not use
	// it: encoding/json writes object keys in sorted order.
	objKeys []string
	// rawVal holds the original Go value when kind is KindUnsupported, purely
	// for diagnostics; it is never encoded.
	rawVal any
}

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Int wraps an integer value.
func Int(i int64) Value { return Value{kind: KindInt, intVal: i} }

// Double wraps a floating-point value.
func Double(f float64) Value { return Value{kind: KindDouble, dblVal: f} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, strVal: s} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Array wraps a slice of values.
func Array(elems []Value) Value { return Value{kind: KindArray, arrVal: elems} }

// Object wraps a map of values; its ObjectKeys are the map's keys in sorted
// order. Use NewObject to build an object that keeps insertion order.
func Object(fields map[string]Value) Value {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Value{kind: KindObject, objVal: fields, objKeys: keys}
}

// ObjectBuilder accumulates object fields in insertion order.
type ObjectBuilder struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty ObjectBuilder.
func NewObject() *ObjectBuilder {
	return &ObjectBuilder{values: map[string]Value{}}
}

// Set assigns a field, preserving first-insertion order on repeated keys.
func (b *ObjectBuilder) Set(key string, val Value) *ObjectBuilder {
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = val
	return b
}

// Build finalizes the builder into a Value.
func (b *ObjectBuilder) Build() Value {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	values := make(map[string]Value, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return Value{kind: KindObject, objVal: values, objKeys: keys}
}

// Unsupported wraps a Go value that has no JSON representation (e.g. a
// function or channel). Encode on such a Value always fails.
func Unsupported(raw any) Value { return Value{kind: KindUnsupported, rawVal: raw} }

// New coerces an arbitrary Go value into a Value, trying variants in a
// fixed order: null, int, double, string, bool, array, object, unsupported.
// The order matters for ambiguous inputs such as json.Number, which is
// tried as an integer before falling back to double.
func New(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Double(f)
		}
		return String(t.String())
	case float32:
		return coerceFloat(float64(t))
	case float64:
		return coerceFloat(t)
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = New(e)
		}
		return Array(elems)
	case []Value:
		return Array(t)
	case map[string]any:
		b := NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.Set(k, New(t[k]))
		}
		return b.Build()
	case map[string]Value:
		return Object(t)
	default:
		return Unsupported(v)
	}
}

// coerceFloat keeps whole-valued floats as doubles rather than silently
// reinterpreting them as ints: JSON does not distinguish 2 from 2.0, and
// collapsing the distinction here would lose a caller's explicit intent.
func coerceFloat(f float64) Value {
	return Double(f)
}

// FromRaw is an alias of New kept for call sites that previously dealt in
// bare `any` and want an explicit "this came from untyped Go data" name.
func FromRaw(v any) Value { return New(v) }

// Raw converts the Value back into a plain Go value (`int64`, `float64`,
// `string`, `bool`, `[]any`, `map[string]any`, or nil). Unsupported values
// return their original wrapped value.
func (v Value) Raw() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindInt:
		return v.intVal
	case KindDouble:
		return v.dblVal
	case KindString:
		return v.strVal
	case KindBool:
		return v.boolVal
	case KindArray:
		out := make([]any, len(v.arrVal))
		for i, e := range v.arrVal {
			out[i] = e.Raw()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.objVal))
		for k, e := range v.objVal {
			out[k] = e.Raw()
		}
		return out
	default:
		return v.rawVal
	}
}

// AsArray returns the array elements, or nil if Kind is not KindArray.
func (v Value) AsArray() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arrVal
}

// AsObject returns the object fields, or nil if Kind is not KindObject.
func (v Value) AsObject() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	return v.objVal
}

// ObjectKeys returns the object's keys in insertion order, or nil if Kind
// is not KindObject.
func (v Value) ObjectKeys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.objKeys
}

// Encode marshals the Value to JSON. KindUnsupported always fails.
func (v Value) Encode() ([]byte, error) {
	if v.kind == KindUnsupported {
		return nil, fmt.Errorf("jsonvalue: cannot encode unsupported value %#v", v.rawVal)
	}
	return json.Marshal(v.Raw())
}

// Decode parses raw JSON bytes into a Value. If the bytes fail to parse as
// JSON, Decode attempts a best-effort repair via jsonrepair before giving
// up — vendor SSE streams occasionally deliver a truncated tool-call
// argument fragment mid-flight, and a repaired partial object is more
// useful to a caller than a hard error.
func Decode(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err == nil {
		return New(raw), nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return Value{}, fmt.Errorf("jsonvalue: decode failed and repair failed: %w", repairErr)
	}

	var repairedRaw any
	dec2 := json.NewDecoder(bytes.NewReader([]byte(repaired)))
	dec2.UseNumber()
	if err := dec2.Decode(&repairedRaw); err != nil {
		return Value{}, fmt.Errorf("jsonvalue: decode failed even after repair: %w", err)
	}
	return New(repairedRaw), nil
}

// Equal reports whether two values are structurally equal. Object field
// order is not significant; array order is.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.intVal == other.intVal
	case KindDouble:
		return v.dblVal == other.dblVal
	case KindString:
		return v.strVal == other.strVal
	case KindBool:
		return v.boolVal == other.boolVal
	case KindArray:
		if len(v.arrVal) != len(other.arrVal) {
			return false
		}
		for i := range v.arrVal {
			if !v.arrVal[i].Equal(other.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.objVal) != len(other.objVal) {
			return false
		}
		for k, e := range v.objVal {
			o, ok := other.objVal[k]
			if !ok || !e.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
