package models

import (
	"fmt"
	"math"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a decoded document node. Integer and Float are separate kinds so a
// whole-valued float keeps its float prefix when it is encoded again.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	items []*Value
	obj   *Object
}

// Null returns a null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Array returns an array value holding items in order.
func Array(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: KindArray, items: items}
}

// ObjectValue wraps obj as a value. A nil obj becomes an empty object.
func ObjectValue(obj *Object) *Value {
	if obj == nil {
		obj = NewObject()
	}
	return &Value{kind: KindObject, obj: obj}
}

// Named returns the single-entry object {name: v}, the shape a named value
// decodes to.
func Named(name string, v *Value) *Value {
	obj := NewObject()
	obj.Set(name, v)
	return ObjectValue(obj)
}

// Kind returns the kind of v. A nil value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is nil or a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, bool) {
	if v == nil || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer payload.
func (v *Value) AsInt() (int64, bool) {
	if v == nil || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload.
func (v *Value) AsFloat() (float64, bool) {
	if v == nil || v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsString returns the string payload.
func (v *Value) AsString() (string, bool) {
	if v == nil || v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Items returns the array elements, or nil if v is not an array.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	return v.items
}

// Append adds items to an array value.
func (v *Value) Append(items ...*Value) {
	if v == nil || v.kind != KindArray {
		return
	}
	v.items = append(v.items, items...)
}

// Object returns the object payload, or nil if v is not an object.
func (v *Value) Object() *Object {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Get looks up key when v is an object.
func (v *Value) Get(key string) (*Value, bool) {
	obj := v.Object()
	if obj == nil {
		return nil, false
	}
	return obj.Get(key)
}

// Native converts v into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any.
func (v *Value) Native() any {
	switch v.Kind() {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for _, e := range v.obj.Entries() {
			out[e.Key] = e.Value.Native()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether a and b are structurally equal. Object comparison is
// by key, ignoring insertion order. Integer and Float never compare equal.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case KindString:
		return a.s == b.s
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
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, e := range a.obj.Entries() {
			other, ok := b.obj.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}
