// Package jsonv is an order-preserving JSON value tree.
//
// A Value is a tagged union over the six JSON kinds. Objects keep their
// members in document order, so "first key that matches" is deterministic,
// and numbers keep the literal text they were written with, so rendering a
// number never reformats it.
//
// Values returned by Parse are treated as immutable by every package in this
// module. Code that needs to edit a document works on Clone().
package jsonv

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which JSON type a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a single JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents, or the number literal
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a JSON number from its literal text, e.g. "42" or "1.50".
// The literal is not validated; Parse only produces valid literals.
func Number(literal string) Value { return Value{kind: KindNumber, s: literal} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// ObjectValue wraps o as a Value. A nil o yields an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean and true when v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string contents and true when v is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Literal returns the number literal and true when v is a number.
func (v Value) Literal() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.s, true
}

// Elems returns the elements of an array, or nil for any other kind.
// The slice must not be modified.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the members of an object, or nil for any other kind.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Clone returns a deep copy of v sharing no containers with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		elems := make([]Value, len(v.arr))
		for i, e := range v.arr {
			elems[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: elems}
	case KindObject:
		o := NewObject()
		v.obj.Each(func(key string, val Value) bool {
			o.Set(key, val.Clone())
			return true
		})
		return Value{kind: KindObject, obj: o}
	default:
		return v
	}
}

// Equal reports whether v and other are the same JSON document, including
// member order and number literal text.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber, KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		a, b := v.obj.m.Oldest(), other.obj.m.Oldest()
		for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
			if a.Key != b.Key || !a.Value.Equal(b.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Object is an ordered set of JSON object members.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// Set adds or replaces a member. A replaced member keeps its position; a new
// member is appended.
func (o *Object) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Get returns the member stored under the exact key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	return o.m.Get(key)
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Each calls fn for every member in order until fn returns false.
func (o *Object) Each(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Keys returns the member names in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
