// Package models defines the JSON value the editor works on.
//
// A Value is a recursive sum type: a leaf (string, number, bool or null)
// or a container (object or array). Objects remember insertion order so
// that the editor can display and save keys in the order the document
// had them. Numbers keep their literal text, which lets an untouched
// document round-trip byte for byte through the tree.
package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
)

// Kind identifies which arm of the Value sum type is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
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
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a JSON value. The zero Value is null.
//
// Values returned by accessors share storage with the receiver. Use
// Clone before handing a Value to another owner.
type Value struct {
	kind Kind
	b    bool
	s    string // string content, or the number literal
	obj  *Object
	arr  []Value
}

// Member is one key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a JSON number with the given literal.
func Number(n json.Number) Value { return Value{kind: KindNumber, s: string(n)} }

// Int returns a JSON number holding i.
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// Float returns a JSON number holding f in its shortest representation.
func Float(f float64) Value { return Number(json.Number(strconv.FormatFloat(f, 'g', -1, 64))) }

// ObjectOf returns an object holding members in order. Later duplicates
// overwrite earlier ones in place.
func ObjectOf(members ...Member) Value {
	obj := NewObject()
	for _, m := range members {
		obj.Set(m.Key, m.Value)
	}
	return Value{kind: KindObject, obj: obj}
}

// ArrayOf returns an array holding items.
func ArrayOf(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: KindArray, arr: arr}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsLeaf reports whether v is a string, number, bool or null.
func (v Value) IsLeaf() bool { return v.kind != KindObject && v.kind != KindArray }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool { return !v.IsLeaf() }

// Str returns the content of a string value, or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Num returns the literal of a number value, or "" for other kinds.
func (v Value) Num() json.Number {
	if v.kind != KindNumber {
		return ""
	}
	return json.Number(v.s)
}

// Truth returns the content of a bool value, or false for other kinds.
func (v Value) Truth() bool { return v.kind == KindBool && v.b }

// Object returns the object behind v, or nil when v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	if v.obj == nil {
		return NewObject()
	}
	return v.obj
}

// Items returns the elements of an array value. The slice aliases v.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Len returns the number of entries of a container, 0 for leaves.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return v.Object().Len()
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Keys returns the entry keys of a container in display order. Array
// keys are the decimal indices.
func (v Value) Keys() []string {
	switch v.kind {
	case KindObject:
		return v.Object().Keys()
	case KindArray:
		keys := make([]string, len(v.arr))
		for i := range v.arr {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	default:
		return nil
	}
}

// Get returns the entry stored under key. Array keys are indices.
func (v Value) Get(key string) (Value, bool) {
	switch v.kind {
	case KindObject:
		return v.Object().Get(key)
	case KindArray:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v.arr) {
			return Value{}, false
		}
		return v.arr[i], true
	default:
		return Value{}, false
	}
}

// Put replaces the entry under key. Object keys that do not exist are
// appended; array keys must be in range.
func (v *Value) Put(key string, val Value) error {
	switch v.kind {
	case KindObject:
		if v.obj == nil {
			v.obj = NewObject()
		}
		v.obj.Set(key, val)
		return nil
	case KindArray:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v.arr) {
			return fmt.Errorf("array index %q out of range [0,%d)", key, len(v.arr))
		}
		v.arr[i] = val
		return nil
	default:
		return fmt.Errorf("cannot put %q into a %s", key, v.kind)
	}
}

// Append adds val to the end of an array value.
func (v *Value) Append(val Value) error {
	if v.kind != KindArray {
		return fmt.Errorf("cannot append to a %s", v.kind)
	}
	v.arr = append(v.arr, val)
	return nil
}

// RemoveAt splices element i out of an array value.
func (v *Value) RemoveAt(i int) error {
	if v.kind != KindArray {
		return fmt.Errorf("cannot remove index from a %s", v.kind)
	}
	if i < 0 || i >= len(v.arr) {
		return fmt.Errorf("array index %d out of range [0,%d)", i, len(v.arr))
	}
	v.arr = append(v.arr[:i], v.arr[i+1:]...)
	return nil
}

// Clone returns a deep copy of v that shares no storage with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		return Value{kind: KindObject, obj: v.Object().Clone()}
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, item := range v.arr {
			arr[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal JSON values.
// Object key order is ignored and numbers compare by value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindNumber:
		return numbersEqual(a.s, b.s)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.Object(), b.Object()
		if ao.Len() != bo.Len() {
			return false
		}
		for _, k := range ao.keys {
			bv, ok := bo.Get(k)
			if !ok || !Equal(ao.values[k], bv) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b string) bool {
	if a == b {
		return true
	}
	x, okx := new(big.Float).SetString(a)
	y, oky := new(big.Float).SetString(b)
	if !okx || !oky {
		return false
	}
	return x.Cmp(y) == 0
}

// Interface converts v to the plain Go representation produced by
// encoding/json with UseNumber: map[string]any, []any, string,
// json.Number, bool and nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return json.Number(v.s)
	case KindString:
		return v.s
	case KindObject:
		obj := v.Object()
		m := make(map[string]any, obj.Len())
		for _, k := range obj.keys {
			m[k] = obj.values[k].Interface()
		}
		return m
	case KindArray:
		arr := make([]any, len(v.arr))
		for i, item := range v.arr {
			arr[i] = item.Interface()
		}
		return arr
	default:
		return nil
	}
}

// FromInterface converts a plain Go value (as produced by encoding/json
// or yaml.v3) into a Value. Map keys are sorted since Go maps carry no
// order.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			child, err := FromInterface(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj.Set(k, child)
		}
		return Value{kind: KindObject, obj: obj}, nil
	case []any:
		arr := make([]Value, len(t))
		for i, item := range t {
			child, err := FromInterface(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = child
		}
		return Value{kind: KindArray, arr: arr}, nil
	case Value:
		return t, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}
