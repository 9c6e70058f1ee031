// Package cast converts between host values and native values that cross
// the binding boundary: samples, pixels, ranges, data types, images and
// structured results.
//
// Host values are modelled by Value, a tagged union of the kinds a dynamic
// host hands over. Each converter is a Caster that either loads a Value,
// reports that the value is not for it, or fails hard; a Registry tries
// candidate casters in order the way overload resolution would.
package cast

import (
	"fmt"
	"strings"

	"github.com/born-ml/dipbind/internal/buffer"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindString
	KindList
	KindSlice
	KindRecord
	KindDict
	KindBuffer
)

var kindNames = [...]string{
	KindNone:    "None",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindComplex: "complex",
	KindString:  "str",
	KindList:    "list",
	KindSlice:   "slice",
	KindRecord:  "record",
	KindDict:    "dict",
	KindBuffer:  "buffer",
}

// String returns the host name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Slice is a host slice object. Nil fields are absent.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

// Field is one named entry of a record or dict.
type Field struct {
	Name  string
	Value Value
}

// BufferObject is a host object exposing the buffer protocol.
type BufferObject struct {
	Desc  buffer.Descriptor
	Owner buffer.Owner
}

// Value is a host value.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	c      complex128
	s      string
	list   []Value
	slice  Slice
	name   string // record type name
	fields []Field
	buf    *BufferObject
}

// None returns the host null value.
func None() Value { return Value{kind: KindNone} }

// Bool wraps a host boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a host integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a host float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Complex wraps a host complex number.
func Complex(c complex128) Value { return Value{kind: KindComplex, c: c} }

// String wraps a host string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List wraps a host list.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// SliceOf wraps a host slice.
func SliceOf(s Slice) Value { return Value{kind: KindSlice, slice: s} }

// Buffer wraps a host buffer-protocol object.
func Buffer(desc buffer.Descriptor, owner buffer.Owner) Value {
	return Value{kind: KindBuffer, buf: &BufferObject{Desc: desc, Owner: owner}}
}

// Dict wraps an ordered host dictionary.
func Dict(fields ...Field) Value { return Value{kind: KindDict, fields: fields} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean of a KindBool value.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer of a KindInt value.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float of a KindFloat value.
func (v Value) AsFloat() float64 { return v.f }

// AsComplex returns the complex number of a KindComplex value.
func (v Value) AsComplex() complex128 { return v.c }

// AsString returns the string of a KindString value.
func (v Value) AsString() string { return v.s }

// AsList returns the items of a KindList value.
func (v Value) AsList() []Value { return v.list }

// AsSlice returns the slice of a KindSlice value.
func (v Value) AsSlice() Slice { return v.slice }

// AsBuffer returns the buffer object of a KindBuffer value.
func (v Value) AsBuffer() *BufferObject { return v.buf }

// RecordName returns the type name of a KindRecord value.
func (v Value) RecordName() string { return v.name }

// Fields returns the entries of a KindRecord or KindDict value.
func (v Value) Fields() []Field { return v.fields }

// Get returns the entry called name of a record or dict.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// String formats v the way the host would print it.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return fmt.Sprint(v.i)
	case KindFloat:
		return fmt.Sprint(v.f)
	case KindComplex:
		return fmt.Sprint(v.c)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindSlice:
		return fmt.Sprintf("slice(%s, %s, %s)", optString(v.slice.Start), optString(v.slice.Stop), optString(v.slice.Step))
	case KindRecord:
		parts := make([]string, len(v.fields))
		for i, f := range v.fields {
			parts[i] = f.Name + "=" + f.Value.String()
		}
		return v.name + "(" + strings.Join(parts, ", ") + ")"
	case KindDict:
		parts := make([]string, len(v.fields))
		for i, f := range v.fields {
			parts[i] = fmt.Sprintf("%q: %s", f.Name, f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindBuffer:
		return v.buf.Desc.String()
	default:
		return "<unknown>"
	}
}

func optString(p *int) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprint(*p)
}
