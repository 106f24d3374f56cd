package node

import (
	"bytes"
	"slices"
	"strconv"
)

// Value is the content of a node: null, a scalar, a list of nodes or a map
// of keys to nodes in insertion order.
//
// Values of kind ListKind and MapKind returned by Node.Value share their
// child nodes with the tree; handing such a Value to Node.Set copies them.
type Value struct {
	kind  Kind
	str   string
	b     bool
	i     int64
	f     float64
	bytes []byte

	// Values holds list elements, or map values parallel to fields.
	values []*Node
	fields []string
}

func Null() Value {
	return Value{}
}

func StringValue(s string) Value {
	return Value{kind: StringKind, str: s}
}

func BoolValue(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

func IntValue(i int64) Value {
	return Value{kind: IntKind, i: i}
}

func FloatValue(f float64) Value {
	return Value{kind: FloatKind, f: f}
}

func BytesValue(d []byte) Value {
	return Value{kind: BytesKind, bytes: bytes.Clone(d)}
}

// EmptyList is a list value without elements.
func EmptyList() Value {
	return Value{kind: ListKind}
}

// EmptyMap is a map value without entries.
func EmptyMap() Value {
	return Value{kind: MapKind}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

// Len is the number of children of a container value, 0 otherwise.
func (v Value) Len() int {
	return len(v.values)
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == StringKind
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == BoolKind
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == IntKind
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == FloatKind
}

func (v Value) AsBytes() ([]byte, bool) {
	return v.bytes, v.kind == BytesKind
}

// List returns the elements of a list value.
func (v Value) List() []*Node {
	if v.kind != ListKind {
		return nil
	}
	return slices.Clone(v.values)
}

// Fields returns the keys of a map value in insertion order.
func (v Value) Fields() []string {
	if v.kind != MapKind {
		return nil
	}
	return slices.Clone(v.fields)
}

// Text renders a scalar value the way a string serializer would read it.
// It returns false for null and container values.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case StringKind:
		return v.str, true
	case BoolKind:
		return strconv.FormatBool(v.b), true
	case IntKind:
		return strconv.FormatInt(v.i, 10), true
	case FloatKind:
		return strconv.FormatFloat(v.f, 'g', -1, 64), true
	case BytesKind:
		return string(v.bytes), true
	}
	return "", false
}

func (v Value) String() string {
	switch v.kind {
	case NullKind:
		return "null"
	case StringKind:
		return strconv.Quote(v.str)
	case ListKind:
		return "[" + strconv.Itoa(len(v.values)) + " elements]"
	case MapKind:
		return "{" + strconv.Itoa(len(v.values)) + " entries}"
	}
	s, _ := v.Text()
	return s
}

func (v Value) scalarEqual(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case StringKind:
		return v.str == o.str
	case BoolKind:
		return v.b == o.b
	case IntKind:
		return v.i == o.i
	case FloatKind:
		return v.f == o.f
	case BytesKind:
		return bytes.Equal(v.bytes, o.bytes)
	}
	return false
}

// Interface returns the natural Go representation of a scalar value.
func (v Value) Interface() any {
	switch v.kind {
	case StringKind:
		return v.str
	case BoolKind:
		return v.b
	case IntKind:
		return v.i
	case FloatKind:
		return v.f
	case BytesKind:
		return bytes.Clone(v.bytes)
	}
	return nil
}
