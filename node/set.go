package node

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// Set replaces the value of n, attaching n first if it is virtual.
//
// v may be nil (clears n, removing it from its parent), a Value, a *Node
// (deep copied with its comment), a scalar (string, bool, any integer or
// float type, []byte) or a slice, array or string keyed map of such values.
// Containers held by n before the call are detached.
func (n *Node) Set(v any) error {
	if v == nil {
		n.clear()
		return nil
	}
	src, err := build(v)
	if err != nil {
		return err
	}
	if src.value.kind == NullKind {
		n.clear()
		if src.comment != "" {
			n.comment = src.comment
		}
		return nil
	}
	if err := n.attach(); err != nil {
		return err
	}
	n.adopt(src)
	if src.comment != "" {
		n.comment = src.comment
	}
	return nil
}

// clear makes n null. A non root node is removed from its parent.
func (n *Node) clear() {
	if !n.attached {
		return
	}
	if n.parent == nil {
		for _, c := range n.value.values {
			c.detach()
		}
		n.value = Value{}
		return
	}
	n.parent.removeChild(n)
}

// adopt takes over the value of src, which must not be part of any tree.
func (n *Node) adopt(src *Node) {
	for _, c := range n.value.values {
		c.detach()
	}
	n.value = src.value
	for _, c := range n.value.values {
		c.parent = n
	}
	src.value = Value{}
}

// build converts v into a fresh detached tree.
func build(v any) (*Node, error) {
	switch x := v.(type) {
	case *Node:
		if x == nil {
			return &Node{}, nil
		}
		return x.Copy(), nil
	case Value:
		res := &Node{value: x}
		res.value.bytes = bytes.Clone(x.bytes)
		res.value.fields = slices.Clone(x.fields)
		res.value.values = make([]*Node, len(x.values))
		for i, c := range x.values {
			res.value.values[i] = c.copyTo(res)
		}
		return res, nil
	case string:
		return &Node{value: StringValue(x)}, nil
	case bool:
		return &Node{value: BoolValue(x)}, nil
	case []byte:
		return &Node{value: BytesValue(x)}, nil
	case int:
		return &Node{value: IntValue(int64(x))}, nil
	case int64:
		return &Node{value: IntValue(x)}, nil
	case float64:
		return &Node{value: FloatValue(x)}, nil
	}
	return buildReflect(reflect.ValueOf(v))
}

func buildReflect(rv reflect.Value) (*Node, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return &Node{}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return &Node{}, nil
		}
		return buildReflect(rv.Elem())
	case reflect.String:
		return &Node{value: StringValue(rv.String())}, nil
	case reflect.Bool:
		return &Node{value: BoolValue(rv.Bool())}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Node{value: IntValue(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
		}
		return &Node{value: IntValue(int64(u))}, nil
	case reflect.Float32, reflect.Float64:
		return &Node{value: FloatValue(rv.Float())}, nil
	case reflect.Slice:
		if rv.IsNil() {
			return &Node{}, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return &Node{value: BytesValue(rv.Bytes())}, nil
		}
		fallthrough
	case reflect.Array:
		res := &Node{value: EmptyList()}
		for i := range rv.Len() {
			c, err := buildReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
			c.parent, c.key, c.attached = res, Index(i), true
			res.value.values = append(res.value.values, c)
		}
		return res, nil
	case reflect.Map:
		if rv.IsNil() {
			return &Node{}, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnsupportedValue, rv.Type().Key())
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		res := &Node{value: EmptyMap()}
		for _, k := range keys {
			c, err := buildReflect(rv.MapIndex(k))
			if err != nil {
				return nil, err
			}
			if c.value.kind == NullKind {
				continue
			}
			c.parent, c.key, c.attached = res, Field(k.String()), true
			res.value.fields = append(res.value.fields, k.String())
			res.value.values = append(res.value.values, c)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Type())
}
