package serialize

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/signadot/confnode/node"
)

// zeroEmpty gives a serializer the zero value of its type as empty value.
type zeroEmpty struct{}

func (zeroEmpty) EmptyValue(_ *Session, t reflect.Type, _ *node.Node) (reflect.Value, error) {
	return reflect.Zero(t), nil
}

func coercef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTypeCoercion}, args...)...)
}

func scalarText(n *node.Node) (string, error) {
	s, ok := n.Value().Text()
	if !ok {
		return "", coercef("expected a scalar, got %s", n.Kind())
	}
	return s, nil
}

// String loads any scalar as its text.
type String struct{ zeroEmpty }

func (String) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	res.SetString(s)
	return res, nil
}

func (String) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(node.StringValue(v.String()))
}

// Bool accepts booleans, integers (non-zero is true) and the words
// true/t/yes/y/1 and false/f/no/n/0 in any case.
type Bool struct{ zeroEmpty }

func (Bool) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	var b bool
	val := n.Value()
	switch val.Kind() {
	case node.BoolKind:
		b, _ = val.AsBool()
	case node.IntKind:
		i, _ := val.AsInt()
		b = i != 0
	case node.StringKind:
		s, _ := val.AsString()
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes", "y", "1":
			b = true
		case "false", "f", "no", "n", "0":
		default:
			return reflect.Value{}, coercef("%q is not a boolean", s)
		}
	default:
		return reflect.Value{}, coercef("cannot convert %s to bool", val.Kind())
	}
	res := reflect.New(t).Elem()
	res.SetBool(b)
	return res, nil
}

func (Bool) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(node.BoolValue(v.Bool()))
}

// Int loads signed integers of any width. Floats must be integral and
// every value must fit the target width.
type Int struct{ zeroEmpty }

func (Int) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	i, err := loadInt(n.Value(), t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	if res.OverflowInt(i) {
		return reflect.Value{}, coercef("%d overflows %s", i, t)
	}
	res.SetInt(i)
	return res, nil
}

func (Int) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(node.IntValue(v.Int()))
}

func loadInt(val node.Value, bits int) (int64, error) {
	switch val.Kind() {
	case node.IntKind:
		i, _ := val.AsInt()
		return i, nil
	case node.FloatKind:
		f, _ := val.AsFloat()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, coercef("%v is not an integer", f)
		}
		return int64(f), nil
	case node.StringKind:
		s, _ := val.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 0, bits)
		if err != nil {
			return 0, coercef("%q: %w", s, err)
		}
		return i, nil
	}
	return 0, coercef("cannot convert %s to an integer", val.Kind())
}

// Uint loads unsigned integers of any width. Negative values fail.
type Uint struct{ zeroEmpty }

func (Uint) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	var u uint64
	val := n.Value()
	if s, ok := val.AsString(); ok {
		x, err := strconv.ParseUint(strings.TrimSpace(s), 0, t.Bits())
		if err != nil {
			return reflect.Value{}, coercef("%q: %w", s, err)
		}
		u = x
	} else {
		i, err := loadInt(val, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		if i < 0 {
			return reflect.Value{}, coercef("%d is negative", i)
		}
		u = uint64(i)
	}
	res := reflect.New(t).Elem()
	if res.OverflowUint(u) {
		return reflect.Value{}, coercef("%d overflows %s", u, t)
	}
	res.SetUint(u)
	return res, nil
}

func (Uint) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	u := v.Uint()
	if u > math.MaxInt64 {
		return coercef("%d does not fit a node integer", u)
	}
	return n.Set(node.IntValue(int64(u)))
}

// Float loads floats, integers and numeric text.
type Float struct{ zeroEmpty }

func (Float) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	var f float64
	val := n.Value()
	switch val.Kind() {
	case node.FloatKind:
		f, _ = val.AsFloat()
	case node.IntKind:
		i, _ := val.AsInt()
		f = float64(i)
	case node.StringKind:
		s, _ := val.AsString()
		x, err := strconv.ParseFloat(strings.TrimSpace(s), t.Bits())
		if err != nil {
			return reflect.Value{}, coercef("%q: %w", s, err)
		}
		f = x
	default:
		return reflect.Value{}, coercef("cannot convert %s to a float", val.Kind())
	}
	res := reflect.New(t).Elem()
	if res.OverflowFloat(f) {
		return reflect.Value{}, coercef("%v overflows %s", f, t)
	}
	res.SetFloat(f)
	return res, nil
}

func (Float) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(node.FloatValue(v.Float()))
}

// Bytes loads byte slices from bytes values or standard base64 text.
type Bytes struct{}

func (Bytes) EmptyValue(_ *Session, t reflect.Type, _ *node.Node) (reflect.Value, error) {
	return reflect.MakeSlice(t, 0, 0), nil
}

func (Bytes) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	val := n.Value()
	var d []byte
	switch val.Kind() {
	case node.BytesKind:
		d, _ = val.AsBytes()
	case node.StringKind:
		s, _ := val.AsString()
		x, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return reflect.Value{}, coercef("invalid base64: %w", err)
		}
		d = x
	default:
		return reflect.Value{}, coercef("cannot convert %s to bytes", val.Kind())
	}
	res := reflect.MakeSlice(t, len(d), len(d))
	reflect.Copy(res, reflect.ValueOf(d))
	return res, nil
}

func (Bytes) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(node.BytesValue(v.Bytes()))
}
