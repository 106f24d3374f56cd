package serialize

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/signadot/confnode/node"
)

// Enum is implemented by integer and string types with a closed set of
// named constants. For integer types the i-th name denotes the value i;
// for string types the names are the values.
//
//	type Color int
//
//	const (
//		Red Color = iota
//		Green
//		Blue
//	)
//
//	func (Color) EnumNames() []string { return []string{"RED", "GREEN", "BLUE"} }
type Enum interface {
	EnumNames() []string
}

var enumType = reflect.TypeFor[Enum]()

func isEnum(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
	}
	return false
}

// enumKey folds case and underscores, so "dark_red", "DarkRed" and
// "DARK_RED" all name the same constant.
func enumKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}

func lookup(names []string, s string) int {
	k := enumKey(s)
	for i, name := range names {
		if enumKey(name) == k {
			return i
		}
	}
	return -1
}

// EnumNames serializes Enum types by constant name. Unknown names fail with
// ErrTypeCoercion. Enums have no empty value: under implicit
// initialization an absent enum is an error unless a default is given.
// A zero value that names no constant, such as "" for string enums, saves
// as absent.
type EnumNames struct{}

func enumNames(t reflect.Type) []string {
	return reflect.New(t).Interface().(Enum).EnumNames()
}

func (EnumNames) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	names := enumNames(t)
	i := lookup(names, s)
	if i == -1 {
		return reflect.Value{}, coercef("%q is not one of %s", s, strings.Join(names, ", "))
	}
	res := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		res.SetString(names[i])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		res.SetUint(uint64(i))
	default:
		res.SetInt(int64(i))
	}
	return res, nil
}

func (EnumNames) Save(_ *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	names := enumNames(t)
	i := -1
	switch v.Kind() {
	case reflect.String:
		i = lookup(names, v.String())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := v.Uint(); u < uint64(len(names)) {
			i = int(u)
		}
	default:
		if x := v.Int(); x >= 0 && x < int64(len(names)) {
			i = int(x)
		}
	}
	switch {
	case i != -1:
		return n.Set(names[i])
	case v.IsZero():
		return n.Set(nil)
	}
	return coercef("%v is not a constant of %s", v, t)
}

type valueEnum struct {
	names  []string
	values []any
}

// NewEnum returns a serializer for a closed set of values of T, named by
// their fmt.Sprint form, usually a String method. Bind it with
// Register[T].
func NewEnum[T comparable](values ...T) Serializer {
	res := &valueEnum{}
	for _, v := range values {
		res.names = append(res.names, fmt.Sprint(v))
		res.values = append(res.values, v)
	}
	return res
}

func (e *valueEnum) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	i := lookup(e.names, s)
	if i == -1 {
		return reflect.Value{}, coercef("%q is not one of %s", s, strings.Join(e.names, ", "))
	}
	return reflect.ValueOf(e.values[i]).Convert(t), nil
}

func (e *valueEnum) Save(_ *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	x := v.Interface()
	for i, val := range e.values {
		if val == x {
			return n.Set(e.names[i])
		}
	}
	if v.IsZero() {
		return n.Set(nil)
	}
	return coercef("%v is not a constant of %s", x, t)
}
