package objmap

import (
	"fmt"
	"reflect"
)

// Field describes one member of a structured type.
type Field struct {
	// Name identifies the member in error messages.
	Name string
	// Key is the map key holding the member in a node.
	Key string
	// Type is the declared type of the member.
	Type reflect.Type
	// Default, when set, supplies the value of an absent member. It may
	// return a value of Type (or convertible to it) or a *node.Node, which
	// is loaded as Type.
	Default func() (any, error)
	// Required members must be present.
	Required bool
	// Comment is written to the member's node on save unless the node
	// already has one.
	Comment string
	// Constraint is checked against loaded values, in
	// go-playground/validator tag syntax ("min=1,max=10").
	Constraint string
}

// Descriptor describes a structured type: its fields in order and how to
// construct and read instances.
type Descriptor struct {
	Type   reflect.Type
	Fields []Field
	// New constructs an instance from values parallel to Fields.
	New func(values []reflect.Value) (reflect.Value, error)
	// Get reads field i of an instance.
	Get func(instance reflect.Value, i int) reflect.Value
}

func (d *Descriptor) check() error {
	if d.Type == nil || d.New == nil || d.Get == nil {
		return fmt.Errorf("incomplete descriptor for %v", d.Type)
	}
	keys := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Type == nil {
			return fmt.Errorf("%s: field %s has no type", d.Type, f.Name)
		}
		if keys[f.Key] {
			return fmt.Errorf("%s: duplicate key %q", d.Type, f.Key)
		}
		keys[f.Key] = true
	}
	return nil
}

// Describer supplies descriptors of structured types. Describe returns a
// nil descriptor and nil error for types it does not handle.
type Describer interface {
	Describe(t reflect.Type) (*Descriptor, error)
}

// DescriberFunc adapts a function to a Describer.
type DescriberFunc func(t reflect.Type) (*Descriptor, error)

func (f DescriberFunc) Describe(t reflect.Type) (*Descriptor, error) {
	return f(t)
}

// Chain returns a Describer asking each of ds in order.
func Chain(ds ...Describer) Describer {
	return DescriberFunc(func(t reflect.Type) (*Descriptor, error) {
		for _, d := range ds {
			res, err := d.Describe(t)
			if err != nil || res != nil {
				return res, err
			}
		}
		return nil, nil
	})
}

// Of builds a Descriptor for T from typed construction and access
// functions, for types that are not plain structs or that construct
// through validating constructors.
func Of[T any](fields []Field, build func(values []any) (T, error), get func(x T, i int) any) *Descriptor {
	t := reflect.TypeFor[T]()
	return &Descriptor{
		Type:   t,
		Fields: fields,
		New: func(values []reflect.Value) (reflect.Value, error) {
			xs := make([]any, len(values))
			for i, v := range values {
				xs[i] = v.Interface()
			}
			x, err := build(xs)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&x).Elem(), nil
		},
		Get: func(instance reflect.Value, i int) reflect.Value {
			x := get(instance.Interface().(T), i)
			if x == nil {
				return reflect.Zero(fields[i].Type)
			}
			return reflect.ValueOf(x)
		},
	}
}
