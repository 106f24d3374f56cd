package objmap

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/serialize"
)

// Object is the serializer of structured types. Each field is loaded from
// and saved to the child of the object's node at the field's key. Keys of
// the node that no field covers are left alone.
type Object struct {
	describer Describer
	validate  *validator.Validate
	descs     sync.Map // reflect.Type -> *Descriptor
}

// NewObject returns an Object serializer for the types d describes. A nil
// validate skips field constraints.
func NewObject(d Describer, validate *validator.Validate) *Object {
	return &Object{describer: d, validate: validate}
}

// Describes reports whether t has a descriptor. Types whose description
// fails are reported too, so the failure surfaces on load or save.
func (o *Object) Describes(t reflect.Type) bool {
	d, err := o.describe(t)
	return d != nil || err != nil
}

func (o *Object) describe(t reflect.Type) (*Descriptor, error) {
	if d, ok := o.descs.Load(t); ok {
		return d.(*Descriptor), nil
	}
	d, err := o.describer.Describe(t)
	if err != nil || d == nil {
		return nil, err
	}
	if err := d.check(); err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		if _, err := o.checkConstraint(&f, reflect.Zero(f.Type)); err != nil {
			return nil, fmt.Errorf("%s: field %s: %w", t, f.Name, err)
		}
	}
	o.descs.Store(t, d)
	return d, nil
}

func (o *Object) descriptor(t reflect.Type) (*Descriptor, error) {
	d, err := o.describe(t)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s is not described", serialize.ErrNoSuitableSerializer, t)
	}
	return d, nil
}

// Load loads every field and constructs the instance. A null n loads as
// an empty map.
func (o *Object) Load(s *serialize.Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	d, err := o.descriptor(t)
	if err != nil {
		return reflect.Value{}, err
	}
	if !n.IsNull() && !n.IsMap() {
		return reflect.Value{}, s.Errorf(serialize.ErrTypeCoercion, n, t, "expected a map, got %s", n.Kind())
	}
	vals := make([]reflect.Value, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		c := n.Node(node.Field(f.Key))
		v, err := o.loadField(s, f, c)
		if err != nil {
			return reflect.Value{}, err
		}
		verr, err := o.checkConstraint(f, v)
		if err == nil {
			err = verr
		}
		if err != nil {
			return reflect.Value{}, &serialize.Error{
				Kind:    serialize.ErrConstraintViolation,
				Path:    c.Path(),
				Type:    f.Type,
				Message: fmt.Sprintf("field %s", f.Name),
				Err:     err,
			}
		}
		vals[i] = v
	}
	res, err := d.New(vals)
	if err != nil {
		return reflect.Value{}, s.Errorf(serialize.ErrConstraintViolation, n, t, "%v", err)
	}
	return res, nil
}

// checkConstraint validates v against the constraint of f. The first
// result is the validation failure; the second reports a constraint the
// validator cannot apply to f's type, such as an unknown tag.
func (o *Object) checkConstraint(f *Field, v reflect.Value) (verr, err error) {
	if f.Constraint == "" || o.validate == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid constraint %q: %v", f.Constraint, r)
		}
	}()
	return o.validate.Var(v.Interface(), f.Constraint), nil
}

func (o *Object) loadField(s *serialize.Session, f *Field, c *node.Node) (reflect.Value, error) {
	if !c.IsNull() {
		return s.Load(f.Type, c)
	}
	if f.Required {
		return reflect.Value{}, s.Errorf(serialize.ErrRequiredValueAbsent, c, f.Type, "field %s is required", f.Name)
	}
	if f.Default == nil {
		return s.Load(f.Type, c)
	}
	x, err := f.Default()
	if err != nil {
		return reflect.Value{}, s.Errorf(serialize.ErrTypeCoercion, c, f.Type, "default of %s: %v", f.Name, err)
	}
	if dn, ok := x.(*node.Node); ok {
		v, err := s.Load(f.Type, dn)
		if err != nil {
			return reflect.Value{}, relocate(err, c, fmt.Sprintf("default of %s", f.Name))
		}
		return v, nil
	}
	rv := reflect.ValueOf(x)
	switch {
	case !rv.IsValid():
		return reflect.Zero(f.Type), nil
	case rv.Type().AssignableTo(f.Type):
		res := reflect.New(f.Type).Elem()
		res.Set(rv)
		return res, nil
	case rv.Type().ConvertibleTo(f.Type):
		return rv.Convert(f.Type), nil
	}
	return reflect.Value{}, s.Errorf(serialize.ErrTypeCoercion, c, f.Type, "default of %s has type %s", f.Name, rv.Type())
}

// relocate moves an error raised on a detached default tree to c.
func relocate(err error, c *node.Node, msg string) error {
	var se *serialize.Error
	if !errors.As(err, &se) {
		return err
	}
	return &serialize.Error{Kind: se.Kind, Path: c.Path(), Type: se.Type, Message: msg, Err: err}
}

// Save writes each field to its key below n, converting n to a map first
// if needed. Field comments are set on nodes without a comment.
func (o *Object) Save(s *serialize.Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	d, err := o.descriptor(t)
	if err != nil {
		return err
	}
	if !n.IsMap() {
		if err := n.Set(node.EmptyMap()); err != nil {
			return err
		}
	}
	for i := range d.Fields {
		f := &d.Fields[i]
		c := n.Node(node.Field(f.Key))
		if err := s.Save(f.Type, d.Get(v, i), c); err != nil {
			return err
		}
		if f.Comment != "" && !c.IsVirtual() && c.Comment() == "" {
			c.SetComment(f.Comment)
		}
	}
	return nil
}

// EmptyValue synthesizes an instance as if loaded from an empty map at n.
// Types with required fields fail at the first required field.
func (o *Object) EmptyValue(s *serialize.Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	return o.Load(s, t, n)
}
