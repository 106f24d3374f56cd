package serialize

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/signadot/confnode/node"
)

// Serializer converts between nodes and Go values of the types it is bound
// to. Load must return a value of exactly type t. Nested values are loaded
// and saved through the Session so that resolution, absence handling,
// cycle tracking and error paths apply to them too.
//
// Load is not called for null nodes; the Session handles those.
type Serializer interface {
	Load(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error)
	Save(s *Session, t reflect.Type, v reflect.Value, n *node.Node) error
}

// Emptier is implemented by serializers which can synthesize a value for
// an absent node under implicit initialization. n is the absent node;
// errors are located below it.
type Emptier interface {
	EmptyValue(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error)
}

// Session carries the state of one load or save call tree.
type Session struct {
	reg      *Registry
	implicit bool
	log      *slog.Logger
	active   map[activeKey]struct{}
}

type activeKey struct {
	t  reflect.Type
	id uintptr
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// Implicit turns implicit initialization on or off. When on, absent values
// are synthesized from their serializer's empty value instead of left zero.
func Implicit(v bool) SessionOption {
	return func(s *Session) {
		s.implicit = v
	}
}

// Logger sets the logger used for debug output.
func Logger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession returns a Session resolving serializers from reg, or from
// Defaults when reg is nil.
func NewSession(reg *Registry, opts ...SessionOption) *Session {
	if reg == nil {
		reg = Defaults()
	}
	s := &Session{
		reg:    reg,
		log:    slog.Default(),
		active: map[activeKey]struct{}{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Registry() *Registry {
	return s.reg
}

func (s *Session) Implicit() bool {
	return s.implicit
}

func (s *Session) Logger() *slog.Logger {
	return s.log
}

// Load loads a value of type t from n.
//
// A null node yields the zero value of t, or with implicit initialization
// the empty value of t's serializer. Types whose serializer has no empty
// value fail with ErrRequiredValueAbsent under implicit initialization.
func (s *Session) Load(t reflect.Type, n *node.Node) (reflect.Value, error) {
	ser, ok := s.reg.Resolve(t)
	if !ok {
		s.log.Debug("no serializer", "type", t, "path", n.Path().String())
		return reflect.Value{}, s.Errorf(ErrNoSuitableSerializer, n, t, "")
	}
	if n.IsNull() {
		return s.absent(ser, t, n)
	}
	key := activeKey{t: t, id: reflect.ValueOf(n).Pointer()}
	if err := s.enter(key, n, t); err != nil {
		return reflect.Value{}, err
	}
	defer delete(s.active, key)
	v, err := ser.Load(s, t, n)
	if err != nil {
		return reflect.Value{}, s.wrap(err, n, t, ErrTypeCoercion)
	}
	return v, nil
}

// EmptyValue returns the value implicit initialization would synthesize
// for t at the absent node n.
func (s *Session) EmptyValue(t reflect.Type, n *node.Node) (reflect.Value, error) {
	ser, ok := s.reg.Resolve(t)
	if !ok {
		return reflect.Value{}, s.Errorf(ErrNoSuitableSerializer, n, t, "")
	}
	return s.empty(ser, t, n)
}

func (s *Session) absent(ser Serializer, t reflect.Type, n *node.Node) (reflect.Value, error) {
	if !s.implicit {
		return reflect.Zero(t), nil
	}
	return s.empty(ser, t, n)
}

func (s *Session) empty(ser Serializer, t reflect.Type, n *node.Node) (reflect.Value, error) {
	e, ok := ser.(Emptier)
	if !ok {
		return reflect.Value{}, s.Errorf(ErrRequiredValueAbsent, n, t, "no default for %s", t)
	}
	v, err := e.EmptyValue(s, t, n)
	if err != nil {
		return reflect.Value{}, s.wrap(err, n, t, ErrRequiredValueAbsent)
	}
	return v, nil
}

// Save writes v, a value assignable to t, into n. Nil pointers, maps,
// slices and interfaces remove n from its parent.
func (s *Session) Save(t reflect.Type, v reflect.Value, n *node.Node) error {
	ser, ok := s.reg.Resolve(t)
	if !ok {
		s.log.Debug("no serializer", "type", t, "path", n.Path().String())
		return s.Errorf(ErrNoSuitableSerializer, n, t, "")
	}
	if !v.IsValid() || isNil(v) {
		return s.wrap(n.Set(nil), n, t, node.ErrStructuralMismatch)
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		if v.Len() == 0 {
			break
		}
		fallthrough
	case reflect.Pointer:
		key := activeKey{t: t, id: v.Pointer()}
		if err := s.enter(key, n, t); err != nil {
			return err
		}
		defer delete(s.active, key)
	}
	if err := ser.Save(s, t, v, n); err != nil {
		return s.wrap(err, n, t, ErrTypeCoercion)
	}
	return nil
}

func (s *Session) enter(key activeKey, n *node.Node, t reflect.Type) error {
	if _, ok := s.active[key]; ok {
		s.log.Debug("cycle detected", "type", t, "path", n.Path().String())
		return s.Errorf(ErrCyclicStructure, n, t, "value already in progress")
	}
	s.active[key] = struct{}{}
	return nil
}

// Errorf returns an *Error of the given kind located at n.
func (s *Session) Errorf(kind error, n *node.Node, t reflect.Type, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Path: n.Path(), Type: t, Message: msg}
}

// wrap locates err at n unless it already carries a location.
func (s *Session) wrap(err error, n *node.Node, t reflect.Type, def error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: kindOf(err, def), Path: n.Path(), Type: t, Err: err}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
