package serialize

import (
	"encoding"
	"net/url"
	"reflect"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/signadot/confnode/node"
)

// Duration loads Go duration text ("1m30s") or integer nanoseconds.
type Duration struct{ zeroEmpty }

func (Duration) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	val := n.Value()
	var d time.Duration
	if i, ok := val.AsInt(); ok {
		d = time.Duration(i)
	} else {
		s, err := scalarText(n)
		if err != nil {
			return reflect.Value{}, err
		}
		d, err = time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, coercef("%w", err)
		}
	}
	return reflect.ValueOf(d).Convert(t), nil
}

func (Duration) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(time.Duration(v.Int()).String())
}

// Time uses RFC 3339 text.
type Time struct{ zeroEmpty }

func (Time) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return reflect.Value{}, coercef("%w", err)
	}
	return reflect.ValueOf(tm).Convert(t), nil
}

func (Time) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	tm := v.Interface().(time.Time)
	return n.Set(tm.Format(time.RFC3339Nano))
}

var urlType = reflect.TypeFor[url.URL]()

// URL handles both url.URL and *url.URL.
type URL struct{ zeroEmpty }

func (URL) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	u, err := url.Parse(s)
	if err != nil {
		return reflect.Value{}, coercef("%w", err)
	}
	if t == urlType {
		return reflect.ValueOf(*u), nil
	}
	return reflect.ValueOf(u), nil
}

func (URL) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	switch u := v.Interface().(type) {
	case url.URL:
		return n.Set(u.String())
	case *url.URL:
		return n.Set(u.String())
	}
	return coercef("%s is not a URL", v.Type())
}

// Regexp compiles *regexp.Regexp values from their source text.
type Regexp struct{ zeroEmpty }

func (Regexp) Load(_ *Session, _ reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return reflect.Value{}, coercef("%w", err)
	}
	return reflect.ValueOf(re), nil
}

func (Regexp) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(v.Interface().(*regexp.Regexp).String())
}

// UUID accepts the textual forms understood by uuid.Parse, with or without
// dashes, and 16 raw bytes. It saves the dashed form.
type UUID struct{ zeroEmpty }

func (UUID) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	var (
		u   uuid.UUID
		err error
	)
	if d, ok := n.Value().AsBytes(); ok {
		u, err = uuid.FromBytes(d)
	} else {
		var s string
		if s, err = scalarText(n); err != nil {
			return reflect.Value{}, err
		}
		u, err = uuid.Parse(s)
	}
	if err != nil {
		return reflect.Value{}, coercef("%w", err)
	}
	return reflect.ValueOf(u).Convert(t), nil
}

func (UUID) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(v.Convert(reflect.TypeFor[uuid.UUID]()).Interface().(uuid.UUID).String())
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

func isText(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return false
	}
	pt := reflect.PointerTo(t)
	return pt.Implements(textUnmarshalerType) && (t.Implements(textMarshalerType) || pt.Implements(textMarshalerType))
}

// Text handles types implementing encoding.TextMarshaler and
// encoding.TextUnmarshaler, the latter usually on the pointer.
type Text struct{ zeroEmpty }

func (Text) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	s, err := scalarText(n)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, coercef("%w", err)
	}
	return p.Elem(), nil
}

func (Text) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	if !v.Type().Implements(textMarshalerType) {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	d, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return coercef("%w", err)
	}
	return n.Set(string(d))
}

// Node passes *node.Node subtrees through, copying them in both directions.
type Node struct{}

func (Node) EmptyValue(_ *Session, _ reflect.Type, _ *node.Node) (reflect.Value, error) {
	return reflect.ValueOf(node.NewRoot()), nil
}

func (Node) Load(_ *Session, _ reflect.Type, n *node.Node) (reflect.Value, error) {
	return reflect.ValueOf(n.Copy()), nil
}

func (Node) Save(_ *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	return n.Set(v.Interface().(*node.Node))
}
