package gomap

import (
	"fmt"
	"reflect"

	"github.com/signadot/confnode/loader"
	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/objmap"
)

// DefaultTag is the struct tag key read by a zero Describer.
const DefaultTag = "conf"

// Describer describes Go struct types from their exported fields and
// struct tags:
//
//	type Server struct {
//		Host string        `conf:"default=localhost"`
//		Port int           `conf:"required,comment='listen port',validate='min=1,max=65535'"`
//		Tags []string      `conf:"field=labels,default='[a, b]'"`
//		Internal string    `conf:"-"`
//	}
//
// Tag entries:
//
//   - field=NAME   key of the field, default Naming(field name)
//   - required     the key must be present
//   - default=TEXT value of an absent field, YAML flow text
//   - comment=TEXT comment written with the field
//   - validate=TAG go-playground/validator constraint
//   - omit or -    skip the field
//
// Fields of embedded structs are flattened into the outer struct.
type Describer struct {
	// Tag is the struct tag key, DefaultTag if empty.
	Tag string
	// Naming maps field names to keys, Dashed if nil.
	Naming func(string) string
}

func (d Describer) tag() string {
	if d.Tag == "" {
		return DefaultTag
	}
	return d.Tag
}

func (d Describer) key(name string) string {
	if d.Naming == nil {
		return Dashed(name)
	}
	return d.Naming(name)
}

// Describe returns the descriptor of a struct type, or nil for other
// kinds.
func (d Describer) Describe(t reflect.Type) (*objmap.Descriptor, error) {
	if t.Kind() != reflect.Struct || t.NumField() == 0 {
		return nil, nil
	}
	var (
		fields  []objmap.Field
		indices [][]int
	)
	if err := d.collect(t, nil, &fields, &indices); err != nil {
		return nil, err
	}
	return &objmap.Descriptor{
		Type:   t,
		Fields: fields,
		New: func(values []reflect.Value) (reflect.Value, error) {
			res := reflect.New(t).Elem()
			for i, v := range values {
				res.FieldByIndex(indices[i]).Set(v)
			}
			return res, nil
		},
		Get: func(instance reflect.Value, i int) reflect.Value {
			return instance.FieldByIndex(indices[i])
		},
	}, nil
}

func (d Describer) collect(t reflect.Type, prefix []int, fields *[]objmap.Field, indices *[][]int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)
		parsed, err := ParseStructTag(sf.Tag.Get(d.tag()))
		if err != nil {
			return fmt.Errorf("failed to parse tag on field %s.%s: %w", t, sf.Name, err)
		}
		if _, ok := parsed["omit"]; ok {
			continue
		}
		if _, ok := parsed["-"]; ok {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if err := d.collect(sf.Type, index, fields, indices); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		f, err := d.field(t, sf, parsed)
		if err != nil {
			return err
		}
		for _, prev := range *fields {
			if prev.Key == f.Key {
				return fmt.Errorf("field name conflict in %s: %s and %s both use key %q", t, prev.Name, f.Name, f.Key)
			}
		}
		*fields = append(*fields, f)
		*indices = append(*indices, index)
	}
	return nil
}

func (d Describer) field(t reflect.Type, sf reflect.StructField, parsed map[string]string) (objmap.Field, error) {
	f := objmap.Field{
		Name:       sf.Name,
		Key:        d.key(sf.Name),
		Type:       sf.Type,
		Comment:    parsed["comment"],
		Constraint: parsed["validate"],
	}
	if name, ok := parsed["field"]; ok && name != "" {
		f.Key = name
	}
	if _, ok := parsed["required"]; ok {
		f.Required = true
	}
	if text, ok := parsed["default"]; ok {
		if f.Required {
			return f, fmt.Errorf("field %s.%s cannot be both required and defaulted", t, sf.Name)
		}
		dn, err := loader.Decode([]byte(text), loader.YAML)
		if err != nil {
			return f, fmt.Errorf("invalid default on field %s.%s: %w", t, sf.Name, err)
		}
		f.Default = func() (any, error) {
			return dn.Copy(), nil
		}
	}
	return f, nil
}

var _ objmap.Describer = Describer{}

// NewMapper returns a Mapper describing structs with a zero Describer
// before any describer given in opts.
func NewMapper(opts ...objmap.Option) *objmap.Mapper {
	return objmap.New(append([]objmap.Option{objmap.WithDescriber(Describer{})}, opts...)...)
}

// Load loads a T from n with a mapper made by NewMapper(opts...).
func Load[T any](n *node.Node, opts ...objmap.Option) (T, error) {
	return objmap.Get[T](NewMapper(opts...), n)
}

// Save saves v to n with a mapper made by NewMapper(opts...).
func Save[T any](n *node.Node, v T, opts ...objmap.Option) error {
	return objmap.Set(NewMapper(opts...), n, v)
}
