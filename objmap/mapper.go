package objmap

import (
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/serialize"
)

type config struct {
	implicit  bool
	registry  *serialize.Registry
	describer []Describer
	logger    *slog.Logger
	validate  *validator.Validate
}

// Option configures a Mapper.
type Option func(*config)

// ImplicitInit turns implicit initialization on or off. When on, absent
// fields without a default take the empty value of their type instead of
// the zero value.
func ImplicitInit(v bool) Option {
	return func(c *config) { c.implicit = v }
}

// WithRegistry sets the registry the Mapper extends. The default is
// serialize.Defaults().
func WithRegistry(r *serialize.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithDescriber adds describers of structured types, consulted in the
// order given.
func WithDescriber(ds ...Describer) Option {
	return func(c *config) { c.describer = append(c.describer, ds...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithValidator sets the validator checking field constraints. The default
// is validator.New().
func WithValidator(v *validator.Validate) Option {
	return func(c *config) { c.validate = v }
}

// Mapper loads and saves Go values of structured and built in types.
// A Mapper is immutable and safe for concurrent use; the trees it works
// on are not.
type Mapper struct {
	cfg *config
	reg *serialize.Registry
}

// New returns a Mapper. Structured types are bound through an Object
// serializer in a child of the configured registry, for the described
// types the registry does not already handle.
func New(opts ...Option) *Mapper {
	cfg := &config{
		registry: serialize.Defaults(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = serialize.Defaults()
	}
	if cfg.validate == nil {
		cfg.validate = validator.New()
	}
	base := cfg.registry
	obj := NewObject(Chain(cfg.describer...), cfg.validate)
	objects := serialize.MatcherFunc(func(t reflect.Type) bool {
		if _, ok := base.Resolve(t); ok {
			return false
		}
		return obj.Describes(t)
	})
	return &Mapper{
		cfg: cfg,
		reg: base.ChildBuilder().Register(objects, obj).Build(),
	}
}

// Registry returns the registry the Mapper resolves serializers from.
func (m *Mapper) Registry() *serialize.Registry {
	return m.reg
}

func (m *Mapper) session() *serialize.Session {
	return serialize.NewSession(m.reg, serialize.Implicit(m.cfg.implicit), serialize.Logger(m.cfg.logger))
}

// Load loads a value of type t from n.
func (m *Mapper) Load(t reflect.Type, n *node.Node) (reflect.Value, error) {
	return m.session().Load(t, n)
}

// Save writes v, of type t, to n.
func (m *Mapper) Save(t reflect.Type, v reflect.Value, n *node.Node) error {
	return m.session().Save(t, v, n)
}

// Get loads a T from n.
func Get[T any](m *Mapper, n *node.Node) (T, error) {
	v, err := m.Load(reflect.TypeFor[T](), n)
	if err != nil {
		var zero T
		return zero, err
	}
	res, _ := v.Interface().(T)
	return res, nil
}

// Set saves v to n as a T.
func Set[T any](m *Mapper, n *node.Node, v T) error {
	return m.Save(reflect.TypeFor[T](), reflect.ValueOf(&v).Elem(), n)
}
