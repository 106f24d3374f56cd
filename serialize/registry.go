package serialize

import (
	"reflect"
	"slices"
	"sync"

	"github.com/signadot/confnode/debug"
)

// Matcher recognizes the types a serializer binding applies to.
type Matcher interface {
	Match(t reflect.Type) bool
}

// MatcherFunc adapts a predicate to a Matcher.
type MatcherFunc func(t reflect.Type) bool

func (f MatcherFunc) Match(t reflect.Type) bool {
	return f(t)
}

type exactMatcher struct {
	t reflect.Type
}

func (m exactMatcher) Match(t reflect.Type) bool {
	return t == m.t
}

// Exact matches exactly t. Exact bindings outrank every structural binding
// of the same registry.
func Exact(t reflect.Type) Matcher {
	return exactMatcher{t: t}
}

// Implements matches types whose value or pointer implements iface.
func Implements(iface reflect.Type) Matcher {
	return MatcherFunc(func(t reflect.Type) bool {
		return t.Implements(iface) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface))
	})
}

// KindOf matches types of any of the given kinds.
func KindOf(ks ...reflect.Kind) Matcher {
	return MatcherFunc(func(t reflect.Type) bool {
		return slices.Contains(ks, t.Kind())
	})
}

type binding struct {
	m    Matcher
	s    Serializer
	prio int
	seq  int
}

// BindOption configures a structural binding.
type BindOption func(*binding)

// Priority orders structural bindings: higher priorities are consulted
// first. Bindings of equal priority are consulted latest registration
// first. The default priority is 0.
func Priority(p int) BindOption {
	return func(b *binding) {
		b.prio = p
	}
}

// Builder collects bindings for a Registry.
type Builder struct {
	parent     *Registry
	exact      map[reflect.Type]Serializer
	structural []binding
}

// NewBuilder returns a Builder for a registry without parent.
func NewBuilder() *Builder {
	return &Builder{exact: map[reflect.Type]Serializer{}}
}

// Register binds s to the types m matches. Matchers made by Exact produce
// exact bindings; a later exact binding for the same type replaces the
// earlier one.
func (b *Builder) Register(m Matcher, s Serializer, opts ...BindOption) *Builder {
	if em, ok := m.(exactMatcher); ok {
		b.exact[em.t] = s
		return b
	}
	bd := binding{m: m, s: s, seq: len(b.structural)}
	for _, o := range opts {
		o(&bd)
	}
	b.structural = append(b.structural, bd)
	return b
}

// RegisterExact binds s to exactly t.
func (b *Builder) RegisterExact(t reflect.Type, s Serializer) *Builder {
	return b.Register(Exact(t), s)
}

// Register binds s to exactly T.
func Register[T any](b *Builder, s Serializer) *Builder {
	return b.RegisterExact(reflect.TypeFor[T](), s)
}

// Build returns an immutable Registry holding the bindings registered so
// far. The Builder may continue to be used afterwards.
func (b *Builder) Build() *Registry {
	r := &Registry{
		parent:     b.parent,
		exact:      make(map[reflect.Type]Serializer, len(b.exact)),
		structural: slices.Clone(b.structural),
	}
	for t, s := range b.exact {
		r.exact[t] = s
	}
	slices.SortStableFunc(r.structural, func(x, y binding) int {
		if x.prio != y.prio {
			return y.prio - x.prio
		}
		return y.seq - x.seq
	})
	return r
}

// Registry resolves serializers for types. A Registry is immutable once
// built and safe for concurrent use.
type Registry struct {
	parent     *Registry
	exact      map[reflect.Type]Serializer
	structural []binding

	cache sync.Map // reflect.Type -> Serializer (nil for a miss)
}

// ChildBuilder returns a Builder for a registry which falls back to r when
// it has no binding for a type. r is not modified.
func (r *Registry) ChildBuilder() *Builder {
	b := NewBuilder()
	b.parent = r
	return b
}

// Parent returns the registry r falls back to, if any.
func (r *Registry) Parent() *Registry {
	return r.parent
}

// Resolve finds the serializer for t: exact bindings first, then
// structural bindings in priority order, then the parent registry.
func (r *Registry) Resolve(t reflect.Type) (Serializer, bool) {
	if t == nil {
		return nil, false
	}
	if v, ok := r.cache.Load(t); ok {
		s, _ := v.(Serializer)
		return s, s != nil
	}
	s := r.resolve(t)
	r.cache.Store(t, s)
	if debug.Resolve() {
		if s == nil {
			debug.Logf("resolve %s: miss\n", t)
		} else {
			debug.Logf("resolve %s: %T\n", t, s)
		}
	}
	return s, s != nil
}

func (r *Registry) resolve(t reflect.Type) Serializer {
	if s, ok := r.exact[t]; ok {
		return s
	}
	for i := range r.structural {
		if r.structural[i].m.Match(t) {
			return r.structural[i].s
		}
	}
	if r.parent != nil {
		s, _ := r.parent.Resolve(t)
		return s
	}
	return nil
}
