package serialize

import (
	"net/url"
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signadot/confnode/node"
)

// Priorities of the structural bindings in Defaults.
const (
	PriorityEnum   = 30
	PriorityText   = 20
	PriorityScalar = 10
	PriorityBytes  = 6
	PrioritySet    = 5
)

// Defaults returns the root registry holding the built in serializers:
//
//   - exact: string, bool, every int, uint and float type, []byte,
//     time.Duration, time.Time, url.URL, *url.URL, *regexp.Regexp,
//     uuid.UUID, *node.Node
//   - Enum types, by name
//   - encoding.TextMarshaler / TextUnmarshaler types, by text
//   - named scalar types (type Port int), by kind
//   - slices and arrays, sets (map[K]struct{}), maps, pointers, any
//
// The registry is built once and never modified. Extend it with
// ChildBuilder.
var Defaults = sync.OnceValue(func() *Registry {
	b := NewBuilder()
	Register[string](b, String{})
	Register[bool](b, Bool{})
	for _, t := range []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
	} {
		b.RegisterExact(t, Int{})
	}
	for _, t := range []reflect.Type{
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](), reflect.TypeFor[uintptr](),
	} {
		b.RegisterExact(t, Uint{})
	}
	Register[float32](b, Float{})
	Register[float64](b, Float{})
	Register[[]byte](b, Bytes{})
	Register[time.Duration](b, Duration{})
	Register[time.Time](b, Time{})
	Register[url.URL](b, URL{})
	Register[*url.URL](b, URL{})
	Register[*regexp.Regexp](b, Regexp{})
	Register[uuid.UUID](b, UUID{})
	Register[*node.Node](b, Node{})

	b.Register(MatcherFunc(isEnum), EnumNames{}, Priority(PriorityEnum))
	b.Register(MatcherFunc(isText), Text{}, Priority(PriorityText))
	b.Register(KindOf(reflect.String), String{}, Priority(PriorityScalar))
	b.Register(KindOf(reflect.Bool), Bool{}, Priority(PriorityScalar))
	b.Register(KindOf(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64),
		Int{}, Priority(PriorityScalar))
	b.Register(KindOf(reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr),
		Uint{}, Priority(PriorityScalar))
	b.Register(KindOf(reflect.Float32, reflect.Float64), Float{}, Priority(PriorityScalar))
	b.Register(MatcherFunc(func(t reflect.Type) bool {
		return t.Kind() == reflect.Slice && t.Elem() == reflect.TypeFor[byte]()
	}), Bytes{}, Priority(PriorityBytes))
	b.Register(MatcherFunc(isSet), Set{}, Priority(PrioritySet))
	b.Register(KindOf(reflect.Slice, reflect.Array), List{})
	b.Register(KindOf(reflect.Map), Map{})
	b.Register(KindOf(reflect.Pointer), Pointer{})
	b.Register(MatcherFunc(func(t reflect.Type) bool {
		return t.Kind() == reflect.Interface && t.NumMethod() == 0
	}), Any{})
	return b.Build()
})
