package objmap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/serialize"
)

type Point struct {
	X, Y int
}

type Server struct {
	Host   string
	Port   int
	Tags   []string
	Origin Point
	Labels map[string]string
}

type Linked struct {
	Name string
	Next *Linked
}

// Range is only constructed through NewRange.
type Range struct {
	lo, hi int
}

func NewRange(lo, hi int) (Range, error) {
	if lo > hi {
		return Range{}, fmt.Errorf("empty range %d..%d", lo, hi)
	}
	return Range{lo: lo, hi: hi}, nil
}

func structOf[T any](fields ...Field) *Descriptor {
	t := reflect.TypeFor[T]()
	return &Descriptor{
		Type:   t,
		Fields: fields,
		New: func(vals []reflect.Value) (reflect.Value, error) {
			res := reflect.New(t).Elem()
			for i, f := range fields {
				res.FieldByName(f.Name).Set(vals[i])
			}
			return res, nil
		},
		Get: func(v reflect.Value, i int) reflect.Value {
			return v.FieldByName(fields[i].Name)
		},
	}
}

func zeroDefault() (any, error) {
	return 0, nil
}

var (
	intT    = reflect.TypeFor[int]()
	stringT = reflect.TypeFor[string]()

	pointDesc = structOf[Point](
		Field{Name: "X", Key: "x", Type: intT, Required: true},
		Field{Name: "Y", Key: "y", Type: intT, Default: zeroDefault},
	)
	serverDesc = structOf[Server](
		Field{Name: "Host", Key: "host", Type: stringT, Default: func() (any, error) { return "localhost", nil }},
		Field{Name: "Port", Key: "port", Type: intT, Comment: "listen port", Constraint: "min=1,max=65535",
			Default: func() (any, error) { return 8080, nil }},
		Field{Name: "Tags", Key: "tags", Type: reflect.TypeFor[[]string](),
			Default: func() (any, error) { return node.New([]any{"default"}) }},
		Field{Name: "Origin", Key: "origin", Type: reflect.TypeFor[Point]()},
		Field{Name: "Labels", Key: "labels", Type: reflect.TypeFor[map[string]string]()},
	)
	linkedDesc = structOf[Linked](
		Field{Name: "Name", Key: "name", Type: stringT},
		Field{Name: "Next", Key: "next", Type: reflect.TypeFor[*Linked]()},
	)
	rangeDesc = Of(
		[]Field{
			{Name: "lo", Key: "lo", Type: intT, Required: true},
			{Name: "hi", Key: "hi", Type: intT, Required: true},
		},
		func(vals []any) (Range, error) {
			return NewRange(vals[0].(int), vals[1].(int))
		},
		func(r Range, i int) any {
			if i == 0 {
				return r.lo
			}
			return r.hi
		},
	)
)

func testMapper(opts ...Option) *Mapper {
	table := NewTable(pointDesc, serverDesc, linkedDesc, rangeDesc)
	return New(append([]Option{WithDescriber(table)}, opts...)...)
}

func mustNode(t *testing.T, v any) *node.Node {
	t.Helper()
	n, err := node.New(v)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestLoadPoint(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		implicit bool
		want     Point
		wantErr  error
		errPath  string
	}{
		{name: "all present", in: map[string]any{"x": 1, "y": 2}, want: Point{1, 2}},
		{name: "default applies", in: map[string]any{"x": 3}, want: Point{3, 0}},
		{name: "default applies implicitly", in: map[string]any{"x": 3}, implicit: true, want: Point{3, 0}},
		{name: "required absent", in: map[string]any{"y": 2}, wantErr: serialize.ErrRequiredValueAbsent, errPath: "x"},
		{
			name: "required absent implicitly", in: map[string]any{"y": 2}, implicit: true,
			wantErr: serialize.ErrRequiredValueAbsent, errPath: "x",
		},
		{name: "bad member", in: map[string]any{"x": "one"}, wantErr: serialize.ErrTypeCoercion, errPath: "x"},
		{name: "not a map", in: []any{1, 2}, wantErr: serialize.ErrTypeCoercion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMapper(ImplicitInit(tt.implicit))
			got, err := Get[Point](m, mustNode(t, tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				var se *serialize.Error
				if !errors.As(err, &se) || se.Path.String() != tt.errPath {
					t.Errorf("error not located at %q: %v", tt.errPath, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequiredWithoutDefault(t *testing.T) {
	strict := structOf[Point](
		Field{Name: "X", Key: "x", Type: intT, Required: true},
		Field{Name: "Y", Key: "y", Type: intT, Required: true},
	)
	m := New(WithDescriber(NewTable(strict)))
	_, err := Get[Point](m, mustNode(t, map[string]any{"x": 1}))
	if !errors.Is(err, serialize.ErrRequiredValueAbsent) || !strings.Contains(err.Error(), "field Y") {
		t.Errorf("expected Y to be reported, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	m := testMapper()
	got, err := Get[Server](m, mustNode(t, map[string]any{"origin": map[string]any{"x": 1}}))
	if err != nil {
		t.Fatal(err)
	}
	want := Server{Host: "localhost", Port: 8080, Tags: []string{"default"}, Origin: Point{1, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestImplicitNested(t *testing.T) {
	type Limits struct {
		Max   int
		Names []string
	}
	type Outer struct {
		Limits Limits
		Point  Point
	}
	table := NewTable(
		pointDesc,
		structOf[Limits](
			Field{Name: "Max", Key: "max", Type: intT, Default: func() (any, error) { return 10, nil }},
			Field{Name: "Names", Key: "names", Type: reflect.TypeFor[[]string]()},
		),
		structOf[Outer](
			Field{Name: "Limits", Key: "limits", Type: reflect.TypeFor[Limits]()},
			Field{Name: "Point", Key: "point", Type: reflect.TypeFor[Point]()},
		),
	)
	m := New(WithDescriber(table), ImplicitInit(true))

	// Point has a required field, so it cannot be synthesized
	_, err := Get[Outer](m, mustNode(t, map[string]any{}))
	var se *serialize.Error
	if !errors.As(err, &se) || se.Kind != serialize.ErrRequiredValueAbsent || se.Path.String() != "point.x" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "field X") {
		t.Errorf("required field not named: %v", err)
	}

	got, err := Get[Outer](m, mustNode(t, map[string]any{"point": map[string]any{"x": 5}}))
	if err != nil {
		t.Fatal(err)
	}
	want := Outer{
		Limits: Limits{Max: 10, Names: []string{}},
		Point:  Point{5, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	got, err = Get[Outer](New(WithDescriber(table)), mustNode(t, map[string]any{"point": map[string]any{"x": 5}}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Limits.Max != 0 || got.Limits.Names != nil {
		t.Errorf("absent struct without implicit init should be zero: %+v", got.Limits)
	}
}

func TestConstraints(t *testing.T) {
	m := testMapper()
	_, err := Get[Server](m, mustNode(t, map[string]any{"port": 70000}))
	if !errors.Is(err, serialize.ErrConstraintViolation) {
		t.Fatalf("got %v", err)
	}
	var se *serialize.Error
	if !errors.As(err, &se) || se.Path.String() != "port" {
		t.Errorf("not located: %v", err)
	}
	_, err = Get[Range](m, mustNode(t, map[string]any{"lo": 5, "hi": 1}))
	if !errors.Is(err, serialize.ErrConstraintViolation) {
		t.Errorf("constructor failure: got %v", err)
	}
	r, err := Get[Range](m, mustNode(t, map[string]any{"lo": 1, "hi": 5}))
	if err != nil || r != (Range{1, 5}) {
		t.Errorf("got %v, %v", r, err)
	}
}

func TestInvalidConstraint(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		typ        reflect.Type
	}{
		{name: "unknown tag", constraint: "bogus", typ: intT},
		{name: "wrong type", constraint: "len=3", typ: reflect.TypeFor[bool]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			type Flag struct{ V any }
			d := &Descriptor{
				Type:   reflect.TypeFor[Flag](),
				Fields: []Field{{Name: "V", Key: "v", Type: tt.typ, Constraint: tt.constraint}},
				New: func(vals []reflect.Value) (reflect.Value, error) {
					return reflect.ValueOf(Flag{V: vals[0].Interface()}), nil
				},
				Get: func(v reflect.Value, _ int) reflect.Value {
					return reflect.ValueOf(v.Interface().(Flag).V)
				},
			}
			m := New(WithDescriber(NewTable(d)))
			_, err := Get[Flag](m, mustNode(t, map[string]any{"v": 1}))
			if err == nil || !strings.Contains(err.Error(), "invalid constraint") {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m := testMapper()
	in := Server{
		Host:   "example.com",
		Port:   443,
		Tags:   []string{"a", "b"},
		Origin: Point{1, 2},
		Labels: map[string]string{"env": "prod"},
	}
	root := node.NewRoot()
	if err := Set(m, root, in); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"host":   "example.com",
		"port":   int64(443),
		"tags":   []any{"a", "b"},
		"origin": map[string]any{"x": int64(1), "y": int64(2)},
		"labels": map[string]any{"env": "prod"},
	}
	if diff := cmp.Diff(want, root.Interface()); diff != "" {
		t.Errorf("saved tree (-want +got):\n%s", diff)
	}
	once := root.Copy()
	if err := Set(m, root, in); err != nil {
		t.Fatal(err)
	}
	if !node.Equal(once, root) {
		t.Error("saving twice differs from saving once")
	}
	out, err := Get[Server](m, root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestSaveKeepsUnknownKeysAndComments(t *testing.T) {
	m := testMapper()
	root := mustNode(t, map[string]any{"x": 0, "extra": map[string]any{"keep": true}})
	root.Node(node.Field("x")).SetComment("user comment")
	if err := Set(m, root, Point{4, 5}); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"x": int64(4), "y": int64(5), "extra": map[string]any{"keep": true}}
	if diff := cmp.Diff(want, root.Interface()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if c := root.Node(node.Field("x")).Comment(); c != "user comment" {
		t.Errorf("comment overwritten: %q", c)
	}

	srv := node.NewRoot()
	if err := Set(m, srv, Server{Port: 1}); err != nil {
		t.Fatal(err)
	}
	if c := srv.Node(node.Field("port")).Comment(); c != "listen port" {
		t.Errorf("field comment = %q", c)
	}
	if srv.HasChild(node.Field("tags")) || srv.HasChild(node.Field("labels")) {
		t.Errorf("nil members should be absent: %v", srv.Keys())
	}
}

func TestSaveReplacesScalar(t *testing.T) {
	m := testMapper()
	root := mustNode(t, map[string]any{"origin": "nowhere"})
	if err := Set(m, root.Node(node.Field("origin")), Point{1, 1}); err != nil {
		t.Fatal(err)
	}
	if !root.Node(node.Field("origin")).IsMap() {
		t.Error("object save should replace a scalar")
	}
}

func TestCycle(t *testing.T) {
	m := testMapper()
	c := &Linked{Name: "loop"}
	c.Next = c
	err := Set(m, node.NewRoot(), c)
	if !errors.Is(err, serialize.ErrCyclicStructure) {
		t.Fatalf("got %v", err)
	}
	var se *serialize.Error
	if !errors.As(err, &se) || se.Path.String() != "next" {
		t.Errorf("cycle not located: %v", err)
	}

	ok := &Linked{Name: "a", Next: &Linked{Name: "b"}}
	root := node.NewRoot()
	if err := Set(m, root, ok); err != nil {
		t.Fatal(err)
	}
	back, err := Get[*Linked](m, root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ok, back); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRegistryBindingWins(t *testing.T) {
	custom := serialize.Register[Point](serialize.Defaults().ChildBuilder(), pointText{}).Build()
	m := New(WithRegistry(custom), WithDescriber(NewTable(pointDesc)))
	p, err := Get[Point](m, mustNode(t, "3,4"))
	if err != nil {
		t.Fatal(err)
	}
	if p != (Point{3, 4}) {
		t.Errorf("got %v", p)
	}
}

type pointText struct{}

func (pointText) Load(_ *serialize.Session, _ reflect.Type, n *node.Node) (reflect.Value, error) {
	s, _ := n.Value().AsString()
	var p Point
	if _, err := fmt.Sscanf(s, "%d,%d", &p.X, &p.Y); err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(p), nil
}

func (pointText) Save(_ *serialize.Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	p := v.Interface().(Point)
	return n.Set(fmt.Sprintf("%d,%d", p.X, p.Y))
}

func TestUndescribed(t *testing.T) {
	m := New()
	_, err := Get[Point](m, mustNode(t, map[string]any{"x": 1}))
	if !errors.Is(err, serialize.ErrNoSuitableSerializer) {
		t.Errorf("got %v", err)
	}
}

func TestChain(t *testing.T) {
	failing := DescriberFunc(func(t reflect.Type) (*Descriptor, error) {
		if t == reflect.TypeFor[Linked]() {
			return nil, errors.New("boom")
		}
		return nil, nil
	})
	d := Chain(NewTable(pointDesc), failing)
	if got, err := d.Describe(reflect.TypeFor[Point]()); err != nil || got != pointDesc {
		t.Errorf("point: %v %v", got, err)
	}
	if _, err := d.Describe(reflect.TypeFor[Linked]()); err == nil {
		t.Error("expected error")
	}
	if got, err := d.Describe(intT); got != nil || err != nil {
		t.Errorf("int: %v %v", got, err)
	}
}

func TestDescriptorCheck(t *testing.T) {
	dup := structOf[Point](
		Field{Name: "X", Key: "v", Type: intT},
		Field{Name: "Y", Key: "v", Type: intT},
	)
	m := New(WithDescriber(NewTable(dup)))
	if _, err := Get[Point](m, mustNode(t, map[string]any{"v": 1})); err == nil || !strings.Contains(err.Error(), "duplicate key") {
		t.Errorf("got %v", err)
	}
}

func TestTableCompleteBeforeNew(t *testing.T) {
	table := NewTable()
	m := New(WithDescriber(table))
	if _, err := Get[Point](m, mustNode(t, map[string]any{"x": 1})); !errors.Is(err, serialize.ErrNoSuitableSerializer) {
		t.Fatalf("got %v", err)
	}
	table.Add(pointDesc)
	if _, err := Get[Point](m, mustNode(t, map[string]any{"x": 1})); !errors.Is(err, serialize.ErrNoSuitableSerializer) {
		t.Errorf("a built Mapper should keep its resolution: got %v", err)
	}
	p, err := Get[Point](New(WithDescriber(table)), mustNode(t, map[string]any{"x": 1}))
	if err != nil || p != (Point{1, 0}) {
		t.Errorf("got %v, %v", p, err)
	}
}
