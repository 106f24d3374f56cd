package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/confnode/node"
)

func mustNode(t *testing.T, v any) *node.Node {
	t.Helper()
	n, err := node.New(v)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func mustPattern(t *testing.T, s string) Pattern {
	t.Helper()
	p, err := ParsePattern(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// record returns an Action appending the visited paths to *res.
func record(res *[]string) Action {
	return func(path node.Path, _ *node.Node) (node.Path, error) {
		*res = append(*res, path.String())
		return nil, nil
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    Pattern
		wantErr bool
	}{
		{in: "", want: Pattern{}},
		{in: "a.b", want: Pattern{node.Field("a"), node.Field("b")}},
		{in: "a.*[0]", want: Pattern{node.Field("a"), nil, node.Index(0)}},
		{in: "*.name", want: Pattern{nil, node.Field("name")}},
		{in: "a[+]", wantErr: true},
		{in: "a..b", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePattern(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", tt.in, diff)
		}
		if s := got.String(); s != tt.in {
			t.Errorf("String() = %q, want %q", s, tt.in)
		}
	}
}

func TestRuleOrder(t *testing.T) {
	root := mustNode(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"b": "v", "c": map[string]any{"d": "v"}, "d": "v"},
			"c": map[string]any{"c": "v"},
		},
	})
	var got []string
	b := NewBuilder()
	for _, s := range []string{"a.c.c", "a.b", "a.b.c", "a.b.d", "a.b.c.d", "a.c", "a.b.b"} {
		b.Add(mustPattern(t, s), record(&got))
	}
	if err := b.Build().Apply(root); err != nil {
		t.Fatal(err)
	}
	want := []string{"a.b.b", "a.b.c.d", "a.b.c", "a.b.d", "a.b", "a.c.c", "a.c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWildcards(t *testing.T) {
	root := node.NewRoot()
	for _, s := range []string{
		"a.c.c", "a.d.c", "a.b.c", "a.c.d", "a.d.d",
		"b.c.d.e.f", "b.c.d.f.f", "b.d.d.e.f", "b.d.d.f.f",
		"l[0].x", "l[1].y", "l[2].x",
	} {
		if err := root.Node(mustPattern(t, s)...).Set("v"); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	b := NewBuilder()
	for _, s := range []string{"a.*.c", "a.*.d", "a.c.c", "b.*.d.*.f", "l.*.x"} {
		b.Add(mustPattern(t, s), record(&got))
	}
	if err := b.Build().Apply(root); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"a.c.c",
		"a.c.c", "a.d.c", "a.b.c",
		"a.c.d", "a.d.d",
		"b.c.d.e.f", "b.c.d.f.f", "b.d.d.e.f", "b.d.d.f.f",
		"l[0].x", "l[2].x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestActionSeesNode(t *testing.T) {
	root := mustNode(t, map[string]any{"child": "something"})
	child := root.Node(node.Field("child"))
	tr := NewBuilder().Add(Pattern{node.Field("child")}, func(_ node.Path, n *node.Node) (node.Path, error) {
		if n != child {
			t.Errorf("got a different node at child")
		}
		return nil, n.Set("changed")
	}).Build()
	if err := tr.Apply(root); err != nil {
		t.Fatal(err)
	}
	if s, _ := child.Value().AsString(); s != "changed" {
		t.Errorf("child = %q", s)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		from, to string
		strategy MoveStrategy
		want     any
	}{
		{
			name: "rename",
			in:   map[string]any{"old": map[string]any{"path": 1}},
			from: "old.path", to: "new.path",
			want: map[string]any{"old": map[string]any{}, "new": map[string]any{"path": int64(1)}},
		},
		{
			name: "to root",
			in:   map[string]any{"sub": map[string]any{"key": "value"}, "at-parent": "until-change"},
			from: "sub", to: "",
			want: map[string]any{"key": "value"},
		},
		{
			name: "into own child",
			in:   map[string]any{"a": map[string]any{"x": 1}},
			from: "a", to: "a.b",
			want: map[string]any{"a": map[string]any{"b": map[string]any{"x": int64(1)}}},
		},
		{
			name: "overwrite",
			in:   map[string]any{"one": map[string]any{"fun": "always"}, "two": map[string]any{"evil": "always"}},
			from: "one", to: "two",
			want: map[string]any{"two": map[string]any{"fun": "always"}},
		},
		{
			name: "merge",
			in:   map[string]any{"one": map[string]any{"fun": "always"}, "two": map[string]any{"evil": "always"}},
			from: "one", to: "two", strategy: Merge,
			want: map[string]any{"two": map[string]any{"evil": "always", "fun": "always"}},
		},
		{
			name: "wildcards",
			in: map[string]any{"servers": []any{
				map[string]any{"addr": "a", "port": 1},
				map[string]any{"port": 2},
				map[string]any{"addr": "c"},
			}},
			from: "servers.*.addr", to: "servers.*.address",
			want: map[string]any{"servers": []any{
				map[string]any{"port": int64(1), "address": "a"},
				map[string]any{"port": int64(2)},
				map[string]any{"address": "c"},
			}},
		},
		{
			name: "swap wildcards",
			in:   map[string]any{"x": map[string]any{"y": 1}},
			from: "*.*", to: "*.*",
			want: map[string]any{"x": map[string]any{"y": int64(1)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustNode(t, tt.in)
			tr := NewBuilder().
				Strategy(tt.strategy).
				Move(mustPattern(t, tt.from), mustPattern(t, tt.to)).
				Build()
			if err := tr.Apply(root); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, root.Interface()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveErrors(t *testing.T) {
	root := mustNode(t, map[string]any{"a": 1, "s": "scalar"})
	err := NewBuilder().Move(mustPattern(t, "a"), mustPattern(t, "*.b")).Build().Apply(root)
	if err == nil {
		t.Error("expected an error for unmatched wildcards in the target")
	}

	root = mustNode(t, map[string]any{"a": 1, "s": "scalar"})
	err = NewBuilder().Move(mustPattern(t, "a"), mustPattern(t, "s.b")).Build().Apply(root)
	if !errors.Is(err, node.ErrStructuralMismatch) {
		t.Errorf("moving under a scalar: got %v", err)
	}

	boom := errors.New("boom")
	root = mustNode(t, map[string]any{"a": 1})
	err = NewBuilder().Add(Pattern{node.Field("a")}, func(node.Path, *node.Node) (node.Path, error) {
		return nil, boom
	}).Build().Apply(root)
	if !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
}

func TestChain(t *testing.T) {
	root := mustNode(t, map[string]any{"a": "something"})
	var got []string
	step := func(name string) Transformation {
		return NewBuilder().Add(Pattern{node.Field("a")}, func(node.Path, *node.Node) (node.Path, error) {
			got = append(got, name)
			return nil, nil
		}).Build()
	}
	if err := Chain(step("one"), step("two")).Apply(root); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestVersioned(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]any
		key     node.Path
		want    []int
		version int
	}{
		{name: "unversioned", in: map[string]any{"dummy": "x"}, want: []int{0, 1, 2}, version: 2},
		{name: "partly migrated", in: map[string]any{"version": 1}, want: []int{2}, version: 2},
		{name: "version as text", in: map[string]any{"version": "0"}, want: []int{1, 2}, version: 2},
		{name: "current", in: map[string]any{"version": 2}, version: 2},
		{name: "newer", in: map[string]any{"version": 7}, version: 7},
		{
			name: "other key", in: map[string]any{"meta": map[string]any{"rev": 0}},
			key: node.Path{node.Field("meta"), node.Field("rev")}, want: []int{1, 2}, version: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			step := func(v int) Transformation {
				return TransformationFunc(func(*node.Node) error {
					got = append(got, v)
					return nil
				})
			}
			tr := Versioned(tt.key, map[int]Transformation{0: step(0), 2: step(2), 1: step(1)})
			root := mustNode(t, tt.in)
			if err := tr.Apply(root); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("steps (-want +got):\n%s", diff)
			}
			key := tt.key
			if key == nil {
				key = DefaultVersionKey
			}
			if v := Version(root, key); v != tt.version {
				t.Errorf("version = %d, want %d", v, tt.version)
			}
		})
	}
}

func TestVersionedMigration(t *testing.T) {
	root := mustNode(t, map[string]any{"name": "svc", "port": 80})
	tr := Versioned(nil, map[int]Transformation{
		1: NewBuilder().Move(mustPattern(t, "port"), mustPattern(t, "listen.port")).Build(),
		2: NewBuilder().Move(mustPattern(t, "name"), mustPattern(t, "meta.name")).Build(),
	})
	if err := tr.Apply(root); err != nil {
		t.Fatal(err)
	}
	// applying again is a no-op
	if err := tr.Apply(root); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"listen":  map[string]any{"port": int64(80)},
		"meta":    map[string]any{"name": "svc"},
		"version": int64(2),
	}
	if diff := cmp.Diff(want, root.Interface()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
