package node

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"", nil},
		{"a", Path{Field("a")}},
		{"a.b", Path{Field("a"), Field("b")}},
		{"a[0]", Path{Field("a"), Index(0)}},
		{"[2].x", Path{Index(2), Field("x")}},
		{"a[0][1].c", Path{Field("a"), Index(0), Index(1), Field("c")}},
		{"a[+]", Path{Field("a"), Append}},
		{`"a.b".c`, Path{Field("a.b"), Field("c")}},
		{`'x y'`, Path{Field("x y")}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{".a", "a[", "a[x]", "a[-1]", "a..b", `"open`, "a]b"} {
		if _, err := ParsePath(in); !errors.Is(err, ErrBadPath) {
			t.Errorf("ParsePath(%q) = %v, want ErrBadPath", in, err)
		}
	}
}

func TestPathRoundTrip(t *testing.T) {
	paths := []Path{
		{Field("servers"), Index(0), Field("host")},
		{Field("app.kubernetes.io/name")},
		{Field(""), Index(3)},
		{Field(`has "quotes"`)},
	}
	for _, p := range paths {
		s := p.String()
		got, err := ParsePath(s)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", s, err)
		}
		if diff := cmp.Diff(p, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", s, diff)
		}
	}
}

func TestNodePathOfVirtual(t *testing.T) {
	root := NewRoot()
	n := root.Node(MustParsePath("a[1].b")...)
	if got := n.Path().String(); got != "a[1].b" {
		t.Errorf("path = %q", got)
	}
}
