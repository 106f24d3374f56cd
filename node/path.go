package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Key addresses a child of a node: a Field of a map, an Index of a list,
// or Append, which always designates a new element at the end of a list.
type Key interface {
	isKey()
	String() string
}

// Field is a map key.
type Field string

// Index is a list position.
type Index int

type appendKey struct{}

// Append is the key of a not yet allocated list element.
var Append Key = appendKey{}

func (Field) isKey()     {}
func (Index) isKey()     {}
func (appendKey) isKey() {}

func (f Field) String() string {
	if quoteField(string(f)) {
		return strconv.Quote(string(f))
	}
	return string(f)
}

func (i Index) String() string {
	return "[" + strconv.Itoa(int(i)) + "]"
}

func (appendKey) String() string {
	return "[+]"
}

// Path is a sequence of keys from some node, usually a root.
type Path []Key

// With returns a copy of p extended by ks.
func (p Path) With(ks ...Key) Path {
	res := make(Path, 0, len(p)+len(ks))
	res = append(res, p...)
	return append(res, ks...)
}

// String renders p in kinded path syntax, for example
//
//	servers[0].host
//	labels."app.kubernetes.io/name"
//
// The root path renders as "".
func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		switch k := k.(type) {
		case Field:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(k.String())
		default:
			b.WriteString(k.String())
		}
	}
	return b.String()
}

func quoteField(f string) bool {
	if f == "" {
		return true
	}
	return strings.ContainsAny(f, ".[]\"' \t\n")
}

// ParsePath parses kinded path syntax as produced by Path.String.
//
//   - "a.b"     fields a then b
//   - "a[0]"    field a then index 0
//   - "[2].x"   index 2 then field x
//   - "a[+]"    field a then Append
//   - `"a.b".c` quoted field "a.b" then c
//
// The empty string is the root path.
func ParsePath(s string) (Path, error) {
	var res Path
	frag := s
	first := true
	for len(frag) > 0 {
		switch frag[0] {
		case '[':
			i := strings.IndexByte(frag, ']')
			if i == -1 {
				return nil, fmt.Errorf("%w: expected '[' <index> ']' in %q", ErrBadPath, s)
			}
			k, err := parseIndex(frag[1:i])
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrBadPath, s, err)
			}
			res = append(res, k)
			frag = frag[i+1:]
		case '.':
			if first {
				return nil, fmt.Errorf("%w: leading '.' in %q", ErrBadPath, s)
			}
			field, rest, err := parseField(frag[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrBadPath, s, err)
			}
			res = append(res, Field(field))
			frag = rest
		default:
			if !first {
				return nil, fmt.Errorf("%w: expected '.' or '[' at %q in %q", ErrBadPath, frag, s)
			}
			field, rest, err := parseField(frag)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrBadPath, s, err)
			}
			res = append(res, Field(field))
			frag = rest
		}
		first = false
	}
	return res, nil
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseIndex(v string) (Key, error) {
	if v == "+" {
		return Append, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid index %q", v)
	}
	if i < 0 {
		return nil, fmt.Errorf("negative index %d", i)
	}
	return Index(i), nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("empty field")
	}
	switch frag[0] {
	case '"':
		for i := 1; i < len(frag); i++ {
			switch frag[i] {
			case '\\':
				i++
			case '"':
				f, err := strconv.Unquote(frag[:i+1])
				if err != nil {
					return "", "", err
				}
				return f, frag[i+1:], nil
			}
		}
		return "", "", fmt.Errorf("unterminated quoted field")
	case '\'':
		i := strings.IndexByte(frag[1:], '\'')
		if i == -1 {
			return "", "", fmt.Errorf("unterminated quoted field")
		}
		return frag[1 : i+1], frag[i+2:], nil
	}
	i := strings.IndexAny(frag, ".[]")
	if i == -1 {
		return frag, "", nil
	}
	if frag[i] == ']' {
		return "", "", fmt.Errorf("unexpected ']'")
	}
	if i == 0 {
		return "", "", fmt.Errorf("empty field")
	}
	return frag[:i], frag[i:], nil
}
