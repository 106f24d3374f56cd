package transform

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/signadot/confnode/debug"
	"github.com/signadot/confnode/node"
)

// Pattern is a path whose nil keys match every child of a list or map.
type Pattern []node.Key

// ParsePattern parses path syntax in which a field named * is a wildcard,
// as in "servers.*.port" or "*[0]". The empty string is the root.
func ParsePattern(s string) (Pattern, error) {
	p, err := node.ParsePath(s)
	if err != nil {
		return nil, err
	}
	res := make(Pattern, len(p))
	for i, k := range p {
		switch k {
		case node.Field("*"):
		case node.Append:
			return nil, fmt.Errorf("%w: [+] in pattern %q", node.ErrBadPath, s)
		default:
			res[i] = k
		}
	}
	return res, nil
}

func (p Pattern) String() string {
	path := make(node.Path, len(p))
	for i, k := range p {
		if k == nil {
			k = node.Field("*")
		}
		path[i] = k
	}
	return path.String()
}

// Action is called with the path of each node a pattern matches and the
// node, which it may modify. A non-nil result moves the node to that path,
// relative to the root the transformation is applied to; an empty non-nil
// result is the root itself.
type Action func(path node.Path, n *node.Node) (node.Path, error)

// MoveStrategy decides how a moved node lands on its target.
type MoveStrategy int

const (
	// Overwrite replaces the target with the moved node.
	Overwrite MoveStrategy = iota
	// Merge fills the gaps of the target from the moved node.
	Merge
)

// Transformation rewrites a tree in place. A failed Apply may leave the
// tree partly rewritten.
type Transformation interface {
	Apply(root *node.Node) error
}

// TransformationFunc adapts a function to a Transformation.
type TransformationFunc func(root *node.Node) error

func (f TransformationFunc) Apply(root *node.Node) error {
	return f(root)
}

type rule struct {
	pattern Pattern
	action  Action
}

// Builder collects the rules of a Transformation.
type Builder struct {
	strategy MoveStrategy
	rules    []rule
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add applies a to every node p matches. Adding a pattern again replaces
// its action.
func (b *Builder) Add(p Pattern, a Action) *Builder {
	for i := range b.rules {
		if comparePattern(b.rules[i].pattern, p) == 0 {
			b.rules[i].action = a
			return b
		}
	}
	b.rules = append(b.rules, rule{pattern: slices.Clone(p), action: a})
	return b
}

// Move moves every node from matches to the path to, where the wildcards
// of to take the keys matched by the wildcards of from, in order.
func (b *Builder) Move(from, to Pattern) *Builder {
	return b.Add(from, moveAction(from, to))
}

// Strategy sets how moved nodes land, Overwrite by default.
func (b *Builder) Strategy(s MoveStrategy) *Builder {
	b.strategy = s
	return b
}

// Build returns the Transformation. Rules run one after the other, deeper
// patterns before their prefixes and concrete keys before wildcards, so
// that moving a child happens before moving its parent.
func (b *Builder) Build() Transformation {
	rules := slices.Clone(b.rules)
	slices.SortStableFunc(rules, func(x, y rule) int {
		return comparePattern(x.pattern, y.pattern)
	})
	return &single{strategy: b.strategy, rules: rules}
}

func moveAction(from, to Pattern) Action {
	to = slices.Clone(to)
	return func(path node.Path, _ *node.Node) (node.Path, error) {
		var matched []node.Key
		for i, k := range from {
			if k == nil {
				matched = append(matched, path[i])
			}
		}
		res := make(node.Path, 0, len(to))
		for _, k := range to {
			if k == nil {
				if len(matched) == 0 {
					return nil, fmt.Errorf("%s has more wildcards than %s", to, from)
				}
				k, matched = matched[0], matched[1:]
			}
			res = append(res, k)
		}
		return res, nil
	}
}

func comparePattern(a, b Pattern) int {
	for i := range min(len(a), len(b)) {
		if c := compareKey(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(b), len(a))
}

func compareKey(a, b node.Key) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch a := a.(type) {
	case node.Index:
		if b, ok := b.(node.Index); ok {
			return cmp.Compare(a, b)
		}
		return -1
	case node.Field:
		if b, ok := b.(node.Field); ok {
			return strings.Compare(string(a), string(b))
		}
		return 1
	}
	return 0
}

type single struct {
	strategy MoveStrategy
	rules    []rule
}

func (t *single) Apply(root *node.Node) error {
	for _, r := range t.rules {
		path := make(node.Path, 0, len(r.pattern))
		if err := t.walk(root, r, path, root, 0); err != nil {
			return err
		}
	}
	return nil
}

func (t *single) walk(root *node.Node, r rule, path node.Path, n *node.Node, i int) error {
	for ; i < len(r.pattern); i++ {
		k := r.pattern[i]
		if k != nil {
			n = n.Node(k)
			if n.IsVirtual() {
				return nil
			}
			path = append(path, k)
			continue
		}
		switch {
		case n.IsList():
			for j, c := range slices.Clone(n.ChildrenList()) {
				if c.IsVirtual() {
					continue
				}
				if err := t.walk(root, r, append(path, node.Index(j)), c, i+1); err != nil {
					return err
				}
			}
		case n.IsMap():
			for _, key := range n.Keys() {
				c := n.Node(node.Field(key))
				if c.IsVirtual() {
					continue
				}
				if err := t.walk(root, r, append(path, node.Field(key)), c, i+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return t.visit(root, r.action, path, n)
}

func (t *single) visit(root *node.Node, a Action, path node.Path, n *node.Node) error {
	to, err := a(slices.Clone(path), n)
	if err != nil {
		return fmt.Errorf("transform at %q: %w", path, err)
	}
	if to == nil || slices.Equal(to, path) {
		return nil
	}
	if debug.Transform() {
		debug.Logf("move %q -> %q\n", path, to)
	}
	src := n.Copy()
	if err := n.Set(nil); err != nil {
		return err
	}
	target := root.Node(to...)
	switch t.strategy {
	case Merge:
		err = target.MergeFrom(src)
	default:
		err = target.Set(src)
	}
	if err != nil {
		return fmt.Errorf("moving %q to %q: %w", path, to, err)
	}
	return nil
}

type chain []Transformation

// Chain returns a Transformation applying ts in order.
func Chain(ts ...Transformation) Transformation {
	return chain(slices.Clone(ts))
}

func (c chain) Apply(root *node.Node) error {
	for _, t := range c {
		if err := t.Apply(root); err != nil {
			return err
		}
	}
	return nil
}
