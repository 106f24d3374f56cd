package node

import (
	"iter"
	"slices"

	"github.com/signadot/confnode/debug"
)

// Node is a point in a configuration tree. It owns a Value and an optional
// comment and knows the key under which its parent holds it.
//
// A node obtained by navigating to a path that holds nothing is virtual: it
// is not part of its parent's children until something is written through
// it or one of its descendants, at which point it and its virtual ancestors
// are attached.
type Node struct {
	value    Value
	comment  string
	parent   *Node
	key      Key
	attached bool
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{attached: true}
}

// New returns a root node holding v, converted as by Set.
func New(v any) (*Node, error) {
	n := NewRoot()
	if err := n.Set(v); err != nil {
		return nil, err
	}
	return n, nil
}

// Value returns the node's value.
func (n *Node) Value() Value {
	v := n.value
	v.values = slices.Clone(v.values)
	v.fields = slices.Clone(v.fields)
	return v
}

func (n *Node) Kind() Kind {
	return n.value.kind
}

// IsVirtual reports whether n is detached from its root.
func (n *Node) IsVirtual() bool {
	return !n.attached
}

// IsNull reports whether n holds nothing. Virtual nodes are always null.
func (n *Node) IsNull() bool {
	return n.value.kind == NullKind
}

func (n *Node) IsList() bool {
	return n.value.kind == ListKind
}

func (n *Node) IsMap() bool {
	return n.value.kind == MapKind
}

// IsEmpty reports whether n is null or a container without children.
func (n *Node) IsEmpty() bool {
	return n.value.kind == NullKind || (n.value.kind.IsContainer() && len(n.value.values) == 0)
}

// Key returns the key addressing n from its parent, nil for a root.
func (n *Node) Key() Key {
	return n.key
}

// Parent returns n's parent, nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the top of n's tree.
func (n *Node) Root() *Node {
	res := n
	for res.parent != nil {
		res = res.parent
	}
	return res
}

// Path returns the keys leading from n's root to n.
func (n *Node) Path() Path {
	var res Path
	for p := n; p.parent != nil; p = p.parent {
		res = append(res, p.key)
	}
	slices.Reverse(res)
	return res
}

func (n *Node) Comment() string {
	return n.comment
}

// SetComment replaces n's comment. It does not attach a virtual node.
func (n *Node) SetComment(c string) {
	n.comment = c
}

// Node navigates from n along path. It never modifies the tree: keys with
// nothing behind them yield virtual nodes. An empty path returns n.
func (n *Node) Node(path ...Key) *Node {
	cur := n
	for _, k := range path {
		if c := cur.child(k); c != nil {
			cur = c
			continue
		}
		cur = &Node{parent: cur, key: k}
	}
	return cur
}

// HasChild reports whether a real node exists at path below n.
func (n *Node) HasChild(path ...Key) bool {
	cur := n
	for _, k := range path {
		cur = cur.child(k)
		if cur == nil {
			return false
		}
	}
	return true
}

// AppendListChild returns a virtual node which becomes the last element of
// n's list when written. Writing turns a null n into a list.
func (n *Node) AppendListChild() *Node {
	return &Node{parent: n, key: Append}
}

// ChildrenList returns the elements of a list node, nil otherwise.
func (n *Node) ChildrenList() []*Node {
	return n.value.List()
}

// ChildrenMap returns the entries of a map node, nil otherwise.
func (n *Node) ChildrenMap() map[string]*Node {
	if n.value.kind != MapKind {
		return nil
	}
	res := make(map[string]*Node, len(n.value.fields))
	for i, f := range n.value.fields {
		res[f] = n.value.values[i]
	}
	return res
}

// Keys returns the keys of a map node in insertion order.
func (n *Node) Keys() []string {
	return n.value.Fields()
}

// Entries iterates over the entries of a map node in insertion order.
func (n *Node) Entries() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n.value.kind != MapKind {
			return
		}
		for i, f := range n.value.fields {
			if !yield(f, n.value.values[i]) {
				return
			}
		}
	}
}

// RemoveChild removes the child at k, reporting whether there was one.
// Removing a list element shifts the following elements down.
func (n *Node) RemoveChild(k Key) bool {
	c := n.child(k)
	if c == nil {
		return false
	}
	n.removeChild(c)
	return true
}

func (n *Node) child(k Key) *Node {
	switch k := k.(type) {
	case Field:
		if n.value.kind != MapKind {
			return nil
		}
		for i, f := range n.value.fields {
			if f == string(k) {
				return n.value.values[i]
			}
		}
	case Index:
		if n.value.kind != ListKind {
			return nil
		}
		if k >= 0 && int(k) < len(n.value.values) {
			return n.value.values[k]
		}
	}
	return nil
}

func (n *Node) removeChild(c *Node) {
	i := slices.Index(n.value.values, c)
	if i == -1 {
		return
	}
	n.value.values = slices.Delete(n.value.values, i, i+1)
	switch n.value.kind {
	case MapKind:
		n.value.fields = slices.Delete(n.value.fields, i, i+1)
	case ListKind:
		for j := i; j < len(n.value.values); j++ {
			n.value.values[j].key = Index(j)
		}
	}
	c.detach()
}

// detach makes n and its subtree virtual and null.
func (n *Node) detach() {
	n.attached = false
	for _, c := range n.value.values {
		c.detach()
	}
	n.value = Value{}
}

// attach makes n part of its tree, attaching virtual ancestors first. A node
// found at an ancestor's position is reused; n itself replaces whatever its
// parent holds at its key.
func (n *Node) attach() error {
	if n.attached {
		return nil
	}
	p, err := n.parent.materialize()
	if err != nil {
		return err
	}
	n.parent = p
	return p.putChild(n)
}

func (n *Node) materialize() (*Node, error) {
	if n.attached {
		return n, nil
	}
	p, err := n.parent.materialize()
	if err != nil {
		return nil, err
	}
	n.parent = p
	if c := p.child(n.key); c != nil {
		return c, nil
	}
	if err := p.putChild(n); err != nil {
		return nil, err
	}
	return n, nil
}

// putChild inserts c under its key, converting a null n to the container
// kind the key calls for.
func (n *Node) putChild(c *Node) error {
	switch k := c.key.(type) {
	case Field:
		if err := n.ensureKind(MapKind); err != nil {
			return err
		}
		for i, f := range n.value.fields {
			if f == string(k) {
				if old := n.value.values[i]; old != c {
					old.detach()
				}
				n.value.values[i] = c
				c.attached = true
				return nil
			}
		}
		n.value.fields = append(n.value.fields, string(k))
		n.value.values = append(n.value.values, c)
	case Index:
		if k < 0 {
			return &MismatchError{Path: n.Path(), Have: n.value.kind, Want: ListKind, Reason: "negative list index " + k.String()}
		}
		if err := n.ensureKind(ListKind); err != nil {
			return err
		}
		if int(k) < len(n.value.values) {
			if old := n.value.values[k]; old != c {
				old.detach()
			}
			n.value.values[k] = c
			c.attached = true
			return nil
		}
		c.key = Index(len(n.value.values))
		n.value.values = append(n.value.values, c)
	case appendKey:
		if err := n.ensureKind(ListKind); err != nil {
			return err
		}
		c.key = Index(len(n.value.values))
		n.value.values = append(n.value.values, c)
	default:
		return &MismatchError{Path: n.Path(), Have: n.value.kind, Reason: "node has no key"}
	}
	c.attached = true
	if debug.Attach() {
		debug.Logf("attached %s\n", c.Path())
	}
	return nil
}

func (n *Node) ensureKind(k Kind) error {
	switch n.value.kind {
	case k:
		return nil
	case NullKind:
		n.value = Value{kind: k}
		return nil
	}
	return &MismatchError{Path: n.Path(), Have: n.value.kind, Want: k}
}

// Visit walks the attached subtree of n depth first, calling f before
// (isPost false) and after (isPost true) the children of each node.
// Children are skipped when the pre-order call returns false.
func (n *Node) Visit(f func(n *Node, isPost bool) (bool, error)) error {
	dive, err := f(n, false)
	if err != nil {
		return err
	}
	if dive {
		for _, c := range n.value.values {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(n, true); err != nil {
		return err
	}
	return nil
}

// Interface returns the natural Go value of n: nil, string, bool, int64,
// float64, []byte, []any or map[string]any.
func (n *Node) Interface() any {
	switch n.value.kind {
	case ListKind:
		res := make([]any, len(n.value.values))
		for i, c := range n.value.values {
			res[i] = c.Interface()
		}
		return res
	case MapKind:
		res := make(map[string]any, len(n.value.values))
		for i, f := range n.value.fields {
			res[f] = n.value.values[i].Interface()
		}
		return res
	}
	return n.value.Interface()
}
