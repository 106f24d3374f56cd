package node

import (
	"bytes"
	"slices"

	"github.com/signadot/confnode/debug"
)

// Copy returns a deep copy of n as a new root. The copy shares nothing with
// n; its comments and values equal n's at the time of the call.
func (n *Node) Copy() *Node {
	res := n.copyTo(nil)
	res.key = nil
	res.attached = true
	return res
}

func (n *Node) copyTo(parent *Node) *Node {
	res := &Node{
		comment:  n.comment,
		parent:   parent,
		key:      n.key,
		attached: parent != nil,
		value:    n.value,
	}
	res.value.bytes = bytes.Clone(n.value.bytes)
	res.value.fields = slices.Clone(n.value.fields)
	if n.value.values != nil {
		res.value.values = make([]*Node, len(n.value.values))
		for i, c := range n.value.values {
			res.value.values[i] = c.copyTo(res)
		}
	}
	return res
}

// Equal reports whether a and b hold structurally equal values and
// comments. Map entry order, parents and virtual state are ignored.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.comment != b.comment || a.value.kind != b.value.kind {
		return false
	}
	switch a.value.kind {
	case ListKind:
		return slices.EqualFunc(a.value.values, b.value.values, Equal)
	case MapKind:
		if len(a.value.fields) != len(b.value.fields) {
			return false
		}
		for i, f := range a.value.fields {
			bc := b.child(Field(f))
			if bc == nil || !Equal(a.value.values[i], bc) {
				return false
			}
		}
		return true
	}
	return a.value.scalarEqual(b.value)
}

// Equal is shorthand for Equal(n, o).
func (n *Node) Equal(o *Node) bool {
	return Equal(n, o)
}

// MergeFrom fills gaps in n with content from src and never overwrites
// what n already holds:
//
//   - a null n receives a copy of src
//   - map entries only in src are copied in, entries in both are merged
//   - scalars and lists already present in n are kept
//   - n's comment is taken from src only when n has none
//
// Containers of different kinds keep n's content. The only possible error
// comes from attaching a virtual n below incompatible content.
func (n *Node) MergeFrom(src *Node) error {
	if src == nil || src == n {
		return nil
	}
	if n.comment == "" {
		n.comment = src.comment
	}
	if src.value.kind == NullKind {
		return nil
	}
	if n.value.kind == NullKind {
		if err := n.attach(); err != nil {
			return err
		}
		n.adopt(src.Copy())
		return nil
	}
	if n.value.kind != MapKind || src.value.kind != MapKind {
		return nil
	}
	for i, f := range src.value.fields {
		sc := src.value.values[i]
		tc := n.child(Field(f))
		if tc == nil {
			if sc.value.kind == NullKind {
				continue
			}
			if debug.Merge() {
				debug.Logf("merge: adding %s\n", n.Path().With(Field(f)))
			}
			c := sc.copyTo(n)
			c.key = Field(f)
			n.value.fields = append(n.value.fields, f)
			n.value.values = append(n.value.values, c)
			continue
		}
		if err := tc.MergeFrom(sc); err != nil {
			return err
		}
	}
	return nil
}
