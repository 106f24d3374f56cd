// Package node provides the in-memory configuration tree.
//
// # Overview
//
// A tree is made of Nodes. Each node holds a Value, an optional comment and
// a back reference to its parent together with the Key its parent uses for
// it. Values are one of
//
//   - null
//   - scalars: string, bool, int64, float64, bytes
//   - list: ordered child nodes addressed by Index
//   - map: child nodes addressed by Field, in first insertion order
//
// Numbers are kept in their widest form. Integers beyond the int64 range
// and float precision are the concern of the format producing the tree.
//
// # Navigation
//
// Node(path...) never modifies a tree. When nothing exists at a key the
// returned node is virtual: it holds null and is invisible to its parent.
//
//	root := node.NewRoot()
//	host := root.Node(node.Field("server"), node.Field("host"))
//	host.IsVirtual() // true
//	root.IsEmpty()   // true
//
// # Attach on write
//
// Writing through a virtual node (Set, MergeFrom, or writing below it)
// attaches it and every virtual ancestor, turning null ancestors into maps
// or lists as the keys demand:
//
//	host.Set("localhost")
//	root.Node(node.Field("server")).IsMap() // true
//
// A write that would turn real content of another kind into a container
// fails with ErrStructuralMismatch; it never discards data.
//
// AppendListChild returns a virtual node that becomes the next list element
// when written.
//
// # Ownership
//
// A tree owns its nodes exclusively. Set with a *Node copies it; Copy
// produces an independent tree. Setting a node to nil removes it from its
// parent, after which it is virtual again.
//
// # Merging
//
// MergeFrom fills gaps and never overwrites existing non-null content. See
// its documentation for the exact rules.
//
// # Paths
//
// Path values render in kinded path syntax ("a.b[0]") and ParsePath reads
// it back.
//
// # Thread Safety
//
// Trees are not safe for concurrent use. Navigation is read only but any
// write may attach nodes anywhere up to the root, so callers sharing a tree
// must hold one lock around the whole tree.
package node
