// Package transform rewrites node trees by path patterns, for renaming and
// moving configuration keys between releases.
//
// A Builder binds actions to patterns whose wildcards match every child of
// a list or map:
//
//	t := transform.NewBuilder().
//		Move(transform.Pattern{node.Field("server"), nil},
//			transform.Pattern{node.Field("listen"), nil}).
//		Build()
//	err := t.Apply(root)
//
// Versioned runs a series of transformations once each, recording the last
// one applied in the tree.
package transform
