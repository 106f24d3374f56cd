// Package objmap maps structured Go types to and from node trees.
//
// Structured types are known through a Describer, which yields a
// Descriptor: the ordered fields of the type (name, key, type, default,
// required flag, comment, constraint) and the functions constructing and
// reading instances. objmap never discovers fields itself; package gomap
// describes Go structs from their tags and Table holds hand written
// descriptors.
//
// A Mapper binds the Object serializer for described types in a child of
// a serialize.Registry, so every other type keeps its registered
// serializer:
//
//	m := objmap.New(objmap.WithDescriber(table), objmap.ImplicitInit(true))
//	cfg, err := objmap.Get[Config](m, root)
//
// On load an absent field is
//
//   - an ErrRequiredValueAbsent error if the field is required
//   - its Default, when it has one
//   - the empty value of its type under implicit initialization
//   - the zero value of its type otherwise
//
// On save each field replaces the subtree at its key; other keys of the
// object's node are kept.
package objmap
