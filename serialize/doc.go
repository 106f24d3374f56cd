// Package serialize converts between node trees and Go values.
//
// A Serializer handles the types a Registry binds it to. Registries are
// built with a Builder and are immutable afterwards; a child registry made
// with ChildBuilder overrides bindings of its parent without touching it.
// Resolution consults, in order,
//
//  1. exact bindings of the registry
//  2. structural bindings (predicates over reflect.Type), highest priority
//     first, latest registration first among equal priorities
//  3. the parent registry
//
// Defaults is the root of every chain and covers scalars, enums, text
// types, collections, pointers, the empty interface and *node.Node.
//
// A Session carries one load or save through nested values. It handles
// null nodes, implicit initialization and cycle detection, and locates
// failures at the absolute path of the failing node:
//
//	s := serialize.NewSession(nil)
//	v, err := s.Load(reflect.TypeFor[[]int](), n)
//
// Errors are *Error values whose Kind is one of the sentinels of this
// package or node.ErrStructuralMismatch.
package serialize
