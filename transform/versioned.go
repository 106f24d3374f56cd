package transform

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/serialize"
)

// DefaultVersionKey is where Versioned keeps the version of a tree when no
// key is given.
var DefaultVersionKey = node.Path{node.Field("version")}

type versioned struct {
	key      node.Path
	versions []int
	steps    map[int]Transformation
}

// Versioned returns a Transformation migrating a tree through steps keyed
// by version. Steps newer than the tree's version run in ascending order,
// then the version of the last step run is written at key
// (DefaultVersionKey if key is nil). A tree already at the latest version
// is left alone.
func Versioned(key node.Path, steps map[int]Transformation) Transformation {
	if key == nil {
		key = DefaultVersionKey
	}
	return &versioned{
		key:      slices.Clone(key),
		versions: slices.Sorted(maps.Keys(steps)),
		steps:    maps.Clone(steps),
	}
}

func (v *versioned) Apply(root *node.Node) error {
	cur := Version(root, v.key)
	applied := false
	for _, ver := range v.versions {
		if ver <= cur {
			continue
		}
		if err := v.steps[ver].Apply(root); err != nil {
			return fmt.Errorf("migrating to version %d: %w", ver, err)
		}
		cur = ver
		applied = true
	}
	if !applied {
		return nil
	}
	return root.Node(v.key...).Set(cur)
}

// Version returns the version stored at key below root, or -1 when there
// is none or it is not an integer.
func Version(root *node.Node, key node.Path) int {
	n := root.Node(key...)
	if n.IsNull() {
		return -1
	}
	res, err := serialize.NewSession(nil).Load(reflect.TypeFor[int](), n)
	if err != nil {
		return -1
	}
	return int(res.Int())
}
