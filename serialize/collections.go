package serialize

import (
	"reflect"
	"slices"
	"strings"

	"github.com/signadot/confnode/node"
)

// listChildren returns the elements a list load iterates: the children of
// a list, or the node itself for a lone scalar.
func listChildren(n *node.Node) ([]*node.Node, error) {
	switch {
	case n.IsList():
		return n.ChildrenList(), nil
	case n.IsMap():
		return nil, coercef("expected a list, got %s", n.Kind())
	}
	return []*node.Node{n}, nil
}

// List handles slices and arrays. A scalar node loads as a one element
// list. Arrays accept at most as many elements as they hold; missing
// trailing elements stay zero. Saving replaces the node's children.
type List struct{}

func (List) EmptyValue(_ *Session, t reflect.Type, _ *node.Node) (reflect.Value, error) {
	if t.Kind() == reflect.Array {
		return reflect.Zero(t), nil
	}
	return reflect.MakeSlice(t, 0, 0), nil
}

func (List) Load(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	kids, err := listChildren(n)
	if err != nil {
		return reflect.Value{}, err
	}
	var res reflect.Value
	if t.Kind() == reflect.Array {
		if len(kids) > t.Len() {
			return reflect.Value{}, coercef("%d elements exceed %s", len(kids), t)
		}
		res = reflect.New(t).Elem()
	} else {
		res = reflect.MakeSlice(t, len(kids), len(kids))
	}
	for i, c := range kids {
		ev, err := s.Load(t.Elem(), c)
		if err != nil {
			return reflect.Value{}, err
		}
		res.Index(i).Set(ev)
	}
	return res, nil
}

func (List) Save(s *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	if err := n.Set(node.EmptyList()); err != nil {
		return err
	}
	for i := range v.Len() {
		if err := s.Save(t.Elem(), v.Index(i), n.Node(node.Index(i))); err != nil {
			return err
		}
	}
	return nil
}

// keyText renders a map key through the serializer of its type.
func keyText(s *Session, kt reflect.Type, k reflect.Value) (string, error) {
	tmp := node.NewRoot()
	if err := s.Save(kt, k, tmp); err != nil {
		return "", err
	}
	text, ok := tmp.Value().Text()
	if !ok {
		return "", coercef("map key %v of %s is not a scalar", k, kt)
	}
	return text, nil
}

func loadKey(s *Session, kt reflect.Type, key string) (reflect.Value, error) {
	tmp, err := node.New(key)
	if err != nil {
		return reflect.Value{}, err
	}
	return s.Load(kt, tmp)
}

// Map handles maps. Keys are converted through the serializer of the key
// type. Saving writes entries in key order and removes entries the map no
// longer holds; comments of kept entries survive.
type Map struct{}

func (Map) EmptyValue(_ *Session, t reflect.Type, _ *node.Node) (reflect.Value, error) {
	return reflect.MakeMap(t), nil
}

func (Map) Load(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	if !n.IsMap() {
		return reflect.Value{}, coercef("expected a map, got %s", n.Kind())
	}
	res := reflect.MakeMapWithSize(t, len(n.Keys()))
	for k, c := range n.Entries() {
		kv, err := loadKey(s, t.Key(), k)
		if err != nil {
			return reflect.Value{}, s.Errorf(kindOf(err, ErrTypeCoercion), c, t.Key(), "invalid key %q: %v", k, err)
		}
		ev, err := s.Load(t.Elem(), c)
		if err != nil {
			return reflect.Value{}, err
		}
		res.SetMapIndex(kv, ev)
	}
	return res, nil
}

func (Map) Save(s *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := keyText(s, t.Key(), iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})
	if !n.IsMap() {
		if err := n.Set(node.EmptyMap()); err != nil {
			return err
		}
	}
	for _, k := range n.Keys() {
		if !slices.ContainsFunc(entries, func(e entry) bool { return e.key == k }) {
			n.RemoveChild(node.Field(k))
		}
	}
	for _, e := range entries {
		if err := s.Save(t.Elem(), e.val, n.Node(node.Field(e.key))); err != nil {
			return err
		}
	}
	return nil
}

func isSet(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// Set handles map[K]struct{} as a list of its keys, saved in sorted order.
type Set struct{}

func (Set) EmptyValue(_ *Session, t reflect.Type, _ *node.Node) (reflect.Value, error) {
	return reflect.MakeMap(t), nil
}

func (Set) Load(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	kids, err := listChildren(n)
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.MakeMapWithSize(t, len(kids))
	present := reflect.Zero(t.Elem())
	for _, c := range kids {
		kv, err := s.Load(t.Key(), c)
		if err != nil {
			return reflect.Value{}, err
		}
		res.SetMapIndex(kv, present)
	}
	return res, nil
}

func (Set) Save(s *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	type elem struct {
		text string
		key  reflect.Value
	}
	elems := make([]elem, 0, v.Len())
	for _, k := range v.MapKeys() {
		text, err := keyText(s, t.Key(), k)
		if err != nil {
			return err
		}
		elems = append(elems, elem{text: text, key: k})
	}
	slices.SortFunc(elems, func(a, b elem) int {
		return strings.Compare(a.text, b.text)
	})
	if err := n.Set(node.EmptyList()); err != nil {
		return err
	}
	for i, e := range elems {
		if err := s.Save(t.Key(), e.key, n.Node(node.Index(i))); err != nil {
			return err
		}
	}
	return nil
}

// Pointer loads and saves the pointed to value in place of the pointer.
// Absent values stay nil, also under implicit initialization.
type Pointer struct{ zeroEmpty }

func (Pointer) Load(s *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	ev, err := s.Load(t.Elem(), n)
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t.Elem())
	res.Elem().Set(ev)
	return res, nil
}

func (Pointer) Save(s *Session, t reflect.Type, v reflect.Value, n *node.Node) error {
	return s.Save(t.Elem(), v.Elem(), n)
}

// Any handles the empty interface. Loading yields the natural value of the
// node (see node.Node.Interface); saving dispatches on the dynamic type.
type Any struct{ zeroEmpty }

func (Any) Load(_ *Session, t reflect.Type, n *node.Node) (reflect.Value, error) {
	res := reflect.New(t).Elem()
	if x := n.Interface(); x != nil {
		res.Set(reflect.ValueOf(x))
	}
	return res, nil
}

func (Any) Save(s *Session, _ reflect.Type, v reflect.Value, n *node.Node) error {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return n.Set(nil)
	}
	return s.Save(v.Type(), v, n)
}
