package objmap

import (
	"reflect"
	"sync"
)

// Table is a Describer holding explicitly registered descriptors.
//
// Mappers cache resolution results, misses included, so a Table should be
// complete before it is passed to New. Types added afterwards are not seen
// by Mappers already built from it.
type Table struct {
	mu    sync.RWMutex
	descs map[reflect.Type]*Descriptor
}

func NewTable(ds ...*Descriptor) *Table {
	t := &Table{descs: map[reflect.Type]*Descriptor{}}
	for _, d := range ds {
		t.Add(d)
	}
	return t
}

// Add registers d, replacing any descriptor of the same type.
func (t *Table) Add(d *Descriptor) *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.descs[d.Type] = d
	return t
}

func (t *Table) Describe(typ reflect.Type) (*Descriptor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.descs[typ], nil
}
