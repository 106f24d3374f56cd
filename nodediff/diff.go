package nodediff

import (
	"fmt"
	"strings"

	"github.com/signadot/confnode/node"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Added Op = iota + 1
	Removed
	Changed
	Recommented
)

func (op Op) String() string {
	switch op {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Changed:
		return "~"
	case Recommented:
		return "#"
	}
	return fmt.Sprintf("<op %d>", int(op))
}

// Change is a difference at a single path. From is nil for Added and To is
// nil for Removed. Both are nodes of the compared trees, not copies.
type Change struct {
	Path     node.Path
	Op       Op
	From, To *node.Node
}

func (c Change) String() string {
	switch c.Op {
	case Added:
		return fmt.Sprintf("%s %s: %s", c.Op, pathText(c.Path), c.To.Value())
	case Removed:
		return fmt.Sprintf("%s %s: %s", c.Op, pathText(c.Path), c.From.Value())
	case Recommented:
		return fmt.Sprintf("%s %s: %q -> %q", c.Op, pathText(c.Path), c.From.Comment(), c.To.Comment())
	}
	return fmt.Sprintf("%s %s: %s -> %s", c.Op, pathText(c.Path), c.From.Value(), c.To.Value())
}

// TextPatch returns the character level patch turning From into To when
// both are strings, in diff-match-patch text form.
func (c Change) TextPatch() (string, bool) {
	if c.Op != Changed {
		return "", false
	}
	from, ok := c.From.Value().AsString()
	if !ok {
		return "", false
	}
	to, ok := c.To.Value().AsString()
	if !ok {
		return "", false
	}
	dmp := diffpatch.New()
	return dmp.PatchToText(dmp.PatchMake(from, to)), true
}

func pathText(p node.Path) string {
	if len(p) == 0 {
		return "."
	}
	return p.String()
}

type options struct {
	comments bool
}

type Option func(*options)

// Comments makes Diff report comment differences as Recommented changes.
func Comments(v bool) Option {
	return func(o *options) { o.comments = v }
}

// Diff returns the changes turning from into to, in document order.
//
// Map entries are matched by key and list elements by an alignment of
// their kinds and scalar values, so an insertion into a list does not show
// up as a change of every following element. List paths name the index in
// to, except for removals which name the index in from.
func Diff(from, to *node.Node, opts ...Option) []Change {
	d := &differ{}
	for _, o := range opts {
		o(&d.opts)
	}
	d.diff(nil, from, to)
	return d.res
}

type differ struct {
	opts options
	res  []Change
}

func (d *differ) add(p node.Path, op Op, from, to *node.Node) {
	d.res = append(d.res, Change{Path: append(node.Path{}, p...), Op: op, From: from, To: to})
}

func (d *differ) diff(p node.Path, from, to *node.Node) {
	switch {
	case isNull(from) && isNull(to):
		return
	case isNull(from):
		d.add(p, Added, nil, to)
		return
	case isNull(to):
		d.add(p, Removed, from, nil)
		return
	}
	if d.opts.comments && from.Comment() != to.Comment() {
		d.add(p, Recommented, from, to)
	}
	if from.Kind() != to.Kind() {
		d.add(p, Changed, from, to)
		return
	}
	switch from.Kind() {
	case node.MapKind:
		d.maps(p, from, to)
	case node.ListKind:
		d.lists(p, from, to)
	default:
		ft, _ := from.Value().Text()
		tt, _ := to.Value().Text()
		if ft != tt {
			d.add(p, Changed, from, to)
		}
	}
}

func isNull(n *node.Node) bool {
	return n == nil || n.IsNull()
}

func (d *differ) maps(p node.Path, from, to *node.Node) {
	keyMap := map[string]rune{}
	runeMap := map[rune]string{}
	fromRunes := mapKeysTo(keyMap, runeMap, from.Keys())
	toRunes := mapKeysTo(keyMap, runeMap, to.Keys())
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)
	fromMap, toMap := from.ChildrenMap(), to.ChildrenMap()
	for i := range diffs {
		diff := &diffs[i]
		for _, r := range diff.Text {
			k := runeMap[r]
			kp := p.With(node.Field(k))
			switch diff.Type {
			case diffpatch.DiffDelete:
				if _, moved := toMap[k]; !moved {
					d.add(kp, Removed, fromMap[k], nil)
				}
			case diffpatch.DiffInsert:
				d.diff(kp, fromMap[k], toMap[k])
			case diffpatch.DiffEqual:
				d.diff(kp, fromMap[k], toMap[k])
			}
		}
	}
}

func mapKeysTo(m map[string]rune, im map[rune]string, keys []string) []rune {
	rs := make([]rune, len(keys))
	for i, k := range keys {
		r, ok := m[k]
		if !ok {
			r = rune(len(m))
			m[k] = r
			im[r] = k
		}
		rs[i] = r
	}
	return rs
}

// lists aligns the summaries of the elements of from and to. A run of
// deletions directly followed by insertions pairs up into changes.
func (d *differ) lists(p node.Path, from, to *node.Node) {
	fcs, tcs := from.ChildrenList(), to.ChildrenList()
	m := map[string]rune{}
	fromRunes := summaries(m, fcs)
	toRunes := summaries(m, tcs)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)

	fi, ti := 0, 0
	var deleted []int
	flush := func() {
		for _, i := range deleted {
			d.add(p.With(node.Index(i)), Removed, fcs[i], nil)
		}
		deleted = deleted[:0]
	}
	for i := range diffs {
		diff := &diffs[i]
		n := len([]rune(diff.Text))
		switch diff.Type {
		case diffpatch.DiffDelete:
			for range n {
				deleted = append(deleted, fi)
				fi++
			}
		case diffpatch.DiffInsert:
			for range n {
				ip := p.With(node.Index(ti))
				if len(deleted) != 0 {
					d.diff(ip, fcs[deleted[0]], tcs[ti])
					deleted = deleted[1:]
				} else {
					d.add(ip, Added, nil, tcs[ti])
				}
				ti++
			}
			flush()
		case diffpatch.DiffEqual:
			flush()
			for range n {
				d.diff(p.With(node.Index(ti)), fcs[fi], tcs[ti])
				fi++
				ti++
			}
		}
	}
	flush()
}

func summaries(m map[string]rune, ns []*node.Node) []rune {
	rs := make([]rune, len(ns))
	for i, n := range ns {
		sum := summary(n)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

// summary identifies a scalar by kind and value and a container by kind
// alone, so that containers always align and are compared in depth.
// Multi line strings align with each other like containers.
func summary(n *node.Node) string {
	k := n.Kind()
	if k.IsContainer() || k == node.NullKind {
		return k.String()
	}
	text, _ := n.Value().Text()
	if k == node.StringKind && strings.Contains(text, "\n") {
		return k.String() + "/m"
	}
	return k.String() + "-" + text
}
