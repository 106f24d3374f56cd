package main

import (
	"github.com/fatih/color"

	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/nodediff"
)

type colorAttr int

const (
	pathColor colorAttr = iota
	commentColor
	sepColor
)

type colors struct {
	kinds map[node.Kind]func(...any) string
	attrs map[colorAttr]func(...any) string
	ops   map[nodediff.Op]func(...any) string
}

// newColors returns the output palette. force overrides color's own
// terminal detection.
func newColors(force bool) *colors {
	if force {
		color.NoColor = false
	}
	return &colors{
		kinds: map[node.Kind]func(...any) string{
			node.StringKind: color.RGB(196, 96, 16).SprintFunc(),
			node.BoolKind:   color.RGB(168, 0, 196).SprintFunc(),
			node.IntKind:    color.New(color.FgCyan).SprintFunc(),
			node.FloatKind:  color.New(color.FgCyan).SprintFunc(),
			node.BytesKind:  color.RGB(196, 168, 128).SprintFunc(),
			node.NullKind:   color.RGB(96, 96, 96).SprintFunc(),
			node.ListKind:   color.RGB(128, 168, 196).SprintFunc(),
			node.MapKind:    color.RGB(128, 168, 196).SprintFunc(),
		},
		attrs: map[colorAttr]func(...any) string{
			pathColor:    color.RGB(128, 216, 236).SprintFunc(),
			commentColor: color.New(color.FgBlue).SprintFunc(),
			sepColor:     color.RGB(96, 96, 96).SprintFunc(),
		},
		ops: map[nodediff.Op]func(...any) string{
			nodediff.Added:       color.New(color.FgGreen).SprintFunc(),
			nodediff.Removed:     color.New(color.FgRed).SprintFunc(),
			nodediff.Changed:     color.New(color.FgYellow).SprintFunc(),
			nodediff.Recommented: color.New(color.FgBlue).SprintFunc(),
		},
	}
}

func (c *colors) kind(k node.Kind, s string) string {
	if c == nil {
		return s
	}
	return apply(c.kinds[k], s)
}

func (c *colors) attr(a colorAttr, s string) string {
	if c == nil {
		return s
	}
	return apply(c.attrs[a], s)
}

func (c *colors) op(op nodediff.Op, s string) string {
	if c == nil {
		return s
	}
	return apply(c.ops[op], s)
}

func apply(f func(...any) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}
