package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/signadot/confnode/node"
)

func tree(cfg *TreeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Tree.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	c := cfg.colors(cc.Out)
	for i, arg := range args {
		n, err := cfg.read(cc.In, arg)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		if i > 0 {
			if _, err := io.WriteString(cc.Out, c.attr(sepColor, "---")+"\n"); err != nil {
				return err
			}
		}
		if err := writeTree(cc.Out, n, c, !cfg.Bare && !cfg.NoComments); err != nil {
			return fmt.Errorf("error writing %s: %w", arg, err)
		}
	}
	return nil
}

// writeTree writes one line per leaf of n, its path and value:
//
//	# listen port
//	server.port = 8080
//	server.hosts[0] = "a"
//
// Empty containers are leaves. Comments precede the first line below the
// node holding them.
func writeTree(w io.Writer, n *node.Node, c *colors, comments bool) error {
	base := len(n.Path())
	return n.Visit(func(x *node.Node, isPost bool) (bool, error) {
		if isPost {
			return false, nil
		}
		if comments && x.Comment() != "" {
			for _, line := range strings.Split(x.Comment(), "\n") {
				if _, err := fmt.Fprintln(w, c.attr(commentColor, "# "+line)); err != nil {
					return false, err
				}
			}
		}
		if x.Kind().IsContainer() && !x.IsEmpty() {
			return true, nil
		}
		p := x.Path()[base:].String()
		if p == "" {
			p = "."
		}
		_, err := fmt.Fprintf(w, "%s = %s\n", c.attr(pathColor, p), c.kind(x.Kind(), leafText(x)))
		return false, err
	})
}

func leafText(n *node.Node) string {
	switch n.Kind() {
	case node.ListKind:
		return "[]"
	case node.MapKind:
		return "{}"
	}
	return n.Value().String()
}
