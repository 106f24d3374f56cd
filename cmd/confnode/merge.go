package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"

	"github.com/signadot/confnode/node"
)

// set is a value given on the command line for a path.
type set struct {
	path node.Path
	val  any
}

func parseSet(a string) (set, error) {
	key, val, ok := strings.Cut(a, "=")
	if !ok {
		return set{}, fmt.Errorf("%w: argument %q expected path=val", cli.ErrUsage, a)
	}
	p, err := parseArgPath(key)
	if err != nil {
		return set{}, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	var v any
	if err := yaml.Unmarshal([]byte(val), &v); err != nil {
		return set{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return set{path: p, val: v}, nil
}

func (cfg *MergeConfig) setOpt(_ *cli.Context, a string) (any, error) {
	s, err := parseSet(a)
	if err != nil {
		return nil, err
	}
	cfg.sets = append(cfg.sets, s)
	return 0, nil
}

func merge(cfg *MergeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Merge.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 && len(cfg.sets) == 0 {
		args = []string{"-"}
	}
	layers := make([]*node.Node, 0, len(args))
	for _, arg := range args {
		n, err := cfg.read(cc.In, arg)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		layers = append(layers, n)
	}
	res, err := mergeLayers(cfg.sets, layers)
	if err != nil {
		return err
	}
	return cfg.write(cc.Out, res)
}

// mergeLayers applies sets to a new tree and fills its gaps from layers,
// last layer first.
func mergeLayers(sets []set, layers []*node.Node) (*node.Node, error) {
	res := node.NewRoot()
	for _, s := range sets {
		if err := res.Node(s.path...).Set(s.val); err != nil {
			return nil, fmt.Errorf("error setting %s: %w", s.path, err)
		}
	}
	for i := len(layers) - 1; i >= 0; i-- {
		theLog.Debug("merging layer", "index", i)
		if err := res.MergeFrom(layers[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}
