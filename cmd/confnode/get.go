package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/confnode/node"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a path", cli.ErrUsage)
	}
	path, err := parseArgPath(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for i, arg := range args {
		n, err := cfg.read(cc.In, arg)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		res := n.Node(path...)
		if res.IsVirtual() {
			// nothing there, nothing to say
			theLog.Debug("no value", "file", arg, "path", args[0])
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(cc.Out, "---\n"); err != nil {
				return err
			}
		}
		if err := cfg.write(cc.Out, res.Copy()); err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
	}
	return nil
}

// parseArgPath parses a path argument. "." and "" name the root.
func parseArgPath(a string) (node.Path, error) {
	if a == "." {
		return nil, nil
	}
	return node.ParsePath(a)
}
