package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/confnode/transform"
)

func mv(cfg *MvConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Mv.Parse(cc, args)
	if err != nil {
		cfg.Mv.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: mv requires a source and a target path", cli.ErrUsage)
	}
	tr, err := moveTransform(args[0], args[1], cfg.Merge)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	args = args[2:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for i, arg := range args {
		n, err := cfg.read(cc.In, arg)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		if err := tr.Apply(n); err != nil {
			return fmt.Errorf("error transforming %s: %w", arg, err)
		}
		if i > 0 {
			if _, err := io.WriteString(cc.Out, "---\n"); err != nil {
				return err
			}
		}
		if err := cfg.write(cc.Out, n); err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
	}
	return nil
}

func moveTransform(from, to string, merge bool) (transform.Transformation, error) {
	fp, err := parsePattern(from)
	if err != nil {
		return nil, err
	}
	tp, err := parsePattern(to)
	if err != nil {
		return nil, err
	}
	strategy := transform.Overwrite
	if merge {
		strategy = transform.Merge
	}
	return transform.NewBuilder().Strategy(strategy).Move(fp, tp).Build(), nil
}

// parsePattern is parseArgPath for patterns.
func parsePattern(a string) (transform.Pattern, error) {
	if a == "." {
		return transform.Pattern{}, nil
	}
	return transform.ParsePattern(a)
}
