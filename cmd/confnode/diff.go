package main

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/scott-cotton/cli"

	"github.com/signadot/confnode/loader"
	"github.com/signadot/confnode/node"
	"github.com/signadot/confnode/nodediff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Loop == "" {
		if len(args) != 2 {
			return fmt.Errorf("%w: diff (without -loop) requires 2 args, got %v", cli.ErrUsage, args)
		}
		a, err := cfg.read(cc.In, args[0])
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", args[0], err)
		}
		b, err := cfg.read(cc.In, args[1])
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", args[1], err)
		}
		differs, err := diffInputs(cfg, cc.Out, a, b, false)
		if err != nil {
			return err
		}
		if differs {
			return cli.ExitCodeErr(1)
		}
		return nil
	}
	return diffLoop(cfg, cc)
}

// diffLoop runs the -loop command every LoopEvery and reports how each
// output differs from the previous one.
func diffLoop(cfg *DiffConfig, cc *cli.Context) error {
	f := loader.YAML
	if cfg.InFormat != nil {
		f = *cfg.InFormat
	}
	last := node.NewRoot()
	ticker := time.NewTicker(cfg.LoopEvery)
	defer ticker.Stop()
	diffCount := 0
	for i := 0; i != cfg.LoopLim; i++ {
		cmd := exec.Command("sh", "-c", cfg.Loop)
		r, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("unable to create pipe for command %q: %w", cfg.Loop, err)
		}
		cmd.WaitDelay = cfg.LoopEvery
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("unable to start %q: %w", cfg.Loop, err)
		}
		next, err := loader.Read(r, f, cfg.loadOpts()...)
		if err != nil {
			return fmt.Errorf("error decoding command output: %w", err)
		}
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("command %q exited with an error: %w", cfg.Loop, err)
		}
		differs, err := diffInputs(cfg, cc.Out, last, next, diffCount > 0)
		if err != nil {
			return err
		}
		if differs {
			theLog.Info("difference found", "run", i)
			diffCount++
		}
		last = next
		<-ticker.C
	}
	return nil
}

func diffInputs(cfg *DiffConfig, w io.Writer, a, b *node.Node, sep bool) (bool, error) {
	if cfg.Reverse {
		a, b = b, a
	}
	changes := nodediff.Diff(a, b, nodediff.Comments(cfg.Comments))
	if len(changes) == 0 {
		return false, nil
	}
	if sep {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return false, fmt.Errorf("unable to write separator: %w", err)
		}
	}
	if err := writeChanges(w, changes, cfg.colors(w)); err != nil {
		return false, err
	}
	return true, nil
}

func writeChanges(w io.Writer, changes []nodediff.Change, c *colors) error {
	for _, ch := range changes {
		if _, err := fmt.Fprintln(w, c.op(ch.Op, ch.String())); err != nil {
			return err
		}
	}
	return nil
}
