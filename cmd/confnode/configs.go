package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"

	"github.com/signadot/confnode/loader"
	"github.com/signadot/confnode/node"
)

type MainConfig struct {
	Color      bool `cli:"name=color desc='output in color'"`
	Indent     int  `cli:"name=indent desc='indentation width of output'"`
	NoComments bool `cli:"name=nc desc='drop comments'"`
	Verbose    bool `cli:"name=v desc='log debug output'"`

	InFormat, OutFormat *loader.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**loader.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := loader.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) loadOpts() []loader.Option {
	res := []loader.Option{
		loader.WithComments(!cfg.NoComments),
		loader.WithIndent(cfg.Indent),
	}
	if cfg.InFormat != nil {
		res = append(res, loader.WithFormat(*cfg.InFormat))
	}
	return res
}

func (cfg *MainConfig) outFormat() loader.Format {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat
	}
	return loader.YAML
}

// read decodes the file at path, or in when path is "-".
func (cfg *MainConfig) read(in io.Reader, path string) (*node.Node, error) {
	theLog.Debug("reading", "path", path)
	if path != "-" {
		return loader.ReadFile(path, cfg.loadOpts()...)
	}
	f := loader.YAML
	if cfg.InFormat != nil {
		f = *cfg.InFormat
	}
	return loader.Read(in, f, cfg.loadOpts()...)
}

func (cfg *MainConfig) write(w io.Writer, n *node.Node) error {
	return loader.Write(w, n, cfg.outFormat(), loader.WithComments(!cfg.NoComments), loader.WithIndent(cfg.Indent))
}

// colors returns the colors of output to w, nil for plain output.
// Without -color, output is colored when w is a terminal.
func (cfg *MainConfig) colors(w io.Writer) *colors {
	if cfg.Color {
		return newColors(true)
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name == "color" && opt.Value != nil {
				return nil
			}
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return newColors(false)
	}
	return nil
}

type TreeConfig struct {
	*MainConfig
	Bare bool `cli:"name=b desc='omit comments'"`

	Tree *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type MvConfig struct {
	*MainConfig
	Merge bool `cli:"name=m desc='merge into existing values at the target'"`

	Mv *cli.Command
}

type MergeConfig struct {
	*MainConfig
	sets []set

	Merge *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse   bool   `cli:"name=r desc='reverse the diff'"`
	Comments  bool   `cli:"name=c desc='report comment changes'"`
	Loop      string `cli:"name=loop desc='command to produce documents to diff in a loop'"`
	LoopEvery time.Duration
	LoopLim   int `cli:"name=loopLim desc='max number of times to loop'"`

	Diff *cli.Command
}

func (cfg *DiffConfig) mkLoopEvery() func(cc *cli.Context, a string) (any, error) {
	return func(_ *cli.Context, a string) (any, error) {
		d, err := time.ParseDuration(a)
		if err != nil {
			return nil, err
		}
		cfg.LoopEvery = d
		return d, nil
	}
}
