package main

import (
	"time"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{Indent: 2}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: yaml/y, json/j, toml/t (default from file extension)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		}, &cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: yaml/y, json/j, toml/t (default yaml)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "confnode").
		WithSynopsis("confnode [opts] command [opts]").
		WithDescription("confnode inspects, queries, merges and compares configuration files.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return confnodeMain(cfg, cc, args)
		}).
		WithSubs(
			TreeCommand(cfg),
			GetCommand(cfg),
			MergeCommand(cfg),
			MvCommand(cfg),
			DiffCommand(cfg))
}

func TreeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TreeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("tree").
		WithAliases("t").
		WithOpts(opts...).
		WithSynopsis("tree [files]").
		WithDescription("list the leaves of configuration files with their paths").
		WithRun(func(cc *cli.Context, args []string) error {
			return tree(cfg, cc, args)
		})
	cfg.Tree = cmd
	return cmd
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("get").
		WithAliases("g").
		WithSynopsis("get <path> [files]").
		WithDescription("get the subtree at a path, such as servers[0].host, from files").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func MergeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MergeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts,
		&cli.Opt{
			Name:        "s",
			Description: "set a value, parsed as yaml, at a path",
			Type:        cli.NamedFuncOpt(cli.FuncOpt(cfg.setOpt), "(path=val)"),
		})
	return cli.NewCommandAt(&cfg.Merge, "merge").
		WithAliases("m").
		WithSynopsis("merge [-s path=val [-s path2=val2]...] [files]").
		WithDescription(mergeDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return merge(cfg, cc, args)
		})
}

const mergeDescription = `merge layers configuration files into one document.

Values set with -s take precedence over files, and later files take
precedence over earlier ones. Maps are merged key by key; lists and scalars
are taken whole from the file with the highest precedence holding them.`

func MvCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MvConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("mv").
		WithOpts(opts...).
		WithSynopsis("mv [-m] <from> <to> [files]").
		WithDescription(mvDescription).
		WithRun(func(cc *cli.Context, args []string) error {
			return mv(cfg, cc, args)
		})
	cfg.Mv = cmd
	return cmd
}

const mvDescription = `mv moves the values at a path to another path.

A * field in <from> matches every child of a list or map; the * fields of
<to> take the matched keys in order, so servers.*.addr servers.*.address
renames addr in each server. "." is the root.`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg, LoopEvery: time.Second, LoopLim: -1}
	loopEveryOpt := &cli.Opt{
		Name:        "loopEvery",
		Description: "interval between runs of the -loop command",
		Type:        cli.FuncOpt(cfg.mkLoopEvery()),
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, loopEveryOpt)

	cmd := cli.NewCommand("diff").
		WithAliases("d").
		WithOpts(opts...).
		WithSynopsis("diff a b or diff -loop <cmd>").
		WithDescription("list the differences between configuration documents").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}
