package main

import (
	"context"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler"
	"github.com/slowlang/midend/compiler/format"
	"github.com/slowlang/midend/compiler/ssa"
)

func main() {
	lowerCmd := &cli.Command{
		Name:        "lower",
		Description: "lower procedure descriptions to bytecode",
		Action:      lowerAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("dump", false, "print ssa form of every procedure before lowering"),
		},
	}

	app := &cli.Command{
		Name:        "midend",
		Description: "midend builds ssa form of procedures and lowers it to bytecode",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			lowerCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func lowerAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := &compiler.Options{}

	if c.Bool("dump") {
		opts.Front.DumpSSA = func(ctx context.Context, f *ssa.Func) {
			_, _ = os.Stdout.Write(format.Func(nil, f))
		}
	}

	for _, a := range c.Args {
		p, err := compiler.CompileFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		_, err = os.Stdout.Write(format.Program(nil, p))
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}
