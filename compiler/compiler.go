package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/code"
	"github.com/slowlang/midend/compiler/front"
)

type Options struct {
	Front front.Front
}

func CompileFile(ctx context.Context, name string, opts *Options) (p *code.Program, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

func Compile(ctx context.Context, name string, text []byte, opts *Options) (p *code.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name)
	defer tr.Finish("err", &err)

	if opts == nil {
		opts = &Options{}
	}

	var parser front.Parser

	file, err := parser.ParseFileData(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	p, err = opts.Front.Compile(ctx, file)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	for _, x := range p.Procs {
		err = x.Verify()
		if err != nil {
			return nil, errors.Wrap(err, "verify")
		}
	}

	return p, nil
}
