package ssa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/code"
)

type Lowered struct {
	Code   code.Bytecode
	Locals int

	Final    BlockID
	Phantoms []BlockID
}

// Lower turns the built procedure into bytecode.
// f is consumed: the stages mutate it in place.
//
// A broken invariant aborts this procedure only and is returned as *InvariantError.
func Lower(ctx context.Context, f *Func, args []ArgSlot) (l *Lowered, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "ssa: lower", "proc", f.Name, "blocks", len(f.blocks), "vars", len(f.vars))
	defer tr.Finish("err", &err)

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		e, ok := p.(*InvariantError)
		if !ok {
			panic(p)
		}

		l, err = nil, e
	}()

	l = &Lowered{}

	g := Analyze(ctx, f)
	l.Final = GenerateFinalBlock(ctx, f, g)

	g = Analyze(ctx, f)
	needs := CalcNeeds(ctx, f, g)
	l.Phantoms = GeneratePhantoms(ctx, f, g, needs)

	g = Analyze(ctx, f)

	err = BindArgs(ctx, f, g, needs, args)
	if err != nil {
		return nil, err
	}

	ValidateNeeds(ctx, f, g, needs)
	Propagate(ctx, f, g)

	l.Code, l.Locals = Generate(ctx, f, g)

	tr.Printw("lowered", "code", len(l.Code), "locals", l.Locals, "phantoms", len(l.Phantoms))

	return l, nil
}
