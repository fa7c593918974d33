package ssa

import (
	"context"

	"tlog.app/go/tlog"
)

type phantomPass struct {
	f     *Func
	g     *CFG
	needs *BlockNeeds

	tr tlog.Span
}

// GeneratePhantoms puts a join block on every incoming edge of a block
// which has more than one predecessor and needs something.
// Each phantom moves the values coming along its edge into registers shared
// by all the edges, so the target gets one register per variable.
// It returns the created blocks.
func GeneratePhantoms(ctx context.Context, f *Func, g *CFG, needs *BlockNeeds) (phantoms []BlockID) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: generate phantoms")
	defer tr.Finish("phantoms", &phantoms)

	p := phantomPass{f: f, g: g, needs: needs, tr: tr}

	for _, target := range g.Order {
		phantoms = p.join(target, phantoms)
	}

	return phantoms
}

func (p phantomPass) join(target BlockID, phantoms []BlockID) []BlockID {
	f := p.f

	jumpers := p.g.Preds(target)
	vars := p.needs.Of(target)

	if len(jumpers) < 2 || len(vars) == 0 {
		return phantoms
	}

	shared := make([]Reg, len(vars))

	for i, v := range vars {
		shared[i] = f.CreateRegister(v)
	}

	for _, jumper := range jumpers {
		ph := f.CreateBlock()

		for i, v := range vars {
			arg := f.ReadVariable(ph, v)

			f.WriteVariableReg(ph, v, shared[i])
			f.AddInstruction(ph, Move(shared[i], arg))
		}

		f.AddInstruction(ph, Jump(target))

		p.redirect(jumper, target, ph)

		p.tr.V("phantom").Printw("phantom", "from", jumper, "to", target, "phantom", ph, "vars", vars, "regs", shared)

		phantoms = append(phantoms, ph)
	}

	t := f.blocks[target]

	for i, v := range vars {
		t.pipeIn(v, shared[i])
	}

	return phantoms
}

func (p phantomPass) redirect(jumper, old, new BlockID) {
	f := p.f
	b := f.blocks[jumper]

	if jumper == Entry && !b.complete {
		if f.entryRoute != old {
			fatalf("%v: entry routes to %v, not %v", f.Name, f.entryRoute, old)
		}

		f.entryRoute = new

		return
	}

	b.replaceJump(old, new)
}
