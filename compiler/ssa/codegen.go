package ssa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/code"
)

// Generate lays blocks out in the approximate topological order
// and resolves registers and labels.
// A jump to the block laid out next is dropped.
// Registers bound to arguments become argument registers,
// the rest are numbered as frame locals in order of appearance.
func Generate(ctx context.Context, f *Func, g *CFG) (c code.Bytecode, locals int) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: generate code")
	defer tr.Finish("locals", &locals)

	offset := make(map[BlockID]int, len(g.Order))
	var flat []Instr

	for i, id := range g.Order {
		offset[id] = len(flat)

		for _, x := range f.blocks[id].code {
			if x.Op == code.OpJump && i+1 < len(g.Order) && x.Label == g.Order[i+1] {
				continue
			}

			if x.Op == code.OpForeignCall && x.Arg != Known(x.Out) {
				flat = append(flat, Move(x.Out, x.Arg))
				x.Arg = Known(x.Out)
			}

			flat = append(flat, x)
		}
	}

	regs := make(map[Reg]code.Register)

	resolve := func(r Reg) code.Register {
		if pr, ok := regs[r]; ok {
			return pr
		}

		pr := code.LocalReg(locals)

		if slot, ok := f.args[r]; ok {
			pr = code.ArgReg(slot)
		} else {
			locals++
		}

		regs[r] = pr

		return pr
	}

	c = make(code.Bytecode, 0, len(flat))

	for pc, x := range flat {
		y := code.MapRead(x, func(a ArgReg) code.Register {
			if !a.IsKnown() {
				fatalf("%v: block param %v left at pc %d", f.Name, a, pc)
			}

			return resolve(a.Reg())
		})

		z := code.MapWrite(y, resolve)

		c = append(c, code.MapLabel(z, func(l BlockID) int {
			off, ok := offset[l]
			if !ok {
				fatalf("%v: jump to unreachable block %v", f.Name, l)
			}

			return off
		}))
	}

	if tr.If("dump_code") {
		for pc, x := range c {
			tr.Printw("code", "pc", pc, "instr", x.String())
		}
	}

	return c, locals
}
