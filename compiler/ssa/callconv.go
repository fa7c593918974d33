package ssa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/code"
)

// ArgSlot is one field of the procedure argument structure
// and the variable the body knows it by.
type ArgSlot struct {
	Var  Var
	Size int
}

// GenerateFinalBlock redirects every return to one new block
// which is the only one to return.
func GenerateFinalBlock(ctx context.Context, f *Func, g *CFG) (final BlockID) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: final block")
	defer tr.Finish("final", &final)

	final = f.CreateBlock()

	for _, id := range g.Order {
		b := f.blocks[id]

		last, ok := b.Terminator()
		if !ok || last.Op != code.OpReturn {
			continue
		}

		b.code[len(b.code)-1] = Jump(final)

		tr.V("final").Printw("redirect return", "block", id)
	}

	f.AddInstruction(final, Return())

	return final
}

// BindArgs populates everything the entry block needs from the argument slots
// and terminates the entry block with a jump into the user code.
func BindArgs(ctx context.Context, f *Func, g *CFG, needs *BlockNeeds, args []ArgSlot) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: bind args", "args", len(args))
	defer tr.Finish("err", &err)

	if f.blocks[g.Entry].complete {
		fatalf("%v: entry block is already bound", f.Name)
	}

	var missing []string

	for _, v := range needs.Of(g.Entry) {
		slot := -1

		for i, a := range args {
			if a.Var == v {
				slot = i
				break
			}
		}

		if slot == -1 {
			missing = append(missing, f.VarName(v))
			continue
		}

		r := f.CreateRegister(v)
		f.args[r] = slot

		f.WriteVariableReg(g.Entry, v, r)
		f.blocks[g.Entry].pipeIn(v, r)

		tr.V("args").Printw("bind arg", "var", f.VarName(v), "slot", slot, "reg", r)
	}

	if len(missing) != 0 {
		return &SignatureError{Proc: f.Name, Missing: missing}
	}

	f.AddInstruction(g.Entry, Jump(f.entryRoute))

	return nil
}
