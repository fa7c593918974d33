package ssa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/set"
)

type (
	// BlockNeeds lists for every block the variables it or any block it reaches
	// consumes, and which are not produced on the way in.
	BlockNeeds struct {
		order [][]Var
		has   []set.Bits[Var]
	}

	need struct {
		b BlockID
		v Var
	}
)

func CalcNeeds(ctx context.Context, f *Func, g *CFG) *BlockNeeds {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: block needs")
	defer tr.Finish()

	n := &BlockNeeds{
		order: make([][]Var, len(f.blocks)),
		has:   make([]set.Bits[Var], len(f.blocks)),
	}

	var q []need

	add := func(b BlockID, v Var) {
		if n.has[b].Add(v) {
			n.order[b] = append(n.order[b], v)
			q = append(q, need{b: b, v: v})
		}
	}

	for _, id := range g.Order {
		for _, v := range f.blocks[id].params {
			add(id, v)
		}
	}

	for len(q) != 0 {
		x := q[0]
		q = q[1:]

		for _, p := range g.Preds(x.b) {
			if _, ok := f.blocks[p].populates[x.v]; ok {
				continue
			}

			add(p, x.v)
		}
	}

	if tr.If("dump_needs") {
		for _, id := range g.Order {
			if len(n.order[id]) != 0 {
				tr.Printw("needs", "block", id, "vars", n.order[id])
			}
		}
	}

	return n
}

// Of returns what the block needs in discovery order.
func (n *BlockNeeds) Of(b BlockID) []Var {
	if b < 0 || int(b) >= len(n.order) {
		return nil
	}

	return n.order[b]
}

func (n *BlockNeeds) Has(b BlockID, v Var) bool {
	if b < 0 || int(b) >= len(n.has) {
		return false
	}

	return n.has[b].IsSet(v)
}
