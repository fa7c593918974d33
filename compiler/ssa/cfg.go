package ssa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/set"
)

type (
	// CFG is a snapshot of the jump graph.
	// It's recomputed after every stage which changes the graph.
	CFG struct {
		Entry     BlockID
		FirstReal BlockID

		Reachable set.Bits[BlockID]

		// Approximate topological order of reachable blocks:
		// blocks in a cycle are in breadth-first discovery order.
		Order []BlockID

		fwd   [][]BlockID
		bwd   [][]BlockID
		index []int
	}
)

// Analyze builds the jump graph of f.
// All the blocks except the entry must be terminated by now.
// Until the entry block is bound it jumps where f.entryRoute points.
func Analyze(ctx context.Context, f *Func) *CFG {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: analyze cfg", "blocks", len(f.blocks))
	defer tr.Finish()

	if len(f.blocks) < 2 {
		fatalf("%v: no user blocks", f.Name)
	}

	g := &CFG{
		Entry:     Entry,
		FirstReal: Entry + 1,

		fwd:   make([][]BlockID, len(f.blocks)),
		bwd:   make([][]BlockID, len(f.blocks)),
		index: make([]int, len(f.blocks)),
	}

	for id, b := range f.blocks {
		id := BlockID(id)

		var labels []BlockID

		switch {
		case b.complete:
			last, _ := b.Terminator()
			labels = last.Labels()
		case id == Entry:
			labels = []BlockID{f.entryRoute}
		default:
			fatalf("%v: block %v is not terminated", f.Name, id)
		}

		for _, to := range labels {
			if to == Entry {
				fatalf("%v: block %v jumps to the entry block", f.Name, id)
			}

			if to < 0 || int(to) >= len(f.blocks) {
				fatalf("%v: block %v jumps to unknown block %v", f.Name, id, to)
			}

			g.fwd[id] = append(g.fwd[id], to)
		}
	}

	for i := range g.index {
		g.index[i] = -1
	}

	g.Reachable.Add(Entry)
	g.Order = append(g.Order, Entry)

	for i := 0; i < len(g.Order); i++ {
		id := g.Order[i]
		g.index[id] = i

		for _, to := range g.fwd[id] {
			g.bwd[to] = append(g.bwd[to], id)

			if g.Reachable.Add(to) {
				g.Order = append(g.Order, to)
			}
		}
	}

	tr.V("cfg").Printw("cfg", "order", g.Order, "reachable", &g.Reachable)

	return g
}

// Succs returns the blocks id jumps to.
func (g *CFG) Succs(id BlockID) []BlockID {
	return g.fwd[id]
}

// Preds returns the reachable blocks jumping to id in discovery order.
func (g *CFG) Preds(id BlockID) []BlockID {
	return g.bwd[id]
}

// Index returns the position of the block in Order or -1 if it's unreachable.
func (g *CFG) Index(id BlockID) int {
	if id < 0 || int(id) >= len(g.index) {
		return -1
	}

	return g.index[id]
}

func (g *CFG) IsReachable(id BlockID) bool {
	return g.Reachable.IsSet(id)
}
