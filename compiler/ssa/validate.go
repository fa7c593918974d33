package ssa

import (
	"context"

	"tlog.app/go/tlog"
)

// ValidateNeeds checks needs calculated before phantoms were inserted
// against the graph after that. Blocks with a single predecessor are left
// for Propagate.
func ValidateNeeds(ctx context.Context, f *Func, g *CFG, needs *BlockNeeds) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ssa: validate needs")
	defer tr.Finish()

	for _, id := range g.Order {
		vars := needs.Of(id)
		if len(vars) == 0 {
			continue
		}

		b := f.blocks[id]
		jumpers := g.Preds(id)

		switch {
		case id == g.Entry:
			if len(jumpers) != 0 {
				fatalf("%v: entry block has predecessors: %v", f.Name, jumpers)
			}
		case len(jumpers) > 1:
			if len(b.params) != 0 {
				fatalf("%v: block %v with %d predecessors still has params: %v", f.Name, id, len(jumpers), b.params)
			}
		default:
			continue
		}

		for _, v := range vars {
			if _, ok := b.populates[v]; !ok {
				fatalf("%v: block %v needs %v but doesn't populate it", f.Name, id, f.VarName(v))
			}
		}
	}
}
