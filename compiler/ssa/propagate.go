package ssa

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/tlog"
)

type (
	propagatePass struct {
		f     *Func
		g     *CFG
		needs *BlockNeeds

		// block -> var -> register delivered
		got []map[Var]Reg

		q heap.Heap[delivery]
	}

	delivery struct {
		b   BlockID
		v   Var
		r   Reg
		pos int
	}
)

// Propagate pushes bindings down the graph until every block parameter
// is replaced by the register which reaches it.
// It must run after phantom insertion: each block may then receive
// a variable from one source only.
func Propagate(ctx context.Context, f *Func, g *CFG) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "ssa: propagate")
	defer tr.Finish()

	p := &propagatePass{
		f:     f,
		g:     g,
		needs: CalcNeeds(ctx, f, g),
		got:   make([]map[Var]Reg, len(f.blocks)),
		q:     heap.Heap[delivery]{Less: deliveryLess},
	}

	for _, id := range g.Order {
		for _, v := range f.blocks[id].Populated() {
			p.push(id, v)
		}
	}

	for p.q.Len() != 0 {
		d := p.q.Pop()

		for _, to := range g.Succs(d.b) {
			p.deliver(tr, d, to)
		}
	}

	for _, id := range g.Order {
		if ps := f.blocks[id].params; len(ps) != 0 {
			fatalf("%v: block %v still waits for %v", f.Name, id, f.VarName(ps[0]))
		}
	}
}

func (p *propagatePass) deliver(tr tlog.Span, d delivery, to BlockID) {
	if !p.needs.Has(to, d.v) {
		return
	}

	if r, ok := p.got[to][d.v]; ok {
		if r != d.r {
			fatalf("%v: block %v gets %v from two unmerged sources: %v and %v", p.f.Name, to, p.f.VarName(d.v), r, d.r)
		}

		return
	}

	if p.got[to] == nil {
		p.got[to] = make(map[Var]Reg)
	}

	p.got[to][d.v] = d.r

	p.f.blocks[to].pipeIn(d.v, d.r)

	tr.V("propagate").Printw("deliver", "from", d.b, "to", to, "var", p.f.VarName(d.v), "reg", d.r)

	p.push(to, d.v)
}

func (p *propagatePass) push(b BlockID, v Var) {
	r, ok := p.f.blocks[b].populates[v]
	if !ok {
		fatalf("%v: block %v has no register for %v", p.f.Name, b, p.f.VarName(v))
	}

	p.q.Push(delivery{b: b, v: v, r: r, pos: p.g.Index(b)})
}

func deliveryLess(d []delivery, i, j int) bool {
	if d[i].pos != d[j].pos {
		return d[i].pos < d[j].pos
	}

	return d[i].v < d[j].v
}
