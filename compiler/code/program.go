package code

import (
	"tlog.app/go/errors"

	"github.com/slowlang/midend/compiler/proto"
)

type (
	Bytecode []Instruction

	Procedure struct {
		Name  string
		Proto *proto.Prototype

		Code   Bytecode
		Locals int
	}

	Program struct {
		Procs []*Procedure

		FFI FFI
	}

	// FFI is the table of foreign functions procedures may call by reference.
	FFI struct {
		names []string
		ids   map[string]FuncID
	}
)

func (p *Program) Proc(name string) *Procedure {
	for _, x := range p.Procs {
		if x.Name == name {
			return x
		}
	}

	return nil
}

func (t *FFI) Define(name string) (FuncID, error) {
	if _, ok := t.ids[name]; ok {
		return -1, errors.New("foreign function redefined: %v", name)
	}

	if t.ids == nil {
		t.ids = make(map[string]FuncID)
	}

	id := FuncID(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id

	return id, nil
}

func (t *FFI) Lookup(name string) (FuncID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

func (t *FFI) Name(id FuncID) string {
	if id < 0 || int(id) >= len(t.names) {
		return ""
	}

	return t.names[id]
}

func (t *FFI) Len() int { return len(t.names) }

// Verify checks that the code can be executed without leaving the stream
// or touching registers the frame doesn't have.
func (p *Procedure) Verify() error {
	if len(p.Code) == 0 {
		return errors.New("%v: empty code", p.Name)
	}

	if last := p.Code[len(p.Code)-1]; !last.IsTerminator() {
		return errors.New("%v: code ends with %v", p.Name, last.Op)
	}

	nargs := 0
	if p.Proto != nil {
		nargs = len(p.Proto.Args)
	}

	reg := func(pc int, r Register) error {
		switch {
		case r.Kind == Arg && (r.Index < 0 || r.Index >= nargs):
			return errors.New("%v: pc %d: arg register out of range: %v", p.Name, pc, r)
		case r.Kind == Local && (r.Index < 0 || r.Index >= p.Locals):
			return errors.New("%v: pc %d: local register out of range: %v", p.Name, pc, r)
		}

		return nil
	}

	for pc, x := range p.Code {
		for _, l := range x.Labels() {
			if l < 0 || l >= len(p.Code) {
				return errors.New("%v: pc %d: jump out of code: %d", p.Name, pc, l)
			}
		}

		if x.Writes() {
			if err := reg(pc, x.Out); err != nil {
				return err
			}
		}

		if x.Reads() {
			if err := reg(pc, x.Arg); err != nil {
				return err
			}
		}

		if x.Op == OpForeignCall && x.Out != x.Arg {
			return errors.New("%v: pc %d: foreign call on two locations: %v, %v", p.Name, pc, x.Out, x.Arg)
		}
	}

	return nil
}
