package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/ast"
	"github.com/slowlang/midend/compiler/code"
	"github.com/slowlang/midend/compiler/proto"
	"github.com/slowlang/midend/compiler/ssa"
)

type (
	Front struct {
		// DumpSSA is called with every procedure built, before it's lowered.
		DumpSSA func(ctx context.Context, f *ssa.Func)
	}

	procState struct {
		*ssa.Func

		ffi *code.FFI

		vars    map[string]ssa.Var
		labels  map[string]ssa.BlockID
		defined map[string]bool
		used    map[string]int // label -> first use pos

		cur  ssa.BlockID
		open bool
	}
)

func New() *Front { return &Front{} }

func (c *Front) Compile(ctx context.Context, file *ast.File) (p *code.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: compile", "procs", len(file.Procs), "ffi", len(file.FFI))
	defer tr.Finish("err", &err)

	p = &code.Program{}

	for _, id := range file.FFI {
		_, err = p.FFI.Define(id.Name)
		if err != nil {
			return nil, errors.Wrap(err, "pos %d", id.Pos)
		}
	}

	for _, x := range file.Procs {
		if p.Proc(x.Name.Name) != nil {
			return nil, errors.New("pos %d: proc redefined: %v", x.Pos, x.Name.Name)
		}

		proc, err := c.compileProc(ctx, &p.FFI, x)
		if err != nil {
			return nil, errors.Wrap(err, "proc %v", x.Name.Name)
		}

		p.Procs = append(p.Procs, proc)
	}

	return p, nil
}

func (c *Front) compileProc(ctx context.Context, ffi *code.FFI, x *ast.Proc) (proc *code.Procedure, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile proc", "name", x.Name.Name, "args", len(x.Args), "stmts", len(x.Body))
	defer tr.Finish("err", &err)

	pb := proto.NewBuilder(x.Name.Name)

	for _, a := range x.Args {
		kind, ok := proto.ParseKind(a.Kind.Name)
		if !ok {
			return nil, errors.New("pos %d: unknown arg kind: %v", a.Kind.Pos, a.Kind.Name)
		}

		err = pb.AddArg(a.Name.Name, kind, a.Size)
		if err != nil {
			return nil, errors.Wrap(err, "pos %d", a.Pos)
		}
	}

	s := &procState{
		Func:    ssa.New(x.Name.Name),
		ffi:     ffi,
		vars:    make(map[string]ssa.Var),
		labels:  make(map[string]ssa.BlockID),
		defined: make(map[string]bool),
		used:    make(map[string]int),
	}

	slots := make([]ssa.ArgSlot, len(x.Args))

	for i, a := range x.Args {
		slots[i] = ssa.ArgSlot{Var: s.variable(a.Name.Name), Size: a.Size}
	}

	s.cur = s.CreateBlock()
	s.open = true

	for _, st := range x.Body {
		err = s.compileStmt(st)
		if err != nil {
			return nil, err
		}
	}

	if s.open {
		s.AddInstruction(s.cur, ssa.Return())
	}

	for name, pos := range s.used {
		if !s.defined[name] {
			return nil, errors.New("pos %d: undefined label: %v", pos, name)
		}
	}

	if c.DumpSSA != nil {
		c.DumpSSA(ctx, s.Func)
	}

	l, err := ssa.Lower(ctx, s.Func, slots)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	proc = &code.Procedure{
		Name:   x.Name.Name,
		Proto:  pb.Build(),
		Code:   l.Code,
		Locals: l.Locals,
	}

	return proc, nil
}

func (s *procState) compileStmt(x ast.Stmt) error {
	if l, ok := x.(ast.Label); ok {
		name := l.Name.Name

		if s.defined[name] {
			return errors.New("pos %d: label redefined: %v", l.Name.Pos, name)
		}

		s.defined[name] = true

		b := s.label(name, l.Name.Pos)

		if s.open {
			s.AddInstruction(s.cur, ssa.Jump(b))
		}

		s.cur = b
		s.open = true

		return nil
	}

	if !s.open {
		return errors.New("pos %d: unreachable code", stmtPos(x))
	}

	switch x := x.(type) {
	case ast.Move:
		arg := s.ReadVariable(s.cur, s.variable(x.Src.Name))
		out := s.WriteVariable(s.cur, s.variable(x.Dst.Name))

		s.AddInstruction(s.cur, ssa.Move(out, arg))
	case ast.Call:
		fn, ok := s.ffi.Lookup(x.Func.Name)
		if !ok {
			return errors.New("pos %d: undeclared foreign function: %v", x.Func.Pos, x.Func.Name)
		}

		v := s.variable(x.Var.Name)

		arg := s.ReadVariable(s.cur, v)
		out := s.WriteVariable(s.cur, v)

		s.AddInstruction(s.cur, ssa.ForeignCall(fn, out, arg))
	case ast.Goto:
		s.AddInstruction(s.cur, ssa.Jump(s.label(x.Label.Name, x.Label.Pos)))
		s.open = false
	case ast.If:
		cond := s.ReadVariable(s.cur, s.variable(x.Cond.Name))

		s.AddInstruction(s.cur, ssa.Branch(cond, s.label(x.Then.Name, x.Then.Pos), s.label(x.Else.Name, x.Else.Pos)))
		s.open = false
	case ast.Return:
		s.AddInstruction(s.cur, ssa.Return())
		s.open = false
	default:
		panic(x)
	}

	return nil
}

func (s *procState) variable(name string) ssa.Var {
	if v, ok := s.vars[name]; ok {
		return v
	}

	v := s.NewVar(name)
	s.vars[name] = v

	return v
}

func (s *procState) label(name string, pos int) ssa.BlockID {
	if _, ok := s.used[name]; !ok {
		s.used[name] = pos
	}

	if b, ok := s.labels[name]; ok {
		return b
	}

	b := s.CreateBlock()
	s.labels[name] = b

	return b
}

func stmtPos(x ast.Stmt) int {
	switch x := x.(type) {
	case ast.Move:
		return x.Dst.Pos
	case ast.Call:
		return x.Func.Pos
	case ast.Goto:
		return x.Label.Pos
	case ast.If:
		return x.Cond.Pos
	case ast.Return:
		return x.Pos
	}

	return -1
}
