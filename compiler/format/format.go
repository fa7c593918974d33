package format

import (
	"fmt"

	"github.com/slowlang/midend/compiler/code"
	"github.com/slowlang/midend/compiler/ssa"
)

func Program(b []byte, p *code.Program) []byte {
	for i := 0; i < p.FFI.Len(); i++ {
		b = app(b, 0, "ffi %v // f%d\n", p.FFI.Name(code.FuncID(i)), i)
	}

	for i, x := range p.Procs {
		if i != 0 || p.FFI.Len() != 0 {
			b = append(b, '\n')
		}

		b = Procedure(b, x, &p.FFI)
	}

	return b
}

func Procedure(b []byte, p *code.Procedure, ffi *code.FFI) []byte {
	b = app(b, 0, "proc %v(", p.Name)

	if p.Proto != nil {
		for i, a := range p.Proto.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = app(b, 0, "%v %v %d", a.Kind, a.Name, a.Size)
		}
	}

	b = app(b, 0, ") // locals %d\n", p.Locals)

	for pc, x := range p.Code {
		b = app(b, 1, "%3d  ", pc)
		b = x.AppendText(b)

		if x.Op == code.OpForeignCall && ffi != nil {
			b = app(b, 0, "\t// %v", ffi.Name(x.Func))
		}

		b = append(b, '\n')
	}

	return b
}

// Func dumps a procedure under construction or in the middle of lowering.
func Func(b []byte, f *ssa.Func) []byte {
	b = app(b, 0, "ssa %v\n", f.Name)

	for i := 0; i < f.NumBlocks(); i++ {
		id := ssa.BlockID(i)
		blk := f.Block(id)

		b = app(b, 0, "%v(", id)

		for j, v := range blk.Params() {
			if j != 0 {
				b = append(b, ", "...)
			}

			b = app(b, 0, "p%d=%v", j, f.VarName(v))
		}

		b = append(b, "):"...)

		if !blk.Complete() {
			b = append(b, " // open"...)
		}

		b = append(b, '\n')

		for _, x := range blk.Code() {
			b = app(b, 1, "")
			b = x.AppendText(b)
			b = append(b, '\n')
		}

		if vs := blk.Populated(); len(vs) != 0 {
			b = app(b, 1, "//")

			for _, v := range vs {
				r, _ := blk.Populates(v)
				b = app(b, 0, " %v=%v", f.VarName(v), r)
			}

			b = append(b, '\n')
		}
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = fmt.Appendf(b, f, args...)
	return b
}
