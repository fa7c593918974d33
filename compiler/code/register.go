package code

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	RegKind int

	// Register is a physical operand of the interpreter:
	// either a slot of the procedure argument structure or a frame local.
	Register struct {
		Kind  RegKind
		Index int
	}
)

const (
	Local RegKind = iota
	Arg
)

func ArgReg(i int) Register   { return Register{Kind: Arg, Index: i} }
func LocalReg(i int) Register { return Register{Kind: Local, Index: i} }

func (r Register) String() string {
	if r.Kind == Arg {
		return fmt.Sprintf("a%d", r.Index)
	}

	return fmt.Sprintf("l%d", r.Index)
}

func (r Register) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 1)

	if r.Kind == Arg {
		return e.AppendKeyInt(b, "arg", r.Index)
	}

	return e.AppendKeyInt(b, "local", r.Index)
}
