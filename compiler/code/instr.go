package code

import "fmt"

type (
	Op int

	FuncID int

	// Instr is one instruction over a write slot type W, a read slot type R
	// and a jump label type L. The same shapes are used while building SSA
	// (symbolic registers and block ids) and in the final bytecode
	// (physical registers and offsets).
	//
	// Slots used by each Op:
	//
	//	Move         Out, Arg
	//	ForeignCall  Func, Out, Arg (Out and Arg must end up in one location)
	//	Jump         Label
	//	Branch       Arg (condition), Label (taken), Else
	//	Return
	Instr[W, R, L comparable] struct {
		Op   Op
		Func FuncID

		Out W
		Arg R

		Label L
		Else  L
	}

	// Instruction is the final, fully resolved form.
	Instruction = Instr[Register, Register, int]
)

const (
	_ Op = iota
	OpMove
	OpForeignCall
	OpJump
	OpBranch
	OpReturn
)

func (op Op) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpForeignCall:
		return "call"
	case OpJump:
		return "jump"
	case OpBranch:
		return "branch"
	case OpReturn:
		return "return"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

func (x Instr[W, R, L]) Writes() bool {
	return x.Op == OpMove || x.Op == OpForeignCall
}

func (x Instr[W, R, L]) Reads() bool {
	return x.Op == OpMove || x.Op == OpForeignCall || x.Op == OpBranch
}

// IsTerminator reports whether x transfers control and so must end its block.
func (x Instr[W, R, L]) IsTerminator() bool {
	return x.Op == OpJump || x.Op == OpBranch || x.Op == OpReturn
}

// Labels returns jump targets in order, without duplicates.
func (x Instr[W, R, L]) Labels() []L {
	switch x.Op {
	case OpJump:
		return []L{x.Label}
	case OpBranch:
		if x.Label == x.Else {
			return []L{x.Label}
		}

		return []L{x.Label, x.Else}
	}

	return nil
}

func (x Instr[W, R, L]) ReplaceRead(old, new R) Instr[W, R, L] {
	if x.Reads() && x.Arg == old {
		x.Arg = new
	}

	return x
}

func (x Instr[W, R, L]) ReplaceJump(old, new L) Instr[W, R, L] {
	switch x.Op {
	case OpBranch:
		if x.Else == old {
			x.Else = new
		}

		fallthrough
	case OpJump:
		if x.Label == old {
			x.Label = new
		}
	}

	return x
}

func MapWrite[W, R, L, W2 comparable](x Instr[W, R, L], f func(W) W2) (y Instr[W2, R, L]) {
	y = Instr[W2, R, L]{Op: x.Op, Func: x.Func, Arg: x.Arg, Label: x.Label, Else: x.Else}

	if x.Writes() {
		y.Out = f(x.Out)
	}

	return y
}

func MapRead[W, R, L, R2 comparable](x Instr[W, R, L], f func(R) R2) (y Instr[W, R2, L]) {
	y = Instr[W, R2, L]{Op: x.Op, Func: x.Func, Out: x.Out, Label: x.Label, Else: x.Else}

	if x.Reads() {
		y.Arg = f(x.Arg)
	}

	return y
}

func MapLabel[W, R, L, L2 comparable](x Instr[W, R, L], f func(L) L2) (y Instr[W, R, L2]) {
	y = Instr[W, R, L2]{Op: x.Op, Func: x.Func, Out: x.Out, Arg: x.Arg}

	switch x.Op {
	case OpBranch:
		y.Else = f(x.Else)

		fallthrough
	case OpJump:
		y.Label = f(x.Label)
	}

	return y
}

func (x Instr[W, R, L]) AppendText(b []byte) []byte {
	switch x.Op {
	case OpMove:
		return fmt.Appendf(b, "move\t%v, %v", x.Out, x.Arg)
	case OpForeignCall:
		return fmt.Appendf(b, "call\tf%d, %v, %v", x.Func, x.Out, x.Arg)
	case OpJump:
		return fmt.Appendf(b, "jump\t%v", x.Label)
	case OpBranch:
		return fmt.Appendf(b, "branch\t%v, %v, %v", x.Arg, x.Label, x.Else)
	case OpReturn:
		return append(b, "return"...)
	default:
		return fmt.Appendf(b, "%v", x.Op)
	}
}

func (x Instr[W, R, L]) String() string {
	return string(x.AppendText(nil))
}
