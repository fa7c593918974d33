package ssa

import (
	"fmt"
	"slices"

	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/midend/compiler/code"
)

type (
	Var     int
	Reg     int
	BlockID int

	// ArgReg is a read operand: either a known register
	// or the index of a block parameter not resolved yet.
	ArgReg struct {
		param int
		reg   Reg
	}

	Instr = code.Instr[Reg, ArgReg, BlockID]

	// Func is the IR store of one procedure.
	// Blocks, registers and variables live in its arenas and are referenced by id.
	Func struct {
		Name string

		blocks []*Block
		regs   []Var    // reg -> var it was created for
		vars   []string // var -> name

		args map[Reg]int // reg -> argument slot

		// Where the entry block goes once it's bound.
		// Phantom insertion may move it.
		entryRoute BlockID
	}

	Block struct {
		complete bool

		params    []Var
		code      []Instr
		populates map[Var]Reg
	}
)

const (
	NoVar Var = -1

	Entry BlockID = 0
)

func Known(r Reg) ArgReg       { return ArgReg{param: -1, reg: r} }
func BlockParam(ix int) ArgReg { return ArgReg{param: ix, reg: -1} }

func (a ArgReg) IsKnown() bool { return a.param < 0 }
func (a ArgReg) Reg() Reg      { return a.reg }
func (a ArgReg) Param() int    { return a.param }

func (a ArgReg) String() string {
	if a.IsKnown() {
		return fmt.Sprintf("r%d", a.reg)
	}

	return fmt.Sprintf("p%d", a.param)
}

func (a ArgReg) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 1)

	if a.IsKnown() {
		return e.AppendKeyInt(b, "reg", int(a.reg))
	}

	return e.AppendKeyInt(b, "param", a.param)
}

func (r Reg) String() string     { return fmt.Sprintf("r%d", int(r)) }
func (b BlockID) String() string { return fmt.Sprintf("b%d", int(b)) }

func Move(out Reg, arg ArgReg) Instr {
	return Instr{Op: code.OpMove, Out: out, Arg: arg}
}

// ForeignCall calls a foreign function with a reference to one location:
// out and arg are resolved to the same physical register.
func ForeignCall(fn code.FuncID, out Reg, arg ArgReg) Instr {
	return Instr{Op: code.OpForeignCall, Func: fn, Out: out, Arg: arg}
}

func Jump(to BlockID) Instr {
	return Instr{Op: code.OpJump, Label: to}
}

func Branch(cond ArgReg, then, els BlockID) Instr {
	return Instr{Op: code.OpBranch, Arg: cond, Label: then, Else: els}
}

func Return() Instr {
	return Instr{Op: code.OpReturn}
}

// New creates the store with the entry block already allocated.
// The entry block is bound to the procedure arguments during lowering,
// the first block created by the caller is where user code starts.
func New(name string) *Func {
	f := &Func{
		Name:       name,
		args:       make(map[Reg]int),
		entryRoute: Entry + 1,
	}

	f.CreateBlock()

	return f
}

func (f *Func) NewVar(name string) Var {
	f.vars = append(f.vars, name)

	return Var(len(f.vars) - 1)
}

func (f *Func) VarName(v Var) string {
	if v < 0 || int(v) >= len(f.vars) {
		return fmt.Sprintf("v%d", int(v))
	}

	return f.vars[v]
}

func (f *Func) NumVars() int   { return len(f.vars) }
func (f *Func) NumBlocks() int { return len(f.blocks) }
func (f *Func) NumRegs() int   { return len(f.regs) }

func (f *Func) CreateBlock() BlockID {
	f.blocks = append(f.blocks, &Block{
		populates: make(map[Var]Reg),
	})

	return BlockID(len(f.blocks) - 1)
}

// CreateRegister allocates a storage cell.
// v is the variable it holds values of or NoVar.
func (f *Func) CreateRegister(v Var) Reg {
	f.regs = append(f.regs, v)

	return Reg(len(f.regs) - 1)
}

// RegVar returns the variable the register was created for.
func (f *Func) RegVar(r Reg) Var {
	return f.regs[r]
}

// ArgSlot returns the argument slot the register was bound to by BindArgs.
func (f *Func) ArgSlot(r Reg) (int, bool) {
	s, ok := f.args[r]
	return s, ok
}

func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.blocks) {
		fatalf("no such block: %v", id)
	}

	return f.blocks[id]
}

// ReadVariable returns the register holding v in the block.
// If the block hasn't written v, the read is deferred to predecessors
// as a block parameter.
func (f *Func) ReadVariable(id BlockID, v Var) ArgReg {
	b := f.Block(id)

	if r, ok := b.populates[v]; ok {
		return Known(r)
	}

	if ix := b.paramIndex(v); ix >= 0 {
		return BlockParam(ix)
	}

	b.params = append(b.params, v)

	return BlockParam(len(b.params) - 1)
}

func (f *Func) WriteVariable(id BlockID, v Var) Reg {
	if f.Block(id).complete {
		fatalf("write %v to complete block %v", f.VarName(v), id)
	}

	r := f.CreateRegister(v)

	f.WriteVariableReg(id, v, r)

	return r
}

func (f *Func) WriteVariableReg(id BlockID, v Var, r Reg) {
	b := f.Block(id)

	if b.complete {
		fatalf("write %v to complete block %v", f.VarName(v), id)
	}

	b.populates[v] = r
}

func (f *Func) AddInstruction(id BlockID, x Instr) {
	b := f.Block(id)

	if b.complete {
		fatalf("add %v to complete block %v", x.Op, id)
	}

	b.code = append(b.code, x)

	if x.IsTerminator() {
		b.complete = true
	}
}

func (b *Block) Complete() bool { return b.complete }

func (b *Block) Params() []Var { return b.params }

func (b *Block) Code() []Instr { return b.code }

func (b *Block) Populates(v Var) (Reg, bool) {
	r, ok := b.populates[v]
	return r, ok
}

// Populated returns the variables the block binds, in id order.
func (b *Block) Populated() []Var {
	vs := make([]Var, 0, len(b.populates))

	for v := range b.populates {
		vs = append(vs, v)
	}

	slices.Sort(vs)

	return vs
}

func (b *Block) Terminator() (Instr, bool) {
	if !b.complete {
		return Instr{}, false
	}

	return b.code[len(b.code)-1], true
}

func (b *Block) paramIndex(v Var) int {
	for i, p := range b.params {
		if p == v {
			return i
		}
	}

	return -1
}

// pipeIn binds v to r as it arrives from a predecessor.
// A parameter waiting for v is removed and its reads become r,
// the following parameters shift down.
// If the block doesn't write v itself, it passes r on.
func (b *Block) pipeIn(v Var, r Reg) {
	if ix := b.paramIndex(v); ix >= 0 {
		b.params = append(b.params[:ix], b.params[ix+1:]...)

		for i, x := range b.code {
			b.code[i] = code.MapRead(x, func(a ArgReg) ArgReg {
				switch {
				case a.IsKnown(), a.param < ix:
					return a
				case a.param == ix:
					return Known(r)
				default:
					return BlockParam(a.param - 1)
				}
			})
		}
	}

	if _, ok := b.populates[v]; !ok {
		b.populates[v] = r
	}
}

func (b *Block) replaceJump(old, new BlockID) {
	last := len(b.code) - 1

	b.code[last] = b.code[last].ReplaceJump(old, new)
}
