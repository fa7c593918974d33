package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireInvariant(t *testing.T, f func()) (e *InvariantError) {
	t.Helper()

	func() {
		defer func() {
			p := recover()

			var ok bool
			e, ok = p.(*InvariantError)
			if !ok {
				t.Errorf("expected invariant error, got %v", p)
			}
		}()

		f()
	}()

	require.NotNil(t, e)

	return e
}

func TestReadVariable(t *testing.T) {
	f := New("read")
	x := f.NewVar("x")
	y := f.NewVar("y")

	b := f.CreateBlock()

	assert.Equal(t, BlockParam(0), f.ReadVariable(b, x))
	assert.Equal(t, BlockParam(1), f.ReadVariable(b, y))
	assert.Equal(t, BlockParam(0), f.ReadVariable(b, x), "existing param is reused")

	r := f.WriteVariable(b, x)

	assert.Equal(t, Known(r), f.ReadVariable(b, x))
	assert.Equal(t, []Var{x, y}, f.Block(b).Params())
	assert.Equal(t, x, f.RegVar(r))
}

func TestWriteToCompleteBlock(t *testing.T) {
	f := New("complete")
	x := f.NewVar("x")
	b := f.CreateBlock()

	f.AddInstruction(b, Return())
	assert.True(t, f.Block(b).Complete())

	requireInvariant(t, func() { f.WriteVariable(b, x) })
	requireInvariant(t, func() { f.WriteVariableReg(b, x, f.CreateRegister(x)) })

	e := requireInvariant(t, func() { f.AddInstruction(b, Return()) })
	assert.Contains(t, e.Error(), "complete block")
}

func TestAddInstructionCompletes(t *testing.T) {
	f := New("complete")
	x := f.NewVar("x")
	b := f.CreateBlock()
	to := f.CreateBlock()

	f.AddInstruction(b, Move(f.WriteVariable(b, x), Known(0)))
	assert.False(t, f.Block(b).Complete())

	f.AddInstruction(b, Branch(f.ReadVariable(b, x), to, to))
	assert.True(t, f.Block(b).Complete())
}

func TestPipeInRenumbersParams(t *testing.T) {
	f := New("pipe")
	x := f.NewVar("x")
	y := f.NewVar("y")
	z := f.NewVar("z")

	id := f.CreateBlock()

	rx := f.ReadVariable(id, x)
	ry := f.ReadVariable(id, y)
	rz := f.ReadVariable(id, z)

	out := f.CreateRegister(NoVar)

	f.AddInstruction(id, Move(out, rx))
	f.AddInstruction(id, Move(out, ry))
	f.AddInstruction(id, Move(out, rz))
	f.AddInstruction(id, Return())

	b := f.Block(id)

	b.pipeIn(y, 7)

	assert.Equal(t, []Var{x, z}, b.Params())
	assert.Equal(t, []Instr{
		Move(out, BlockParam(0)),
		Move(out, Known(7)),
		Move(out, BlockParam(1)),
		Return(),
	}, b.Code())

	r, ok := b.Populates(y)
	assert.True(t, ok)
	assert.Equal(t, Reg(7), r)

	b.pipeIn(z, 8)
	b.pipeIn(x, 9)

	assert.Empty(t, b.Params())
	assert.Equal(t, Move(out, Known(8)), b.Code()[2])
	assert.Equal(t, Move(out, Known(9)), b.Code()[0])
}

func TestPipeInKeepsLocalWrite(t *testing.T) {
	f := New("pipe")
	x := f.NewVar("x")
	id := f.CreateBlock()

	arg := f.ReadVariable(id, x)
	r := f.WriteVariable(id, x)

	f.AddInstruction(id, ForeignCall(0, r, arg))
	f.AddInstruction(id, Return())

	b := f.Block(id)
	b.pipeIn(x, 100)

	assert.Equal(t, ForeignCall(0, r, Known(100)), b.Code()[0])

	got, _ := b.Populates(x)
	assert.Equal(t, r, got)
}
