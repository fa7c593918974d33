package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/midend/compiler/proto"
)

type sym = Instr[string, string, string]

func TestInstrSlots(t *testing.T) {
	mv := sym{Op: OpMove, Out: "x", Arg: "y"}
	br := sym{Op: OpBranch, Arg: "c", Label: "a", Else: "b"}
	jmp := sym{Op: OpJump, Label: "a"}
	ret := sym{Op: OpReturn}

	assert.True(t, mv.Writes())
	assert.True(t, mv.Reads())
	assert.False(t, mv.IsTerminator())

	assert.False(t, br.Writes())
	assert.True(t, br.Reads())
	assert.True(t, br.IsTerminator())

	assert.False(t, jmp.Reads())
	assert.True(t, ret.IsTerminator())

	assert.Equal(t, []string{"a", "b"}, br.Labels())
	assert.Equal(t, []string{"a"}, sym{Op: OpBranch, Label: "a", Else: "a"}.Labels())
	assert.Nil(t, mv.Labels())
}

func TestInstrReplace(t *testing.T) {
	br := sym{Op: OpBranch, Arg: "c", Label: "a", Else: "a"}

	assert.Equal(t, sym{Op: OpBranch, Arg: "c", Label: "z", Else: "z"}, br.ReplaceJump("a", "z"))
	assert.Equal(t, br, br.ReplaceJump("q", "z"))

	assert.Equal(t, sym{Op: OpBranch, Arg: "d", Label: "a", Else: "a"}, br.ReplaceRead("c", "d"))

	jmp := sym{Op: OpJump, Label: "a"}
	assert.Equal(t, jmp, jmp.ReplaceRead("", "d"), "jump reads nothing")
}

func TestInstrMap(t *testing.T) {
	length := func(s string) int { return len(s) }

	x := sym{Op: OpForeignCall, Func: 3, Out: "xx", Arg: "yyy"}

	assert.Equal(t, Instr[int, string, string]{Op: OpForeignCall, Func: 3, Out: 2, Arg: "yyy"}, MapWrite(x, length))
	assert.Equal(t, Instr[string, int, string]{Op: OpForeignCall, Func: 3, Out: "xx", Arg: 3}, MapRead(x, length))

	br := sym{Op: OpBranch, Arg: "c", Label: "a", Else: "bb"}
	assert.Equal(t, Instr[string, string, int]{Op: OpBranch, Arg: "c", Label: 1, Else: 2}, MapLabel(br, length))

	jmp := sym{Op: OpJump, Label: "aaaa", Else: "ignored"}
	assert.Equal(t, Instr[string, string, int]{Op: OpJump, Label: 4}, MapLabel(jmp, length))
}

func TestInstrText(t *testing.T) {
	for _, tc := range []struct {
		x    Instruction
		text string
	}{
		{Instruction{Op: OpMove, Out: LocalReg(1), Arg: ArgReg(0)}, "move\tl1, a0"},
		{Instruction{Op: OpForeignCall, Func: 2, Out: LocalReg(0), Arg: LocalReg(0)}, "call\tf2, l0, l0"},
		{Instruction{Op: OpJump, Label: 7}, "jump\t7"},
		{Instruction{Op: OpBranch, Arg: ArgReg(1), Label: 3, Else: 5}, "branch\ta1, 3, 5"},
		{Instruction{Op: OpReturn}, "return"},
	} {
		assert.Equal(t, tc.text, tc.x.String())
	}
}

func TestFFI(t *testing.T) {
	var ffi FFI

	a, err := ffi.Define("print")
	require.NoError(t, err)

	b, err := ffi.Define("inc")
	require.NoError(t, err)

	_, err = ffi.Define("print")
	assert.Error(t, err)

	assert.Equal(t, FuncID(0), a)
	assert.Equal(t, FuncID(1), b)
	assert.Equal(t, 2, ffi.Len())
	assert.Equal(t, "inc", ffi.Name(b))
	assert.Equal(t, "", ffi.Name(5))

	id, ok := ffi.Lookup("print")
	assert.True(t, ok)
	assert.Equal(t, a, id)

	_, ok = ffi.Lookup("none")
	assert.False(t, ok)
}

func TestVerify(t *testing.T) {
	pr := &proto.Prototype{Name: "p", Args: []proto.Arg{{Name: "x", Size: 8}}}

	ok := &Procedure{
		Name:   "p",
		Proto:  pr,
		Locals: 1,
		Code: Bytecode{
			{Op: OpMove, Out: LocalReg(0), Arg: ArgReg(0)},
			{Op: OpForeignCall, Out: LocalReg(0), Arg: LocalReg(0)},
			{Op: OpBranch, Arg: LocalReg(0), Label: 0, Else: 3},
			{Op: OpReturn},
		},
	}

	assert.NoError(t, ok.Verify())

	for name, code := range map[string]Bytecode{
		"empty":    {},
		"no_term":  {{Op: OpMove, Out: LocalReg(0), Arg: ArgReg(0)}},
		"jump_out": {{Op: OpJump, Label: 1}},
		"arg":      {{Op: OpMove, Out: LocalReg(0), Arg: ArgReg(1)}, {Op: OpReturn}},
		"local":    {{Op: OpMove, Out: LocalReg(1), Arg: ArgReg(0)}, {Op: OpReturn}},
		"ffi_two":  {{Op: OpForeignCall, Out: LocalReg(0), Arg: ArgReg(0)}, {Op: OpReturn}},
	} {
		p := &Procedure{Name: name, Proto: pr, Locals: 1, Code: code}

		assert.Error(t, p.Verify(), name)
	}
}
