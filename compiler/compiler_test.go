package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/midend/compiler/format"
)

const pick = `// pick returns a or b
ffi log

proc pick(ref c 1, ref a 8, ref b 8, out r 8) {
	if c goto first else second
first:
	x = a
	goto end
second:
	x = b
end:
	call log x
	r = x
}
`

func TestCompile(t *testing.T) {
	ctx := context.Background()

	p, err := Compile(ctx, "pick", []byte(pick), nil)
	require.NoError(t, err)

	assert.Equal(t, "ffi log // f0\n"+
		"\n"+
		"proc pick(ref c 1, ref a 8, ref b 8, out r 8) // locals 5\n"+
		"\t  0  branch\ta0, 1, 3\n"+
		"\t  1  move\tl0, a1\n"+
		"\t  2  jump\t5\n"+
		"\t  3  move\tl1, a2\n"+
		"\t  4  jump\t7\n"+
		"\t  5  move\tl2, l0\n"+
		"\t  6  jump\t8\n"+
		"\t  7  move\tl2, l1\n"+
		"\t  8  move\tl3, l2\n"+
		"\t  9  call\tf0, l3, l3\t// log\n"+
		"\t 10  move\tl4, l3\n"+
		"\t 11  return\n",
		string(format.Program(nil, p)))
}

func TestCompileFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "pick.proc")

	err := os.WriteFile(name, []byte(pick), 0o644)
	require.NoError(t, err)

	p, err := CompileFile(context.Background(), name, &Options{})
	require.NoError(t, err)

	assert.NotNil(t, p.Proc("pick"))

	_, err = CompileFile(context.Background(), filepath.Join(t.TempDir(), "none"), nil)
	assert.Error(t, err)
}

func TestCompileError(t *testing.T) {
	_, err := Compile(context.Background(), "bad", []byte("proc p() { goto nowhere }"), nil)
	assert.ErrorContains(t, err, "undefined label")
}
