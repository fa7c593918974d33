package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/midend/compiler/ast"
)

func TestParse(t *testing.T) {
	text := `ffi f
proc p(ref a 8, out b 4) {
	b = a // copy
loop:
	call f b
	if b goto loop else done
	goto done
done:
	return
}
`

	var p Parser

	file, err := p.ParseFileData(context.Background(), []byte(text))
	require.NoError(t, err)

	require.Len(t, file.FFI, 1)
	assert.Equal(t, ast.Ident{Base: ast.Base{Pos: 4, End: 5}, Name: "f"}, file.FFI[0])

	require.Len(t, file.Procs, 1)

	x := file.Procs[0]

	assert.Equal(t, 6, x.Pos)
	assert.Equal(t, len(text)-1, x.End)
	assert.Equal(t, ast.Ident{Base: ast.Base{Pos: 11, End: 12}, Name: "p"}, x.Name)

	require.Len(t, x.Args, 2)
	assert.Equal(t, "ref", x.Args[0].Kind.Name)
	assert.Equal(t, "a", x.Args[0].Name.Name)
	assert.Equal(t, 8, x.Args[0].Size)
	assert.Equal(t, "out", x.Args[1].Kind.Name)
	assert.Equal(t, "b", x.Args[1].Name.Name)
	assert.Equal(t, 4, x.Args[1].Size)

	names := func(s ast.Stmt) []string {
		switch s := s.(type) {
		case ast.Move:
			return []string{"move", s.Dst.Name, s.Src.Name}
		case ast.Label:
			return []string{"label", s.Name.Name}
		case ast.Call:
			return []string{"call", s.Func.Name, s.Var.Name}
		case ast.If:
			return []string{"if", s.Cond.Name, s.Then.Name, s.Else.Name}
		case ast.Goto:
			return []string{"goto", s.Label.Name}
		case ast.Return:
			return []string{"return"}
		}

		return nil
	}

	var got [][]string

	for _, s := range x.Body {
		got = append(got, names(s))
	}

	assert.Equal(t, [][]string{
		{"move", "b", "a"},
		{"label", "loop"},
		{"call", "f", "b"},
		{"if", "b", "loop", "done"},
		{"goto", "done"},
		{"label", "done"},
		{"return"},
	}, got)
}

func TestParseEmpty(t *testing.T) {
	var p Parser

	file, err := p.ParseFileData(context.Background(), []byte("// nothing here\n"))
	require.NoError(t, err)

	assert.Empty(t, file.FFI)
	assert.Empty(t, file.Procs)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		err  string
	}{
		{"top", "var x", "ffi or proc expected"},
		{"char", "proc p() { x = $ }", "unsupported char"},
		{"eof", "proc p() { x = y", "unexpected end of file"},
		{"no_paren", "proc p { }", "( expected"},
		{"comma", "proc p(ref a 1 ref b 1) {}", "comma expected"},
		{"size", "proc p(ref a b) {}", "size expected"},
		{"stmt", "proc p() { 1 }", "statement expected"},
		{"keyword", "proc p() { return = x }", "statement expected"},
		{"assign", "proc p() { x y }", "= or : expected"},
		{"name", "proc p() { call f goto }", "name expected"},
		{"if", "proc p() { if c then a else b }", "goto expected"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var p Parser

			_, err := p.ParseFileData(context.Background(), []byte(tc.text))
			assert.ErrorContains(t, err, tc.err)
		})
	}
}
