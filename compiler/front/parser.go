package front

import (
	"context"
	"os"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/midend/compiler/ast"
)

type (
	Parser struct{}

	token   any
	punct   string
	ident   string
	number  int
	comment string
)

var keywords = map[ident]bool{
	"ffi":    true,
	"proc":   true,
	"call":   true,
	"goto":   true,
	"if":     true,
	"else":   true,
	"return": true,
}

func (p *Parser) ParseFile(ctx context.Context, name string) (*ast.File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return p.ParseFileData(ctx, data)
}

func (p *Parser) ParseFileData(ctx context.Context, b []byte) (f *ast.File, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: parse", "size", len(b))
	defer tr.Finish("err", &err)

	f = &ast.File{}

	for i := 0; ; {
		var t token
		st := skipSpacesAndComments(b, i)

		t, i, err = p.next(ctx, b, i)
		if err != nil {
			return nil, err
		}

		switch t {
		case nil:
			return f, nil
		case ident("ffi"):
			var id ast.Ident

			id, i, err = p.name(ctx, b, i)
			if err != nil {
				return nil, errors.Wrap(err, "ffi")
			}

			f.FFI = append(f.FFI, id)
		case ident("proc"):
			var x *ast.Proc

			x, i, err = p.parseProc(ctx, b, st, i)
			if err != nil {
				return nil, errors.Wrap(err, "proc")
			}

			f.Procs = append(f.Procs, x)
		default:
			return nil, errors.New("pos %d: ffi or proc expected, got %v", st, t)
		}
	}
}

func (p *Parser) parseProc(ctx context.Context, b []byte, st, i int) (x *ast.Proc, _ int, err error) {
	x = &ast.Proc{Base: ast.Base{Pos: st}}

	x.Name, i, err = p.name(ctx, b, i)
	if err != nil {
		return nil, i, err
	}

	i, err = p.expect(ctx, b, i, "(")
	if err != nil {
		return nil, i, errors.Wrap(err, "%v", x.Name.Name)
	}

	for {
		var t token
		st := skipSpacesAndComments(b, i)

		t, i, err = p.next(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		if t == punct(")") {
			break
		}

		if len(x.Args) != 0 {
			if t != punct(",") {
				return nil, st, errors.New("pos %d: %v: comma expected, got %v", st, x.Name.Name, t)
			}

			st = skipSpacesAndComments(b, i)

			t, i, err = p.next(ctx, b, i)
			if err != nil {
				return nil, i, err
			}
		}

		kind, ok := t.(ident)
		if !ok {
			return nil, st, errors.New("pos %d: %v: arg kind expected, got %v", st, x.Name.Name, t)
		}

		a := ast.Arg{
			Base: ast.Base{Pos: st},
			Kind: ast.Ident{Base: ast.Base{Pos: st, End: st + len(kind)}, Name: string(kind)},
		}

		a.Name, i, err = p.name(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v: arg", x.Name.Name)
		}

		st = skipSpacesAndComments(b, i)

		t, i, err = p.next(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		size, ok := t.(number)
		if !ok {
			return nil, st, errors.New("pos %d: %v: arg %v: size expected, got %v", st, x.Name.Name, a.Name.Name, t)
		}

		a.Size = int(size)
		a.End = i

		x.Args = append(x.Args, a)
	}

	i, err = p.expect(ctx, b, i, "{")
	if err != nil {
		return nil, i, errors.Wrap(err, "%v", x.Name.Name)
	}

	for {
		var s ast.Stmt

		s, i, err = p.parseStmt(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v", x.Name.Name)
		}

		if s == nil {
			break
		}

		x.Body = append(x.Body, s)
	}

	x.End = i

	return x, i, nil
}

// parseStmt returns nil at the closing bracket.
func (p *Parser) parseStmt(ctx context.Context, b []byte, i int) (s ast.Stmt, _ int, err error) {
	var t token
	st := skipSpacesAndComments(b, i)

	t, i, err = p.next(ctx, b, i)
	if err != nil {
		return nil, i, err
	}

	switch t {
	case nil:
		return nil, i, errors.New("pos %d: unexpected end of file", st)
	case punct("}"):
		return nil, i, nil
	case ident("return"):
		return ast.Return{Base: ast.Base{Pos: st, End: i}}, i, nil
	case ident("goto"):
		var x ast.Goto

		x.Label, i, err = p.name(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "goto")
		}

		return x, i, nil
	case ident("call"):
		var x ast.Call

		x.Func, i, err = p.name(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "call")
		}

		x.Var, i, err = p.name(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "call")
		}

		return x, i, nil
	case ident("if"):
		var x ast.If

		x.Cond, i, err = p.name(ctx, b, i)
		if err == nil {
			i, err = p.expect(ctx, b, i, ident("goto"))
		}
		if err == nil {
			x.Then, i, err = p.name(ctx, b, i)
		}
		if err == nil {
			i, err = p.expect(ctx, b, i, ident("else"))
		}
		if err == nil {
			x.Else, i, err = p.name(ctx, b, i)
		}
		if err != nil {
			return nil, i, errors.Wrap(err, "if")
		}

		return x, i, nil
	}

	name, ok := t.(ident)
	if !ok || keywords[name] {
		return nil, st, errors.New("pos %d: statement expected, got %v", st, t)
	}

	id := ast.Ident{Base: ast.Base{Pos: st, End: i}, Name: string(name)}

	op := i

	t, i, err = p.next(ctx, b, i)
	if err != nil {
		return nil, i, err
	}

	switch t {
	case punct(":"):
		return ast.Label{Name: id}, i, nil
	case punct("="):
		x := ast.Move{Dst: id}

		x.Src, i, err = p.name(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v =", id.Name)
		}

		return x, i, nil
	default:
		return nil, op, errors.New("pos %d: = or : expected after %v, got %v", op, id.Name, t)
	}
}

func (p *Parser) name(ctx context.Context, b []byte, st int) (id ast.Ident, i int, err error) {
	t, i, err := p.next(ctx, b, st)
	if err != nil {
		return id, i, err
	}

	name, ok := t.(ident)
	if !ok || keywords[name] {
		return id, st, errors.New("pos %d: name expected, got %v", st, t)
	}

	end := i
	start := skipSpacesAndComments(b, st)

	return ast.Ident{Base: ast.Base{Pos: start, End: end}, Name: string(name)}, i, nil
}

func (p *Parser) expect(ctx context.Context, b []byte, st int, want token) (i int, err error) {
	if s, ok := want.(string); ok {
		want = punct(s)
	}

	t, i, err := p.next(ctx, b, st)
	if err != nil {
		return i, err
	}

	if t != want {
		return st, errors.New("pos %d: %v expected, got %v", st, want, t)
	}

	return i, nil
}

// next returns the next token skipping comments.
// It returns nil token at the end of input.
func (p *Parser) next(ctx context.Context, b []byte, i int) (t token, _ int, err error) {
	for {
		t, i, err = p.token(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		if _, ok := t.(comment); !ok {
			return t, i, nil
		}
	}
}

func (p *Parser) token(ctx context.Context, b []byte, st int) (t token, i int, err error) {
	st = skipSpaces(b, st)
	i = st

	if i == len(b) {
		return nil, i, nil
	}

	switch c := b[i]; {
	case c == '(' || c == ')' || c == '{' || c == '}' || c == ',' || c == ':' || c == '=':
		return punct(b[i : i+1]), i + 1, nil
	case c == '/' && i+1 < len(b) && b[i+1] == '/':
		i = skipLine(b, i)

		return comment(b[st:i]), i, nil
	case c >= '0' && c <= '9':
		i = skipDigits(b, i)

		x, err := strconv.Atoi(string(b[st:i]))
		if err != nil {
			return nil, st, errors.Wrap(err, "pos %d: number", st)
		}

		return number(x), i, nil
	case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_':
		i = skipIdent(b, i+1)

		return ident(b[st:i]), i, nil
	default:
		return nil, i, errors.New("pos %d: unsupported char: %q", i, c)
	}
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}

		break
	}

	return i
}

func skipSpacesAndComments(b []byte, i int) int {
	for {
		i = skipSpaces(b, i)

		if i+1 < len(b) && b[i] == '/' && b[i+1] == '/' {
			i = skipLine(b, i)
			continue
		}

		return i
	}
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (b[i] == '_' ||
		b[i] >= 'A' && b[i] <= 'Z' ||
		b[i] >= 'a' && b[i] <= 'z' ||
		b[i] >= '0' && b[i] <= '9') {
		i++
	}

	return i
}

func skipDigits(b []byte, i int) int {
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}
