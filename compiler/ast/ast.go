package ast

type (
	Node interface{}

	Base struct {
		Pos int
		End int
	}

	File struct {
		FFI   []Ident
		Procs []*Proc
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Proc struct {
		Base `tlog:",embed"`

		Name Ident
		Args []Arg
		Body []Stmt
	}

	Arg struct {
		Base `tlog:",embed"`

		Kind Ident
		Name Ident
		Size int
	}

	Stmt interface{}

	Label struct {
		Name Ident
	}

	// Move is `dst = src`.
	Move struct {
		Dst Ident
		Src Ident
	}

	// Call is `call fn var`, fn gets var by reference.
	Call struct {
		Func Ident
		Var  Ident
	}

	Goto struct {
		Label Ident
	}

	// If is `if cond goto then else els`.
	If struct {
		Cond Ident
		Then Ident
		Else Ident
	}

	Return struct {
		Base `tlog:",embed"`
	}
)
