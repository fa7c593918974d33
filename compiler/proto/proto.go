package proto

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	Kind int

	// Prototype is the declared signature of a procedure.
	// Args is the argument structure in order; its layout is computed elsewhere,
	// here every arg only carries its size.
	Prototype struct {
		Name string
		Args []Arg
	}

	Arg struct {
		Name string
		Kind Kind
		Size int
	}

	Builder struct {
		name string
		args []Arg
	}
)

const (
	Ref Kind = iota
	Mut
	Out
)

func ParseKind(s string) (Kind, bool) {
	switch s {
	case "ref":
		return Ref, true
	case "mut":
		return Mut, true
	case "out":
		return Out, true
	}

	return 0, false
}

func (k Kind) String() string {
	switch k {
	case Ref:
		return "ref"
	case Mut:
		return "mut"
	case Out:
		return "out"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) AddArg(name string, kind Kind, size int) error {
	if size <= 0 {
		return errors.New("arg %v: bad size: %d", name, size)
	}

	for _, a := range b.args {
		if a.Name == name {
			return errors.New("arg %v: declared twice", name)
		}
	}

	b.args = append(b.args, Arg{Name: name, Kind: kind, Size: size})

	return nil
}

func (b *Builder) Build() *Prototype {
	return &Prototype{
		Name: b.name,
		Args: append([]Arg{}, b.args...),
	}
}

// Index returns the slot of the named arg or -1.
func (p *Prototype) Index(name string) int {
	for i, a := range p.Args {
		if a.Name == name {
			return i
		}
	}

	return -1
}

// Size is the total size of the argument structure, without padding.
func (p *Prototype) Size() (s int) {
	for _, a := range p.Args {
		s += a.Size
	}

	return s
}
