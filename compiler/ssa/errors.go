package ssa

import (
	"fmt"
	"path"
	"strings"

	"tlog.app/go/loc"
)

type (
	// InvariantError is a broken contract between lowering stages.
	// It is never caused by user input which is validated before it gets here.
	InvariantError struct {
		Msg string
		PC  loc.PC
	}

	// SignatureError means the body of a procedure needs values
	// its declared arguments don't provide.
	SignatureError struct {
		Proc    string
		Missing []string
	}
)

func fatalf(format string, args ...any) {
	panic(&InvariantError{
		Msg: fmt.Sprintf(format, args...),
		PC:  loc.Caller(1),
	})
}

func (e *InvariantError) Error() string {
	if e.PC == 0 {
		return "internal error: " + e.Msg
	}

	_, file, line := e.PC.NameFileLine()

	return fmt.Sprintf("internal error: %s (%s:%d)", e.Msg, path.Base(file), line)
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: arguments don't provide: %s", e.Proc, strings.Join(e.Missing, ", "))
}
