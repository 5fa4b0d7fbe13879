// Copyright © 2025 The Wisp authors

package scheme

import (
	"fmt"
	"io"

	"github.com/wisplang/wisp/parser/token"
)

// Condition classifies an evaluation error.
type Condition string

const (
	ParseError      Condition = "parse-error"
	TypeError       Condition = "type-error"
	ArityError      Condition = "arity-error"
	UnboundVariable Condition = "unbound-variable"
	RebindVariable  Condition = "rebind-variable"
	AssignUnbound   Condition = "assign-unbound"
	ResourceError   Condition = "resource-error"
	ExpansionError  Condition = "expansion-error"
)

// Error is the condition type propagated out of evaluation.  Internal
// invariant violations (reference count underflow, dictionary
// corruption) panic instead; everything a program can provoke flows
// through here so a long-running host survives bad input.
type Error struct {
	Cond   Condition
	Msg    string
	Source *token.Location
	Stack  []CallFrame
}

// NewError builds an error with no call stack snapshot.  The parser uses
// it; runtime code goes through Runtime.Errorf so the stack is captured.
func NewError(cond Condition, loc *token.Location, format string, v ...interface{}) *Error {
	return &Error{
		Cond:   cond,
		Msg:    fmt.Sprintf(format, v...),
		Source: loc,
	}
}

func (e *Error) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Cond, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Cond, e.Msg)
}

// Condition returns the error's condition name.
func (e *Error) Condition() Condition { return e.Cond }

// WriteTrace renders the error and its captured call stack, innermost
// frame first.
func (e *Error) WriteTrace(w io.Writer) {
	fmt.Fprintln(w, e.Error())
	for i := len(e.Stack) - 1; i >= 0; i-- {
		f := e.Stack[i]
		if f.Source != nil {
			fmt.Fprintf(w, "  in %s (%s)\n", f.Name, f.Source)
		} else {
			fmt.Fprintf(w, "  in %s\n", f.Name)
		}
	}
}

// Errorf builds a condition error carrying a snapshot of the current
// call stack.
func (rt *Runtime) Errorf(cond Condition, format string, v ...interface{}) *Error {
	return &Error{
		Cond:  cond,
		Msg:   fmt.Sprintf(format, v...),
		Stack: rt.Stack.Copy(),
	}
}

// ErrorfAt is Errorf with a source location attached.
func (rt *Runtime) ErrorfAt(cond Condition, loc *token.Location, format string, v ...interface{}) *Error {
	err := rt.Errorf(cond, format, v...)
	err.Source = loc
	return err
}
