// Copyright © 2025 The Wisp authors

package scheme

import (
	"io"
	"os"

	"github.com/wisplang/wisp/parser/token"
)

// Runtime is one independent interpreter instance: heap, symbol table,
// root scope, call stack, and I/O plumbing.  A Runtime is not safe for
// concurrent use from multiple goroutines.
type Runtime struct {
	Heap     *Heap
	Stack    *CallStack
	Reader   Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Stdin    io.Reader
	Profiler Profiler

	symtab Dict
	root   *Object

	// interned symbols the evaluator and macro expander test by
	// identity
	symElse     *Object
	symEllipsis *Object
	symWild     *Object
	symQuote    *Object
	symRules    *Object

	stdinPort *Object
}

// NewRuntime builds a runtime with the core syntax handlers and native
// procedures bound in a fresh root scope, then applies cfg in order.
// The embedded prelude is not loaded here; see schemelib.
func NewRuntime(cfg ...Config) (*Runtime, error) {
	rt := &Runtime{
		Heap:   newHeap(),
		Stack:  newCallStack(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	}
	rt.root = rt.NewScope(nil)
	rt.Heap.root = rt.root
	rt.symElse = rt.Intern("else")
	rt.symEllipsis = rt.Intern("...")
	rt.symWild = rt.Intern("_")
	rt.symQuote = rt.Intern("quote")
	rt.symRules = rt.Intern("syntax-rules")
	if err := registerSyntax(rt); err != nil {
		return nil, err
	}
	if err := registerBuiltins(rt); err != nil {
		return nil, err
	}
	for _, fn := range cfg {
		if err := fn(rt); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// RootScope returns the global scope.  The scope is a GC root; bindings
// defined in it live for the life of the runtime.
func (rt *Runtime) RootScope() *Object { return rt.root }

// alloc registers a fresh object carrying one stack reference owned by
// the caller.  Registration may trigger a collection, so any children
// about to be stored in the object must already be rooted by the caller.
func (rt *Runtime) alloc(desc *TypeDesc) *Object {
	o := &Object{desc: desc, refs: 1}
	rt.Heap.register(o)
	return o
}

// Intern returns the symbol object for name, creating it on first use.
// Interned symbols hold a permanent stack reference so symbol identity
// stays valid across collections; they die with the runtime.
func (rt *Runtime) Intern(name string) *Object {
	h := hashText(name)
	if s, ok := rt.symtab.GetHashed(h, name); ok {
		return s
	}
	s := rt.alloc(typeSymbol)
	s.Str = name
	s.hash = h
	rt.symtab.PutHashed(h, name, s)
	return s
}

// NewInt returns a fresh integer object.
func (rt *Runtime) NewInt(v int64) *Object {
	o := rt.alloc(typeInt)
	o.Int = v
	return o
}

// NewChar returns a fresh character object.
func (rt *Runtime) NewChar(c rune) *Object {
	o := rt.alloc(typeChar)
	o.Char = c
	return o
}

// NewString returns a fresh string object.
func (rt *Runtime) NewString(s string) *Object {
	o := rt.alloc(typeString)
	o.Str = s
	return o
}

// NewPair returns a fresh pair.  The children are stored without
// touching their stack references; the pair keeps them alive
// structurally from here on.
func (rt *Runtime) NewPair(car, cdr *Object) *Object {
	o := rt.alloc(typePair)
	o.Car = car
	o.Cdr = cdr
	return o
}

// NewLambda returns a fresh lambda closing over scope.
func (rt *Runtime) NewLambda(name string, params []*Object, body, scope *Object) *Object {
	o := rt.alloc(typeLambda)
	o.Fn = &LambdaData{Name: name, Params: params, Body: body, Scope: scope}
	return o
}

// NewNative returns a fresh native procedure object.
func (rt *Runtime) NewNative(name string, fn NativeFunc, minArgs, maxArgs int) *Object {
	o := rt.alloc(typeNative)
	o.Native = &NativeData{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
	return o
}

// NewSyntax returns a fresh syntax handler object.
func (rt *Runtime) NewSyntax(name string, fn SyntaxFunc) *Object {
	o := rt.alloc(typeSyntax)
	o.Syntax = &SyntaxData{Name: name, Fn: fn}
	return o
}

func (rt *Runtime) newMacro(data *MacroData) *Object {
	o := rt.alloc(typeMacro)
	o.Macro = data
	return o
}

func (rt *Runtime) newThunk(fn *Object, args []*Object) *Object {
	captured := make([]*Object, len(args))
	copy(captured, args)
	o := rt.alloc(typeThunk)
	o.Thunk = &ThunkData{Fn: fn, Args: captured}
	return o
}

// RegisterNative binds a native procedure in the root scope.  maxArgs
// below zero makes the procedure variadic beyond minArgs.
func (rt *Runtime) RegisterNative(name string, fn NativeFunc, minArgs, maxArgs int) error {
	o := rt.NewNative(name, fn, minArgs, maxArgs)
	defer o.Release()
	return rt.Define(rt.root, rt.Intern(name), o)
}

// RegisterSyntax binds a syntax handler in the root scope.
func (rt *Runtime) RegisterSyntax(name string, fn SyntaxFunc) error {
	o := rt.NewSyntax(name, fn)
	defer o.Release()
	return rt.Define(rt.root, rt.Intern(name), o)
}

// FunName returns the diagnostic name of a callable object: the lambda
// or native name when there is one, the type name otherwise.
func FunName(fn *Object) string { return callableName(fn) }

// callableName names fn for stack frames and errors.
func callableName(fn *Object) string {
	switch fn.desc {
	case typeLambda:
		if fn.Fn.Name != "" {
			return fn.Fn.Name
		}
		return "lambda"
	case typeNative:
		return fn.Native.Name
	case typeSyntax:
		return fn.Syntax.Name
	case typeMacro:
		return fn.Macro.Name
	}
	return fn.desc.Name
}

// objectLoc returns the source location stamped on o, when any.
func objectLoc(o *Object) *token.Location {
	if o == nil {
		return nil
	}
	return o.Source
}
