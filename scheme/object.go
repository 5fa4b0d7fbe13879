// Copyright © 2025 The Wisp authors

// Package scheme implements the wisp runtime: a tagged object model with
// per-type dispatch, a hybrid reference-count/mark-sweep heap, lexical
// scopes, and an evaluator that bounces tail calls through thunks.
package scheme

import (
	"io"

	"github.com/wisplang/wisp/parser/token"
)

// TypeDesc describes runtime behavior common to all objects of one type.
// Function fields may be nil when the type has no children, no external
// resources, or cannot be called.
type TypeDesc struct {
	// Name identifies the type in diagnostics.
	Name string
	// Reach calls visit on every object directly referenced by o.  The
	// collector drives its worklist through Reach.
	Reach func(o *Object, visit func(*Object))
	// Dispose releases non-memory resources held by o.  Object memory
	// itself is reclaimed by the Go allocator after the sweep drops the
	// registry entry.
	Dispose func(o *Object)
	// Write renders o.  In display mode strings and characters render as
	// raw text instead of readable literals.
	Write func(w io.Writer, o *Object, display bool) error
	// Invoke applies o to already evaluated arguments.  Nil for types
	// that cannot appear in call position.
	Invoke func(rt *Runtime, fn *Object, args []*Object) (*Object, error)
}

// Object is a single tagged runtime value.  The desc field selects which
// payload fields are meaningful.
type Object struct {
	desc *TypeDesc
	refs int32
	mark gcMark

	// Source is the location the reader attributed to this object, when
	// it was produced by a reader at all.
	Source *token.Location

	Int    int64
	Char   rune
	Str    string
	hash   uint64
	Car    *Object
	Cdr    *Object
	Fn     *LambdaData
	Native *NativeData
	Syntax *SyntaxData
	Macro  *MacroData
	Thunk  *ThunkData
	Scope  *ScopeData
	Port   *PortData
}

// LambdaData is the payload of a lambda object.
type LambdaData struct {
	Name   string
	Params []*Object
	Body   *Object
	Scope  *Object
}

// NativeData is the payload of a native procedure.  MaxArgs below zero
// means variadic.
type NativeData struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      NativeFunc
}

// NativeFunc is the Go implementation of a native procedure.  Arguments
// are borrowed from the caller; the returned object carries a reference
// owned by the caller.
type NativeFunc func(rt *Runtime, args []*Object) (*Object, error)

// SyntaxData is the payload of a syntax handler.  The handler receives
// the unevaluated argument forms.
type SyntaxData struct {
	Name string
	Fn   SyntaxFunc
}

// SyntaxFunc evaluates a special form.  args is the unevaluated,
// nil-terminated list following the head.  The result may be a thunk
// when the handler's final subexpression sits in tail position.
type SyntaxFunc func(rt *Runtime, scope *Object, args *Object) (*Object, error)

// MacroData is the payload of a syntax-rules macro.
type MacroData struct {
	Name     string
	Literals map[string]bool
	Rules    []MacroRule
}

// MacroRule is one (pattern template) clause of a syntax-rules form.
type MacroRule struct {
	Pattern  *Object
	Template *Object
}

// ThunkData captures a deferred tail call: the procedure and its already
// evaluated arguments.
type ThunkData struct {
	Fn   *Object
	Args []*Object
}

var (
	typeNil    = &TypeDesc{Name: "nil"}
	typeBool   = &TypeDesc{Name: "boolean"}
	typeInt    = &TypeDesc{Name: "integer"}
	typeChar   = &TypeDesc{Name: "character"}
	typeString = &TypeDesc{Name: "string"}
	typeSymbol = &TypeDesc{Name: "symbol"}
	typeEOF    = &TypeDesc{Name: "eof-object"}
	typePair   = &TypeDesc{Name: "pair"}
	typePort   = &TypeDesc{Name: "port"}
	typeLambda = &TypeDesc{Name: "procedure"}
	typeNative = &TypeDesc{Name: "native-procedure"}
	typeSyntax = &TypeDesc{Name: "syntax"}
	typeMacro  = &TypeDesc{Name: "macro"}
	typeThunk  = &TypeDesc{Name: "thunk"}
	typeScope  = &TypeDesc{Name: "scope"}
)

// The descriptor hooks are wired here instead of in the composite
// literals above: writeBool reads the True singleton and invokeLambda
// reaches callableName, both of which refer back to these descriptors,
// so literal initializers would be cyclic.
func init() {
	typeNil.Write = writeNil
	typeBool.Write = writeBool
	typeInt.Write = writeInt
	typeChar.Write = writeChar
	typeString.Write = writeString
	typeSymbol.Write = writeSymbol
	typeEOF.Write = writeEOF

	typePair.Reach = reachPair
	typePair.Write = writePair

	typePort.Dispose = disposePort
	typePort.Write = writePort

	typeLambda.Reach = reachLambda
	typeLambda.Write = writeLambda
	typeLambda.Invoke = invokeLambda

	typeNative.Write = writeNative
	typeNative.Invoke = invokeNative

	typeSyntax.Write = writeSyntax

	typeMacro.Reach = reachMacro
	typeMacro.Write = writeMacro

	typeThunk.Reach = reachThunk
	typeThunk.Write = writeThunk

	typeScope.Reach = reachScope
	typeScope.Write = writeScope
}

// Nil, True, False, and EOFObject are process-lifetime singletons shared
// by every runtime.  They are never registered with a heap so the
// collector cannot reclaim them, and their reference counts never reach
// zero.
var (
	Nil       = &Object{desc: typeNil, refs: 1, mark: markReached}
	True      = &Object{desc: typeBool, refs: 1, mark: markReached, Int: 1}
	False     = &Object{desc: typeBool, refs: 1, mark: markReached}
	EOFObject = &Object{desc: typeEOF, refs: 1, mark: markReached}
)

// Bool returns the shared boolean singleton for v with a reference owned
// by the caller.
func Bool(v bool) *Object {
	if v {
		return True.Retain()
	}
	return False.Retain()
}

// Truthy reports whether o counts as true in conditional position.  Only
// the boolean true object does; every other value, including non-boolean
// values, counts as false.
func Truthy(o *Object) bool {
	return o == True
}

// TypeName returns the name of o's type for diagnostics.
func (o *Object) TypeName() string { return o.desc.Name }

func (o *Object) IsNil() bool    { return o == Nil }
func (o *Object) IsPair() bool   { return o.desc == typePair }
func (o *Object) IsSymbol() bool { return o.desc == typeSymbol }
func (o *Object) IsInt() bool    { return o.desc == typeInt }
func (o *Object) IsString() bool { return o.desc == typeString }
func (o *Object) IsChar() bool   { return o.desc == typeChar }
func (o *Object) IsBool() bool   { return o.desc == typeBool }
func (o *Object) IsPort() bool   { return o.desc == typePort }
func (o *Object) IsThunk() bool  { return o.desc == typeThunk }
func (o *Object) IsScope() bool  { return o.desc == typeScope }

// IsProcedure reports whether o can be applied to arguments.
func (o *Object) IsProcedure() bool {
	return o.desc == typeLambda || o.desc == typeNative
}

// IsList reports whether o is a proper nil-terminated list.
func (o *Object) IsList() bool {
	for ; o.IsPair(); o = o.Cdr {
	}
	return o == Nil
}

// ListLen returns the element count of a proper list and -1 when o is
// improper.
func (o *Object) ListLen() int {
	n := 0
	for ; o.IsPair(); o = o.Cdr {
		n++
	}
	if o != Nil {
		return -1
	}
	return n
}

func reachPair(o *Object, visit func(*Object)) {
	visit(o.Car)
	visit(o.Cdr)
}

func reachLambda(o *Object, visit func(*Object)) {
	visit(o.Fn.Body)
	visit(o.Fn.Scope)
	for _, p := range o.Fn.Params {
		visit(p)
	}
}

func reachMacro(o *Object, visit func(*Object)) {
	for _, r := range o.Macro.Rules {
		visit(r.Pattern)
		visit(r.Template)
	}
}

func reachThunk(o *Object, visit func(*Object)) {
	visit(o.Thunk.Fn)
	for _, a := range o.Thunk.Args {
		visit(a)
	}
}

func reachScope(o *Object, visit func(*Object)) {
	o.Scope.binds.Range(func(_ string, v *Object) bool {
		visit(v)
		return true
	})
	if o.Scope.parent != nil {
		visit(o.Scope.parent)
	}
}
