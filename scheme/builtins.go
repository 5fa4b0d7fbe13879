// Copyright © 2025 The Wisp authors

package scheme

import "io"

type builtinDef struct {
	name    string
	minArgs int
	maxArgs int
	fn      NativeFunc
}

var coreBuiltins = []*builtinDef{
	{"car", 1, 1, builtinCar},
	{"cdr", 1, 1, builtinCdr},
	{"cons", 2, 2, builtinCons},
	{"set-car!", 2, 2, builtinSetCar},
	{"set-cdr!", 2, 2, builtinSetCdr},
	{"eq?", 2, 2, builtinEq},
	{"null?", 1, 1, typePredicate(func(o *Object) bool { return o == Nil })},
	{"pair?", 1, 1, typePredicate((*Object).IsPair)},
	{"symbol?", 1, 1, typePredicate((*Object).IsSymbol)},
	{"boolean?", 1, 1, typePredicate((*Object).IsBool)},
	{"number?", 1, 1, typePredicate((*Object).IsInt)},
	{"string?", 1, 1, typePredicate((*Object).IsString)},
	{"char?", 1, 1, typePredicate((*Object).IsChar)},
	{"procedure?", 1, 1, typePredicate((*Object).IsProcedure)},
	{"eof-object?", 1, 1, typePredicate(func(o *Object) bool { return o == EOFObject })},
	{"=", 2, 2, compareBuiltin("=", func(a, b int64) bool { return a == b })},
	{"<", 2, 2, compareBuiltin("<", func(a, b int64) bool { return a < b })},
	{">", 2, 2, compareBuiltin(">", func(a, b int64) bool { return a > b })},
	{"+", 2, 2, arithBuiltin("+", func(a, b int64) int64 { return a + b })},
	{"-", 2, 2, arithBuiltin("-", func(a, b int64) int64 { return a - b })},
	{"*", 2, 2, arithBuiltin("*", func(a, b int64) int64 { return a * b })},
	{"quotient", 2, 2, builtinQuotient},
	{"modulo", 2, 2, builtinModulo},
	{"list", 0, -1, builtinList},
	{"reverse", 1, 1, builtinReverse},
	{"fold", 3, 3, builtinFold},
	{"apply", 2, 2, builtinApply},
	{"display", 1, 2, builtinDisplay},
	{"write", 1, 2, builtinWrite},
	{"newline", 0, 1, builtinNewline},
	{"read", 0, 1, builtinRead},
	{"load", 1, 1, builtinLoad},
	{"open-input-file", 1, 1, builtinOpenInput},
	{"open-output-file", 1, 1, builtinOpenOutput},
	{"close-port", 1, 1, builtinClosePort},
	{"gc", 0, 0, builtinGC},
}

func registerBuiltins(rt *Runtime) error {
	for _, def := range coreBuiltins {
		if err := rt.RegisterNative(def.name, def.fn, def.minArgs, def.maxArgs); err != nil {
			return err
		}
	}
	return nil
}

func typePredicate(pred func(*Object) bool) NativeFunc {
	return func(_ *Runtime, args []*Object) (*Object, error) {
		return Bool(pred(args[0])), nil
	}
}

func intArgs(rt *Runtime, name string, args []*Object) (int64, int64, error) {
	for _, a := range args {
		if !a.IsInt() {
			return 0, 0, rt.Errorf(TypeError, "%s: expected an integer, got %s", name, a.TypeName())
		}
	}
	return args[0].Int, args[1].Int, nil
}

func compareBuiltin(name string, cmp func(a, b int64) bool) NativeFunc {
	return func(rt *Runtime, args []*Object) (*Object, error) {
		a, b, err := intArgs(rt, name, args)
		if err != nil {
			return nil, err
		}
		return Bool(cmp(a, b)), nil
	}
}

func arithBuiltin(name string, op func(a, b int64) int64) NativeFunc {
	return func(rt *Runtime, args []*Object) (*Object, error) {
		a, b, err := intArgs(rt, name, args)
		if err != nil {
			return nil, err
		}
		return rt.NewInt(op(a, b)), nil
	}
}

func builtinQuotient(rt *Runtime, args []*Object) (*Object, error) {
	a, b, err := intArgs(rt, "quotient", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, rt.Errorf(TypeError, "quotient: division by zero")
	}
	return rt.NewInt(a / b), nil
}

func builtinModulo(rt *Runtime, args []*Object) (*Object, error) {
	a, b, err := intArgs(rt, "modulo", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, rt.Errorf(TypeError, "modulo: division by zero")
	}
	return rt.NewInt(a % b), nil
}

func pairArg(rt *Runtime, name string, o *Object) error {
	if !o.IsPair() {
		return rt.Errorf(TypeError, "%s: expected a pair, got %s", name, o.TypeName())
	}
	return nil
}

func builtinCar(rt *Runtime, args []*Object) (*Object, error) {
	if err := pairArg(rt, "car", args[0]); err != nil {
		return nil, err
	}
	return args[0].Car.Retain(), nil
}

func builtinCdr(rt *Runtime, args []*Object) (*Object, error) {
	if err := pairArg(rt, "cdr", args[0]); err != nil {
		return nil, err
	}
	return args[0].Cdr.Retain(), nil
}

func builtinCons(rt *Runtime, args []*Object) (*Object, error) {
	return rt.NewPair(args[0], args[1]), nil
}

func builtinSetCar(rt *Runtime, args []*Object) (*Object, error) {
	if err := pairArg(rt, "set-car!", args[0]); err != nil {
		return nil, err
	}
	args[0].Car = args[1]
	return Nil.Retain(), nil
}

func builtinSetCdr(rt *Runtime, args []*Object) (*Object, error) {
	if err := pairArg(rt, "set-cdr!", args[0]); err != nil {
		return nil, err
	}
	args[0].Cdr = args[1]
	return Nil.Retain(), nil
}

// structuralEq implements eq?: identity for symbols and singletons,
// value comparison for integers, characters, booleans, and strings, and
// recursive comparison over pairs.  Cyclic input does not terminate.
// Types with no defined comparison (ports, procedures, scopes) are a
// type error.
func structuralEq(rt *Runtime, a, b *Object) (bool, error) {
	if a == b {
		return true, nil
	}
	if a.desc != b.desc {
		return false, nil
	}
	switch a.desc {
	case typeBool:
		// Booleans are singletons, so distinct objects are distinct
		// values.
		return false, nil
	case typeInt:
		return a.Int == b.Int, nil
	case typeChar:
		return a.Char == b.Char, nil
	case typeString:
		return a.Str == b.Str, nil
	case typeSymbol:
		// Interned symbols with equal text are the same object, so this
		// only triggers for symbols from a foreign runtime.
		return a.Str == b.Str, nil
	case typePair:
		eq, err := structuralEq(rt, a.Car, b.Car)
		if err != nil || !eq {
			return false, err
		}
		return structuralEq(rt, a.Cdr, b.Cdr)
	}
	return false, rt.Errorf(TypeError, "eq?: no comparison defined for %s values", a.TypeName())
}

func builtinEq(rt *Runtime, args []*Object) (*Object, error) {
	eq, err := structuralEq(rt, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return Bool(eq), nil
}

func builtinList(rt *Runtime, args []*Object) (*Object, error) {
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	out := Nil
	for i := len(args) - 1; i >= 0; i-- {
		out = pin.Give(rt.NewPair(args[i], out))
	}
	return pin.Escape(out), nil
}

func builtinReverse(rt *Runtime, args []*Object) (*Object, error) {
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	out := Nil
	for rest := args[0]; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "reverse: expected a list, got %s", args[0].TypeName())
		}
		out = pin.Give(rt.NewPair(rest.Car, out))
	}
	return pin.Escape(out), nil
}

// builtinFold is (fold f init list): f is applied as (f acc x) left to
// right.
func builtinFold(rt *Runtime, args []*Object) (*Object, error) {
	fn, acc, list := args[0], args[1], args[2]
	if !fn.IsProcedure() {
		return nil, rt.Errorf(TypeError, "fold: expected a procedure, got %s", fn.TypeName())
	}
	acc = acc.Retain()
	for rest := list; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			acc.Release()
			return nil, rt.Errorf(TypeError, "fold: expected a list, got %s", list.TypeName())
		}
		next, err := rt.Apply(fn, []*Object{acc, rest.Car})
		acc.Release()
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func builtinApply(rt *Runtime, args []*Object) (*Object, error) {
	fn, list := args[0], args[1]
	var callArgs []*Object
	for rest := list; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "apply: expected an argument list, got %s", list.TypeName())
		}
		callArgs = append(callArgs, rest.Car)
	}
	return rt.Apply(fn, callArgs)
}

func writeBuiltin(name string, display bool) NativeFunc {
	return func(rt *Runtime, args []*Object) (*Object, error) {
		w, err := rt.portWriter(name, args[1:])
		if err != nil {
			return nil, err
		}
		if err := WriteObject(w, args[0], display); err != nil {
			return nil, rt.Errorf(ResourceError, "%s: %v", name, err)
		}
		flushPort(args[1:])
		return Nil.Retain(), nil
	}
}

var (
	builtinDisplay = writeBuiltin("display", true)
	builtinWrite   = writeBuiltin("write", false)
)

func builtinNewline(rt *Runtime, args []*Object) (*Object, error) {
	w, err := rt.portWriter("newline", args)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return nil, rt.Errorf(ResourceError, "newline: %v", err)
	}
	flushPort(args)
	return Nil.Retain(), nil
}

// flushPort flushes an explicit output port argument so interleaved
// reads of the file observe completed writes.
func flushPort(args []*Object) {
	if len(args) == 1 && args[0].IsPort() && args[0].Port.Out != nil {
		args[0].Port.Out.Flush()
	}
}

func builtinRead(rt *Runtime, args []*Object) (*Object, error) {
	port := rt.stdinPortObject()
	if len(args) == 1 {
		if !args[0].IsPort() {
			return nil, rt.Errorf(TypeError, "read: expected a port, got %s", args[0].TypeName())
		}
		port = args[0]
	}
	return rt.ReadDatum(port)
}

func builtinLoad(rt *Runtime, args []*Object) (*Object, error) {
	if !args[0].IsString() {
		return nil, rt.Errorf(TypeError, "load: expected a string, got %s", args[0].TypeName())
	}
	return rt.LoadFile(args[0].Str)
}

func builtinOpenInput(rt *Runtime, args []*Object) (*Object, error) {
	if !args[0].IsString() {
		return nil, rt.Errorf(TypeError, "open-input-file: expected a string, got %s", args[0].TypeName())
	}
	return rt.OpenInputFile(args[0].Str)
}

func builtinOpenOutput(rt *Runtime, args []*Object) (*Object, error) {
	if !args[0].IsString() {
		return nil, rt.Errorf(TypeError, "open-output-file: expected a string, got %s", args[0].TypeName())
	}
	return rt.OpenOutputFile(args[0].Str)
}

func builtinClosePort(rt *Runtime, args []*Object) (*Object, error) {
	if !args[0].IsPort() {
		return nil, rt.Errorf(TypeError, "close-port: expected a port, got %s", args[0].TypeName())
	}
	if err := rt.ClosePort(args[0]); err != nil {
		return nil, err
	}
	return Nil.Retain(), nil
}

func builtinGC(rt *Runtime, _ []*Object) (*Object, error) {
	return rt.NewInt(int64(rt.Heap.Collect())), nil
}
