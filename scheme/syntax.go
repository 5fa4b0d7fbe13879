// Copyright © 2025 The Wisp authors

package scheme

// registerSyntax binds the special forms in the root scope.  Syntax
// handlers are first-class objects resolved through ordinary head
// evaluation, so shadowing `if` with a local binding is legal if
// ill-advised.
func registerSyntax(rt *Runtime) error {
	forms := []struct {
		name string
		fn   SyntaxFunc
	}{
		{"quote", syntaxQuote},
		{"if", syntaxIf},
		{"cond", syntaxCond},
		{"and", syntaxAnd},
		{"or", syntaxOr},
		{"define", syntaxDefine},
		{"set!", syntaxSet},
		{"lambda", syntaxLambda},
		{"begin", syntaxBegin},
		{"let", syntaxLet},
		{"let*", syntaxLetSeq},
		{"letrec", syntaxLetrec},
		{"define-syntax", syntaxDefineSyntax},
	}
	for _, f := range forms {
		if err := rt.RegisterSyntax(f.name, f.fn); err != nil {
			return err
		}
	}
	return nil
}

func syntaxArgs(rt *Runtime, name string, args *Object, min, max int) ([]*Object, error) {
	var out []*Object
	for rest := args; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "%s: improper form", name)
		}
		out = append(out, rest.Car)
	}
	if len(out) < min || (max >= 0 && len(out) > max) {
		return nil, rt.Errorf(ArityError, "%s: expected %s, got %d", name, arityString(min, max), len(out))
	}
	return out, nil
}

func syntaxQuote(rt *Runtime, _ *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "quote", args, 1, 1)
	if err != nil {
		return nil, err
	}
	return forms[0].Retain(), nil
}

func syntaxIf(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "if", args, 2, 3)
	if err != nil {
		return nil, err
	}
	test, err := rt.Eval(scope, forms[0])
	if err != nil {
		return nil, err
	}
	truthy := Truthy(test)
	test.Release()
	if truthy {
		return rt.EvalLazy(scope, forms[1])
	}
	if len(forms) == 3 {
		return rt.EvalLazy(scope, forms[2])
	}
	return Nil.Retain(), nil
}

func syntaxCond(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	for rest := args; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() || !rest.Car.IsPair() {
			return nil, rt.Errorf(TypeError, "cond: malformed clause")
		}
		clause := rest.Car
		if clause.Car == rt.symElse {
			if rest.Cdr != Nil {
				return nil, rt.Errorf(TypeError, "cond: else clause must be last")
			}
			return rt.EvalBlock(scope, clause.Cdr)
		}
		test, err := rt.Eval(scope, clause.Car)
		if err != nil {
			return nil, err
		}
		if !Truthy(test) {
			test.Release()
			continue
		}
		if clause.Cdr == Nil {
			// Clause with no body yields the test value itself.
			return test, nil
		}
		test.Release()
		return rt.EvalBlock(scope, clause.Cdr)
	}
	return Nil.Retain(), nil
}

func syntaxAnd(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	if args == Nil {
		return True.Retain(), nil
	}
	for rest := args; ; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "and: improper form")
		}
		if rest.Cdr == Nil {
			return rt.EvalLazy(scope, rest.Car)
		}
		v, err := rt.Eval(scope, rest.Car)
		if err != nil {
			return nil, err
		}
		truthy := Truthy(v)
		v.Release()
		if !truthy {
			return False.Retain(), nil
		}
	}
}

func syntaxOr(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	if args == Nil {
		return False.Retain(), nil
	}
	for rest := args; ; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "or: improper form")
		}
		if rest.Cdr == Nil {
			return rt.EvalLazy(scope, rest.Car)
		}
		v, err := rt.Eval(scope, rest.Car)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
		v.Release()
	}
}

func syntaxDefine(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "define", args, 2, -1)
	if err != nil {
		return nil, err
	}
	target := forms[0]
	if target.IsPair() {
		// (define (name params...) body...) shorthand.
		name := target.Car
		if !name.IsSymbol() {
			return nil, rt.ErrorfAt(TypeError, objectLoc(target), "define: procedure name must be a symbol")
		}
		params, err := lambdaParams(rt, "define", target.Cdr)
		if err != nil {
			return nil, err
		}
		fn := rt.NewLambda(name.Str, params, args.Cdr, scope)
		defer fn.Release()
		if err := rt.Define(scope, name, fn); err != nil {
			return nil, err
		}
		return Nil.Retain(), nil
	}
	if !target.IsSymbol() {
		return nil, rt.ErrorfAt(TypeError, objectLoc(target), "define: cannot bind %s value", target.TypeName())
	}
	if len(forms) != 2 {
		return nil, rt.Errorf(ArityError, "define: expected 2 argument(s), got %d", len(forms))
	}
	val, err := rt.Eval(scope, forms[1])
	if err != nil {
		return nil, err
	}
	defer val.Release()
	if val.desc == typeLambda && val.Fn.Name == "" {
		// Anonymous lambdas pick up the name they are bound to.
		val.Fn.Name = target.Str
	}
	if err := rt.Define(scope, target, val); err != nil {
		return nil, err
	}
	return Nil.Retain(), nil
}

func syntaxSet(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "set!", args, 2, 2)
	if err != nil {
		return nil, err
	}
	if !forms[0].IsSymbol() {
		return nil, rt.ErrorfAt(TypeError, objectLoc(forms[0]), "set!: cannot assign %s value", forms[0].TypeName())
	}
	val, err := rt.Eval(scope, forms[1])
	if err != nil {
		return nil, err
	}
	defer val.Release()
	if err := rt.Assign(scope, forms[0], val); err != nil {
		return nil, err
	}
	return Nil.Retain(), nil
}

func lambdaParams(rt *Runtime, name string, list *Object) ([]*Object, error) {
	var params []*Object
	for rest := list; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.Errorf(TypeError, "%s: improper parameter list", name)
		}
		if !rest.Car.IsSymbol() {
			return nil, rt.ErrorfAt(TypeError, objectLoc(rest.Car), "%s: parameter must be a symbol, got %s", name, rest.Car.TypeName())
		}
		params = append(params, rest.Car)
	}
	return params, nil
}

func syntaxLambda(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "lambda", args, 2, -1)
	if err != nil {
		return nil, err
	}
	if !forms[0].IsPair() && forms[0] != Nil {
		return nil, rt.ErrorfAt(TypeError, objectLoc(forms[0]), "lambda: malformed parameter list")
	}
	params, err := lambdaParams(rt, "lambda", forms[0])
	if err != nil {
		return nil, err
	}
	return rt.NewLambda("", params, args.Cdr, scope), nil
}

func syntaxBegin(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	return rt.EvalBlock(scope, args)
}

// letBindings validates ((name init)...) and returns the parallel name
// and init forms.
func letBindings(rt *Runtime, name string, list *Object) (names, inits []*Object, err error) {
	for rest := list; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, nil, rt.Errorf(TypeError, "%s: improper binding list", name)
		}
		b := rest.Car
		if !b.IsPair() || !b.Car.IsSymbol() || !b.Cdr.IsPair() || b.Cdr.Cdr != Nil {
			return nil, nil, rt.ErrorfAt(TypeError, objectLoc(b), "%s: malformed binding", name)
		}
		names = append(names, b.Car)
		inits = append(inits, b.Cdr.Car)
	}
	return names, inits, nil
}

func syntaxLet(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "let", args, 2, -1)
	if err != nil {
		return nil, err
	}
	names, inits, err := letBindings(rt, "let", forms[0])
	if err != nil {
		return nil, err
	}
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	child := pin.Give(rt.NewScope(scope))
	// Inits evaluate in the enclosing scope.
	for i, init := range inits {
		v, err := rt.Eval(scope, init)
		if err != nil {
			return nil, err
		}
		pin.Give(v)
		if err := rt.Define(child, names[i], v); err != nil {
			return nil, err
		}
	}
	return rt.EvalBlock(child, args.Cdr)
}

// letSequential covers let* and letrec, whose inits evaluate in the
// child scope so each sees the bindings made before it.
func letSequential(rt *Runtime, name string, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, name, args, 2, -1)
	if err != nil {
		return nil, err
	}
	names, inits, err := letBindings(rt, name, forms[0])
	if err != nil {
		return nil, err
	}
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	child := pin.Give(rt.NewScope(scope))
	for i, init := range inits {
		v, err := rt.Eval(child, init)
		if err != nil {
			return nil, err
		}
		pin.Give(v)
		if err := rt.Define(child, names[i], v); err != nil {
			return nil, err
		}
	}
	return rt.EvalBlock(child, args.Cdr)
}

func syntaxLetSeq(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	return letSequential(rt, "let*", scope, args)
}

func syntaxLetrec(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	return letSequential(rt, "letrec", scope, args)
}

func syntaxDefineSyntax(rt *Runtime, scope *Object, args *Object) (*Object, error) {
	forms, err := syntaxArgs(rt, "define-syntax", args, 2, 2)
	if err != nil {
		return nil, err
	}
	name := forms[0]
	if !name.IsSymbol() {
		return nil, rt.ErrorfAt(TypeError, objectLoc(name), "define-syntax: name must be a symbol")
	}
	data, err := rt.parseSyntaxRules(name.Str, forms[1])
	if err != nil {
		return nil, err
	}
	mac := rt.newMacro(data)
	defer mac.Release()
	if err := rt.Define(scope, name, mac); err != nil {
		return nil, err
	}
	return Nil.Retain(), nil
}
