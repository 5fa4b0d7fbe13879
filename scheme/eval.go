// Copyright © 2025 The Wisp authors

package scheme

import "fmt"

// CallArgsCap is the capacity of the evaluator's argument buffer.  A
// call with more arguments fails with an arity error before any callee
// runs.
const CallArgsCap = 255

// Eval evaluates expr to a settled value: lazy evaluation followed by
// the trampoline.  The result carries a reference owned by the caller.
func (rt *Runtime) Eval(scope, expr *Object) (*Object, error) {
	v, err := rt.EvalLazy(scope, expr)
	if err != nil {
		return nil, err
	}
	return rt.Force(v)
}

// EvalLazy evaluates expr one step: the result is either a settled value
// or a thunk capturing a deferred tail call.  Callers that need a value
// pass the result through Force; callers in tail position hand the
// result up unchanged so the nearest trampoline bounces it.
func (rt *Runtime) EvalLazy(scope, expr *Object) (*Object, error) {
	switch expr.desc {
	case typeSymbol:
		v, err := rt.Lookup(scope, expr)
		if err != nil {
			return nil, err
		}
		return v.Retain(), nil
	case typePair:
		return rt.evalCall(scope, expr)
	default:
		// Everything else is self evaluating.
		return expr.Retain(), nil
	}
}

// Force drives the trampoline: while v is a thunk, pop it and run the
// deferred call body one step.  Consumes the reference passed in and
// returns an owned settled value.  Because each bounce returns to this
// loop before the next begins, tail calls run in constant Go stack.
func (rt *Runtime) Force(v *Object) (*Object, error) {
	for v.IsThunk() {
		next, err := rt.stepThunk(v)
		if err != nil {
			return nil, err
		}
		v = next
	}
	return v, nil
}

// stepThunk runs one deferred call: derive a scope from the lambda's
// closure, bind parameters to the captured arguments, and evaluate the
// body with a lazy tail.  Consumes th's reference.
func (rt *Runtime) stepThunk(th *Object) (*Object, error) {
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	pin.Give(th)

	fn := pin.Hold(th.Thunk.Fn)
	ld := fn.Fn
	if !rt.Stack.Push(callableName(fn), objectLoc(fn.Fn.Body)) {
		return nil, rt.Errorf(ResourceError, "call stack exhausted calling %s", callableName(fn))
	}
	defer rt.Stack.Pop()
	if rt.Profiler != nil && rt.Profiler.IsEnabled() {
		end := rt.Profiler.Start(fn)
		defer end()
	}

	scope := pin.Give(rt.NewScope(ld.Scope))
	for i, p := range ld.Params {
		if err := rt.Define(scope, p, th.Thunk.Args[i]); err != nil {
			return nil, err
		}
	}
	return rt.EvalBlock(scope, ld.Body)
}

// EvalBlock evaluates a body list: every form but the last eagerly for
// effect, the last lazily so the block's tail position propagates to the
// caller's trampoline.  An empty body evaluates to nil.
func (rt *Runtime) EvalBlock(scope, body *Object) (*Object, error) {
	if body == Nil {
		return Nil.Retain(), nil
	}
	for body.Cdr != Nil {
		if !body.IsPair() || !body.Cdr.IsPair() {
			return nil, rt.Errorf(TypeError, "improper body list")
		}
		v, err := rt.Eval(scope, body.Car)
		if err != nil {
			return nil, err
		}
		v.Release()
		body = body.Cdr
	}
	return rt.EvalLazy(scope, body.Car)
}

// evalCall evaluates a compound form.  The head is evaluated eagerly;
// syntax handlers and macros receive the unevaluated argument forms,
// everything else gets its arguments evaluated left to right into a
// fixed buffer and is invoked through its type descriptor.
func (rt *Runtime) evalCall(scope, expr *Object) (*Object, error) {
	pin := rt.Heap.NewPin()
	defer pin.Drop()

	head, err := rt.Eval(scope, expr.Car)
	if err != nil {
		return nil, err
	}
	pin.Give(head)

	switch head.desc {
	case typeSyntax:
		return head.Syntax.Fn(rt, scope, expr.Cdr)
	case typeMacro:
		expansion, err := rt.expandMacro(head, expr)
		if err != nil {
			return nil, err
		}
		pin.Give(expansion)
		return rt.EvalLazy(scope, expansion)
	}

	if head.desc.Invoke == nil {
		return nil, rt.ErrorfAt(TypeError, objectLoc(expr), "cannot call %s value", head.TypeName())
	}

	var buf [CallArgsCap]*Object
	n := 0
	for rest := expr.Cdr; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return nil, rt.ErrorfAt(TypeError, objectLoc(expr), "improper argument list calling %s", callableName(head))
		}
		if n == CallArgsCap {
			return nil, rt.ErrorfAt(ArityError, objectLoc(expr), "too many arguments calling %s (max %d)", callableName(head), CallArgsCap)
		}
		v, err := rt.Eval(scope, rest.Car)
		if err != nil {
			return nil, err
		}
		buf[n] = pin.Give(v)
		n++
	}
	return head.desc.Invoke(rt, head, buf[:n])
}

// Apply calls a procedure with already evaluated arguments and forces
// the result.  Natives such as fold and apply funnel through here.
func (rt *Runtime) Apply(fn *Object, args []*Object) (*Object, error) {
	if fn.desc.Invoke == nil {
		return nil, rt.Errorf(TypeError, "cannot call %s value", fn.TypeName())
	}
	v, err := fn.desc.Invoke(rt, fn, args)
	if err != nil {
		return nil, err
	}
	return rt.Force(v)
}

// invokeNative checks arity and runs the Go implementation inside a
// stack frame.
func invokeNative(rt *Runtime, fn *Object, args []*Object) (*Object, error) {
	nd := fn.Native
	if len(args) < nd.MinArgs || (nd.MaxArgs >= 0 && len(args) > nd.MaxArgs) {
		return nil, rt.Errorf(ArityError, "%s: expected %s, got %d", nd.Name, arityString(nd.MinArgs, nd.MaxArgs), len(args))
	}
	if !rt.Stack.Push(nd.Name, nil) {
		return nil, rt.Errorf(ResourceError, "call stack exhausted calling %s", nd.Name)
	}
	defer rt.Stack.Pop()
	if rt.Profiler != nil && rt.Profiler.IsEnabled() {
		end := rt.Profiler.Start(fn)
		defer end()
	}
	return nd.Fn(rt, args)
}

// invokeLambda defers the body: arity is checked now, the call itself
// becomes a thunk the nearest trampoline will bounce.
func invokeLambda(rt *Runtime, fn *Object, args []*Object) (*Object, error) {
	ld := fn.Fn
	if len(args) != len(ld.Params) {
		return nil, rt.Errorf(ArityError, "%s: expected %d arguments, got %d", callableName(fn), len(ld.Params), len(args))
	}
	return rt.newThunk(fn, args), nil
}

func arityString(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d argument(s)", min)
	case min == max:
		return fmt.Sprintf("%d argument(s)", min)
	default:
		return fmt.Sprintf("%d to %d arguments", min, max)
	}
}
