// Copyright © 2025 The Wisp authors

package scheme

// ScopeData is the payload of a scope object: a bindings dictionary and
// the lexically enclosing scope (nil only for the root).
type ScopeData struct {
	binds  Dict
	parent *Object
}

// NewScope returns a fresh scope deriving parent.  Pass nil to create a
// root scope.
func (rt *Runtime) NewScope(parent *Object) *Object {
	o := rt.alloc(typeScope)
	o.Scope = &ScopeData{parent: parent}
	return o
}

// Parent returns the enclosing scope object, or nil for a root scope.
func (s *ScopeData) Parent() *Object { return s.parent }

// Len returns the number of bindings in this scope alone.
func (s *ScopeData) Len() int { return s.binds.Len() }

// Range calls fn for each binding in this scope alone, stopping early
// when fn returns false.  Iteration order is unspecified.
func (s *ScopeData) Range(fn func(name string, val *Object) bool) {
	s.binds.Range(fn)
}

// Define creates a binding for sym in scope itself.  Defining a name
// already bound in that same scope is a rebind error; shadowing an outer
// binding is not.
func (rt *Runtime) Define(scope, sym, val *Object) error {
	if !sym.IsSymbol() {
		return rt.Errorf(TypeError, "cannot bind %s value", sym.TypeName())
	}
	sd := scope.Scope
	if _, found := sd.binds.GetHashed(sym.hash, sym.Str); found {
		return rt.ErrorfAt(RebindVariable, sym.Source, "variable already bound in this scope: %s", sym.Str)
	}
	sd.binds.PutHashed(sym.hash, sym.Str, val)
	return nil
}

// Lookup resolves sym against scope and its ancestors.  The returned
// object is borrowed from the scope chain; callers that keep it across
// an allocation must retain it.
func (rt *Runtime) Lookup(scope, sym *Object) (*Object, error) {
	for s := scope; s != nil; s = s.Scope.parent {
		if v, found := s.Scope.binds.GetHashed(sym.hash, sym.Str); found {
			return v, nil
		}
	}
	return nil, rt.ErrorfAt(UnboundVariable, sym.Source, "unbound variable: %s", sym.Str)
}

// Assign replaces the value of the nearest binding of sym.  Assigning a
// name with no binding anywhere on the chain is an error distinct from
// an unbound read.
func (rt *Runtime) Assign(scope, sym, val *Object) error {
	for s := scope; s != nil; s = s.Scope.parent {
		if _, found := s.Scope.binds.GetHashed(sym.hash, sym.Str); found {
			s.Scope.binds.PutHashed(sym.hash, sym.Str, val)
			return nil
		}
	}
	return rt.ErrorfAt(AssignUnbound, sym.Source, "assignment to unbound variable: %s", sym.Str)
}
