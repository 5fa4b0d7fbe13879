// Copyright © 2025 The Wisp authors

package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func condOf(t *testing.T, err error) Condition {
	t.Helper()
	serr, ok := err.(*Error)
	require.True(t, ok, "expected a condition error, got %T", err)
	return serr.Cond
}

func TestScopeDefineLookup(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	scope := rt.NewScope(rt.RootScope())
	defer scope.Release()

	sym := rt.Intern("x")
	v := rt.NewInt(7)
	defer v.Release()
	require.NoError(t, rt.Define(scope, sym, v))

	got, err := rt.Lookup(scope, sym)
	require.NoError(t, err)
	assert.Same(t, v, got)

	// Root bindings resolve through the chain.
	got, err = rt.Lookup(scope, rt.Intern("car"))
	require.NoError(t, err)
	assert.True(t, got.IsProcedure())
}

func TestScopeUnbound(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	_, err = rt.Lookup(rt.RootScope(), rt.Intern("no-such-binding"))
	require.Error(t, err)
	assert.Equal(t, UnboundVariable, condOf(t, err))
}

func TestScopeRebind(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	scope := rt.NewScope(rt.RootScope())
	defer scope.Release()

	sym := rt.Intern("x")
	require.NoError(t, rt.Define(scope, sym, True))
	err = rt.Define(scope, sym, False)
	require.Error(t, err)
	assert.Equal(t, RebindVariable, condOf(t, err))

	// Shadowing an outer binding is not a rebind.
	inner := rt.NewScope(scope)
	defer inner.Release()
	require.NoError(t, rt.Define(inner, sym, False))

	got, err := rt.Lookup(inner, sym)
	require.NoError(t, err)
	assert.Same(t, False, got)
	got, err = rt.Lookup(scope, sym)
	require.NoError(t, err)
	assert.Same(t, True, got)
}

func TestScopeAssign(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	outer := rt.NewScope(rt.RootScope())
	defer outer.Release()
	inner := rt.NewScope(outer)
	defer inner.Release()

	sym := rt.Intern("x")
	require.NoError(t, rt.Define(outer, sym, True))

	// Assignment through a child scope hits the nearest binding.
	require.NoError(t, rt.Assign(inner, sym, False))
	got, err := rt.Lookup(outer, sym)
	require.NoError(t, err)
	assert.Same(t, False, got)

	err = rt.Assign(inner, rt.Intern("unbound-target"), True)
	require.Error(t, err)
	assert.Equal(t, AssignUnbound, condOf(t, err))
}

func TestScopeRange(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	scope := rt.NewScope(nil)
	defer scope.Release()
	require.NoError(t, rt.Define(scope, rt.Intern("a"), True))
	require.NoError(t, rt.Define(scope, rt.Intern("b"), False))

	assert.Equal(t, 2, scope.Scope.Len())
	names := make(map[string]bool)
	scope.Scope.Range(func(name string, _ *Object) bool {
		names[name] = true
		return true
	})
	assert.Equal(t, map[string]bool{"a": true, "b": true}, names)
}
