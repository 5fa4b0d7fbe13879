// Copyright © 2025 The Wisp authors

package scheme_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
)

func newTestRuntime(t *testing.T) *scheme.Runtime {
	t.Helper()
	rt, err := scheme.NewRuntime(scheme.WithReader(parser.NewReader()))
	require.NoError(t, err)
	return rt
}

func TestFilePorts(t *testing.T) {
	rt := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "data.scm")

	v, err := rt.LoadString("test", `
		(define out (open-output-file "`+path+`"))
		(write '(1 2 3) out)
		(newline out)
		(display "done" out)
		(close-port out)
	`)
	require.NoError(t, err)
	v.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(1 2 3)\ndone", string(data))
}

func TestReadDatum(t *testing.T) {
	rt := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "data.scm")
	require.NoError(t, os.WriteFile(path, []byte("(+ 1 2) sym ; comment\n42"), 0600))

	port, err := rt.OpenInputFile(path)
	require.NoError(t, err)
	defer port.Release()

	v, err := rt.ReadDatum(port)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", v.String())
	v.Release()

	v, err = rt.ReadDatum(port)
	require.NoError(t, err)
	assert.Equal(t, "sym", v.String())
	v.Release()

	v, err = rt.ReadDatum(port)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)
	v.Release()

	// Every read past the end yields the EOF object.
	for i := 0; i < 2; i++ {
		v, err = rt.ReadDatum(port)
		require.NoError(t, err)
		assert.Same(t, scheme.EOFObject, v)
		v.Release()
	}
}

func TestReadFromStdin(t *testing.T) {
	rt, err := scheme.NewRuntime(
		scheme.WithReader(parser.NewReader()),
		scheme.WithStdin(strings.NewReader("(a b) ")),
	)
	require.NoError(t, err)

	v, err := rt.LoadString("test", "(read)")
	require.NoError(t, err)
	assert.Equal(t, "(a b)", v.String())
	v.Release()

	v, err = rt.LoadString("test", "(eof-object? (read))")
	require.NoError(t, err)
	assert.Same(t, scheme.True, v)
	v.Release()
}

func TestClosedPortErrors(t *testing.T) {
	rt := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "data.scm")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0600))

	port, err := rt.OpenInputFile(path)
	require.NoError(t, err)
	defer port.Release()
	require.NoError(t, rt.ClosePort(port))
	require.NoError(t, rt.ClosePort(port), "closing twice is a no-op")

	_, err = rt.ReadDatum(port)
	require.Error(t, err)
	serr, ok := err.(*scheme.Error)
	require.True(t, ok)
	assert.Equal(t, scheme.ResourceError, serr.Condition())
}

func TestLoadFile(t *testing.T) {
	rt := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "lib.scm")
	require.NoError(t, os.WriteFile(path, []byte("(define (inc n) (+ n 1))\n(inc 41)\n"), 0600))

	v, err := rt.LoadString("test", `(load "`+path+`")`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)
	v.Release()

	// Definitions made by the loaded file persist in the root scope.
	v, err = rt.LoadString("test", "(inc 1)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int)
	v.Release()

	_, err = rt.LoadString("test", `(load "/no/such/file.scm")`)
	require.Error(t, err)
}
