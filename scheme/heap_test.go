// Copyright © 2025 The Wisp authors

package scheme

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectReclaimsUnreferenced(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	rt.Heap.Collect() // settle the initial population

	p := rt.NewPair(rt.NewInt(1), Nil)
	p.Car.Release()
	before := rt.Heap.Size()
	assert.Zero(t, rt.Heap.Collect(), "referenced structure must survive")
	assert.Equal(t, before, rt.Heap.Size())

	p.Release()
	assert.Equal(t, 2, rt.Heap.Collect())
	assert.Equal(t, before-2, rt.Heap.Size())
}

func TestCollectReclaimsCycles(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	rt.Heap.Collect()

	a := rt.NewPair(Nil, Nil)
	b := rt.NewPair(a, Nil)
	a.Cdr = b
	assert.Zero(t, rt.Heap.Collect())

	a.Release()
	b.Release()
	assert.Equal(t, 2, rt.Heap.Collect(), "cycle with no stack references must be collected")
}

func TestRootScopeBindingsSurvive(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)

	v := rt.NewInt(42)
	require.NoError(t, rt.Define(rt.RootScope(), rt.Intern("answer"), v))
	v.Release()
	rt.Heap.Collect()

	got, err := rt.Lookup(rt.RootScope(), rt.Intern("answer"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Int)
}

func TestSingletonsNeverCollected(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	size := rt.Heap.Size()
	rt.Heap.Collect()
	// Singletons are not registered at all, so collection cannot touch
	// them and their marks stay settled.
	assert.Equal(t, markReached, Nil.mark)
	assert.Equal(t, markReached, True.mark)
	assert.Equal(t, markReached, False.mark)
	assert.Equal(t, markReached, EOFObject.mark)
	assert.LessOrEqual(t, rt.Heap.Size(), size)
}

func TestPin(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	rt.Heap.Collect()

	pin := rt.Heap.NewPin()
	p := pin.Give(rt.NewPair(Nil, Nil))
	pin.Hold(p)
	assert.Equal(t, int32(2), p.refs)
	assert.Zero(t, rt.Heap.Collect())

	// Escape transfers a pin-owned reference instead of taking a new
	// one.
	kept := pin.Escape(p)
	assert.Equal(t, int32(2), kept.refs)
	pin.Drop()
	assert.Equal(t, int32(1), kept.refs)
	assert.Zero(t, rt.Heap.Collect(), "escaped object must survive the pin")

	kept.Release()
	assert.Equal(t, 1, rt.Heap.Collect())
}

func TestPinEscapeUnpinned(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)

	pin := rt.Heap.NewPin()
	o := rt.NewInt(7)
	kept := pin.Escape(o)
	pin.Drop()
	// The pin never owned a reference on o, so Escape takes a fresh one.
	assert.Equal(t, int32(2), kept.refs)
	kept.Release()
	o.Release()
}

func TestReleaseUnderflowPanics(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	o := rt.NewInt(1)
	o.Release()
	assert.Panics(t, func() { o.Release() })
}

func TestAutomaticCollection(t *testing.T) {
	rt, err := NewRuntime(WithHeapThreshold(8))
	require.NoError(t, err)
	// The registered core bindings already exceed the tiny threshold, so
	// the next allocation collects.
	rt.NewInt(1).Release()
	assert.Equal(t, 1, rt.Heap.Collections)
	assert.GreaterOrEqual(t, rt.Heap.threshold, minHeapThreshold)
}

// intReader is a stub Reader yielding max integer datums through the
// builder it is handed.
type intReader struct{ max int }

func (r *intReader) Read(name string, _ io.Reader, b Builder) ([]*Object, error) {
	var out []*Object
	for i := 0; i < r.max; i++ {
		out = append(out, b.Int(int64(i+1), nil))
	}
	return out, nil
}

func (r *intReader) Stream(_ string, _ io.Reader, b Builder) ExprStream {
	return &intStream{b: b, max: r.max}
}

type intStream struct {
	b    Builder
	next int
	max  int
}

func (s *intStream) Next() (*Object, error) {
	if s.next >= s.max {
		return nil, io.EOF
	}
	s.next++
	return s.b.Int(int64(s.next), nil), nil
}

func TestClosePortReleasesReadData(t *testing.T) {
	rt, err := NewRuntime(WithReader(&intReader{max: 3}))
	require.NoError(t, err)
	rt.Heap.Collect()

	path := filepath.Join(t.TempDir(), "data.scm")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3"), 0600))
	port, err := rt.OpenInputFile(path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v, err := rt.ReadDatum(port)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), v.Int)
		v.Release()
	}
	// The port's stream builder roots every datum read through it.
	assert.Zero(t, rt.Heap.Collect())

	require.NoError(t, rt.ClosePort(port))
	assert.Equal(t, 3, rt.Heap.Collect(), "closing the port must drop the stream builder's roots")

	port.Release()
	assert.Equal(t, 1, rt.Heap.Collect())
}

func TestDisposeFlushesLeakedPort(t *testing.T) {
	rt, err := NewRuntime()
	require.NoError(t, err)
	rt.Heap.Collect()

	path := filepath.Join(t.TempDir(), "out.txt")
	port, err := rt.OpenOutputFile(path)
	require.NoError(t, err)
	_, err = port.Port.Out.WriteString("leaked")
	require.NoError(t, err)

	// Drop the port without closing it; the sweep's Dispose hook must
	// flush and close the file.
	port.Release()
	assert.Equal(t, 1, rt.Heap.Collect())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "leaked", string(data))
}
