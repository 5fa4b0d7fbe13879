// Copyright © 2025 The Wisp authors

package scheme

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictBasic(t *testing.T) {
	d := &Dict{}
	assert.Equal(t, 0, d.Len())
	_, found := d.Get("x")
	assert.False(t, found)

	prev, found := d.Put("x", True)
	assert.False(t, found)
	assert.Nil(t, prev)
	assert.Equal(t, 1, d.Len())

	v, found := d.Get("x")
	require.True(t, found)
	assert.Same(t, True, v)

	prev, found = d.Put("x", False)
	require.True(t, found)
	assert.Same(t, True, prev)
	assert.Equal(t, 1, d.Len())

	v, found = d.Get("x")
	require.True(t, found)
	assert.Same(t, False, v)
}

func TestDictGrow(t *testing.T) {
	d := &Dict{}
	vals := make([]*Object, 100)
	for i := range vals {
		vals[i] = &Object{desc: typeInt, refs: 1, Int: int64(i)}
		d.Put(fmt.Sprintf("key%d", i), vals[i])
	}
	assert.Equal(t, 100, d.Len())
	for i := range vals {
		v, found := d.Get(fmt.Sprintf("key%d", i))
		require.True(t, found, "key%d", i)
		assert.Same(t, vals[i], v)
	}
	_, found := d.Get("key100")
	assert.False(t, found)
}

func TestDictHashedConsistency(t *testing.T) {
	d := &Dict{}
	h := hashText("sym")
	d.PutHashed(h, "sym", True)
	v, found := d.GetHashed(h, "sym")
	require.True(t, found)
	assert.Same(t, True, v)
	v, found = d.Get("sym")
	require.True(t, found)
	assert.Same(t, True, v)
}

func TestDictRange(t *testing.T) {
	d := &Dict{}
	for i := 0; i < 10; i++ {
		d.Put(fmt.Sprintf("k%d", i), Nil)
	}
	seen := make(map[string]bool)
	d.Range(func(key string, val *Object) bool {
		assert.Same(t, Nil, val)
		seen[key] = true
		return true
	})
	assert.Len(t, seen, 10)

	n := 0
	d.Range(func(string, *Object) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)
}
