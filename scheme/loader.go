// Copyright © 2025 The Wisp authors

package scheme

import (
	"io"
	"os"
	"strings"

	"github.com/wisplang/wisp/parser/token"
)

// Builder is the allocation interface readers build objects through, so
// every parsed datum is registered with the runtime heap and rooted
// until the read completes.  Location arguments may be nil.
type Builder interface {
	Int(v int64, loc *token.Location) *Object
	Char(c rune, loc *token.Location) *Object
	String(s string, loc *token.Location) *Object
	Symbol(name string, loc *token.Location) *Object
	Bool(v bool) *Object
	Nil() *Object
	Pair(car, cdr *Object, loc *token.Location) *Object
}

// Reader parses a source stream into objects.
type Reader interface {
	// Read parses the whole stream.
	Read(name string, r io.Reader, b Builder) ([]*Object, error)
	// Stream parses incrementally, one top-level expression per Next.
	Stream(name string, r io.Reader, b Builder) ExprStream
}

// ExprStream yields top-level expressions one at a time and io.EOF at
// the end of input.
type ExprStream interface {
	Next() (*Object, error)
}

// ObjectBuilder implements Builder against a runtime.  Everything built
// is pinned until Close so a collection during parsing or loading
// cannot reclaim partially assembled structure.
type ObjectBuilder struct {
	rt  *Runtime
	pin *Pin
}

// NewBuilder returns a builder whose objects stay rooted until Close.
func (rt *Runtime) NewBuilder() *ObjectBuilder {
	return &ObjectBuilder{rt: rt, pin: rt.Heap.NewPin()}
}

// Close releases every object the builder created.  Structure reachable
// from elsewhere (a scope binding, a retained result) survives.
func (b *ObjectBuilder) Close() { b.pin.Drop() }

// Keep takes a caller-owned reference on o so it outlives Close.
func (b *ObjectBuilder) Keep(o *Object) *Object { return b.pin.Escape(o) }

func (b *ObjectBuilder) stamp(o *Object, loc *token.Location) *Object {
	o.Source = loc
	return b.pin.Give(o)
}

func (b *ObjectBuilder) Int(v int64, loc *token.Location) *Object {
	return b.stamp(b.rt.NewInt(v), loc)
}

func (b *ObjectBuilder) Char(c rune, loc *token.Location) *Object {
	return b.stamp(b.rt.NewChar(c), loc)
}

func (b *ObjectBuilder) String(s string, loc *token.Location) *Object {
	return b.stamp(b.rt.NewString(s), loc)
}

func (b *ObjectBuilder) Symbol(name string, loc *token.Location) *Object {
	// Interned symbols are immortal and shared; the source location of
	// the first occurrence wins.
	s := b.rt.Intern(name)
	if s.Source == nil {
		s.Source = loc
	}
	return s
}

func (b *ObjectBuilder) Bool(v bool) *Object {
	if v {
		return True
	}
	return False
}

func (b *ObjectBuilder) Nil() *Object { return Nil }

func (b *ObjectBuilder) Pair(car, cdr *Object, loc *token.Location) *Object {
	return b.stamp(b.rt.NewPair(car, cdr), loc)
}

// Load reads and evaluates every top-level form of r sequentially in
// the root scope and returns the value of the last form.
func (rt *Runtime) Load(name string, r io.Reader) (*Object, error) {
	if rt.Reader == nil {
		return nil, rt.Errorf(ResourceError, "load: runtime has no reader")
	}
	b := rt.NewBuilder()
	defer b.Close()
	stream := rt.Reader.Stream(name, r, b)
	last := Nil.Retain()
	for {
		expr, err := stream.Next()
		if err == io.EOF {
			return last, nil
		}
		if err != nil {
			last.Release()
			return nil, err
		}
		v, err := rt.Eval(rt.root, expr)
		if err != nil {
			last.Release()
			return nil, err
		}
		last.Release()
		last = v
	}
}

// LoadFile opens path and loads it.
func (rt *Runtime) LoadFile(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rt.Errorf(ResourceError, "load: %v", err)
	}
	defer f.Close()
	return rt.Load(path, f)
}

// LoadString loads source text under the given stream name.
func (rt *Runtime) LoadString(name, src string) (*Object, error) {
	return rt.Load(name, strings.NewReader(src))
}
