// Copyright © 2025 The Wisp authors

package scheme

type gcMark uint8

// Collection states.  Between collections every registered object sits
// at whatever state the last sweep left it; each collection begins by
// resetting the registry to markGarbage.
const (
	markGarbage gcMark = iota
	markReachable
	markReached
)

// minHeapThreshold is the smallest automatic collection trigger.  The
// threshold doubles the surviving population after every collection.
const minHeapThreshold = 1024

// Heap tracks every collectible object of one runtime.
//
// Ownership convention used throughout the package: constructors and the
// Eval family return objects carrying one stack reference owned by the
// caller.  Arguments to natives and syntax handlers are borrowed.
// Storing an object into a structure (pair, scope, lambda, thunk) never
// touches stack references; structures keep their children alive through
// Reach edges instead.  Stack references exist only to root objects that
// live in Go locals, and Pin is the scope-based guard that releases them
// in bulk.
type Heap struct {
	objects    map[*Object]struct{}
	root       *Object
	threshold  int
	collecting bool

	// Collections counts completed collection cycles.
	Collections int
}

func newHeap() *Heap {
	return &Heap{
		objects:   make(map[*Object]struct{}),
		threshold: minHeapThreshold,
	}
}

// Size returns the registered object count.
func (h *Heap) Size() int { return len(h.objects) }

// register adds o to the registry, possibly collecting first.  The
// caller must keep o's children rooted across the call because a
// collection triggered here runs before o itself is tracked.
func (h *Heap) register(o *Object) {
	if len(h.objects) >= h.threshold && !h.collecting {
		h.Collect()
	}
	h.objects[o] = struct{}{}
}

// Retain adds a stack reference to o and returns o.
func (o *Object) Retain() *Object {
	o.refs++
	return o
}

// Release drops a stack reference.  Dropping a reference that was never
// taken is an internal invariant violation.
func (o *Object) Release() {
	if o.refs <= 0 {
		panic("scheme: release of object with no stack references: " + o.desc.Name)
	}
	o.refs--
}

// Collect runs a full mark and sweep pass and returns the number of
// objects collected.  Roots are the positively referenced objects and
// the runtime root scope.  Unreachable objects have Dispose called for
// their non-memory resources and are dropped from the registry; the Go
// allocator reclaims the memory once nothing else points at them.
func (h *Heap) Collect() int {
	h.collecting = true
	defer func() { h.collecting = false }()

	for o := range h.objects {
		o.mark = markGarbage
	}

	var work []*Object
	visit := func(o *Object) {
		if o.mark == markGarbage {
			o.mark = markReachable
			work = append(work, o)
		}
	}
	for o := range h.objects {
		if o.refs > 0 {
			visit(o)
		}
	}
	if h.root != nil {
		visit(h.root)
	}
	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]
		o.mark = markReached
		if o.desc.Reach != nil {
			o.desc.Reach(o, visit)
		}
	}

	collected := 0
	for o := range h.objects {
		if o.mark != markGarbage {
			continue
		}
		if o.desc.Dispose != nil {
			o.desc.Dispose(o)
		}
		delete(h.objects, o)
		collected++
	}

	h.threshold = 2 * len(h.objects)
	if h.threshold < minHeapThreshold {
		h.threshold = minHeapThreshold
	}
	h.Collections++
	return collected
}

// Pin tracks stack references for a lexical region of Go code so one
// deferred Drop releases them all.
type Pin struct {
	objs []*Object
}

// NewPin returns an empty pin.
func (h *Heap) NewPin() *Pin { return &Pin{} }

// Give transfers ownership of a reference the caller already holds to
// the pin and returns o.
func (p *Pin) Give(o *Object) *Object {
	p.objs = append(p.objs, o)
	return o
}

// Hold takes a new reference on o and tracks it.
func (p *Pin) Hold(o *Object) *Object {
	return p.Give(o.Retain())
}

// Escape moves one reference the pin owns on o out to the caller, so
// Drop no longer releases it.  When the pin owns none (the result was
// never pinned, or is a singleton) a fresh reference is taken instead.
// Use it on a result that must outlive the pin.
func (p *Pin) Escape(o *Object) *Object {
	for i := len(p.objs) - 1; i >= 0; i-- {
		if p.objs[i] == o {
			p.objs[i] = p.objs[len(p.objs)-1]
			p.objs = p.objs[:len(p.objs)-1]
			return o
		}
	}
	return o.Retain()
}

// Drop releases every tracked reference.
func (p *Pin) Drop() {
	for _, o := range p.objs {
		o.Release()
	}
	p.objs = nil
}
