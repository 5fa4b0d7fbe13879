// Copyright © 2025 The Wisp authors

package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/wisplang/wisp/scheme"
)

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprint(ew.w, s)
}

// callgrindProfiler accumulates per-call timing and writes a callgrind
// file that KCacheGrind or QCacheGrind can open.
type callgrindProfiler struct {
	profiler
	sync.Mutex
	writer     *os.File
	writeErr   error
	startTime  time.Time
	refs       map[string]int
	refCounter int
	current    *callRef
}

var _ scheme.Profiler = &callgrindProfiler{}

// NewCallgrindProfiler returns a callgrind profiler.  SetFile must be
// called before Enable.
func NewCallgrindProfiler(rt *scheme.Runtime, opts ...Option) *callgrindProfiler {
	p := &callgrindProfiler{
		profiler: profiler{runtime: rt},
	}
	rt.Profiler = p
	p.applyConfigs(opts...)
	return p
}

// callRef is one active application and the completed applications it
// made.
type callRef struct {
	start    time.Time
	prev     *callRef
	name     string
	children []*callRef
	duration time.Duration
	file     string
	line     int
}

func (p *callgrindProfiler) SetFile(filename string) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.writer = f
	return nil
}

func (p *callgrindProfiler) Enable() error {
	p.Lock()
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: wisp (Go %s)\n", runtime.Version())
	w.printf("cmd: Eval\npart: 1\npositions: line\n\n")
	w.printf("events: Time_(ns)\n\n")
	if w.err != nil {
		p.Unlock()
		return w.err
	}
	p.startTime = time.Now()
	p.refs = make(map[string]int)
	p.refCounter = 0
	p.current = &callRef{name: "ENTRYPOINT", file: "-", start: time.Now()}
	p.Unlock()
	return p.profiler.Enable()
}

func (p *callgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	ref := p.current
	ref.duration = time.Since(ref.start)
	w := &errWriter{w: p.writer}
	w.printf("fl=%s\n", p.getRef(ref.file))
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d\n", 0, ref.duration)
	for _, entry := range ref.children {
		w.printf("cfl=%s\n", p.getRef(entry.file))
		w.printf("cfn=%s\n", p.getRef(entry.name))
		w.print("calls=1 0\n")
		w.printf("%d %d\n", entry.line, entry.duration)
	}
	w.print("\n")
	w.printf("summary %d\n\n", time.Since(p.startTime).Nanoseconds())
	if w.err != nil {
		return w.err
	}
	return p.writer.Close()
}

// getRef compresses repeated name strings the way callgrind's name
// table expects.
func (p *callgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	p.refCounter++
	p.refs[name] = p.refCounter
	return fmt.Sprintf("(%d) %s", p.refCounter, name)
}

func (p *callgrindProfiler) Start(fun *scheme.Object) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	p.push(p.funLabel(fun), fun)
	return func() {
		p.end(fun)
	}
}

func (p *callgrindProfiler) push(name string, fun *scheme.Object) {
	p.Lock()
	defer p.Unlock()
	ref := &callRef{name: name, start: time.Now()}
	if fun.Source != nil {
		ref.file = fun.Source.File
		ref.line = fun.Source.Line
	}
	ref.prev = p.current
	if p.current != nil {
		p.current.children = append(p.current.children, ref)
	}
	p.current = ref
}

func (p *callgrindProfiler) end(fun *scheme.Object) {
	p.Lock()
	defer p.Unlock()
	if p.writeErr != nil {
		return
	}
	ref := p.current
	p.current = ref.prev
	ref.duration = time.Since(ref.start)
	if ref.duration == 0 {
		ref.duration = 1
	}
	w := &errWriter{w: p.writer}
	if ref.file != "" {
		w.printf("fl=%s\n", p.getRef(ref.file))
	}
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d\n", ref.line, ref.duration)
	for _, entry := range ref.children {
		w.printf("cfl=%s\n", p.getRef(entry.file))
		w.printf("cfn=%s\n", p.getRef(entry.name))
		w.print("calls=1 0\n")
		w.printf("%d %d\n", entry.line, entry.duration)
	}
	w.print("\n")
	if w.err != nil {
		p.writeErr = w.err
	}
}
