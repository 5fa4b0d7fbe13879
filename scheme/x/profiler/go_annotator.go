// Copyright © 2025 The Wisp authors

package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/wisplang/wisp/scheme"
)

// pprofAnnotator tags pprof samples with the scheme function being
// evaluated.  It does not start pprof itself; the host decides when and
// whether CPU profiling runs.
type pprofAnnotator struct {
	profiler
	currentContext context.Context
}

var _ scheme.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler that applies goroutine labels
// while scheme functions run.
func NewPprofAnnotator(rt *scheme.Runtime, parentContext context.Context, opts ...Option) *pprofAnnotator {
	p := &pprofAnnotator{
		profiler:       profiler{runtime: rt},
		currentContext: parentContext,
	}
	p.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.profiler.Enable()
}

func (p *pprofAnnotator) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

func (p *pprofAnnotator) Start(fun *scheme.Object) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	// The label context is kept on the annotator rather than threaded
	// through the evaluator so unprofiled runs pay nothing for it.
	oldContext := p.currentContext
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels("function", p.funLabel(fun)))
	pprof.SetGoroutineLabels(p.currentContext)
	return func() {
		p.currentContext = oldContext
		pprof.SetGoroutineLabels(p.currentContext)
	}
}
