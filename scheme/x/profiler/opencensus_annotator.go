// Copyright © 2025 The Wisp authors

package profiler

import (
	"context"
	"errors"

	"go.opencensus.io/trace"

	"github.com/wisplang/wisp/scheme"
)

type ocAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       []context.Context
}

var _ scheme.Profiler = &ocAnnotator{}

// NewOpenCensusAnnotator returns a profiler that opens an OpenCensus
// span per scheme function application.
func NewOpenCensusAnnotator(rt *scheme.Runtime, parentContext context.Context, opts ...Option) *ocAnnotator {
	p := &ocAnnotator{
		profiler:       profiler{runtime: rt},
		currentContext: parentContext,
	}
	p.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opencensus")
	}
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func (p *ocAnnotator) Start(fun *scheme.Object) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	p.contexts = append(p.contexts, p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, p.funLabel(fun))
	if fun.Source != nil {
		p.currentSpan.Annotate([]trace.Attribute{
			trace.StringAttribute("file", fun.Source.File),
			trace.Int64Attribute("line", int64(fun.Source.Line)),
		}, "source")
	}
	return func() {
		p.currentSpan.End()
		p.currentContext = p.contexts[len(p.contexts)-1]
		p.contexts = p.contexts[:len(p.contexts)-1]
		p.currentSpan = trace.FromContext(p.currentContext)
	}
}
