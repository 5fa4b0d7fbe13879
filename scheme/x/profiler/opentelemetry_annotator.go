// Copyright © 2025 The Wisp authors

package profiler

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wisplang/wisp/scheme"
)

// ContextOpenTelemetryTracerKey looks up a parent tracer name from a
// context key.
const ContextOpenTelemetryTracerKey = "otelParentTracer"

type otelAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    trace.Span
}

var _ scheme.Profiler = &otelAnnotator{}

// NewOpenTelemetryAnnotator returns a profiler that opens a span per
// scheme function application under the tracer found in parentContext.
func NewOpenTelemetryAnnotator(rt *scheme.Runtime, parentContext context.Context, opts ...Option) *otelAnnotator {
	p := &otelAnnotator{
		profiler:       profiler{runtime: rt},
		currentContext: parentContext,
	}
	p.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opentelemetry")
	}
	return p.profiler.Enable()
}

func (p *otelAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = "wisp"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(fun *scheme.Object) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	oldContext := p.currentContext
	p.currentContext, p.currentSpan = contextTracer(p.currentContext).Start(p.currentContext, p.funLabel(fun))
	p.addCodeAttributes(fun)
	return func() {
		p.currentSpan.End()
		// Pop the enclosing span back into place.
		p.currentContext = oldContext
		p.currentSpan = trace.SpanFromContext(p.currentContext)
	}
}

func (p *otelAnnotator) addCodeAttributes(fun *scheme.Object) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(scheme.FunName(fun)),
	}
	if fun.Source != nil {
		attrs = append(attrs,
			semconv.CodeFilepath(fun.Source.File),
			semconv.CodeLineNumber(fun.Source.Line),
		)
	}
	p.currentSpan.SetAttributes(attrs...)
}
