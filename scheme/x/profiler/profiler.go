// Copyright © 2025 The Wisp authors

// Package profiler provides scheme.Profiler implementations that
// annotate evaluation with pprof labels, OpenTelemetry spans,
// OpenCensus spans, or callgrind output.
package profiler

import (
	"errors"

	"github.com/wisplang/wisp/scheme"
)

// profiler is the shared base for every annotator.
type profiler struct {
	runtime    *scheme.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

// Option adjusts an annotator at construction.
type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) IsEnabled() bool { return p.enabled }

func (p *profiler) Enable() error {
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.enabled = true
	return nil
}

// SetFile is overridden by annotators that write output files.
func (p *profiler) SetFile(string) error {
	return errors.New("this profiler type writes no output file")
}

func (p *profiler) Complete() error { return nil }

// funLabel returns the span label for fun: the labeler's choice when
// one is set and yields something, the function's own name otherwise.
func (p *profiler) funLabel(fun *scheme.Object) string {
	label := ""
	if p.funLabeler != nil {
		label = sanitizeLabel(p.funLabeler(p.runtime, fun))
	}
	if label == "" {
		label = scheme.FunName(fun)
	}
	return label
}

// skipTrace decides whether an application goes unrecorded.
func (p *profiler) skipTrace(fun *scheme.Object) bool {
	return !p.enabled || defaultSkipFilter(fun) || p.skipFilter != nil && p.skipFilter(fun)
}
