// Copyright © 2025 The Wisp authors

package profiler

import "github.com/wisplang/wisp/scheme"

// SkipFilter reports whether an application of fun should go
// unrecorded.
type SkipFilter func(fun *scheme.Object) bool

func defaultSkipFilter(fun *scheme.Object) bool {
	return !fun.IsProcedure()
}

// WithSkipFilter sets an additional filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}
