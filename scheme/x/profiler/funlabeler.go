// Copyright © 2025 The Wisp authors

package profiler

import (
	"regexp"

	"github.com/wisplang/wisp/scheme"
)

// FunLabeler provides an alternative name for a function label in the
// trace.  An empty result falls back to the function's own name.
type FunLabeler func(rt *scheme.Runtime, fun *scheme.Object) string

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}
	userLabel = sanitizeRegExp.ReplaceAllString(userLabel, "_")
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
