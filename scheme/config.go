// Copyright © 2025 The Wisp authors

package scheme

import "io"

// Config adjusts a runtime during NewRuntime, after the core bindings
// are in place.
type Config func(rt *Runtime) error

// WithReader sets the source reader used by Load and the read native.
func WithReader(r Reader) Config {
	return func(rt *Runtime) error {
		rt.Reader = r
		return nil
	}
}

// WithStdout sets the default output for display, write, and newline.
func WithStdout(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stdout = w
		return nil
	}
}

// WithStderr sets the diagnostic output.
func WithStderr(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stderr = w
		return nil
	}
}

// WithStdin sets the default input stream backing (read).
func WithStdin(r io.Reader) Config {
	return func(rt *Runtime) error {
		rt.Stdin = r
		return nil
	}
}

// WithMaxStackHeight bounds non-tail call nesting.
func WithMaxStackHeight(n int) Config {
	return func(rt *Runtime) error {
		rt.Stack.MaxHeight = n
		return nil
	}
}

// WithHeapThreshold sets the initial automatic collection trigger.  The
// threshold still doubles the surviving population after each
// collection.
func WithHeapThreshold(n int) Config {
	return func(rt *Runtime) error {
		if n < 1 {
			n = 1
		}
		rt.Heap.threshold = n
		return nil
	}
}

// WithProfiler attaches an evaluation profiler.
func WithProfiler(p Profiler) Config {
	return func(rt *Runtime) error {
		rt.Profiler = p
		return nil
	}
}
