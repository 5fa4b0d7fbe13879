// Copyright © 2025 The Wisp authors

// Package schemetest provides a table driven harness for end-to-end
// script tests against isolated runtimes.
package schemetest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
	"github.com/wisplang/wisp/scheme/schemelib"
)

// TestSequence is a sequence of expressions evaluated in order against
// one runtime.
type TestSequence []struct {
	// Expr is one expression of source text.
	Expr string
	// Result is the expected rendering (write mode) of the value.
	Result string
	// Output is text the expression is expected to print to stdout.
	Output string
	// Err, when non-empty, is a substring the evaluation error must
	// contain; Result and Output are ignored for the step.
	Err string
}

// TestSuite is a set of named TestSequences.
type TestSuite []struct {
	Name string
	TestSequence
}

// Runner constructs runtimes for script tests.
type Runner struct {
	// Loader initializes the root scope before a sequence runs.  When
	// nil the embedded prelude is loaded.
	Loader func(*scheme.Runtime) error
	// Config is applied to every runtime the runner builds.
	Config []scheme.Config
}

// NewRuntime builds a runtime wired for testing: the default reader,
// stdout captured in the returned buffer, and stderr fed to the test
// log.
func (r *Runner) NewRuntime(t testing.TB) (*scheme.Runtime, *bytes.Buffer, error) {
	stdout := &bytes.Buffer{}
	cfg := []scheme.Config{
		scheme.WithReader(parser.NewReader()),
		scheme.WithStdout(stdout),
		scheme.WithStderr(NewLogger(t)),
	}
	cfg = append(cfg, r.Config...)
	rt, err := scheme.NewRuntime(cfg...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize runtime: %v", err)
	}
	loader := r.Loader
	if loader == nil {
		loader = schemelib.LoadLibrary
	}
	if err := loader(rt); err != nil {
		return nil, nil, fmt.Errorf("failed to load library: %v", err)
	}
	return rt, stdout, nil
}

// RunTestSuite runs each TestSequence against an isolated runtime.
func (r *Runner) RunTestSuite(t *testing.T, tests TestSuite) {
	for i := range tests {
		test := tests[i]
		t.Run(test.Name, func(t *testing.T) {
			rt, stdout, err := r.NewRuntime(t)
			if err != nil {
				t.Fatal(err)
			}
			for j, step := range test.TestSequence {
				stdout.Reset()
				v, err := rt.LoadString(fmt.Sprintf("test:%d", j), step.Expr)
				if step.Err != "" {
					if err == nil {
						v.Release()
						t.Errorf("expr %d %q: expected error containing %q, got none", j, step.Expr, step.Err)
						continue
					}
					if !strings.Contains(err.Error(), step.Err) {
						t.Errorf("expr %d %q: expected error containing %q, got %q", j, step.Expr, step.Err, err.Error())
					}
					continue
				}
				if err != nil {
					t.Errorf("expr %d %q: unexpected error: %v", j, step.Expr, err)
					continue
				}
				result := v.String()
				v.Release()
				if result != step.Result {
					t.Errorf("expr %d %q: expected result %s (got %s)", j, step.Expr, step.Result, result)
				}
				if stdout.String() != step.Output {
					t.Errorf("expr %d %q: expected output %q (got %q)", j, step.Expr, step.Output, stdout.String())
				}
			}
		})
	}
}

// RunTestSuite runs tests with a default Runner.
func RunTestSuite(t *testing.T, tests TestSuite) {
	r := &Runner{}
	r.RunTestSuite(t, tests)
}

// RunBenchmark evaluates source b.N times against fresh runtimes.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	for i := 0; i < b.N; i++ {
		rt, err := scheme.NewRuntime(
			scheme.WithReader(parser.NewReader()),
			scheme.WithStdout(os.Stderr),
		)
		if err != nil {
			b.Fatal(err)
		}
		if err := schemelib.LoadLibrary(rt); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		v, err := rt.LoadString("benchmark", source)
		b.StopTimer()
		if err != nil {
			b.Fatalf("eval error: %v", err)
		}
		v.Release()
	}
}
