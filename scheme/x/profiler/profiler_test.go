// Copyright © 2025 The Wisp authors

package profiler_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
	"github.com/wisplang/wisp/scheme/x/profiler"
)

const testSource = `
	(define (square x) (* x x))
	(define (sum-squares a b) (+ (square a) (square b)))
	(sum-squares 3 4)
`

func newTestRuntime(t *testing.T) *scheme.Runtime {
	t.Helper()
	rt, err := scheme.NewRuntime(scheme.WithReader(parser.NewReader()))
	require.NoError(t, err)
	return rt
}

func runTestSource(t *testing.T, rt *scheme.Runtime) {
	t.Helper()
	v, err := rt.LoadString("profiled.scm", testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(25), v.Int)
	v.Release()
}

func TestCallgrindProfiler(t *testing.T) {
	rt := newTestRuntime(t)
	out := filepath.Join(t.TempDir(), "callgrind.out")

	p := profiler.NewCallgrindProfiler(rt)
	require.Error(t, p.Enable(), "enable without an output file must fail")
	require.NoError(t, p.SetFile(out))
	require.NoError(t, p.Enable())
	require.True(t, p.IsEnabled())

	runTestSource(t, rt)
	require.NoError(t, p.Complete())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "version: 1\n"))
	assert.Contains(t, content, "events: Time_(ns)")
	assert.Contains(t, content, "square")
	assert.Contains(t, content, "sum-squares")
	assert.Contains(t, content, "summary ")
}

func TestCallgrindSetFileAfterEnable(t *testing.T) {
	rt := newTestRuntime(t)
	p := profiler.NewCallgrindProfiler(rt)
	require.NoError(t, p.SetFile(filepath.Join(t.TempDir(), "out")))
	require.NoError(t, p.Enable())
	assert.Error(t, p.SetFile(filepath.Join(t.TempDir(), "other")))
}

func TestPprofAnnotator(t *testing.T) {
	rt := newTestRuntime(t)
	p := profiler.NewPprofAnnotator(rt, context.Background())
	require.NoError(t, p.Enable())
	require.Same(t, scheme.Profiler(p), rt.Profiler)

	runTestSource(t, rt)
	require.NoError(t, p.Complete())
}

func TestOpenTelemetryAnnotator(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	rt := newTestRuntime(t)
	p := profiler.NewOpenTelemetryAnnotator(rt, context.Background())
	require.NoError(t, p.Enable())

	runTestSource(t, rt)
	require.NoError(t, p.Complete())

	var names []string
	for _, span := range sr.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "square")
	assert.Contains(t, names, "sum-squares")
}

func TestOpenTelemetryAnnotatorRequiresContext(t *testing.T) {
	rt := newTestRuntime(t)
	p := profiler.NewOpenTelemetryAnnotator(rt, nil) //nolint:staticcheck // nil context is the case under test
	assert.Error(t, p.Enable())
}

type spanCollector struct {
	names []string
}

func (c *spanCollector) ExportSpan(s *octrace.SpanData) {
	c.names = append(c.names, s.Name)
}

func TestOpenCensusAnnotator(t *testing.T) {
	collector := &spanCollector{}
	octrace.RegisterExporter(collector)
	defer octrace.UnregisterExporter(collector)

	ctx, parent := octrace.StartSpan(context.Background(), "test-root",
		octrace.WithSampler(octrace.AlwaysSample()))

	rt := newTestRuntime(t)
	p := profiler.NewOpenCensusAnnotator(rt, ctx)
	require.NoError(t, p.Enable())

	runTestSource(t, rt)
	require.NoError(t, p.Complete())
	parent.End()

	assert.Contains(t, collector.names, "square")
	assert.Contains(t, collector.names, "sum-squares")
}

func TestFunLabeler(t *testing.T) {
	rt := newTestRuntime(t)
	out := filepath.Join(t.TempDir(), "callgrind.out")
	p := profiler.NewCallgrindProfiler(rt, profiler.WithFunLabeler(
		func(_ *scheme.Runtime, fun *scheme.Object) string {
			return "wisp " + scheme.FunName(fun)
		}))
	require.NoError(t, p.SetFile(out))
	require.NoError(t, p.Enable())
	runTestSource(t, rt)
	require.NoError(t, p.Complete())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	// Whitespace in user labels is sanitized to underscores.
	assert.Contains(t, string(data), "wisp_square")
}

func TestSkipFilter(t *testing.T) {
	rt := newTestRuntime(t)
	out := filepath.Join(t.TempDir(), "callgrind.out")
	p := profiler.NewCallgrindProfiler(rt, profiler.WithSkipFilter(
		func(fun *scheme.Object) bool {
			return scheme.FunName(fun) == "square"
		}))
	require.NoError(t, p.SetFile(out))
	require.NoError(t, p.Enable())
	runTestSource(t, rt)
	require.NoError(t, p.Complete())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "square\n")
	assert.Contains(t, content, "sum-squares")
}
