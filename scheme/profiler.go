// Copyright © 2025 The Wisp authors

package scheme

// Profiler observes procedure applications.  Implementations live in
// scheme/x/profiler; the evaluator only calls Start when IsEnabled
// reports true.
type Profiler interface {
	// IsEnabled reports whether the profiler is collecting.
	IsEnabled() bool
	// Enable starts collection.
	Enable() error
	// SetFile directs output to a file, for implementations that write
	// one.
	SetFile(path string) error
	// Complete flushes collected data.  The profiler may not be reused
	// afterward.
	Complete() error
	// Start marks entry into fn and returns the matching exit hook.
	Start(fn *Object) func()
}
