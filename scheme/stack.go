// Copyright © 2025 The Wisp authors

package scheme

import "github.com/wisplang/wisp/parser/token"

// DefaultMaxStackHeight bounds non-tail call nesting.  Tail calls bounce
// through the trampoline and never grow the stack, so the limit only
// trips on runaway non-tail recursion before it can exhaust the Go
// stack.
const DefaultMaxStackHeight = 25000

// CallFrame records one active (or, in an error snapshot, formerly
// active) procedure application.
type CallFrame struct {
	Name   string
	Source *token.Location
}

// CallStack tracks active applications for diagnostics and profiling.
type CallStack struct {
	Frames    []CallFrame
	MaxHeight int
}

func newCallStack() *CallStack {
	return &CallStack{MaxHeight: DefaultMaxStackHeight}
}

// Push adds a frame.  It reports overflow so the evaluator can turn it
// into a resource error instead of letting the Go stack die.
func (s *CallStack) Push(name string, loc *token.Location) bool {
	if len(s.Frames) >= s.MaxHeight {
		return false
	}
	s.Frames = append(s.Frames, CallFrame{Name: name, Source: loc})
	return true
}

// Pop removes the top frame.
func (s *CallStack) Pop() {
	if len(s.Frames) == 0 {
		panic("scheme: pop of empty call stack")
	}
	s.Frames = s.Frames[:len(s.Frames)-1]
}

// Top returns the current frame, or nil outside any application.
func (s *CallStack) Top() *CallFrame {
	if len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Copy snapshots the stack for an error value.
func (s *CallStack) Copy() []CallFrame {
	if len(s.Frames) == 0 {
		return nil
	}
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return frames
}
