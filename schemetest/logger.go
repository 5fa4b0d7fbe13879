// Copyright © 2025 The Wisp authors

package schemetest

import (
	"bytes"
	"io"
	"testing"
)

// Logger adapts testing.TB logging into an io.Writer suitable for a
// runtime's Stderr.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{t: t}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i]))
		log.buf = log.buf[i+1:]
	}
}

// Flush logs any buffered partial line.
func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}
