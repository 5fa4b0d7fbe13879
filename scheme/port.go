// Copyright © 2025 The Wisp authors

package scheme

import (
	"bufio"
	"io"
	"os"
)

// PortData is the payload of a port object.  A port owns at most one
// underlying file; standard stream ports wrap the runtime's configured
// readers and writers without owning them.
type PortData struct {
	Name    string
	In      *bufio.Reader
	Out     *bufio.Writer
	file    *os.File
	stream  ExprStream
	builder *ObjectBuilder
	closed  bool
}

// disposePort is the Dispose hook: flush buffered output and close the
// owned file.  Sweep-time disposal covers ports the program leaked
// without closing.
func disposePort(o *Object) {
	p := o.Port
	if p.closed {
		return
	}
	p.closed = true
	if p.Out != nil {
		p.Out.Flush()
	}
	if p.file != nil {
		p.file.Close()
	}
	if p.builder != nil {
		p.builder.Close()
		p.builder = nil
	}
}

// OpenInputFile opens path for reading and returns a port object.
func (rt *Runtime) OpenInputFile(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rt.Errorf(ResourceError, "open-input-file: %v", err)
	}
	o := rt.alloc(typePort)
	o.Port = &PortData{Name: path, In: bufio.NewReader(f), file: f}
	return o, nil
}

// OpenOutputFile creates path for writing and returns a port object.
func (rt *Runtime) OpenOutputFile(path string) (*Object, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, rt.Errorf(ResourceError, "open-output-file: %v", err)
	}
	o := rt.alloc(typePort)
	o.Port = &PortData{Name: path, Out: bufio.NewWriter(f), file: f}
	return o, nil
}

// ClosePort flushes and closes the port.  Closing twice is a no-op.
func (rt *Runtime) ClosePort(o *Object) error {
	p := o.Port
	if p.closed {
		return nil
	}
	p.closed = true
	if p.builder != nil {
		p.builder.Close()
		p.builder = nil
	}
	if p.Out != nil {
		if err := p.Out.Flush(); err != nil {
			return rt.Errorf(ResourceError, "close-port: %v", err)
		}
	}
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return rt.Errorf(ResourceError, "close-port: %v", err)
		}
	}
	return nil
}

// stdinPortObject lazily wraps the runtime's standard input in a port so
// (read) with no argument has a stream to pull from.
func (rt *Runtime) stdinPortObject() *Object {
	if rt.stdinPort == nil {
		o := rt.alloc(typePort)
		o.Port = &PortData{Name: "stdin", In: bufio.NewReader(rt.Stdin)}
		rt.stdinPort = o
		// Held for the life of the runtime, like the root scope.
	}
	return rt.stdinPort
}

// ReadDatum reads the next object from an input port, returning the EOF
// object at end of stream.  The port's expression stream is created on
// first use and parses incrementally; parse state survives across
// calls.
func (rt *Runtime) ReadDatum(port *Object) (*Object, error) {
	p := port.Port
	if p.closed {
		return nil, rt.Errorf(ResourceError, "read: port %s is closed", p.Name)
	}
	if p.In == nil {
		return nil, rt.Errorf(TypeError, "read: %s is not an input port", p.Name)
	}
	if p.stream == nil {
		if rt.Reader == nil {
			return nil, rt.Errorf(ResourceError, "read: runtime has no reader")
		}
		p.builder = rt.NewBuilder()
		p.stream = rt.Reader.Stream(p.Name, p.In, p.builder)
	}
	v, err := p.stream.Next()
	if err == io.EOF {
		return EOFObject.Retain(), nil
	}
	if err != nil {
		return nil, err
	}
	// The port's builder roots every datum it parsed until the port is
	// closed or collected; the caller gets an independent reference.
	return v.Retain(), nil
}

// portWriter resolves the output writer for display/write/newline: an
// explicit port argument or the runtime's standard output.
func (rt *Runtime) portWriter(name string, args []*Object) (io.Writer, error) {
	if len(args) == 0 {
		return rt.Stdout, nil
	}
	o := args[0]
	if !o.IsPort() {
		return nil, rt.Errorf(TypeError, "%s: expected a port, got %s", name, o.TypeName())
	}
	if o.Port.closed {
		return nil, rt.Errorf(ResourceError, "%s: port %s is closed", name, o.Port.Name)
	}
	if o.Port.Out == nil {
		return nil, rt.Errorf(TypeError, "%s: %s is not an output port", name, o.Port.Name)
	}
	return o.Port.Out, nil
}
