// Copyright © 2025 The Wisp authors

package scheme

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteObject renders o to w.  Write mode produces readable literals;
// display mode renders strings and characters as raw text.  Rendering a
// cyclic pair structure does not terminate, the same as the printers
// this one is modeled on.
func WriteObject(w io.Writer, o *Object, display bool) error {
	return o.desc.Write(w, o, display)
}

// RenderString returns o rendered in the chosen mode.
func RenderString(o *Object, display bool) string {
	var sb strings.Builder
	_ = WriteObject(&sb, o, display)
	return sb.String()
}

// String renders o in write mode, for diagnostics and %v formatting.
func (o *Object) String() string {
	return RenderString(o, false)
}

func writeNil(w io.Writer, _ *Object, _ bool) error {
	_, err := io.WriteString(w, "()")
	return err
}

func writeBool(w io.Writer, o *Object, _ bool) error {
	s := "#f"
	if o == True {
		s = "#t"
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeInt(w io.Writer, o *Object, _ bool) error {
	_, err := io.WriteString(w, strconv.FormatInt(o.Int, 10))
	return err
}

func writeChar(w io.Writer, o *Object, display bool) error {
	if display {
		_, err := io.WriteString(w, string(o.Char))
		return err
	}
	switch o.Char {
	case ' ':
		_, err := io.WriteString(w, `#\space`)
		return err
	case '\n':
		_, err := io.WriteString(w, `#\newline`)
		return err
	case '\t':
		_, err := io.WriteString(w, `#\tab`)
		return err
	}
	_, err := fmt.Fprintf(w, `#\%c`, o.Char)
	return err
}

func writeString(w io.Writer, o *Object, display bool) error {
	if display {
		_, err := io.WriteString(w, o.Str)
		return err
	}
	_, err := io.WriteString(w, strconv.Quote(o.Str))
	return err
}

func writeSymbol(w io.Writer, o *Object, _ bool) error {
	_, err := io.WriteString(w, o.Str)
	return err
}

func writeEOF(w io.Writer, _ *Object, _ bool) error {
	_, err := io.WriteString(w, "#<eof>")
	return err
}

func writePair(w io.Writer, o *Object, display bool) error {
	if _, err := io.WriteString(w, "("); err != nil {
		return err
	}
	for {
		if err := WriteObject(w, o.Car, display); err != nil {
			return err
		}
		switch {
		case o.Cdr == Nil:
			_, err := io.WriteString(w, ")")
			return err
		case o.Cdr.IsPair():
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
			o = o.Cdr
		default:
			if _, err := io.WriteString(w, " . "); err != nil {
				return err
			}
			if err := WriteObject(w, o.Cdr, display); err != nil {
				return err
			}
			_, err := io.WriteString(w, ")")
			return err
		}
	}
}

func writePort(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<port %s>", o.Port.Name)
	return err
}

func writeLambda(w io.Writer, o *Object, _ bool) error {
	if o.Fn.Name == "" {
		_, err := io.WriteString(w, "#<procedure>")
		return err
	}
	_, err := fmt.Fprintf(w, "#<procedure %s>", o.Fn.Name)
	return err
}

func writeNative(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<native %s>", o.Native.Name)
	return err
}

func writeSyntax(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<syntax %s>", o.Syntax.Name)
	return err
}

func writeMacro(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<macro %s>", o.Macro.Name)
	return err
}

func writeThunk(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<thunk %s>", callableName(o.Thunk.Fn))
	return err
}

func writeScope(w io.Writer, o *Object, _ bool) error {
	_, err := fmt.Fprintf(w, "#<scope %d>", o.Scope.Len())
	return err
}
