// Copyright © 2025 The Wisp authors

// Package repl implements the interactive read-eval-print loop.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
	"github.com/wisplang/wisp/scheme/schemelib"
)

type config struct {
	stdin  io.ReadCloser
	stderr io.Writer
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// RunRepl runs a repl in a fresh runtime with the standard library
// loaded.
func RunRepl(prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	rtOpts := []scheme.Config{
		scheme.WithReader(parser.NewReader()),
	}
	if cfg.stderr != nil {
		rtOpts = append(rtOpts, scheme.WithStderr(cfg.stderr))
	}
	rt, err := scheme.NewRuntime(rtOpts...)
	if err != nil {
		errlnf("Language initialization failure: %v", err)
		os.Exit(1)
	}
	if err := schemelib.LoadLibrary(rt); err != nil {
		errlnf("Stdlib initialization failure: %v", err)
		os.Exit(1)
	}
	RunRuntime(rt, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunRuntime runs a repl against rt.  Expressions evaluate in rt's root
// scope, so definitions persist across lines.
func RunRuntime(rt *scheme.Runtime, prompt, cont string, opts ...Option) {
	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		rt.Stderr = cfg.stderr
	}

	hist := historyPath()
	ensureHistoryFilePermissions(hist)
	rlCfg := &readline.Config{
		Stdout:            rt.Stderr,
		Stderr:            rt.Stderr,
		Prompt:            prompt,
		HistoryFile:       hist,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{rt: rt},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, err := rl.ReadLine()
		if err == readline.ErrInterrupt {
			buf.Reset()
			continue
		}
		if err != nil {
			break
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		if !balanced(buf.String()) {
			continue
		}
		src := buf.String()
		buf.Reset()
		v, err := rt.LoadString("stdin", src)
		if err != nil {
			renderError(rt.Stderr, err)
			continue
		}
		fmt.Fprintln(rt.Stderr, v.String()) //nolint:errcheck // best-effort REPL output
		v.Release()
	}
}

// balanced reports whether src contains no unclosed lists, skipping
// parens inside strings, comments, and character literals.
func balanced(src string) bool {
	depth := 0
	i := 0
	for i < len(src) {
		switch src[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				// Unmatched close; let the parser report it.
				return true
			}
			depth--
		case ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '"':
			i++
			for i < len(src) && src[i] != '"' {
				if src[i] == '\\' {
					i++
				}
				i++
			}
		case '#':
			if i+1 < len(src) && src[i+1] == '\\' {
				// Skip the literal character so #\( does not count.
				i += 2
			}
		}
		i++
	}
	return depth == 0
}

// renderError prints an evaluation error with a wrapped message and an
// indented call trace.
func renderError(w io.Writer, err error) {
	serr, ok := err.(*scheme.Error)
	if !ok {
		fmt.Fprintln(w, wordwrap.String(err.Error(), 76)) //nolint:errcheck // best-effort error display
		return
	}
	var trace strings.Builder
	serr.WriteTrace(&trace)
	lines := strings.SplitN(trace.String(), "\n", 2)
	fmt.Fprintln(w, wordwrap.String(lines[0], 76)) //nolint:errcheck // best-effort error display
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		fmt.Fprint(w, indent.String(strings.TrimRight(lines[1], "\n"), 2)) //nolint:errcheck // best-effort error display
		fmt.Fprintln(w)                                                    //nolint:errcheck // best-effort error display
	}
}

// ensureHistoryFilePermissions creates the history file when missing
// and restricts it to the owning user.  Command history can contain
// sensitive input and should not be world readable.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wisp_history")
}

func errlnf(format string, v ...interface{}) {
	if strings.HasSuffix(format, "\n") {
		errf(format, v...)
		return
	}
	errf(format+"\n", v...)
}

func errf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
}
