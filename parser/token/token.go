// Copyright © 2025 The Wisp authors

// Package token defines the lexical tokens of wisp source text and the
// rune scanner the lexer is built on.
package token

import "fmt"

// Token is one lexical element with its source location.
type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (t *Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s %q", t.Type, t.Text)
	}
	return t.Type.String()
}

// Type identifies a token class.
type Type uint

const (
	INVALID Type = iota
	ERROR
	EOF

	// Atoms
	SYMBOL
	INT
	STRING
	CHAR
	BOOL

	COMMENT

	// Reader macros and punctuation
	QUOTE
	DOT

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID: "invalid",
		ERROR:   "error",
		EOF:     "EOF",
		SYMBOL:  "symbol",
		INT:     "int",
		STRING:  "string",
		CHAR:    "character",
		BOOL:    "boolean",
		COMMENT: ";",
		QUOTE:   "'",
		DOT:     ".",
		PAREN_L: "(",
		PAREN_R: ")",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in a source stream.  File names the stream,
// which need not be a filesystem path.
type Location struct {
	File string
	Pos  int
	Line int
}

func (loc *Location) String() string {
	switch {
	case loc.Line > 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	case loc.Pos > 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	default:
		return loc.File
	}
}
