// Copyright © 2025 The Wisp authors

// Package lexer produces wisp tokens from a rune scanner.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wisplang/wisp/parser/token"
)

const (
	miscWordRunes   = "0123456789" + miscWordSymbols
	miscWordSymbols = "._+-*/=<>!&~%?$^"
)

// Lexer turns scanner runes into tokens, one token per ReadToken call.
type Lexer struct {
	scanner *token.Scanner
}

// New returns a lexer over s.
func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// ReadToken returns the next token.  At the end of input every call
// returns an EOF token.
func (lex *Lexer) ReadToken() *token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(rune) bool { return true }) {
		if err := lex.scanner.Err(); err != nil {
			return lex.errorf("scan failure: %v", err)
		}
		return lex.emit(token.EOF, "")
	}
	switch c := lastRune(lex.scanner.Text()); c {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '\'':
		return lex.emitText(token.QUOTE)
	case ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case '#':
		return lex.readHash()
	case '"':
		return lex.readString()
	case '-':
		if isDigit(lex.peekRune()) {
			lex.scanner.AcceptSeqDigit()
			return lex.emitText(token.INT)
		}
		return lex.readSymbol()
	case '.':
		if isWord(lex.peekRune()) {
			return lex.readSymbol()
		}
		return lex.emitText(token.DOT)
	default:
		if isDigit(c) {
			lex.scanner.AcceptSeqDigit()
			if isWordStart(lex.peekRune()) {
				lex.scanner.AcceptSeq(isWord)
				return lex.errorf("malformed number: %s", lex.scanner.Text())
			}
			return lex.emitText(token.INT)
		}
		if isWordStart(c) {
			return lex.readSymbol()
		}
		return lex.errorf("unexpected text starting with %q", c)
	}
}

// readHash handles #t, #f, and #\character literals.
func (lex *Lexer) readHash() *token.Token {
	switch {
	case lex.scanner.AcceptRune('t'):
		if isWord(lex.peekRune()) {
			return lex.badHash()
		}
		return lex.emitText(token.BOOL)
	case lex.scanner.AcceptRune('f'):
		if isWord(lex.peekRune()) {
			return lex.badHash()
		}
		return lex.emitText(token.BOOL)
	case lex.scanner.AcceptRune('\\'):
		if !lex.scanner.Accept(func(rune) bool { return true }) {
			return lex.errorf("unterminated character literal")
		}
		// Named characters (#\space, #\newline, #\tab) continue with
		// word runes; single-rune literals stop here.
		lex.scanner.AcceptSeq(func(c rune) bool { return unicode.IsLetter(c) })
		return lex.emitText(token.CHAR)
	default:
		return lex.badHash()
	}
}

func (lex *Lexer) badHash() *token.Token {
	lex.scanner.AcceptSeq(isWord)
	return lex.errorf("invalid dispatch literal: %s", lex.scanner.Text())
}

func (lex *Lexer) readString() *token.Token {
	for {
		if lex.scanner.AcceptRune('"') {
			return lex.emitText(token.STRING)
		}
		if lex.scanner.AcceptRune('\\') {
			// The escaped rune is validated at parse time.
			if !lex.scanner.Accept(func(rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
			continue
		}
		if !lex.scanner.Accept(func(c rune) bool { return c != '\n' }) {
			return lex.errorf("unterminated string literal")
		}
	}
}

func (lex *Lexer) readSymbol() *token.Token {
	lex.scanner.AcceptSeq(isWord)
	return lex.emitText(token.SYMBOL)
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{Type: typ, Text: text, Source: lex.scanner.LocStart()}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) *token.Token {
	return lex.scanner.EmitToken(typ)
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emit(token.ERROR, fmt.Sprintf(format, v...))
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekRune() rune {
	c, _ := lex.scanner.Peek()
	return c
}

func lastRune(s string) rune {
	var c rune
	for _, c = range s {
	}
	return c
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
