// Copyright © 2025 The Wisp authors

package token

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Scanner accumulates runes from a byte stream into token text.  The
// lexer drives it with Accept/AcceptSeq and cuts tokens with EmitToken
// or discards scanned text with Ignore.
type Scanner struct {
	file string
	r    *bufio.Reader
	text strings.Builder

	pos       int
	line      int
	startPos  int
	startLine int

	err error
	eof bool
}

// NewScanner returns a scanner over r.  file names the stream in
// locations.
func NewScanner(file string, r io.Reader) *Scanner {
	return &Scanner{
		file:      file,
		r:         bufio.NewReader(r),
		line:      1,
		startLine: 1,
	}
}

// EOF reports whether the input is exhausted.
func (s *Scanner) EOF() bool {
	if s.eof {
		return true
	}
	_, ok := s.Peek()
	return !ok && s.eof
}

// Err returns the read error that stopped scanning, if it was anything
// other than end of input.
func (s *Scanner) Err() error { return s.err }

// Peek returns the next rune without consuming it.
func (s *Scanner) Peek() (rune, bool) {
	c, _, err := s.r.ReadRune()
	if err != nil {
		if err == io.EOF {
			s.eof = true
		} else {
			s.err = err
		}
		return 0, false
	}
	_ = s.r.UnreadRune()
	return c, true
}

// Accept consumes the next rune when fn approves it.
func (s *Scanner) Accept(fn func(rune) bool) bool {
	c, ok := s.Peek()
	if !ok || !fn(c) {
		return false
	}
	_, _, _ = s.r.ReadRune()
	s.text.WriteRune(c)
	s.pos++
	if c == '\n' {
		s.line++
	}
	return true
}

// AcceptRune consumes the next rune when it equals c.
func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

// AcceptAny consumes the next rune when it appears in charset.
func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

// AcceptSeq consumes runes while fn approves them and returns the
// count.
func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	n := 0
	for s.Accept(fn) {
		n++
	}
	return n
}

// AcceptSeqDigit consumes a run of ASCII digits.
func (s *Scanner) AcceptSeqDigit() int {
	return s.AcceptSeq(func(c rune) bool { return '0' <= c && c <= '9' })
}

// AcceptSeqSpace consumes a run of whitespace.
func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

// Text returns the text scanned since the last EmitToken or Ignore.
func (s *Scanner) Text() string { return s.text.String() }

// EmitToken cuts a token from the scanned text.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.text.String(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore discards the scanned text.
func (s *Scanner) Ignore() {
	s.text.Reset()
	s.startPos = s.pos
	s.startLine = s.line
}

// LocStart returns the location of the first scanned rune of the
// pending token text.
func (s *Scanner) LocStart() *Location {
	return &Location{File: s.file, Pos: s.startPos, Line: s.startLine}
}
