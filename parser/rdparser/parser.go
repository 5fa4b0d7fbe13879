// Copyright © 2025 The Wisp authors

// Package rdparser implements the default wisp reader: a recursive
// descent parser over the hand-written lexer.
package rdparser

import (
	"io"
	"strconv"
	"strings"

	"github.com/wisplang/wisp/parser/lexer"
	"github.com/wisplang/wisp/parser/token"
	"github.com/wisplang/wisp/scheme"
)

// Reader implements scheme.Reader.
type Reader struct{}

// NewReader returns the recursive descent reader.
func NewReader() *Reader { return &Reader{} }

// Read parses the whole stream.
func (*Reader) Read(name string, r io.Reader, b scheme.Builder) ([]*scheme.Object, error) {
	p := newParser(name, r, b)
	var exprs []*scheme.Object
	for {
		expr, err := p.ParseExpression()
		if err == io.EOF {
			return exprs, nil
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

// Stream parses incrementally; parser state persists between Next
// calls so a datum may span multiple reads of the underlying stream.
func (*Reader) Stream(name string, r io.Reader, b scheme.Builder) scheme.ExprStream {
	return newParser(name, r, b)
}

type parser struct {
	lex  *lexer.Lexer
	b    scheme.Builder
	peek *token.Token
}

func newParser(name string, r io.Reader, b scheme.Builder) *parser {
	return &parser{
		lex: lexer.New(token.NewScanner(name, r)),
		b:   b,
	}
}

// Next implements scheme.ExprStream.
func (p *parser) Next() (*scheme.Object, error) {
	return p.ParseExpression()
}

// ParseExpression parses one datum, returning io.EOF at the end of the
// stream.
func (p *parser) ParseExpression() (*scheme.Object, error) {
	tok := p.next()
	switch tok.Type {
	case token.EOF:
		return nil, io.EOF
	case token.INT:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid integer literal %s", tok.Text)
		}
		return p.b.Int(v, tok.Source), nil
	case token.STRING:
		s, err := unquoteString(tok.Text)
		if err != nil {
			return nil, p.errorf(tok, "invalid string literal %s", tok.Text)
		}
		return p.b.String(s, tok.Source), nil
	case token.CHAR:
		c, err := parseCharLiteral(tok.Text)
		if err != nil {
			return nil, p.errorf(tok, "invalid character literal %s", tok.Text)
		}
		return p.b.Char(c, tok.Source), nil
	case token.BOOL:
		return p.b.Bool(tok.Text == "#t"), nil
	case token.SYMBOL:
		return p.b.Symbol(tok.Text, tok.Source), nil
	case token.QUOTE:
		return p.parseQuote(tok)
	case token.PAREN_L:
		return p.parseList(tok)
	case token.PAREN_R:
		return nil, p.errorf(tok, "unmatched )")
	case token.DOT:
		return nil, p.errorf(tok, "unexpected .")
	case token.ERROR:
		return nil, p.errorf(tok, "%s", tok.Text)
	default:
		return nil, p.errorf(tok, "unexpected token %s", tok)
	}
}

// parseQuote wraps the following datum as (quote datum).
func (p *parser) parseQuote(tok *token.Token) (*scheme.Object, error) {
	expr, err := p.ParseExpression()
	if err == io.EOF {
		return nil, p.errorf(tok, "unexpected EOF following '")
	}
	if err != nil {
		return nil, err
	}
	q := p.b.Symbol("quote", tok.Source)
	return p.b.Pair(q, p.b.Pair(expr, p.b.Nil(), tok.Source), tok.Source), nil
}

// parseList parses elements through the closing paren, handling the
// dotted tail form (a b . c).
func (p *parser) parseList(open *token.Token) (*scheme.Object, error) {
	var elems []*scheme.Object
	for {
		tok := p.peekToken()
		switch tok.Type {
		case token.EOF:
			return nil, p.errorf(open, "unmatched (")
		case token.PAREN_R:
			p.next()
			return p.buildList(elems, p.b.Nil(), open), nil
		case token.DOT:
			p.next()
			if len(elems) == 0 {
				return nil, p.errorf(tok, "unexpected .")
			}
			tail, err := p.ParseExpression()
			if err == io.EOF {
				return nil, p.errorf(open, "unmatched (")
			}
			if err != nil {
				return nil, err
			}
			end := p.next()
			if end.Type != token.PAREN_R {
				return nil, p.errorf(end, "expected ) after dotted tail")
			}
			return p.buildList(elems, tail, open), nil
		default:
			expr, err := p.ParseExpression()
			if err == io.EOF {
				return nil, p.errorf(open, "unmatched (")
			}
			if err != nil {
				return nil, err
			}
			elems = append(elems, expr)
		}
	}
}

func (p *parser) buildList(elems []*scheme.Object, tail *scheme.Object, open *token.Token) *scheme.Object {
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = p.b.Pair(elems[i], out, open.Source)
	}
	return out
}

// next returns the next non-comment token.
func (p *parser) next() *token.Token {
	if p.peek != nil {
		tok := p.peek
		p.peek = nil
		return tok
	}
	for {
		tok := p.lex.ReadToken()
		if tok.Type != token.COMMENT {
			return tok
		}
	}
}

func (p *parser) peekToken() *token.Token {
	if p.peek == nil {
		p.peek = p.next()
	}
	return p.peek
}

func (p *parser) errorf(tok *token.Token, format string, v ...interface{}) error {
	return scheme.NewError(scheme.ParseError, tok.Source, format, v...)
}

// unquoteString decodes a string literal including its surrounding
// quotes.  Supported escapes: \\ \" \n \t.
func unquoteString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", strconv.ErrSyntax
	}
	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	esc := false
	for _, c := range body {
		if !esc {
			if c == '\\' {
				esc = true
				continue
			}
			sb.WriteRune(c)
			continue
		}
		esc = false
		switch c {
		case '\\', '"':
			sb.WriteRune(c)
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		default:
			return "", strconv.ErrSyntax
		}
	}
	if esc {
		return "", strconv.ErrSyntax
	}
	return sb.String(), nil
}

// parseCharLiteral decodes a #\x token, including the named characters
// space, newline, and tab.
func parseCharLiteral(text string) (rune, error) {
	if !strings.HasPrefix(text, `#\`) {
		return 0, strconv.ErrSyntax
	}
	body := text[2:]
	switch body {
	case "space":
		return ' ', nil
	case "newline":
		return '\n', nil
	case "tab":
		return '\t', nil
	}
	runes := []rune(body)
	if len(runes) != 1 {
		return 0, strconv.ErrSyntax
	}
	return runes[0], nil
}
