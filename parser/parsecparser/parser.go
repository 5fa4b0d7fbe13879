// Copyright © 2025 The Wisp authors

/*
Package parsecparser expresses the wisp grammar with goparsec
combinators.  It exists as an alternative to the default recursive
descent reader and as a benchmark baseline for it.

	expr   := '(' <expr>* ('.' <expr>)? ')' | '\'' <expr> | <atom>
	atom   := <int> | <string> | <bool> | <char> | <symbol>

goparsec is not incremental, so Stream slurps the input and replays
parsed expressions one at a time; the default reader is the one to use
for interactive input.
*/
package parsecparser

import (
	"fmt"
	"io"
	"strconv"

	parsec "github.com/prataprc/goparsec"
	"github.com/wisplang/wisp/parser/token"
	"github.com/wisplang/wisp/scheme"
)

// Reader implements scheme.Reader on goparsec.
type Reader struct{}

// NewReader returns the goparsec-backed reader.
func NewReader() *Reader { return &Reader{} }

// Read parses the whole stream.
func (*Reader) Read(name string, r io.Reader, b scheme.Builder) ([]*scheme.Object, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, scheme.NewError(scheme.ResourceError, &token.Location{File: name}, "read failure: %v", err)
	}
	return parseAll(name, text, b)
}

// Stream parses everything up front and yields expressions one at a
// time.
func (rd *Reader) Stream(name string, r io.Reader, b scheme.Builder) scheme.ExprStream {
	return &replayStream{rd: rd, name: name, r: r, b: b}
}

type replayStream struct {
	rd     *Reader
	name   string
	r      io.Reader
	b      scheme.Builder
	exprs  []*scheme.Object
	err    error
	parsed bool
}

func (s *replayStream) Next() (*scheme.Object, error) {
	if !s.parsed {
		s.parsed = true
		s.exprs, s.err = s.rd.Read(s.name, s.r, s.b)
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.exprs) == 0 {
		return nil, io.EOF
	}
	expr := s.exprs[0]
	s.exprs = s.exprs[1:]
	return expr, nil
}

func parseAll(name string, text []byte, b scheme.Builder) ([]*scheme.Object, error) {
	var out []*scheme.Object
	s := parsec.NewScanner(text).TrackLineno()
	parser := newParsecParser(b)
	root, s := parser(s)
	for root != nil {
		v, err := nodeObject(name, root)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		rest, _ := s.Match(`.{1,16}`)
		return nil, scheme.NewError(scheme.ParseError,
			&token.Location{File: name, Line: s.Lineno(), Pos: s.GetCursor()},
			"unexpected source text starting: %s", rest)
	}
	return out, nil
}

func newParsecParser(b scheme.Builder) parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	q := parsec.Atom("'", "QUOTE")
	comment := parsec.Token(`;([^\n]*[^\s])?`, "COMMENT")
	boolean := parsec.Token(`#[tf]`, "BOOL")
	char := parsec.Token(`#\\(?:space|newline|tab|[^\s])`, "CHAR")
	integer := parsec.Token(`[+-]?[0-9]+`, "INT")
	symbol := parsec.Token(`(?:\pL|[._+\-*/=<>!&~%?$^])(?:\pL|[0-9]|[._+\-*/=<>!&~%?$^])*`, "SYMBOL")
	term := parsec.OrdChoice(astNode(b, nodeTerm),
		boolean,
		char,
		parsec.String(),
		integer,
		// The symbol pattern swallows almost anything so it comes last.
		symbol,
	)
	var expr parsec.Parser // forward declaration allows recursion
	exprList := parsec.Kleene(nil, &expr)
	sexpr := parsec.And(astNode(b, nodeSExpr), openP, exprList, closeP)
	sexprUnmatched := parsec.And(astNode(b, nodeSExprUnmatched), openP, exprList, parsec.End())
	qexpr := parsec.And(astNode(b, nodeQExpr), q, &expr)
	expr = parsec.OrdChoice(nil,
		comment,
		term,
		sexpr,
		qexpr,
		// Error cases come last, with the lowest precedence.
		sexprUnmatched,
	)
	return expr
}

type nodeType uint

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeSExpr
	nodeSExprUnmatched
	nodeQExpr
)

func astNode(b scheme.Builder, typ nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newNode(b, typ, nodes)
	}
}

func newNode(b scheme.Builder, typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanNodeList(nodes)
	if len(nodes) == 0 {
		return b.Nil()
	}
	if !ok {
		// An error node propagates unchanged.
		return nodes[0]
	}
	switch typ {
	case nodeTerm:
		return termObject(b, nodes[0])
	case nodeSExpr:
		return listObject(b, nodes)
	case nodeSExprUnmatched:
		return fmt.Errorf("unmatched (")
	case nodeQExpr:
		body, ok := nodes[1].(*scheme.Object)
		if !ok {
			return fmt.Errorf("malformed quote")
		}
		return b.Pair(b.Symbol("quote", nil), b.Pair(body, b.Nil(), nil), nil)
	default:
		panic(fmt.Sprintf("unknown nodeType: %d", typ))
	}
}

func termObject(b scheme.Builder, node parsec.ParsecNode) parsec.ParsecNode {
	switch term := node.(type) {
	case string:
		// goparsec's String() yields the parsed text re-wrapped in
		// double quotes.
		return b.String(term[1:len(term)-1], nil)
	case *parsec.Terminal:
		switch term.Name {
		case "BOOL":
			return b.Bool(term.Value == "#t")
		case "CHAR":
			c, err := charValue(term.Value[2:])
			if err != nil {
				return err
			}
			return b.Char(c, nil)
		case "INT":
			v, err := strconv.ParseInt(term.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("bad number %s: %v", term.Value, err)
			}
			return b.Int(v, nil)
		case "SYMBOL":
			return b.Symbol(term.Value, nil)
		}
	}
	return fmt.Errorf("unexpected term %v", node)
}

func charValue(body string) (rune, error) {
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
		return 0, fmt.Errorf("invalid character literal #\\%s", body)
	}
	return runes[0], nil
}

// listObject assembles an s-expression, treating a bare "." symbol in
// the penultimate position as the dotted pair marker.
func listObject(b scheme.Builder, nodes []parsec.ParsecNode) parsec.ParsecNode {
	var elems []*scheme.Object
	for _, n := range nodes {
		if o, ok := n.(*scheme.Object); ok {
			elems = append(elems, o)
		}
	}
	tail := b.Nil()
	if n := len(elems); n >= 2 && isDotSymbol(elems[n-2]) {
		if n < 3 {
			return fmt.Errorf("unexpected .")
		}
		tail = elems[n-1]
		elems = elems[:n-2]
	}
	for _, e := range elems {
		if isDotSymbol(e) {
			return fmt.Errorf("unexpected .")
		}
	}
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = b.Pair(elems[i], out, nil)
	}
	return out
}

func isDotSymbol(o *scheme.Object) bool {
	return o.IsSymbol() && o.Str == "."
}

func cleanNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case error:
			return []parsec.ParsecNode{node}, false
		case []parsec.ParsecNode:
			clean, ok := cleanNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

func nodeObject(name string, root parsec.ParsecNode) (*scheme.Object, error) {
	nodes, ok := cleanNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		// Comment or whitespace only.
		return nil, nil
	}
	if !ok {
		err := nodes[0].(error)
		return nil, scheme.NewError(scheme.ParseError, &token.Location{File: name}, "%s", err)
	}
	o, ok := nodes[0].(*scheme.Object)
	if !ok {
		return nil, scheme.NewError(scheme.ParseError, &token.Location{File: name}, "unexpected node %v", nodes[0])
	}
	return o, nil
}
