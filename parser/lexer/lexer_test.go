// Copyright © 2025 The Wisp authors

package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisplang/wisp/parser/token"
)

type tok struct {
	typ  token.Type
	text string
}

func tokenize(t *testing.T, src string) []tok {
	t.Helper()
	lex := New(token.NewScanner("test", strings.NewReader(src)))
	var out []tok
	for i := 0; i < 1000; i++ {
		tk := lex.ReadToken()
		if tk.Type == token.EOF {
			return out
		}
		out = append(out, tok{tk.Type, tk.Text})
	}
	t.Fatal("lexer did not terminate")
	return nil
}

func TestLexForm(t *testing.T) {
	got := tokenize(t, "(define x 12)")
	assert.Equal(t, []tok{
		{token.PAREN_L, "("},
		{token.SYMBOL, "define"},
		{token.SYMBOL, "x"},
		{token.INT, "12"},
		{token.PAREN_R, ")"},
	}, got)
}

func TestLexAtoms(t *testing.T) {
	for _, tc := range []struct {
		src string
		typ token.Type
	}{
		{"12", token.INT},
		{"-12", token.INT},
		{"foo", token.SYMBOL},
		{"set-car!", token.SYMBOL},
		{"-", token.SYMBOL},
		{"...", token.SYMBOL},
		{"<=?", token.SYMBOL},
		{"#t", token.BOOL},
		{"#f", token.BOOL},
		{`#\a`, token.CHAR},
		{`#\space`, token.CHAR},
		{`#\(`, token.CHAR},
		{`"hi there"`, token.STRING},
		{`"a\"b"`, token.STRING},
		{"'", token.QUOTE},
		{".", token.DOT},
	} {
		got := tokenize(t, tc.src)
		require.Len(t, got, 1, "src %q", tc.src)
		assert.Equal(t, tc.typ, got[0].typ, "src %q", tc.src)
		assert.Equal(t, tc.src, got[0].text, "src %q", tc.src)
	}
}

func TestLexComments(t *testing.T) {
	got := tokenize(t, "1 ; one\n2")
	assert.Equal(t, []tok{
		{token.INT, "1"},
		{token.COMMENT, "; one"},
		{token.INT, "2"},
	}, got)
}

func TestLexQuoteSugar(t *testing.T) {
	got := tokenize(t, "'(a . b)")
	assert.Equal(t, []tok{
		{token.QUOTE, "'"},
		{token.PAREN_L, "("},
		{token.SYMBOL, "a"},
		{token.DOT, "."},
		{token.SYMBOL, "b"},
		{token.PAREN_R, ")"},
	}, got)
}

func TestLexErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		msg string
	}{
		{"12abc", "malformed number"},
		{"#q", "invalid dispatch literal"},
		{"#true", "invalid dispatch literal"},
		{`"unterminated`, "unterminated string literal"},
		{`#\`, "unterminated character literal"},
		{"@", "unexpected text"},
	} {
		lex := New(token.NewScanner("test", strings.NewReader(tc.src)))
		tk := lex.ReadToken()
		assert.Equal(t, token.ERROR, tk.Type, "src %q", tc.src)
		assert.Contains(t, tk.Text, tc.msg, "src %q", tc.src)
	}
}

func TestLexLocations(t *testing.T) {
	lex := New(token.NewScanner("test", strings.NewReader("a\n  b")))
	tk := lex.ReadToken()
	require.NotNil(t, tk.Source)
	assert.Equal(t, 1, tk.Source.Line)
	tk = lex.ReadToken()
	require.NotNil(t, tk.Source)
	assert.Equal(t, 2, tk.Source.Line)
}
