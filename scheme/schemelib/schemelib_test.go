// Copyright © 2025 The Wisp authors

package schemelib_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
	"github.com/wisplang/wisp/scheme/schemelib"
	"github.com/wisplang/wisp/schemetest"
)

func TestLoadLibrary(t *testing.T) {
	rt, err := scheme.NewRuntime(scheme.WithReader(parser.NewReader()))
	require.NoError(t, err)
	require.NoError(t, schemelib.LoadLibrary(rt))
}

func TestPrelude(t *testing.T) {
	tests := schemetest.TestSuite{
		{"list operations", schemetest.TestSequence{
			{Expr: "(length '())", Result: "0"},
			{Expr: "(length '(a b c))", Result: "3"},
			{Expr: "(append '(1 2) '(3 4))", Result: "(1 2 3 4)"},
			{Expr: "(append '() '(1))", Result: "(1)"},
			{Expr: "(list? '(1 2))", Result: "#t"},
			{Expr: "(list? '(1 . 2))", Result: "#f"},
			{Expr: "(list? 5)", Result: "#f"},
			{Expr: "(list-tail '(1 2 3 4) 2)", Result: "(3 4)"},
			{Expr: "(cadr '(1 2 3))", Result: "2"},
			{Expr: "(caddr '(1 2 3))", Result: "3"},
		}},
		{"higher order", schemetest.TestSequence{
			{Expr: "(map (lambda (x) (* x x)) '(1 2 3))", Result: "(1 4 9)"},
			{Expr: "(map car '((1 2) (3 4)))", Result: "(1 3)"},
			{Expr: "(filter even? '(1 2 3 4 5 6))", Result: "(2 4 6)"},
			{Expr: "(filter pair? '(1 (2) () (3 4)))", Result: "((2) (3 4))"},
			{Expr: "(for-each display '(1 2 3))", Result: "()", Output: "123"},
		}},
		{"search", schemetest.TestSequence{
			{Expr: "(memq 'c '(a b c d))", Result: "(c d)"},
			{Expr: "(memq 'z '(a b c))", Result: "#f"},
			{Expr: "(assq 'b '((a 1) (b 2)))", Result: "(b 2)"},
			{Expr: "(assq 'z '((a 1)))", Result: "#f"},
		}},
		{"numeric helpers", schemetest.TestSequence{
			{Expr: "(not #t)", Result: "#f"},
			{Expr: "(not #f)", Result: "#t"},
			{Expr: "(not 3)", Result: "#t"},
			{Expr: "(abs -4)", Result: "4"},
			{Expr: "(abs 4)", Result: "4"},
			{Expr: "(min 2 7)", Result: "2"},
			{Expr: "(max 2 7)", Result: "7"},
			{Expr: "(zero? 0)", Result: "#t"},
			{Expr: "(positive? -1)", Result: "#f"},
			{Expr: "(negative? -1)", Result: "#t"},
			{Expr: "(even? 4)", Result: "#t"},
			{Expr: "(odd? 4)", Result: "#f"},
		}},
	}
	schemetest.RunTestSuite(t, tests)
}
