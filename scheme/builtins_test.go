// Copyright © 2025 The Wisp authors

package scheme_test

import (
	"testing"

	"github.com/wisplang/wisp/schemetest"
)

func TestPairs(t *testing.T) {
	tests := schemetest.TestSuite{
		{"construction and access", schemetest.TestSequence{
			{Expr: "(cons 1 2)", Result: "(1 . 2)"},
			{Expr: "(cons 1 (cons 2 '()))", Result: "(1 2)"},
			{Expr: "(car '(1 2 3))", Result: "1"},
			{Expr: "(cdr '(1 2 3))", Result: "(2 3)"},
			{Expr: "(car (cdr '(1 2 3)))", Result: "2"},
			{Expr: "(list)", Result: "()"},
			{Expr: "(list 1 2 3)", Result: "(1 2 3)"},
			{Expr: "(list 1 (list 2 3))", Result: "(1 (2 3))"},
			{Expr: "(reverse '(1 2 3))", Result: "(3 2 1)"},
			{Expr: "(reverse '())", Result: "()"},
		}},
		{"mutation", schemetest.TestSequence{
			{Expr: "(define p (cons 1 2))", Result: "()"},
			{Expr: "(set-car! p 10)", Result: "()"},
			{Expr: "p", Result: "(10 . 2)"},
			{Expr: "(set-cdr! p '(20))", Result: "()"},
			{Expr: "p", Result: "(10 20)"},
		}},
		{"type errors", schemetest.TestSequence{
			{Expr: "(car 1)", Err: "car: expected a pair"},
			{Expr: "(cdr '())", Err: "cdr: expected a pair"},
			{Expr: "(set-car! 1 2)", Err: "set-car!: expected a pair"},
		}},
	}
	schemetest.RunTestSuite(t, tests)
}

func TestPredicates(t *testing.T) {
	tests := schemetest.TestSuite{
		{"type predicates", schemetest.TestSequence{
			{Expr: "(null? '())", Result: "#t"},
			{Expr: "(null? '(1))", Result: "#f"},
			{Expr: "(pair? '(1))", Result: "#t"},
			{Expr: "(pair? '())", Result: "#f"},
			{Expr: "(symbol? 'a)", Result: "#t"},
			{Expr: "(symbol? \"a\")", Result: "#f"},
			{Expr: "(boolean? #f)", Result: "#t"},
			{Expr: "(boolean? '())", Result: "#f"},
			{Expr: "(number? 3)", Result: "#t"},
			{Expr: "(string? \"s\")", Result: "#t"},
			{Expr: `(char? #\x)`, Result: "#t"},
			{Expr: "(procedure? car)", Result: "#t"},
			{Expr: "(procedure? (lambda (x) x))", Result: "#t"},
			{Expr: "(procedure? 'car)", Result: "#f"},
			{Expr: "(eof-object? 1)", Result: "#f"},
		}},
	}
	schemetest.RunTestSuite(t, tests)
}

func TestEq(t *testing.T) {
	tests := schemetest.TestSequence{
		{Expr: "(eq? 'a 'a)", Result: "#t"},
		{Expr: "(eq? 'a 'b)", Result: "#f"},
		{Expr: "(eq? 1 1)", Result: "#t"},
		{Expr: "(eq? 1 2)", Result: "#f"},
		{Expr: "(eq? 1 'a)", Result: "#f"},
		{Expr: `(eq? #\a #\a)`, Result: "#t"},
		{Expr: `(eq? "ab" "ab")`, Result: "#t"},
		{Expr: `(eq? "ab" "ac")`, Result: "#f"},
		{Expr: "(eq? '() '())", Result: "#t"},
		{Expr: "(eq? #t #t)", Result: "#t"},
		{Expr: "(eq? #t #f)", Result: "#f"},
		{Expr: "(eq? #f #f)", Result: "#t"},
		{Expr: "(eq? #f '())", Result: "#f"},
		// Pairs compare recursively by structure.
		{Expr: "(eq? '(1 2) '(1 2))", Result: "#t"},
		{Expr: "(eq? '(1 (2 3)) '(1 (2 3)))", Result: "#t"},
		{Expr: "(eq? '(1 2) '(1 3))", Result: "#f"},
		{Expr: "(eq? '(1 2) '(1 2 3))", Result: "#f"},
		// Identity still short-circuits for types with no comparison.
		{Expr: "(eq? car car)", Result: "#t"},
		{Expr: "(eq? car cdr)", Err: "no comparison defined"},
	}
	schemetest.RunTestSuite(t, schemetest.TestSuite{{Name: "eq?", TestSequence: tests}})
}

func TestHigherOrder(t *testing.T) {
	tests := schemetest.TestSuite{
		{"fold", schemetest.TestSequence{
			{Expr: "(fold + 0 '(1 2 3 4))", Result: "10"},
			{Expr: "(fold - 0 '(1 2 3))", Result: "-6"},
			{Expr: "(fold (lambda (acc x) (cons x acc)) '() '(1 2 3))", Result: "(3 2 1)"},
			{Expr: "(fold + 0 '())", Result: "0"},
			{Expr: "(fold 1 0 '(1))", Err: "fold: expected a procedure"},
		}},
		{"apply", schemetest.TestSequence{
			{Expr: "(apply + '(1 2))", Result: "3"},
			{Expr: "(apply car '((1 2)))", Result: "1"},
			{Expr: "(apply (lambda (a b c) (* a (+ b c))) '(2 3 4))", Result: "14"},
			{Expr: "(apply + 5)", Err: "apply: expected an argument list"},
		}},
	}
	schemetest.RunTestSuite(t, tests)
}

func TestOutput(t *testing.T) {
	tests := schemetest.TestSuite{
		{"display and write", schemetest.TestSequence{
			{Expr: `(display "hi")`, Result: "()", Output: "hi"},
			{Expr: `(write "hi")`, Result: "()", Output: `"hi"`},
			{Expr: `(display #\a)`, Result: "()", Output: "a"},
			{Expr: `(write #\a)`, Result: "()", Output: `#\a`},
			{Expr: "(display '(1 2))", Result: "()", Output: "(1 2)"},
			{Expr: "(newline)", Result: "()", Output: "\n"},
			{Expr: `(begin (display "n=") (display 4) (newline))`, Result: "()", Output: "n=4\n"},
		}},
	}
	schemetest.RunTestSuite(t, tests)
}

func TestArithErrors(t *testing.T) {
	tests := schemetest.TestSequence{
		{Expr: "(+ 1 'a)", Err: "+: expected an integer"},
		{Expr: "(< #t 1)", Err: "<: expected an integer"},
		{Expr: "(quotient 1 0)", Err: "quotient: division by zero"},
		{Expr: "(modulo 1 0)", Err: "modulo: division by zero"},
	}
	schemetest.RunTestSuite(t, schemetest.TestSuite{{Name: "arith-errors", TestSequence: tests}})
}

func TestGCBuiltin(t *testing.T) {
	tests := schemetest.TestSequence{
		// Evaluating discards intermediate structure; a collection pass
		// returns how much it swept and the runtime keeps working.
		{Expr: "(define keep '(1 2 3))", Result: "()"},
		{Expr: "(begin (list 1 2 3) (list 4 5 6) '())", Result: "()"},
		{Expr: "(number? (gc))", Result: "#t"},
		{Expr: "keep", Result: "(1 2 3)"},
	}
	schemetest.RunTestSuite(t, schemetest.TestSuite{{Name: "gc", TestSequence: tests}})
}
