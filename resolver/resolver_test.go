package resolver_test

import (
	"slowjs/lexer"
	"slowjs/parser"
	"slowjs/resolver"
	"strings"
	"testing"
)

func TestResolver(t *testing.T) {
	tests := []string{
		`function main() { add(1, 2); } function add(a, b) { a + b; }`,
		`function main() { fact(5); } function fact(n) { n * fact(n - 1); }`,
		// nested declarations see themselves and the enclosing params
		`function main() { function loop(x) { loop(x + n); } n; } function n() { 1; }`,
		`function main() { function a() { b(); } function b() { 1; } a(); }`,
		`function main() { function k(x) { function c(y) { x; } c; } k(1)(2); }`,
		// the later main shadows the earlier one
		`function main() { 1; } function main() { 2; }`,
	}
	for i, input := range tests {
		program := lexAndParse(t, input)
		if program == nil {
			t.Errorf("tests[%d] (%q) failed to parse", i, input)
			continue
		}
		r := resolver.New(program)
		r.Resolve()
		if !noErrors(t, "resolver", r.Errors) {
			t.Errorf("tests[%d] (%q) failed", i, input)
		}
	}
}

func TestResolverErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{`function main() { x; }`, []string{`test.js:1:19: undefined variable "x"`}},
		{`function main() { f(1); }`, []string{`undefined variable "f"`}},
		{`function f() { 1; }`, []string{`test.js: no function named "main"`}},
		{`function main() { } `, []string{`function "main" has an empty body`}},
		{`function main(a, a) { a; }`, []string{`duplicate parameter "a"`}},
		{`function main() { g(); function g() { 1; } }`, []string{`"g" is used before its declaration`}},
		{`function main() { function g(x) { y; } x; }`, []string{
			`undefined variable "y"`,
			`undefined variable "x"`,
		}},
	}
	for i, test := range tests {
		program := lexAndParse(t, test.input)
		if program == nil {
			continue
		}
		r := resolver.New(program)
		r.Resolve()
		if len(r.Errors) != len(test.expected) {
			t.Errorf("tests[%d] (%q): expected=%d errors, got=%v", i, test.input, len(test.expected), r.Errors)
			continue
		}
		for j, err := range r.Errors {
			if !strings.Contains(err.Error(), test.expected[j]) {
				t.Errorf("tests[%d] (%q): expected=%q, got=%q", i, test.input, test.expected[j], err)
			}
		}
	}
}

func TestResolverTooManyErrors(t *testing.T) {
	tests := []string{
		strings.Repeat("function f() { a; b; c; }\n", 5) + "function main() { 1; }",
		"function main() { " + strings.Repeat("a; ", 25) + "}",
	}
	for i, input := range tests {
		program := lexAndParse(t, input)
		if program == nil {
			continue
		}
		r := resolver.New(program)
		r.Resolve()
		if len(r.Errors) != 11 {
			t.Errorf("tests[%d]: expected 10 errors and TooManyErrors, got %d", i, len(r.Errors))
			continue
		}
		if last := r.Errors[len(r.Errors)-1]; last != resolver.TooManyErrors {
			t.Errorf("tests[%d]: expected TooManyErrors, got %v", i, last)
		}
	}
}

func TestResolveOne(t *testing.T) {
	program := lexAndParse(t, "")
	if program == nil {
		return
	}
	r := resolver.New(program)
	r.AddGlobals([]string{"add"})
	tests := []struct {
		input   string
		numErrs int
	}{
		{"add(1, 2);", 0},
		{"function inc(x) { add(x, 1); }", 0},
		{"inc(1);", 0},
		{"dec(1);", 1},
		// dec may still be declared before later is called
		{"function later() { dec(1); }", 0},
		{"function twice(a, a) { a; }", 1},
	}
	for i, test := range tests {
		stmts := lexAndParseLine(t, test.input)
		if len(stmts) != 1 {
			t.Errorf("tests[%d] (%q): expected one statement, got %d", i, test.input, len(stmts))
			continue
		}
		before := len(r.Errors)
		r.ResolveOne(stmts[0])
		if got := len(r.Errors) - before; got != test.numErrs {
			t.Errorf("tests[%d] (%q): expected=%d errors, got=%d", i, test.input, test.numErrs, got)
		}
	}
}

// utils

func lexAndParse(t *testing.T, input string) *parser.Program {
	fn := "test.js"
	l := lexer.New(fn, input)
	l.ScanTokens()
	if !noErrors(t, "lexer", l.Errors) {
		return nil
	}
	p := parser.New(fn, l.Tokens)
	program := p.Parse()
	if !noErrors(t, "parser", p.Errors) {
		return nil
	}
	return program
}

func lexAndParseLine(t *testing.T, input string) []parser.Stmt {
	l := lexer.New("<stdin>", input)
	l.ScanTokens()
	if !noErrors(t, "lexer", l.Errors) {
		return nil
	}
	p := parser.New("<stdin>", l.Tokens)
	stmts := p.ParseLine()
	if !noErrors(t, "parser", p.Errors) {
		return nil
	}
	return stmts
}

func noErrors(t *testing.T, src string, errs []error) bool {
	if len(errs) != 0 {
		t.Errorf("got %s errors:\n", src)
		for _, x := range errs {
			t.Errorf("%s\n", x)
		}
		return false
	}
	return true
}
