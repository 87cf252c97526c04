package eval_test

import (
	"errors"
	"math"
	"slowjs/eval"
	"slowjs/parser"
	"strings"
	"testing"
)

func TestLiterals(t *testing.T) {
	tests := []float64{0, 1, -3.5, 1e300, math.SmallestNonzeroFloat64, math.Inf(1)}
	ctx := eval.NewContext("", eval.Options{})
	env := eval.NewEnvironment(nil)
	for i, n := range tests {
		v, err := ctx.Evaluate(parser.NewNumber(n), env)
		if err != nil {
			t.Errorf("tests[%d] (%v): unexpected error %s", i, n, err)
			continue
		}
		if v != eval.Number(n) {
			t.Errorf("tests[%d]: expected=%v, got=%v", i, n, v)
		}
	}
	v, err := ctx.Evaluate(parser.NewNumber(math.NaN()), env)
	if err != nil || !math.IsNaN(float64(v.(eval.Number))) {
		t.Errorf("expected NaN literal to stay NaN, got=%v (%v)", v, err)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"2 + 3", 5},
		{"5 - 7", -2},
		{"3 * 4", 12},
		{"10 / 4", 2.5},
		{"10 / 0", math.Inf(1)},
		{"(0 - 10) / 0", math.Inf(-1)},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"8 - 4 - 2", 2},
		{"8 / 4 / 2", 1},
	}
	for i, test := range tests {
		n, err := run(t, "function main() { "+test.input+"; }")
		if err != nil {
			t.Errorf("tests[%d] (%q): unexpected error %s", i, test.input, err)
			continue
		}
		if float64(n) != test.expected {
			t.Errorf("tests[%d] (%q): expected=%v, got=%v", i, test.input, test.expected, n)
		}
	}
	n, err := run(t, "function main() { 0 / 0; }")
	if err != nil || !math.IsNaN(float64(n)) {
		t.Errorf("expected 0 / 0 to be NaN, got=%v (%v)", n, err)
	}
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{`function add(a, b) { a + b; }
		  function main() { add(2, 3); }`, 5},
		// the value of a body is its last statement
		{`function main() { 1; 2; 3; }`, 3},
		// top-level functions may be declared after their callers
		{`function main() { twice(4); }
		  function twice(x) { x * 2; }`, 8},
		// parameters shadow globals of the same name
		{`function x() { 1; }
		  function f(x) { x; }
		  function main() { f(2); }`, 2},
		{`function x() { 1; }
		  function f(x) { x; }
		  function main() { f(2); x(); }`, 1},
		// closures escape the call that created them
		{`function adder(x) { function add(y) { x + y; } add; }
		  function main() { adder(2)(3); }`, 5},
		{`function adder(x) { function add(y) { x + y; } add; }
		  function apply(f, v) { f(v); }
		  function main() { apply(adder(10), 1) + apply(adder(20), 1); }`, 32},
		// nested functions see the declarations before them
		{`function outer(n) { function inner(k) { k; } function self() { inner(n); } self(); }
		  function main() { outer(7); }`, 7},
		// a later declaration of the same name wins
		{`function f() { 1; }
		  function f() { 2; }
		  function main() { f(); }`, 2},
		{`function f() { 1; }
		  function main() { function f() { 3; } f(); }`, 3},
	}
	for i, test := range tests {
		n, err := run(t, test.input)
		if err != nil {
			t.Errorf("tests[%d] (%q): unexpected error %s", i, test.input, err)
			continue
		}
		if float64(n) != test.expected {
			t.Errorf("tests[%d] (%q): expected=%v, got=%v", i, test.input, test.expected, n)
		}
	}
}

func TestLexicalScoping(t *testing.T) {
	// f finds g through the environment it was declared in. Its caller h
	// binds g to a number; under dynamic scoping f would try to call it.
	n, err := run(t, `
function g() { 10; }
function f() { g(); }
function h(g) { f(); }
function main() { h(99); }`)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if n != 10 {
		t.Errorf("expected=10, got=%v", n)
	}

	// a closure sees the frame it was built in, not the frame it is called from
	n, err = run(t, `
function make(x) { function get() { x; } get; }
function use(x, f) { f(); }
function main() { use(100, make(1)); }`)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if n != 1 {
		t.Errorf("expected=1, got=%v", n)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  eval.ErrorKind
	}{
		{"function main() { y; }", eval.UnboundIdentifier},
		{"function f() { y; } function main() { f(); }", eval.UnboundIdentifier},
		{"function main() { main + 1; }", eval.TypeMismatch},
		{"function main() { 1 * main; }", eval.TypeMismatch},
		{"function main() { 1(); }", eval.CallNonFunction},
		{"function f() { 2; } function main() { f()(); }", eval.CallNonFunction},
		{"function add(a, b) { a + b; } function main() { add(1); }", eval.ArityMismatch},
		{"function main() { main(1); }", eval.ArityMismatch},
		{"function f() {} function main() { f(); }", eval.EmptyBody},
		{"function main() {}", eval.EmptyBody},
		{"function add(a, b) { a + b; }", eval.NoMainFunction},
		{"function mainx() { 1; } function mai() { 1; } function Main() { 1; }", eval.NoMainFunction},
		{"function main() { main; }", eval.NonNumericResult},
		{"function f(n) { f(n); } function main() { f(5); }", eval.StackExhausted},
		// the first error wins
		{"function main() { y + 1(); }", eval.UnboundIdentifier},
		{"function main() { main + y; }", eval.UnboundIdentifier},
		{"function main() { 1(y); }", eval.CallNonFunction},
		{"function f(a) { a; } function main() { f(y, 1); }", eval.UnboundIdentifier},
	}
	for i, test := range tests {
		_, err := run(t, test.input)
		if err == nil {
			t.Errorf("tests[%d] (%q): expected %s, got no error", i, test.input, test.kind)
			continue
		}
		if kind := eval.KindOf(err); kind != test.kind {
			t.Errorf("tests[%d] (%q): expected=%s, got=%s (%s)", i, test.input, test.kind, kind, err)
		}
	}
}

func TestErrorDetails(t *testing.T) {
	_, err := run(t, "function add(a, b) { a + b; }\nfunction main() { add(1); }")
	var e *eval.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected an *eval.Error, got %T %v", err, err)
	}
	if e.Kind != eval.ArityMismatch || e.Expected != 2 || e.Got != 1 || e.Name != "add" {
		t.Errorf("expected ArityMismatch(2, 1) for add, got %+v", e)
	}
	if !errors.Is(err, &eval.Error{Kind: eval.ArityMismatch}) {
		t.Errorf("expected errors.Is to match on kind")
	}
	if errors.Is(err, &eval.Error{Kind: eval.TypeMismatch}) {
		t.Errorf("expected errors.Is not to match a different kind")
	}
	expected := "test.js:2:22: ArityMismatch: add expects 2 arguments, got 1"
	if err.Error() != expected {
		t.Errorf("expected=%q, got=%q", expected, err.Error())
	}
	expected = "Error: ArityMismatch: add expects 2 arguments, got 1\n" +
		"  at test.js:2:22: [Function main]\n" +
		"  at test.js:2:1: [Program]"
	if e.String() != expected {
		t.Errorf("expected=%q, got=%q", expected, e.String())
	}

	_, err = run(t, "function main() { main - 1; }")
	if !errors.As(err, &e) || e.Op != "-" || e.Operand != eval.VT_FUNCTION {
		t.Errorf("expected TypeMismatch on - with a function operand, got %+v", err)
	}
	_, err = run(t, "function main() { x; }")
	if !errors.As(err, &e) || e.Name != "x" || !strings.Contains(err.Error(), `"x" is not defined`) {
		t.Errorf("expected UnboundIdentifier naming x, got %v", err)
	}
}

func TestStackExhausted(t *testing.T) {
	program := parse(t, `
function fact(n) { fact(n); }
function one() { 1; }
function main() { fact(5); }`)
	for _, depth := range []int{0, 50} {
		_, err := eval.Run(program, eval.Options{MaxDepth: depth})
		var e *eval.Error
		if !errors.As(err, &e) || e.Kind != eval.StackExhausted {
			t.Fatalf("depth %d: expected StackExhausted, got %v", depth, err)
		}
		limit := depth
		if limit == 0 {
			limit = eval.DefaultMaxDepth
		}
		if e.Depth != limit {
			t.Errorf("depth %d: expected limit %d, got %d", depth, limit, e.Depth)
		}
		if len(e.Trace) == 0 || len(e.Trace)+e.Elided != limit+1 {
			t.Errorf("depth %d: expected %d trace entries in total, got %d+%d", depth, limit+1, len(e.Trace), e.Elided)
		}
	}

	// the call stack unwinds fully, so the same context remains usable
	ctx := eval.NewContext("", eval.Options{MaxDepth: 10})
	globals := eval.NewEnvironment(nil)
	for _, decl := range program.Decls {
		globals.Define(decl.Name.Name, eval.NewClosure(decl, globals))
	}
	fact, _ := globals.Lookup("fact")
	if _, err := ctx.Call(fact.(*eval.Closure), []eval.Value{eval.Number(1)}); eval.KindOf(err) != eval.StackExhausted {
		t.Fatalf("expected StackExhausted, got %v", err)
	}
	one, _ := globals.Lookup("one")
	v, err := ctx.Call(one.(*eval.Closure), nil)
	if err != nil || v != eval.Number(1) {
		t.Errorf("expected 1 after unwinding, got %v (%v)", v, err)
	}
	if globals.Len() != 3 {
		t.Errorf("expected the global frame untouched, got %d bindings", globals.Len())
	}
}

func TestStackExhaustedLimits(t *testing.T) {
	// depths the Go stack could not hold are capped
	program := parse(t, "function f(n) { f(n); } function main() { f(1); }")
	_, err := eval.Run(program, eval.Options{MaxDepth: 1 << 30})
	var e *eval.Error
	if !errors.As(err, &e) || e.Kind != eval.StackExhausted || e.Depth != eval.MaxDepthLimit {
		t.Fatalf("expected StackExhausted at depth %d, got %v", eval.MaxDepthLimit, err)
	}

	// operator chains count towards the nesting limit without any calls
	chain := func(n int) *parser.Program {
		expr := parser.Expr(parser.NewNumber(1))
		for i := 0; i < n; i++ {
			expr = parser.NewBinary(parser.OP_ADD, expr, parser.NewNumber(1))
		}
		return parser.NewProgram("", parser.NewFunction("main", nil, expr))
	}
	n, err := eval.Run(chain(eval.MaxNesting-1), eval.Options{})
	if err != nil || n != eval.Number(eval.MaxNesting) {
		t.Errorf("expected %d, got %v (%v)", eval.MaxNesting, n, err)
	}
	_, err = eval.Run(chain(eval.MaxNesting), eval.Options{})
	if !errors.As(err, &e) || e.Kind != eval.StackExhausted || e.Nesting != eval.MaxNesting {
		t.Fatalf("expected StackExhausted at nesting %d, got %v", eval.MaxNesting, err)
	}
	if !strings.Contains(err.Error(), "expressions nested deeper than") {
		t.Errorf("unexpected message %q", err)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	program := parse(t, `
function adder(x) { function add(y) { x + y; } add; }
function main() { adder(1)(2) * adder(3)(4); }`)
	first, err1 := eval.Run(program, eval.Options{})
	second, err2 := eval.Run(program, eval.Options{})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors %v %v", err1, err2)
	}
	if first != 21 || first != second {
		t.Errorf("expected 21 twice, got %v and %v", first, second)
	}

	broken := parse(t, "function main() { nope; }")
	_, err1 = eval.Run(broken, eval.Options{})
	_, err2 = eval.Run(broken, eval.Options{})
	if err1.Error() != err2.Error() {
		t.Errorf("expected identical errors, got %q and %q", err1, err2)
	}
}

func TestHandBuiltProgram(t *testing.T) {
	add := parser.NewFunction("add", []string{"a", "b"},
		parser.NewBinary(parser.OP_ADD, parser.NewIdentifier("a"), parser.NewIdentifier("b")))
	main := parser.NewFunction("main", nil,
		parser.NewCall(parser.NewIdentifier("add"), parser.NewNumber(2), parser.NewNumber(3)))

	n, err := eval.Run(parser.NewProgram("", add, main), eval.Options{})
	if err != nil || n != 5 {
		t.Errorf("expected 5, got %v (%v)", n, err)
	}
	_, err = eval.Run(parser.NewProgram("", add), eval.Options{})
	if eval.KindOf(err) != eval.NoMainFunction {
		t.Errorf("expected NoMainFunction, got %v", err)
	}
	if err.Error() != `NoMainFunction: no function named "main"` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCallOrder(t *testing.T) {
	program := parse(t, `
function a() { 1; }
function b() { 2; }
function h(x, y) { x - y; }
function g() { h; }
function main() { a() + b(); g()(a(), b()); }`)
	var calls []string
	var depths []int
	var runID string
	opts := eval.Options{
		RunID: "run-1",
		Trace: func(ev eval.TraceEvent) {
			runID = ev.RunID
			if ev.Event == eval.TraceCallStart {
				calls = append(calls, ev.Function)
				depths = append(depths, ev.Depth)
			}
		},
	}
	n, err := eval.Run(program, opts)
	if err != nil || n != -1 {
		t.Fatalf("expected -1, got %v (%v)", n, err)
	}
	expected := []string{"main", "a", "b", "g", "a", "b", "h"}
	if strings.Join(calls, " ") != strings.Join(expected, " ") {
		t.Errorf("expected calls %v, got %v", expected, calls)
	}
	for i, d := range []int{1, 2, 2, 2, 2, 2, 2} {
		if depths[i] != d {
			t.Errorf("calls[%d] (%s): expected depth %d, got %d", i, calls[i], d, depths[i])
		}
	}
	if runID != "run-1" {
		t.Errorf("expected run id on events, got %q", runID)
	}
}

func TestTraceEvents(t *testing.T) {
	program := parse(t, "function id(x) { x; }\nfunction main() { id(4); y; }")
	var events []eval.TraceEvent
	_, err := eval.Run(program, eval.Options{Trace: func(ev eval.TraceEvent) { events = append(events, ev) }})
	if eval.KindOf(err) != eval.UnboundIdentifier {
		t.Fatalf("expected UnboundIdentifier, got %v", err)
	}
	kinds := []eval.TraceEventType{
		eval.TraceRunStart, eval.TraceCallStart, eval.TraceCallStart,
		eval.TraceCallEnd, eval.TraceCallEnd, eval.TraceRunEnd,
	}
	if len(events) != len(kinds) {
		t.Fatalf("expected %d events, got %d: %+v", len(kinds), len(events), events)
	}
	for i, kind := range kinds {
		if events[i].Event != kind {
			t.Errorf("events[%d]: expected=%s, got=%s", i, kind, events[i].Event)
		}
	}
	if events[2].Args[0] != "4" || events[3].Result != "4" {
		t.Errorf("expected id called with 4 and returning 4, got %+v %+v", events[2], events[3])
	}
	if events[4].Error != "UnboundIdentifier" || events[5].Error != "UnboundIdentifier" {
		t.Errorf("expected the error kind on the closing events, got %+v %+v", events[4], events[5])
	}
}

// utils

func parse(t *testing.T, input string) *parser.Program {
	t.Helper()
	program, errs := parser.ParseProgram("test.js", input)
	if !noErrors(t, "parser", errs) {
		t.FailNow()
	}
	return program
}

func run(t *testing.T, input string) (eval.Number, error) {
	t.Helper()
	return eval.Run(parse(t, input), eval.Options{})
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
