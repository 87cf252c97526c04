package eval

import (
	"fmt"
	"slowjs/lexer"
	"slowjs/parser"
	"time"
)

// DefaultMaxDepth is the call depth at which evaluation fails with
// StackExhausted when Options.MaxDepth is unset.
const DefaultMaxDepth = 10000

// MaxDepthLimit caps Options.MaxDepth so that StackExhausted is always
// reported before the Go stack runs out.
const MaxDepthLimit = 100000

// MaxNesting bounds the number of Evaluate calls active at once, across
// all frames. Parsed programs are at most 2*parser.MaxNesting deep, so
// it only stops hand-built trees and deep recursion.
const MaxNesting = 2 * parser.MaxNesting

type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceCallStart TraceEventType = "call_start"
	TraceCallEnd   TraceEventType = "call_end"
)

// TraceEvent is emitted to Options.Trace as evaluation proceeds.
type TraceEvent struct {
	Timestamp time.Time      `json:"ts"`
	RunID     string         `json:"runId,omitempty"`
	Event     TraceEventType `json:"event"`
	Function  string         `json:"function,omitempty"`
	Depth     int            `json:"depth"`
	Args      []string       `json:"args,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type Options struct {
	// MaxDepth bounds the number of nested calls; zero or less means
	// DefaultMaxDepth. Values above MaxDepthLimit mean MaxDepthLimit.
	MaxDepth int
	// Trace, when set, receives call and run events.
	Trace func(TraceEvent)
	// RunID is copied onto every trace event.
	RunID string
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth <= 0:
		return DefaultMaxDepth
	case o.MaxDepth > MaxDepthLimit:
		return MaxDepthLimit
	}
	return o.MaxDepth
}

// Context holds the state of one evaluation: the call stack used for
// depth limits and error traces. Environments are passed explicitly;
// the Context never holds a current scope.
type Context struct {
	filename string
	opts     Options
	stack    []*Closure
	nesting  int // active Evaluate calls
}

func NewContext(filename string, opts Options) *Context {
	return &Context{
		filename: filename,
		opts:     opts,
		stack:    make([]*Closure, 0, 8),
	}
}

func (ctx *Context) emit(event TraceEvent) {
	if ctx.opts.Trace == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RunID = ctx.opts.RunID
	ctx.opts.Trace(event)
}

// ==========
// Statements
// ==========

// EvaluateBlock evaluates stmts in order in env; the value of the
// block is the value of the last statement.
func (ctx *Context) EvaluateBlock(stmts []parser.Stmt, env *Environment) (Value, error) {
	if len(stmts) == 0 {
		e := &Error{Kind: EmptyBody}
		tok := lexer.Token{}
		if len(ctx.stack) > 0 {
			fn := ctx.stack[len(ctx.stack)-1]
			e.Name = fn.Name()
			tok = fn.Node().Tok()
		}
		return nil, ctx.raise(e, tok)
	}
	var rv Value
	for _, stmt := range stmts {
		v, err := ctx.evalStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		rv = v
	}
	return rv, nil
}

func (ctx *Context) evalStmt(stmt parser.Stmt, env *Environment) (Value, error) {
	switch node := stmt.(type) {
	case *parser.FunctionDeclaration:
		return ctx.evalDeclaration(node, env), nil
	case parser.Expr:
		return ctx.Evaluate(node, env)
	}
	panic(fmt.Sprintf("unhandled node %#+v", stmt))
}

// evalDeclaration binds a closure over env under the declared name.
func (ctx *Context) evalDeclaration(node *parser.FunctionDeclaration, env *Environment) *Closure {
	fn := NewClosure(node, env)
	env.Define(node.Name.Name, fn)
	return fn
}

// ===========
// Expressions
// ===========

func (ctx *Context) Evaluate(expr parser.Expr, env *Environment) (Value, error) {
	if ctx.nesting >= MaxNesting {
		return nil, ctx.raise(&Error{Kind: StackExhausted, Nesting: MaxNesting}, expr.Tok())
	}
	ctx.nesting++
	defer func() { ctx.nesting-- }()
	switch node := expr.(type) {
	case *parser.NumberLiteral:
		return Number(node.Value), nil
	case *parser.Identifier:
		return ctx.evalIdentifier(node, env)
	case *parser.Binary:
		return ctx.evalBinary(node, env)
	case *parser.Call:
		return ctx.evalCall(node, env)
	}
	panic(fmt.Sprintf("unhandled node %#+v", expr))
}

func (ctx *Context) evalIdentifier(node *parser.Identifier, env *Environment) (Value, error) {
	value, ok := env.Lookup(node.Name)
	if !ok {
		return nil, ctx.raise(&Error{Kind: UnboundIdentifier, Name: node.Name}, node.Tok())
	}
	return value, nil
}

func (ctx *Context) evalBinary(node *parser.Binary, env *Environment) (Value, error) {
	left, err := ctx.Evaluate(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ctx.Evaluate(node.Right, env)
	if err != nil {
		return nil, err
	}
	l, ok := left.(Number)
	if !ok {
		return nil, ctx.typeMismatch(node, left)
	}
	r, ok := right.(Number)
	if !ok {
		return nil, ctx.typeMismatch(node, right)
	}
	switch node.Op {
	case parser.OP_ADD:
		return l + r, nil
	case parser.OP_SUB:
		return l - r, nil
	case parser.OP_MUL:
		return l * r, nil
	case parser.OP_DIV:
		// IEEE semantics: x/0 is ±Inf and 0/0 is NaN.
		return l / r, nil
	}
	panic(fmt.Sprintf("unhandled operator %v", node.Op))
}

func (ctx *Context) typeMismatch(node *parser.Binary, operand Value) error {
	return ctx.raise(&Error{
		Kind:    TypeMismatch,
		Op:      node.Op.String(),
		Operand: operand.Type(),
	}, node.Tok())
}

func (ctx *Context) evalCall(node *parser.Call, env *Environment) (Value, error) {
	callee, err := ctx.Evaluate(node.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Closure)
	if !ok {
		return nil, ctx.raise(&Error{Kind: CallNonFunction, Name: node.Callee.String()}, node.Tok())
	}
	args := make([]Value, len(node.Args))
	for i, argNode := range node.Args {
		arg, err := ctx.Evaluate(argNode, env)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return ctx.call(fn, args, node.Tok())
}

// =============
// Call protocol
// =============

// Call invokes fn with already-evaluated arguments.
func (ctx *Context) Call(fn *Closure, args []Value) (Value, error) {
	return ctx.call(fn, args, fn.Node().Tok())
}

// call runs fn in a new frame whose parent is the frame fn captured,
// never the caller's. tok is the call site, used for error traces.
func (ctx *Context) call(fn *Closure, args []Value, tok lexer.Token) (Value, error) {
	if len(args) != fn.Arity() {
		return nil, ctx.raise(&Error{
			Kind:     ArityMismatch,
			Name:     fn.Name(),
			Expected: fn.Arity(),
			Got:      len(args),
		}, tok)
	}
	if ctx.depth() >= ctx.opts.maxDepth() {
		return nil, ctx.raise(&Error{Kind: StackExhausted, Name: fn.Name(), Depth: ctx.opts.maxDepth()}, tok)
	}
	env := fn.Env().Child()
	for i, name := range fn.params {
		env.Define(name, args[i])
	}

	ctx.pushFunc(fn)
	if ctx.opts.Trace != nil {
		ctx.emit(TraceEvent{Event: TraceCallStart, Function: fn.Name(), Depth: ctx.depth(), Args: inspectAll(args)})
	}
	rv, err := ctx.EvaluateBlock(fn.Body(), env)
	if ctx.opts.Trace != nil {
		end := TraceEvent{Event: TraceCallEnd, Function: fn.Name(), Depth: ctx.depth()}
		if err != nil {
			end.Error = KindOf(err).String()
		} else {
			end.Result = Inspect(rv)
		}
		ctx.emit(end)
	}
	ctx.popFunc()

	if err != nil {
		return nil, ctx.addContext(err, tok)
	}
	return rv, nil
}

func inspectAll(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Inspect(v)
	}
	return out
}
