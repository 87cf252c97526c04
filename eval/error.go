package eval

import (
	"bytes"
	"errors"
	"fmt"
	"slowjs/lexer"
)

// This file implements runtime error reporting. The protocol is:
//
//   1. Every call pushes its closure with ctx.pushFunc, and pops it
//      on the way out.
//
//   2. When an error is raised, ctx.raise records where it happened
//      and in which function (via ctx.currFunc()).
//
//   3. Each call the error passes back through adds the call site,
//      so the trace reads innermost first.

// maxTrace bounds the entries kept on an error; deep recursion would
// otherwise produce one entry per frame.
const maxTrace = 20

type TraceEntry struct {
	Filename string
	Line     int
	Column   int
	Context  string // e.g. [Program] or [Function add]
}

func (te TraceEntry) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", te.Filename, te.Line, te.Column, te.Context)
}

// Error is a fatal evaluation error. Only the fields relevant to Kind
// are set.
type Error struct {
	Kind     ErrorKind
	Name     string    // identifier, callee or function name
	Operand  ValueType // TypeMismatch: the offending operand type
	Op       string    // TypeMismatch: the operator
	Expected int       // ArityMismatch
	Got      int       // ArityMismatch
	Depth    int       // StackExhausted: the depth limit
	Nesting  int       // StackExhausted: the nesting limit, if that was hit instead
	Trace    []TraceEntry
	Elided   int // trace entries dropped beyond maxTrace
}

// Message describes the error without its kind or position.
func (e *Error) Message() string {
	switch e.Kind {
	case UnboundIdentifier:
		return fmt.Sprintf("%q is not defined", e.Name)
	case TypeMismatch:
		return fmt.Sprintf("operator %s expects numbers, got a %s", e.Op, e.Operand)
	case CallNonFunction:
		return fmt.Sprintf("%s is not a function", e.Name)
	case ArityMismatch:
		return fmt.Sprintf("%s expects %d arguments, got %d", e.Name, e.Expected, e.Got)
	case EmptyBody:
		return fmt.Sprintf("function %s has an empty body", e.Name)
	case NoMainFunction:
		return `no function named "main"`
	case NonNumericResult:
		return fmt.Sprintf("main returned a %s, expected a number", e.Operand)
	case StackExhausted:
		if e.Nesting > 0 {
			return fmt.Sprintf("expressions nested deeper than %d", e.Nesting)
		}
		return fmt.Sprintf("maximum call depth of %d exceeded", e.Depth)
	}
	return "unknown error"
}

// Error returns the one-line form: position (when known), kind and message.
func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message()
	if len(e.Trace) > 0 && e.Trace[0].Line > 0 {
		te := e.Trace[0]
		return fmt.Sprintf("%s:%d:%d: %s", te.Filename, te.Line, te.Column, msg)
	}
	return msg
}

// String returns the message followed by the call trace.
func (e *Error) String() string {
	var buf bytes.Buffer
	buf.WriteString("Error: ")
	buf.WriteString(e.Kind.String())
	buf.WriteString(": ")
	buf.WriteString(e.Message())
	for _, te := range e.Trace {
		buf.WriteString("\n  at ")
		buf.WriteString(te.String())
	}
	if e.Elided > 0 {
		buf.WriteString(fmt.Sprintf("\n  ... %d more", e.Elided))
	}
	return buf.String()
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: ArityMismatch}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the evaluation error wrapped by err, or
// zero if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// raise stamps a new error with the location it was raised at.
func (ctx *Context) raise(e *Error, tok lexer.Token) *Error {
	ctx.addContext(e, tok)
	return e
}

// addContext appends the current function and token position to the
// trace of err, if err is an evaluation error.
func (ctx *Context) addContext(err error, tok lexer.Token) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	if len(e.Trace) >= maxTrace {
		e.Elided++
		return e
	}
	e.Trace = append(e.Trace, TraceEntry{
		Filename: ctx.filename,
		Line:     tok.Line,
		Column:   tok.Column,
		Context:  ctx.currFunc(),
	})
	return e
}
