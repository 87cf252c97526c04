package eval

import "strconv"

type ErrorKind uint8

const (
	_ = ErrorKind(iota)
	UnboundIdentifier
	TypeMismatch
	CallNonFunction
	ArityMismatch
	EmptyBody
	NoMainFunction
	NonNumericResult
	StackExhausted
)

var errorKindNames = [...]string{
	UnboundIdentifier: "UnboundIdentifier",
	TypeMismatch:      "TypeMismatch",
	CallNonFunction:   "CallNonFunction",
	ArityMismatch:     "ArityMismatch",
	EmptyBody:         "EmptyBody",
	NoMainFunction:    "NoMainFunction",
	NonNumericResult:  "NonNumericResult",
	StackExhausted:    "StackExhausted",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) && errorKindNames[k] != "" {
		return errorKindNames[k]
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// call stack bookkeeping for error traces. The bottom of the stack is
// the program itself.

func (ctx *Context) pushFunc(fn *Closure) { ctx.stack = append(ctx.stack, fn) }
func (ctx *Context) popFunc()             { ctx.stack = ctx.stack[:len(ctx.stack)-1] }
func (ctx *Context) depth() int           { return len(ctx.stack) }

func (ctx *Context) currFunc() string {
	if len(ctx.stack) == 0 {
		return "[Program]"
	}
	return "[Function " + ctx.stack[len(ctx.stack)-1].Name() + "]"
}
