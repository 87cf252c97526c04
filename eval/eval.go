// Package eval implements the tree-walking evaluator: values, scope
// frames, expression and block evaluation, the call protocol and the
// program entry protocol.
package eval

import "slowjs/parser"

// EntryPoint is the name of the function a program starts at.
const EntryPoint = "main"

// Run evaluates program: every top-level declaration is bound in a fresh
// global environment, then main is called with no arguments. Each Run
// starts from a new global environment, so the same Program may be run
// any number of times.
func Run(program *parser.Program, opts Options) (Number, error) {
	ctx := NewContext(program.Filename, opts)
	ctx.emit(TraceEvent{Event: TraceRunStart})
	n, err := ctx.run(program)
	end := TraceEvent{Event: TraceRunEnd}
	if err != nil {
		end.Error = KindOf(err).String()
	} else {
		end.Result = Inspect(n)
	}
	ctx.emit(end)
	return n, err
}

func (ctx *Context) run(program *parser.Program) (Number, error) {
	globals := NewEnvironment(nil)
	for _, decl := range program.Decls {
		ctx.evalDeclaration(decl, globals)
	}

	// main is resolved through the global environment like any other
	// name, so when it is declared twice the later declaration wins.
	value, ok := globals.Lookup(EntryPoint)
	if !ok {
		return 0, &Error{Kind: NoMainFunction}
	}
	main := value.(*Closure)
	tok := main.Node().Tok()

	rv, err := ctx.call(main, nil, tok)
	if err != nil {
		return 0, err
	}
	switch rv := rv.(type) {
	case Number:
		return rv, nil
	case *Closure:
		return 0, ctx.raise(&Error{Kind: NonNumericResult, Name: EntryPoint, Operand: rv.Type()}, tok)
	}
	panic("unreachable")
}
