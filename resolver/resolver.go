// Package resolver implements a static check of a program before it
// runs: identifiers that can never resolve, duplicate parameter names,
// empty function bodies and a missing entry point. The evaluator reports
// the same problems at run time; the resolver finds them all at once,
// without running anything.
package resolver

import (
	"errors"
	"fmt"
	"slowjs/lexer"
	"slowjs/parser"
)

var TooManyErrors = errors.New("too many errors")

// maxErrors is the number of errors after which further ones are
// dropped and TooManyErrors is reported instead.
const maxErrors = 10

type ResolverError struct {
	Filename string
	Token    lexer.Token
	Message  string
}

func (re ResolverError) Error() string { return re.String() }
func (re ResolverError) String() string {
	if re.Token.Line == 0 {
		return fmt.Sprintf("%s: %s", re.Filename, re.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", re.Filename, re.Token.Line, re.Token.Column, re.Message)
}

// Scope maps a name to whether it is already bound at the point being
// resolved. Nested declarations appear as false until the statement
// declaring them has been passed.
type Scope map[string]bool

type Resolver struct {
	program     *parser.Program
	scopes      []Scope
	Errors      []error
	interactive bool // set by ResolveOne
}

func New(program *parser.Program) *Resolver {
	r := &Resolver{
		program: program,
		scopes:  []Scope{},
		Errors:  []error{},
	}
	r.push() // the global scope.
	for _, decl := range program.Decls {
		r.scopes[0][decl.Name.Name] = true
	}
	return r
}

func (r *Resolver) AddGlobals(globals []string) {
	for _, x := range globals {
		r.scopes[0][x] = true
	}
}

func (r *Resolver) curr() Scope { return r.scopes[len(r.scopes)-1] }
func (r *Resolver) push()       { r.scopes = append(r.scopes, Scope{}) }
func (r *Resolver) pop()        { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) full() bool { return len(r.Errors) > maxErrors }

func (r *Resolver) err(tok lexer.Token, msg string, args ...interface{}) {
	if r.full() {
		return
	}
	r.Errors = append(r.Errors, ResolverError{
		Filename: r.program.Filename,
		Token:    tok,
		Message:  fmt.Sprintf(msg, args...),
	})
	if len(r.Errors) == maxErrors {
		r.Errors = append(r.Errors, TooManyErrors)
	}
}

// ResolveOne resolves a single statement against the global scope;
// it is mainly for interactive usage, where the statement runs as the
// body of an anonymous function.
func (r *Resolver) ResolveOne(stmt parser.Stmt) {
	if len(r.scopes) != 1 {
		panic("resolver: ResolveOne called while resolving")
	}
	r.interactive = true
	if decl, ok := stmt.(*parser.FunctionDeclaration); ok {
		r.scopes[0][decl.Name.Name] = true
	}
	r.resolveBody([]parser.Stmt{stmt}, nil)
}

// Resolve resolves the whole program.
// This method can only be called once.
func (r *Resolver) Resolve() {
	if _, ok := r.program.Lookup("main"); !ok {
		r.err(lexer.Token{}, `no function named "main"`)
	}
	for _, decl := range r.program.Decls {
		r.resolveFunction(decl)
		if r.full() {
			break
		}
	}
	if len(r.scopes) != 1 {
		panic("something gone wrong!")
	}
}

func (r *Resolver) resolveFunction(node *parser.FunctionDeclaration) {
	if len(node.Body) == 0 {
		r.err(node.Name.Tok(), "function %q has an empty body", node.Name.Name)
	}
	r.resolveBody(node.Body, node.Params)
}

// resolveBody opens the scope of one call frame: the parameters, then
// the nested declarations in statement order.
func (r *Resolver) resolveBody(body []parser.Stmt, params []*parser.Identifier) {
	r.push()
	scope := r.curr()
	for _, p := range params {
		if _, ok := scope[p.Name]; ok {
			r.err(p.Tok(), "duplicate parameter %q", p.Name)
		}
		scope[p.Name] = true
	}
	for _, stmt := range body {
		if decl, ok := stmt.(*parser.FunctionDeclaration); ok {
			if _, ok := scope[decl.Name.Name]; !ok {
				scope[decl.Name.Name] = false
			}
		}
	}
	for _, stmt := range body {
		r.resolveStmt(stmt)
	}
	r.pop()
}

func (r *Resolver) resolveStmt(stmt parser.Stmt) {
	switch node := stmt.(type) {
	case *parser.FunctionDeclaration:
		// bound before its body runs, so it may call itself
		r.curr()[node.Name.Name] = true
		r.resolveFunction(node)
	case parser.Expr:
		r.resolveExpr(node)
	default:
		panic(fmt.Sprintf("unhandled node: %#+v", stmt))
	}
}

func (r *Resolver) resolveExpr(expr parser.Expr) {
	switch node := expr.(type) {
	case *parser.NumberLiteral:
		return
	case *parser.Identifier:
		r.lookup(node)
	case *parser.Binary:
		r.resolveExpr(node.Left)
		r.resolveExpr(node.Right)
	case *parser.Call:
		r.resolveExpr(node.Callee)
		for _, arg := range node.Args {
			r.resolveExpr(arg)
		}
	default:
		panic(fmt.Sprintf("unhandled node: %#+v", node))
	}
}

func (r *Resolver) lookup(node *parser.Identifier) {
	name := node.Name
	curr := len(r.scopes) - 1
	for i := curr; i >= 0; i-- {
		bound, ok := r.scopes[i][name]
		if !ok {
			continue
		}
		// a nested declaration later in the current frame is not bound
		// yet. In an enclosing frame it may well be by the time this
		// code runs, so we let that through.
		if !bound && i == curr {
			r.err(node.Tok(), "%q is used before its declaration", name)
		}
		return
	}
	// interactively, a function body may refer to a global that a
	// later input declares before the function is called.
	if r.interactive && curr > 1 {
		return
	}
	r.err(node.Tok(), "undefined variable %q", name)
}
