package eval

import (
	"slowjs/lexer"
	"slowjs/parser"
	"slowjs/resolver"
)

// Session keeps a global environment alive across interactive inputs.
// Declarations accumulate in it; expressions are evaluated as the body
// of an anonymous zero-argument function declared at the top level.
// Each input is resolved against the session's globals before it runs.
type Session struct {
	Filename string
	opts     Options
	env      *Environment
	res      *resolver.Resolver
}

func NewSession(opts Options) *Session {
	s := &Session{
		Filename: "<stdin>",
		opts:     opts,
	}
	s.Reset()
	return s
}

// Declare binds decl in the session's global environment. Redeclaring
// a name shadows the earlier function for every later lookup, including
// lookups made from functions declared before it.
func (s *Session) Declare(decl *parser.FunctionDeclaration) *Closure {
	s.res.AddGlobals([]string{decl.Name.Name})
	return NewContext(s.Filename, s.opts).evalDeclaration(decl, s.env)
}

// Eval evaluates stmts in a fresh frame enclosed by the session's
// global environment. Unlike Run, the result may be a function.
func (s *Session) Eval(stmts []parser.Stmt) (Value, error) {
	ctx := NewContext(s.Filename, s.opts)
	return ctx.EvaluateBlock(stmts, s.env.Child())
}

// Resolve checks stmts against the session's globals without running
// them. Declarations in stmts count as globals, since Run binds them
// before evaluating anything. On errors the resolver forgets the names
// stmts declared.
func (s *Session) Resolve(stmts []parser.Stmt) []error {
	for _, stmt := range stmts {
		if decl, ok := stmt.(*parser.FunctionDeclaration); ok {
			s.res.AddGlobals([]string{decl.Name.Name})
		}
	}
	for _, stmt := range stmts {
		s.res.ResolveOne(stmt)
		if len(s.res.Errors) != 0 {
			errs := s.res.Errors
			s.res = s.newResolver()
			return errs
		}
	}
	return nil
}

func (s *Session) newResolver() *resolver.Resolver {
	res := resolver.New(&parser.Program{Filename: s.Filename})
	res.AddGlobals(s.env.Names())
	return res
}

// Run lexes, parses, resolves and evaluates one line of input.
// Declarations are bound first; any remaining expressions are then
// evaluated together and the value of the last one is returned. A line
// holding only declarations yields a nil Value.
func (s *Session) Run(input string) (Value, []error) {
	l := lexer.New(s.Filename, input)
	l.ScanTokens()
	if len(l.Errors) != 0 {
		return nil, l.Errors
	}
	p := parser.New(s.Filename, l.Tokens)
	stmts := p.ParseLine()
	if len(p.Errors) != 0 {
		return nil, p.Errors
	}
	if errs := s.Resolve(stmts); errs != nil {
		return nil, errs
	}
	exprs := []parser.Stmt{}
	for _, stmt := range stmts {
		if decl, ok := stmt.(*parser.FunctionDeclaration); ok {
			s.Declare(decl)
		} else {
			exprs = append(exprs, stmt)
		}
	}
	if len(exprs) == 0 {
		return nil, nil
	}
	rv, err := s.Eval(exprs)
	if err != nil {
		return nil, []error{err}
	}
	return rv, nil
}

// Names lists the functions declared in the session.
func (s *Session) Names() []string { return s.env.Names() }

// Lookup finds a session-level definition.
func (s *Session) Lookup(name string) (Value, bool) { return s.env.Lookup(name) }

// Reset drops every declaration.
func (s *Session) Reset() {
	s.env = NewEnvironment(nil)
	s.res = s.newResolver()
}
