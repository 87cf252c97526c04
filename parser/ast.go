package parser

import "slowjs/lexer"

type Node interface {
	String() string
	Tok() lexer.Token
	node()
}

// Stmt is anything that may appear in a function body.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression; every expression is also a statement, whose
// value is the value of the expression.
type Expr interface {
	Stmt
	expr()
}

type Operator uint8

const (
	_ = Operator(iota)
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
)

var operatorTokens = map[lexer.TokenType]Operator{
	lexer.PLUS:  OP_ADD,
	lexer.MINUS: OP_SUB,
	lexer.STAR:  OP_MUL,
	lexer.SLASH: OP_DIV,
}

func (op Operator) String() string {
	switch op {
	case OP_ADD:
		return "+"
	case OP_SUB:
		return "-"
	case OP_MUL:
		return "*"
	case OP_DIV:
		return "/"
	}
	return "?"
}

func (op Operator) tokenType() lexer.TokenType {
	for typ, o := range operatorTokens {
		if o == op {
			return typ
		}
	}
	return 0
}

type (
	Identifier struct {
		Token lexer.Token
		Name  string
	}

	NumberLiteral struct {
		Token lexer.Token
		Value float64
	}

	Binary struct {
		Token lexer.Token // the operator token
		Op    Operator
		Left  Expr
		Right Expr
	}

	Call struct {
		Token  lexer.Token // the '(' token
		Callee Expr
		Args   []Expr
	}

	FunctionDeclaration struct {
		Token  lexer.Token // the 'function' keyword
		Name   *Identifier
		Params []*Identifier
		Body   []Stmt
	}

	Program struct {
		Filename string
		Decls    []*FunctionDeclaration
	}
)

func (node *Identifier) Tok() lexer.Token          { return node.Token }
func (node *NumberLiteral) Tok() lexer.Token       { return node.Token }
func (node *Binary) Tok() lexer.Token              { return node.Token }
func (node *Call) Tok() lexer.Token                { return node.Token }
func (node *FunctionDeclaration) Tok() lexer.Token { return node.Token }

func (node *Identifier) node()          {}
func (node *NumberLiteral) node()       {}
func (node *Binary) node()              {}
func (node *Call) node()                {}
func (node *FunctionDeclaration) node() {}

func (node *Identifier) stmt()          {}
func (node *NumberLiteral) stmt()       {}
func (node *Binary) stmt()              {}
func (node *Call) stmt()                {}
func (node *FunctionDeclaration) stmt() {}

func (node *Identifier) expr()    {}
func (node *NumberLiteral) expr() {}
func (node *Binary) expr()        {}
func (node *Call) expr()          {}

// ParamNames returns the declared parameter names in order.
func (node *FunctionDeclaration) ParamNames() []string {
	names := make([]string, len(node.Params))
	for i, p := range node.Params {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the first top-level declaration whose name is exactly name.
func (p *Program) Lookup(name string) (*FunctionDeclaration, bool) {
	for _, decl := range p.Decls {
		if decl.Name.Name == name {
			return decl, true
		}
	}
	return nil, false
}

// ============
// Constructors
// ============
//
// These build nodes without source positions, for hosts that produce
// the tree themselves rather than through the parser.

func NewIdentifier(name string) *Identifier {
	return &Identifier{
		Token: lexer.Token{Type: lexer.IDENTIFIER, Lexeme: name, Literal: name},
		Name:  name,
	}
}

func NewNumber(value float64) *NumberLiteral {
	return &NumberLiteral{
		Token: lexer.Token{Type: lexer.NUMBER, Lexeme: formatNumber(value), Literal: value},
		Value: value,
	}
}

func NewBinary(op Operator, left, right Expr) *Binary {
	return &Binary{
		Token: lexer.Token{Type: op.tokenType(), Lexeme: op.String()},
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func NewCall(callee Expr, args ...Expr) *Call {
	return &Call{
		Token:  lexer.Token{Type: lexer.LEFT_PAREN, Lexeme: "("},
		Callee: callee,
		Args:   args,
	}
}

func NewFunction(name string, params []string, body ...Stmt) *FunctionDeclaration {
	ids := make([]*Identifier, len(params))
	for i, p := range params {
		ids[i] = NewIdentifier(p)
	}
	return &FunctionDeclaration{
		Token:  lexer.Token{Type: lexer.FUNCTION, Lexeme: "function"},
		Name:   NewIdentifier(name),
		Params: ids,
		Body:   body,
	}
}

func NewProgram(filename string, decls ...*FunctionDeclaration) *Program {
	return &Program{Filename: filename, Decls: decls}
}
