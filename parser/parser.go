package parser

import "slowjs/lexer"

type (
	unaryParser  func() Expr
	binaryParser func(Expr) Expr
)

// MaxNesting bounds how deeply expressions may nest, counting groups,
// operands and chained operators alike.
const MaxNesting = 100000

type Parser struct {
	filename      string
	tokens        []lexer.Token
	Errors        []error
	curr          int // how many we have consumed.
	depth         int // expression nesting, see nest
	unaryParsers  map[lexer.TokenType]unaryParser
	binaryParsers map[lexer.TokenType]binaryParser
	precedences   map[lexer.TokenType]int
}

const (
	PREC_LOWEST  = iota
	PREC_SUM     // +, -
	PREC_PRODUCT // *, /
	PREC_CALL    // ()
)

// ====
// init
// ====

func New(fn string, tokens []lexer.Token) *Parser {
	p := &Parser{
		filename: fn,
		tokens:   tokens,
		Errors:   []error{},
		curr:     0,
	}
	p.unaryParsers = map[lexer.TokenType]unaryParser{
		lexer.LEFT_PAREN: p.grouping,
		lexer.IDENTIFIER: p.identifier,
		lexer.NUMBER:     p.number,
	}
	// note: need to make sure that every entry in binaryParsers
	// has a corresponding entry in precedences.
	p.binaryParsers = map[lexer.TokenType]binaryParser{
		lexer.PLUS:       p.binary,
		lexer.MINUS:      p.binary,
		lexer.STAR:       p.binary,
		lexer.SLASH:      p.binary,
		lexer.LEFT_PAREN: p.call,
	}
	p.precedences = map[lexer.TokenType]int{
		lexer.PLUS:       PREC_SUM,
		lexer.MINUS:      PREC_SUM,
		lexer.STAR:       PREC_PRODUCT,
		lexer.SLASH:      PREC_PRODUCT,
		lexer.LEFT_PAREN: PREC_CALL,
	}
	return p
}

// ParseProgram lexes and parses a complete source file. All lexer
// errors, or failing that all parser errors, are returned together.
func ParseProgram(filename, source string) (*Program, []error) {
	l := lexer.New(filename, source)
	l.ScanTokens()
	if len(l.Errors) != 0 {
		return nil, l.Errors
	}
	p := New(filename, l.Tokens)
	program := p.Parse()
	if len(p.Errors) != 0 {
		return nil, p.Errors
	}
	return program, nil
}

// =====
// utils
// =====

// consume consumes one token
func (p *Parser) consume() lexer.Token {
	if !p.isAtEnd() {
		p.curr++
	}
	return p.previous()
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token { return p.tokens[p.curr-1] }

// peek returns the token to be consumed
func (p *Parser) peek() lexer.Token { return p.tokens[p.curr] }

// isAtEnd returns true if the current token is an EOF token
func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.EOF }

// check returns if the peek token matches the given type
func (p *Parser) check(t lexer.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.consume()
			return true
		}
	}
	return false
}

// ============
// entry points
// ============

// program → declaration*

func (p *Parser) Parse() *Program {
	program := &Program{Filename: p.filename, Decls: []*FunctionDeclaration{}}
	for !p.isAtEnd() {
		if decl := p.topLevel(); decl != nil {
			program.Decls = append(program.Decls, decl)
		}
	}
	return program
}

// ParseLine parses interactive input: a mix of declarations and
// expression statements. The trailing ";" of the last expression
// may be omitted.
func (p *Parser) ParseLine() []Stmt {
	stmts := []Stmt{}
	for !p.isAtEnd() {
		if stmt := p.safeStatement(false); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// ===================
// declaration parsing
// ===================
//
//   declaration → "function" IDENT "(" params? ")" block
//   params      → IDENT ( "," IDENT )*
//   block       → "{" statement* "}"
//   statement   → declaration | expression ";"
//
// Every top-level call to parse a declaration or statement has
// a recover, so that one bad statement does not stop us from
// reporting errors in the rest of the input.

func (p *Parser) topLevel() (decl *FunctionDeclaration) {
	defer func() {
		if rv := recover(); rv != nil {
			if _, ok := rv.(ParserError); ok {
				p.skipToDeclaration()
				decl = nil
				return
			}
			panic(rv)
		}
	}()
	if !p.check(lexer.FUNCTION) {
		p.error(p.peek(), "expected a function declaration, got %s", p.peek().Type)
	}
	return p.declaration()
}

func (p *Parser) declaration() *FunctionDeclaration {
	token := p.consume() // the 'function' token
	name := p.expect(lexer.IDENTIFIER, "expected a function name")
	p.expect(lexer.LEFT_PAREN, "expected ( after function name")
	params := []*Identifier{}
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			param := p.expect(lexer.IDENTIFIER, "expected a parameter name")
			params = append(params, newIdentifier(param))
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RIGHT_PAREN, "unclosed (")
	p.expect(lexer.LEFT_BRACE, "expected { before function body")
	body := []Stmt{}
	for !p.isAtEnd() && !p.check(lexer.RIGHT_BRACE) {
		if stmt := p.safeStatement(true); stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(lexer.RIGHT_BRACE, "unmatched {")
	return &FunctionDeclaration{
		Token:  token,
		Name:   newIdentifier(name),
		Params: params,
		Body:   body,
	}
}

func (p *Parser) safeStatement(inBlock bool) (stmt Stmt) {
	defer func() {
		if rv := recover(); rv != nil {
			if _, ok := rv.(ParserError); ok {
				p.synchronize(inBlock)
				stmt = nil
				return
			}
			panic(rv)
		}
	}()
	if p.check(lexer.FUNCTION) {
		return p.declaration()
	}
	return p.exprStmt(inBlock)
}

func (p *Parser) exprStmt(inBlock bool) Stmt {
	expr := p.expression()
	if !p.match(lexer.SEMICOLON) && (inBlock || !p.isAtEnd()) {
		p.error(p.peek(), "expected ; after expression")
	}
	return expr
}

// ==================
// expression parsing
// ==================

// expression matches a single expression.
func (p *Parser) expression() Expr { return p.precedence(PREC_LOWEST) }
func (p *Parser) precedence(prec int) Expr {
	depth := p.depth
	defer func() { p.depth = depth }()
	p.nest()
	unary, ok := p.unaryParsers[p.peek().Type]
	if !ok {
		p.error(p.peek(), "expected an expression, got %s", p.peek().Type)
	}
	expr := unary()
	for prec < p.peekPrecedence() {
		p.nest()
		expr = p.binaryParsers[p.peek().Type](expr)
	}
	return expr
}

// nest counts one more level of nesting. Every operator applied in the
// loop of precedence deepens the tree as well, so the tree built is at
// most 2*MaxNesting deep.
func (p *Parser) nest() {
	p.depth++
	if p.depth > MaxNesting {
		p.error(p.peek(), "expression nested too deeply")
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := p.precedences[p.peek().Type]; ok {
		return prec
	}
	return PREC_LOWEST
}

func (p *Parser) grouping() Expr {
	p.consume()
	expr := p.expression()
	p.expect(lexer.RIGHT_PAREN, "unmatched (")
	return expr
}

func (p *Parser) binary(left Expr) Expr {
	tok := p.consume()
	right := p.precedence(p.precedences[tok.Type])
	return &Binary{Token: tok, Op: operatorTokens[tok.Type], Left: left, Right: right}
}

func (p *Parser) call(callee Expr) Expr {
	tok := p.consume()
	args := []Expr{}
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			args = append(args, p.expression())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RIGHT_PAREN, "unclosed ( in call")
	return &Call{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) identifier() Expr {
	return newIdentifier(p.consume())
}

func (p *Parser) number() Expr {
	tok := p.consume()
	return &NumberLiteral{Token: tok, Value: tok.Literal.(float64)}
}

func newIdentifier(tok lexer.Token) *Identifier {
	return &Identifier{Token: tok, Name: tok.Lexeme}
}
