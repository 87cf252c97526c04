package parser

import (
	"fmt"
	"slowjs/lexer"
)

// Represents a parsing error. We use this internally to signal
// that we cannot continue parsing some declaration/expression.
type ParserError struct {
	Filename string
	Token    lexer.Token
	Message  string
}

func (pe ParserError) Error() string { return pe.String() }
func (pe ParserError) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", pe.Filename, pe.Token.Line, pe.Token.Column, pe.Message)
}

// error records an error at the given token and unwinds to the
// nearest declaration boundary.
func (p *Parser) error(tok lexer.Token, s string, args ...interface{}) {
	err := ParserError{
		Filename: p.filename,
		Token:    tok,
		Message:  fmt.Sprintf(s, args...),
	}
	p.Errors = append(p.Errors, err)
	panic(err)
}

func (p *Parser) expect(typ lexer.TokenType, s string, args ...interface{}) lexer.Token {
	if !p.check(typ) {
		p.error(p.peek(), s, args...)
	}
	return p.consume()
}

// synchronize synchronizes the parser by discarding tokens
// until we reach a token which starts a declaration or follows
// the end of a statement. This means that cascading errors are
// discarded, and we still report as many errors as possible.
// Inside a block the closing } is left for the block to consume.
func (p *Parser) synchronize(inBlock bool) {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.FUNCTION:
			return
		case lexer.SEMICOLON:
			p.consume()
			return
		case lexer.RIGHT_BRACE:
			if !inBlock {
				p.consume()
			}
			return
		}
		p.consume()
	}
}

// skipToDeclaration discards tokens until the next "function" keyword;
// at the top level nothing else can start a declaration.
func (p *Parser) skipToDeclaration() {
	for !p.isAtEnd() && !p.check(lexer.FUNCTION) {
		p.consume()
	}
}
