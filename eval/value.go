package eval

import (
	"slowjs/parser"
	"strconv"
)

type ValueType uint8

const (
	_ = ValueType(iota)
	VT_NUMBER
	VT_FUNCTION
)

func (t ValueType) String() string {
	switch t {
	case VT_NUMBER:
		return "number"
	case VT_FUNCTION:
		return "function"
	}
	return "ValueType(" + strconv.Itoa(int(t)) + ")"
}

// Value is either a Number or a *Closure. The unexported marker keeps
// other packages from adding variants, so a type switch over the two
// is exhaustive.
type Value interface {
	Type() ValueType
	value()
}

type Number float64

// Closure pairs a function declaration with the environment that was
// active where the declaration was evaluated. Nothing mutates a
// Closure once it has been built.
type Closure struct {
	node   *parser.FunctionDeclaration
	params []string
	env    *Environment
}

func NewClosure(node *parser.FunctionDeclaration, env *Environment) *Closure {
	return &Closure{
		node:   node,
		params: node.ParamNames(),
		env:    env,
	}
}

func (v Number) Type() ValueType   { return VT_NUMBER }
func (v *Closure) Type() ValueType { return VT_FUNCTION }

func (v Number) value()   {}
func (v *Closure) value() {}

func (c *Closure) Name() string { return c.node.Name.Name }
func (c *Closure) Arity() int   { return len(c.params) }

// Params returns a copy of the parameter names.
func (c *Closure) Params() []string {
	return append([]string(nil), c.params...)
}

func (c *Closure) Body() []parser.Stmt { return c.node.Body }
func (c *Closure) Env() *Environment   { return c.env }

// Node returns the declaration the closure was built from.
func (c *Closure) Node() *parser.FunctionDeclaration { return c.node }
