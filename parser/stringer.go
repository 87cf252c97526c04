package parser

import (
	"bytes"
	"strconv"
	"strings"
)

func (node *Program) String() string {
	decls := []string{}
	for _, decl := range node.Decls {
		decls = append(decls, decl.String())
	}
	return strings.Join(decls, "\n")
}

// Declarations

func (node *FunctionDeclaration) String() string {
	var buf bytes.Buffer
	buf.WriteString("function ")
	buf.WriteString(node.Name.String())
	buf.WriteString("(")
	buf.WriteString(strings.Join(node.ParamNames(), ", "))
	buf.WriteString(") {")
	for _, stmt := range node.Body {
		buf.WriteString(stmt.String())
		if _, ok := stmt.(*FunctionDeclaration); !ok {
			buf.WriteString(";")
		}
	}
	buf.WriteString("}")
	return buf.String()
}

// Expressions

func (node *Binary) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	buf.WriteString(node.Left.String())
	buf.WriteString(" ")
	buf.WriteString(node.Op.String())
	buf.WriteString(" ")
	buf.WriteString(node.Right.String())
	buf.WriteString(")")
	return buf.String()
}

func (node *Call) String() string {
	var buf bytes.Buffer
	buf.WriteString(node.Callee.String())
	buf.WriteString("(")
	for i, arg := range node.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.String())
	}
	buf.WriteString(")")
	return buf.String()
}

func (node *Identifier) String() string    { return node.Name }
func (node *NumberLiteral) String() string { return formatNumber(node.Value) }

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
