package ast

import (
	"fmt"
	"strconv"
	"strings"
)

var binaryOperatorText = map[BinaryOperator]string{
	BinaryAdd:          "+",
	BinarySub:          "-",
	BinaryMul:          "*",
	BinaryDiv:          "/",
	BinaryMod:          "%",
	BinaryAnd:          "AND",
	BinaryOr:           "OR",
	BinaryLess:         "<",
	BinaryLessEqual:    "<=",
	BinaryEqual:        "==",
	BinaryGreaterEqual: ">=",
	BinaryGreater:      ">",
}

// Render returns the debugging form of a node. The output is deterministic
// but is not meant to be parsed back.
func Render(node Node) string {
	var b strings.Builder
	render(&b, node)
	return b.String()
}

func render(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Identifier:
		if n == nil {
			b.WriteString("<nil>")
			return
		}
		b.WriteString(n.Name)
	case *StringLiteral:
		b.WriteString(strconv.Quote(n.Value))
	case *IntegerLiteral:
		if n.Value == nil {
			b.WriteString("0")
			return
		}
		b.WriteString(n.Value.String())
	case *BooleanLiteral:
		if n.Value {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
	case *UnaryExpression:
		b.WriteString("NOT ")
		render(b, n.Operand)
	case *BinaryExpression:
		op, ok := binaryOperatorText[n.Operator]
		if !ok {
			op = string(n.Operator)
		}
		b.WriteByte('(')
		render(b, n.Left)
		fmt.Fprintf(b, " %s ", op)
		render(b, n.Right)
		b.WriteByte(')')
	case *ReferenceExpression:
		b.WriteByte('&')
		render(b, n.Target)
	case *DereferenceExpression:
		b.WriteByte('*')
		render(b, n.Pointer)
	case *FunctionExpression:
		b.WriteString("FUNCTION[")
		for idx, param := range n.Params {
			if idx > 0 {
				b.WriteString(", ")
			}
			render(b, param)
		}
		b.WriteString("] ")
		render(b, n.Body)
	case *FunctionCall:
		b.WriteString("CALL ")
		render(b, n.Callee)
		b.WriteByte('[')
		for idx, arg := range n.Arguments {
			if idx > 0 {
				b.WriteString(", ")
			}
			render(b, arg)
		}
		b.WriteByte(']')
	case *Declaration:
		render(b, n.ID)
		b.WriteString(" := ")
		render(b, n.Value)
	case *Assignment:
		render(b, n.Target)
		b.WriteString(" = ")
		render(b, n.Value)
	case *ExpressionStatement:
		render(b, n.Expression)
	case *Block:
		if n == nil {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, stmt := range n.Body {
			for _, line := range strings.Split(Render(stmt), "\n") {
				b.WriteString("    ")
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('}')
	case *Definition:
		b.WriteString("DEFINE ")
		render(b, n.Declaration)
	case *Module:
		for idx, def := range n.Definitions {
			if idx > 0 {
				b.WriteByte('\n')
			}
			render(b, def)
		}
	default:
		fmt.Fprintf(b, "<%s>", node.NodeType())
	}
}
