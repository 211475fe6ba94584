package ast

// Walk visits node and its children depth-first, parents before children.
// Returning false from visit skips the node's children.
func Walk(node Node, visit func(Node) bool) {
	if isNilNode(node) || !visit(node) {
		return
	}
	switch n := node.(type) {
	case *UnaryExpression:
		Walk(n.Operand, visit)
	case *BinaryExpression:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *ReferenceExpression:
		Walk(n.Target, visit)
	case *DereferenceExpression:
		Walk(n.Pointer, visit)
	case *FunctionExpression:
		Walk(n.ID, visit)
		for _, param := range n.Params {
			Walk(param, visit)
		}
		Walk(n.Body, visit)
	case *FunctionCall:
		Walk(n.Callee, visit)
		for _, arg := range n.Arguments {
			Walk(arg, visit)
		}
	case *Declaration:
		Walk(n.ID, visit)
		Walk(n.Value, visit)
	case *Assignment:
		Walk(n.Target, visit)
		Walk(n.Value, visit)
	case *ExpressionStatement:
		Walk(n.Expression, visit)
	case *Block:
		for _, stmt := range n.Body {
			Walk(stmt, visit)
		}
	case *Definition:
		Walk(n.Declaration, visit)
	case *Module:
		for _, def := range n.Definitions {
			Walk(def, visit)
		}
	}
}

func isNilNode(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Identifier:
		return n == nil
	case *StringLiteral:
		return n == nil
	case *IntegerLiteral:
		return n == nil
	case *BooleanLiteral:
		return n == nil
	case *UnaryExpression:
		return n == nil
	case *BinaryExpression:
		return n == nil
	case *ReferenceExpression:
		return n == nil
	case *DereferenceExpression:
		return n == nil
	case *FunctionExpression:
		return n == nil
	case *FunctionCall:
		return n == nil
	case *Declaration:
		return n == nil
	case *Assignment:
		return n == nil
	case *ExpressionStatement:
		return n == nil
	case *Block:
		return n == nil
	case *Definition:
		return n == nil
	case *Module:
		return n == nil
	default:
		return false
	}
}
