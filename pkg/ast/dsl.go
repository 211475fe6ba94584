package ast

import (
	"fmt"
	"math/big"
)

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(big.NewInt(value))
}

func IntBig(value *big.Int) *IntegerLiteral {
	return NewIntegerLiteral(new(big.Int).Set(value))
}

// IntStr parses a decimal literal; it panics on malformed input, like the
// other builders it is meant for hand-written trees.
func IntStr(digits string) *IntegerLiteral {
	val, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		panic(fmt.Sprintf("ast: invalid integer literal %q", digits))
	}
	return NewIntegerLiteral(val)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

// Expression helpers.

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryOperatorNot, operand)
}

func Bin(operator BinaryOperator, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Add(left, right Expression) *BinaryExpression { return Bin(BinaryAdd, left, right) }
func Sub(left, right Expression) *BinaryExpression { return Bin(BinarySub, left, right) }
func Mul(left, right Expression) *BinaryExpression { return Bin(BinaryMul, left, right) }
func Div(left, right Expression) *BinaryExpression { return Bin(BinaryDiv, left, right) }
func Mod(left, right Expression) *BinaryExpression { return Bin(BinaryMod, left, right) }
func And(left, right Expression) *BinaryExpression { return Bin(BinaryAnd, left, right) }
func Or(left, right Expression) *BinaryExpression  { return Bin(BinaryOr, left, right) }
func Lt(left, right Expression) *BinaryExpression  { return Bin(BinaryLess, left, right) }
func Le(left, right Expression) *BinaryExpression  { return Bin(BinaryLessEqual, left, right) }
func Eq(left, right Expression) *BinaryExpression  { return Bin(BinaryEqual, left, right) }
func Ge(left, right Expression) *BinaryExpression  { return Bin(BinaryGreaterEqual, left, right) }
func Gt(left, right Expression) *BinaryExpression  { return Bin(BinaryGreater, left, right) }

func Ref(target Cell) *ReferenceExpression {
	return NewReferenceExpression(target)
}

func Deref(pointer Expression) *DereferenceExpression {
	return NewDereferenceExpression(pointer)
}

func CallExpr(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func Call(name string, args ...Expression) *FunctionCall {
	return CallExpr(ID(name), args...)
}

// Fn builds a function expression whose result slot is name.
func Fn(name string, params []string, body ...Statement) *FunctionExpression {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewFunctionExpression(ID(name), ids, Body(body...))
}

// Statement helpers.

func Declare(name string, value Expression) *Declaration {
	return NewDeclaration(ID(name), value)
}

func Assign(target Cell, value Expression) *Assignment {
	return NewAssignment(target, value)
}

func Eval(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

// Body builds a block statement.
func Body(statements ...Statement) *Block {
	return NewBlock(statements)
}

// Top-level helpers.

func Const(name string, value Expression) *Definition {
	return NewDefinition(Declare(name, value))
}

func Define(name string, params []string, body ...Statement) *Definition {
	return NewDefinition(Declare(name, Fn(name, params, body...)))
}

func Prog(name string, defs ...*Definition) *Module {
	return NewModule(name, defs)
}
