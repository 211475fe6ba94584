package interpreter

import (
	"fmt"
	"math/big"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case ast.UnaryOperatorNot:
		b, ok := operand.(runtime.BoolValue)
		if !ok {
			return nil, fmt.Errorf("%w: unary ! requires bool operand, got %s", runtime.ErrTypeMismatch, operand.Kind())
		}
		return runtime.BoolValue{Val: !b.Val}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", expr.Operator)
	}
}

// evaluateBinaryExpression always evaluates both operands, left first.
func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOperator(expr.Operator, left, right)
}

func applyBinaryOperator(op ast.BinaryOperator, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.BinaryAdd, ast.BinarySub, ast.BinaryMul, ast.BinaryDiv, ast.BinaryMod:
		lv, lok := left.(runtime.IntegerValue)
		rv, rok := right.(runtime.IntegerValue)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: operator %s requires integer operands, got %s and %s", runtime.ErrTypeMismatch, op, left.Kind(), right.Kind())
		}
		return evaluateArithmetic(op, lv.Val, rv.Val), nil
	case ast.BinaryAnd, ast.BinaryOr,
		ast.BinaryLess, ast.BinaryLessEqual, ast.BinaryEqual, ast.BinaryGreaterEqual, ast.BinaryGreater:
		lv, lok := left.(runtime.BoolValue)
		rv, rok := right.(runtime.BoolValue)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: operator %s requires bool operands, got %s and %s", runtime.ErrTypeMismatch, op, left.Kind(), right.Kind())
		}
		return runtime.BoolValue{Val: evaluateBoolean(op, lv.Val, rv.Val)}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

// evaluateArithmetic never fails: x / 0 is 0 and x % 0 is x.
func evaluateArithmetic(op ast.BinaryOperator, left, right *big.Int) runtime.IntegerValue {
	l := runtime.CloneBigInt(left)
	r := runtime.CloneBigInt(right)
	result := new(big.Int)
	switch op {
	case ast.BinaryAdd:
		result.Add(l, r)
	case ast.BinarySub:
		result.Sub(l, r)
	case ast.BinaryMul:
		result.Mul(l, r)
	case ast.BinaryDiv:
		if r.Sign() != 0 {
			result.Quo(l, r)
		}
	case ast.BinaryMod:
		if r.Sign() == 0 {
			result = l
		} else {
			result.Rem(l, r)
		}
	}
	return runtime.IntegerValue{Val: result}
}

func evaluateBoolean(op ast.BinaryOperator, left, right bool) bool {
	cmp := boolRank(left) - boolRank(right)
	switch op {
	case ast.BinaryAnd:
		return left && right
	case ast.BinaryOr:
		return left || right
	case ast.BinaryLess:
		return cmp < 0
	case ast.BinaryLessEqual:
		return cmp <= 0
	case ast.BinaryEqual:
		return cmp == 0
	case ast.BinaryGreaterEqual:
		return cmp >= 0
	case ast.BinaryGreater:
		return cmp > 0
	default:
		return false
	}
}

// boolRank orders false before true.
func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
