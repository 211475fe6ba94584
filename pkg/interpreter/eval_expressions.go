package interpreter

import (
	"fmt"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (result runtime.Value, err error) {
	state := i.stateFromEnv(env)
	defer func() {
		err = i.attachRuntimeContext(err, node, state)
	}()
	if node == nil {
		return nil, fmt.Errorf("interpreter: nil expression")
	}
	switch n := node.(type) {
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.IntegerLiteral:
		return runtime.IntegerValue{Val: runtime.CloneBigInt(n.Value)}, nil
	case *ast.Identifier:
		return env.Get(n.Name)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.ReferenceExpression:
		return i.evaluateReference(n, env)
	case *ast.DereferenceExpression:
		ptr, err := i.evaluatePointer(n.Pointer, env)
		if err != nil {
			return nil, err
		}
		return ptr.Target.Load()
	case *ast.FunctionExpression:
		return i.evaluateFunctionExpression(n, env), nil
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateFunctionExpression(expr *ast.FunctionExpression, env *runtime.Environment) *runtime.FunctionValue {
	name := ""
	if expr.ID != nil {
		name = expr.ID.Name
	}
	params := make([]string, 0, len(expr.Params))
	for _, param := range expr.Params {
		if param == nil {
			continue
		}
		params = append(params, param.Name)
	}
	return &runtime.FunctionValue{
		Name:        name,
		Params:      params,
		Body:        expr.Body,
		Declaration: expr,
		Globals:     env.GlobalFrame(),
	}
}
