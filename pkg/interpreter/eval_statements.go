package interpreter

import (
	"fmt"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (err error) {
	state := i.stateFromEnv(env)
	defer func() {
		err = i.attachRuntimeContext(err, node, state)
	}()
	if node == nil {
		return fmt.Errorf("interpreter: nil statement")
	}
	i.traceStatement(node, env)
	switch n := node.(type) {
	case *ast.Declaration:
		return i.evaluateDeclaration(n, env)
	case *ast.Assignment:
		return i.evaluateAssignment(n, env)
	case *ast.ExpressionStatement:
		if call, ok := n.Expression.(*ast.FunctionCall); ok {
			return i.evaluateCallForEffect(call, env)
		}
		_, err := i.evaluateExpression(n.Expression, env)
		return err
	case *ast.Block:
		return i.evaluateBlock(n, env)
	case *ast.Definition:
		if n.Declaration == nil {
			return fmt.Errorf("interpreter: empty definition")
		}
		return i.evaluateDeclaration(n.Declaration, env)
	default:
		return fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateDeclaration(decl *ast.Declaration, env *runtime.Environment) error {
	if decl.ID == nil {
		return fmt.Errorf("interpreter: declaration without a name")
	}
	val, err := i.evaluateExpression(decl.Value, env)
	if err != nil {
		return err
	}
	return env.Define(decl.ID.Name, val)
}

func (i *Interpreter) evaluateAssignment(assign *ast.Assignment, env *runtime.Environment) error {
	val, err := i.evaluateExpression(assign.Value, env)
	if err != nil {
		return err
	}
	return i.assignCell(assign.Target, val, env)
}

// evaluateBlock runs the statements in a new innermost frame and pops it on
// every exit path.
func (i *Interpreter) evaluateBlock(block *ast.Block, env *runtime.Environment) error {
	env.Push()
	defer env.Pop()
	return i.executeStatements(block, env)
}

func (i *Interpreter) executeStatements(block *ast.Block, env *runtime.Environment) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Body {
		if err := i.evaluateStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}
