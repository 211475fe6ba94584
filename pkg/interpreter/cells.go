package interpreter

import (
	"fmt"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

// evaluateReference builds a pointer to the location named by the cell.
// The location is resolved once, against the scope live at this point.
func (i *Interpreter) evaluateReference(expr *ast.ReferenceExpression, env *runtime.Environment) (runtime.Value, error) {
	switch target := expr.Target.(type) {
	case *ast.Identifier:
		ref, err := env.Resolve(target.Name)
		if err != nil {
			return nil, err
		}
		return runtime.PointerValue{Target: ref}, nil
	case *ast.DereferenceExpression:
		// &*p denotes the same location as p.
		return i.evaluatePointer(target.Pointer, env)
	case nil:
		return nil, fmt.Errorf("interpreter: reference without a target")
	default:
		return nil, fmt.Errorf("unsupported reference target: %s", target.NodeType())
	}
}

func (i *Interpreter) evaluatePointer(expr ast.Expression, env *runtime.Environment) (runtime.PointerValue, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return runtime.PointerValue{}, err
	}
	ptr, ok := val.(runtime.PointerValue)
	if !ok {
		return runtime.PointerValue{}, fmt.Errorf("%w: cannot dereference %s", runtime.ErrTypeMismatch, val.Kind())
	}
	return ptr, nil
}

// assignCell stores val through target. Neither path can write a global
// binding.
func (i *Interpreter) assignCell(target ast.Cell, val runtime.Value, env *runtime.Environment) error {
	switch cell := target.(type) {
	case *ast.Identifier:
		return env.Assign(cell.Name, val)
	case *ast.DereferenceExpression:
		ptr, err := i.evaluatePointer(cell.Pointer, env)
		if err != nil {
			return err
		}
		return ptr.Target.Store(val)
	case nil:
		return fmt.Errorf("interpreter: assignment without a target")
	default:
		return fmt.Errorf("unsupported assignment target: %s", cell.NodeType())
	}
}
