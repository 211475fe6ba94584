package interpreter

import (
	"fmt"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	return i.callFunction(call, env, true)
}

// evaluateCallForEffect runs a call whose value is discarded, so the callee
// may finish without binding its result slot.
func (i *Interpreter) evaluateCallForEffect(call *ast.FunctionCall, env *runtime.Environment) (err error) {
	state := i.stateFromEnv(env)
	defer func() {
		err = i.attachRuntimeContext(err, call, state)
	}()
	_, err = i.callFunction(call, env, false)
	return err
}

func (i *Interpreter) callFunction(call *ast.FunctionCall, env *runtime.Environment, needResult bool) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	state := i.stateFromEnv(env)
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		if len(call.Arguments) != len(fn.Params) {
			return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", runtime.ErrArityMismatch, describeCallee(fn.Name), len(fn.Params), len(call.Arguments))
		}
		args, err := i.evaluateArguments(call.Arguments, env)
		if err != nil {
			return nil, err
		}
		state.pushCallFrame(call)
		defer state.popCallFrame()
		return i.invokeFunction(fn, args, needResult)
	case runtime.NativeFunctionValue:
		if fn.Arity >= 0 && len(call.Arguments) != fn.Arity {
			return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", runtime.ErrArityMismatch, fn.Name, fn.Arity, len(call.Arguments))
		}
		args, err := i.evaluateArguments(call.Arguments, env)
		if err != nil {
			return nil, err
		}
		state.pushCallFrame(call)
		defer state.popCallFrame()
		return i.invokeNative(fn, args, env)
	default:
		return nil, fmt.Errorf("%w: value of kind %s", runtime.ErrNotCallable, callee.Kind())
	}
}

// evaluateArguments evaluates left to right in the caller's environment.
func (i *Interpreter) evaluateArguments(exprs []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := i.evaluateExpression(expr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// invokeFunction runs fn over a fresh environment holding only the global
// frame plus one parameter frame. The body executes in a frame owned here;
// the binding named after the function is read from it before it is popped.
// When needResult is false a missing binding yields a nil value.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, needResult bool) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", runtime.ErrArityMismatch, describeCallee(fn.Name), len(fn.Params), len(args))
	}
	callEnv := runtime.NewEnvironment(fn.Globals)
	callEnv.Push()
	for idx, name := range fn.Params {
		if err := callEnv.Define(name, args[idx]); err != nil {
			return nil, err
		}
	}
	callEnv.Push()
	defer callEnv.Pop()
	if err := i.executeStatements(fn.Body, callEnv); err != nil {
		return nil, err
	}
	result, err := callEnv.GetLocal(fn.Name)
	if err != nil {
		if !needResult {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s finished without binding its result '%s'", runtime.ErrUnboundName, describeCallee(fn.Name), fn.Name)
	}
	return result, nil
}

func (i *Interpreter) invokeNative(fn runtime.NativeFunctionValue, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	if fn.Impl == nil {
		return nil, fmt.Errorf("%w: builtin %s has no implementation", runtime.ErrNotCallable, fn.Name)
	}
	ctx := &runtime.NativeCallContext{Env: env, Output: i.output}
	result, err := fn.Impl(ctx, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: builtin %s returned no value", runtime.ErrTypeMismatch, fn.Name)
	}
	return result, nil
}

// CallFunction invokes a callable value with already evaluated arguments.
func (i *Interpreter) CallFunction(value runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if i == nil {
		return nil, fmt.Errorf("interpreter: nil interpreter")
	}
	if i.setupErr != nil {
		return nil, i.setupErr
	}
	switch fn := value.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args, true)
	case runtime.NativeFunctionValue:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", runtime.ErrArityMismatch, fn.Name, fn.Arity, len(args))
		}
		return i.invokeNative(fn, args, i.global)
	case nil:
		return nil, fmt.Errorf("%w: <nil>", runtime.ErrNotCallable)
	default:
		return nil, fmt.Errorf("%w: value of kind %s", runtime.ErrNotCallable, value.Kind())
	}
}

func describeCallee(name string) string {
	if name == "" {
		return "<anonymous function>"
	}
	return name
}
