package interpreter

import (
	"fmt"

	"cellang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) printNative() runtime.NativeFunctionValue {
	return runtime.NativeFunctionValue{
		Name:  "print",
		Arity: 1,
		Impl: func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%w: print expects 1 argument, got %d", runtime.ErrArityMismatch, len(args))
			}
			n, ok := args[0].(runtime.IntegerValue)
			if !ok {
				return nil, fmt.Errorf("%w: print expects an integer, got %s", runtime.ErrTypeMismatch, args[0].Kind())
			}
			out := ctx.Output
			if out == nil {
				out = i.output
			}
			if _, err := fmt.Fprintln(out, runtime.FormatValue(n)); err != nil {
				return nil, err
			}
			return runtime.NewInteger(0), nil
		},
	}
}
