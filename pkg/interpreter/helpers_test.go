package interpreter

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}

func mustEvaluate(t *testing.T, interp *Interpreter, expr ast.Expression, env *runtime.Environment) runtime.Value {
	t.Helper()
	val, err := interp.Evaluate(expr, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return val
}

func expectInteger(t *testing.T, val runtime.Value, want int64) {
	t.Helper()
	iv, ok := val.(runtime.IntegerValue)
	if !ok {
		t.Fatalf("expected integer, got %#v", val)
	}
	if iv.Val.Cmp(bigInt(want)) != 0 {
		t.Fatalf("expected %d, got %s", want, iv.Val)
	}
}

func expectBool(t *testing.T, val runtime.Value, want bool) {
	t.Helper()
	bv, ok := val.(runtime.BoolValue)
	if !ok {
		t.Fatalf("expected bool, got %#v", val)
	}
	if bv.Val != want {
		t.Fatalf("expected %v, got %v", want, bv.Val)
	}
}

// localEnv returns the global environment with one local frame pushed.
func localEnv(interp *Interpreter) *runtime.Environment {
	env := interp.GlobalEnvironment().Globals()
	env.Push()
	return env
}

func runProgram(t *testing.T, entry string, defs ...*ast.Definition) (string, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	program, err := NewProgramBuilder("test").Add(defs...).Entry(entry).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	err = interp.Run(context.Background(), program)
	return out.String(), err
}
