package interpreter

import (
	"errors"
	"testing"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func TestPointerWriteThroughIsVisible(t *testing.T) {
	interp := New()
	env := localEnv(interp)
	stmts := ast.Body(
		ast.Declare("x", ast.Int(1)),
		ast.Declare("p", ast.Ref(ast.ID("x"))),
		ast.Assign(ast.Deref(ast.ID("p")), ast.Int(5)),
		ast.Declare("viaName", ast.ID("x")),
		ast.Declare("viaPointer", ast.Deref(ast.ID("p"))),
	)
	if err := interp.executeStatements(stmts, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.ID("viaName"), env), 5)
	expectInteger(t, mustEvaluate(t, interp, ast.ID("viaPointer"), env), 5)
}

func TestPointerTargetFixedAtCreation(t *testing.T) {
	interp := New()
	env := localEnv(interp)
	stmts := ast.Body(
		ast.Declare("x", ast.Int(1)),
		ast.Declare("p", ast.Ref(ast.ID("x"))),
		ast.Body(
			ast.Declare("x", ast.Int(100)),
			ast.Assign(ast.Deref(ast.ID("p")), ast.Int(2)),
			ast.Declare("inner", ast.ID("x")),
			ast.Declare("target", ast.Deref(ast.ID("p"))),
			ast.Assign(ast.ID("seenInner"), ast.ID("inner")),
			ast.Assign(ast.ID("seenTarget"), ast.ID("target")),
		),
		ast.Declare("outer", ast.ID("x")),
	)
	for _, name := range []string{"seenInner", "seenTarget"} {
		if err := env.Define(name, runtime.NewInteger(0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := interp.executeStatements(stmts, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.ID("seenInner"), env), 100)
	expectInteger(t, mustEvaluate(t, interp, ast.ID("seenTarget"), env), 2)
	expectInteger(t, mustEvaluate(t, interp, ast.ID("outer"), env), 2)
}

func TestPointerTargetIgnoresDereferencingScope(t *testing.T) {
	interp := New()
	env := localEnv(interp)
	if err := env.Define("x", runtime.NewInteger(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val := mustEvaluate(t, interp, ast.Ref(ast.ID("x")), env)
	ptr, ok := val.(runtime.PointerValue)
	if !ok {
		t.Fatalf("expected pointer, got %#v", val)
	}
	if ptr.Target.Frame != env.Current() || ptr.Target.Name != "x" {
		t.Fatalf("unexpected target %#v", ptr.Target)
	}

	other := localEnv(interp)
	if err := other.Define("x", runtime.NewInteger(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := other.Define("p", ptr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.Deref(ast.ID("p")), other), 1)
	if err := interp.Execute(ast.Assign(ast.Deref(ast.ID("p")), ast.Int(7)), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.ID("x"), env), 7)
	expectInteger(t, mustEvaluate(t, interp, ast.ID("x"), other), 100)
}

func TestReferenceOfDereferenceCollapses(t *testing.T) {
	interp := New()
	env := localEnv(interp)
	if err := env.Define("x", runtime.NewInteger(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := mustEvaluate(t, interp, ast.Ref(ast.ID("x")), env)
	if err := env.Define("p", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := mustEvaluate(t, interp, ast.Ref(ast.Deref(ast.ID("p"))), env).(runtime.PointerValue)
	if q.Target != p.(runtime.PointerValue).Target {
		t.Fatalf("expected &*p to address x, got %#v", q.Target)
	}
}

func TestPointerToGlobalIsReadOnly(t *testing.T) {
	interp := New()
	global := interp.GlobalEnvironment()
	if err := interp.Execute(ast.Const("g", ast.Int(4)), global); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := localEnv(interp)
	if err := interp.Execute(ast.Declare("p", ast.Ref(ast.ID("g"))), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.Deref(ast.ID("p")), env), 4)
	err := interp.Execute(ast.Assign(ast.Deref(ast.ID("p")), ast.Int(5)), env)
	if !errors.Is(err, runtime.ErrUnboundName) {
		t.Fatalf("expected unbound name writing a global through a pointer, got %v", err)
	}
}

func TestDereferenceRequiresPointer(t *testing.T) {
	interp := New()
	env := localEnv(interp)
	if _, err := interp.Evaluate(ast.Deref(ast.Int(1)), env); !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	err := interp.Execute(ast.Assign(ast.Deref(ast.Bool(true)), ast.Int(1)), env)
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch on write, got %v", err)
	}
}

func TestReferenceToUnboundName(t *testing.T) {
	interp := New()
	if _, err := interp.Evaluate(ast.Ref(ast.ID("ghost")), localEnv(interp)); !errors.Is(err, runtime.ErrUnboundName) {
		t.Fatalf("expected unbound name, got %v", err)
	}
}
