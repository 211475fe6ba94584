package interpreter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func barProgram() []*ast.Definition {
	return []*ast.Definition{
		ast.Define("main", nil,
			ast.Eval(ast.Call("print", ast.Call("bar", ast.Int(5)))),
		),
		ast.Const("foo", ast.Int(5)),
		ast.Define("bar", []string{"x"},
			ast.Declare("y", ast.Mul(ast.ID("x"), ast.ID("x"))),
			ast.Declare("bar", ast.Add(ast.ID("y"), ast.Int(1))),
		),
	}
}

func TestRunBarProgramPrints26(t *testing.T) {
	out, err := runProgram(t, "main", barProgram()...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "26\n" {
		t.Fatalf("expected 26, got %q", out)
	}
}

func TestRunEntryInvokedForEffectNeedsNoResultSlot(t *testing.T) {
	out, err := runProgram(t, "main",
		ast.Define("bar", []string{"x"},
			ast.Declare("y", ast.Mul(ast.ID("x"), ast.ID("x"))),
			ast.Declare("bar", ast.Add(ast.ID("y"), ast.Int(1))),
		),
		ast.Define("main", nil,
			ast.Eval(ast.Call("print", ast.Call("bar", ast.Int(5)))),
		),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "26\n" {
		t.Fatalf("expected 26, got %q", out)
	}
}

func TestRunWithoutEntryOnlyDefines(t *testing.T) {
	out, err := runProgram(t, "", barProgram()...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestRunDefinitionsCanCallEarlierFunctions(t *testing.T) {
	defs := append(barProgram(), ast.Const("result", ast.Call("bar", ast.ID("foo"))))
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	program, err := NewProgramBuilder("ordered").Add(defs...).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := interp.Run(context.Background(), program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectInteger(t, mustEvaluate(t, interp, ast.ID("result"), nil), 26)
}

func TestRunRejectsDuplicateDefinitions(t *testing.T) {
	_, err := runProgram(t, "", ast.Const("x", ast.Int(1)), ast.Const("x", ast.Int(2)))
	if !errors.Is(err, runtime.ErrDuplicateName) {
		t.Fatalf("expected duplicate name, got %v", err)
	}
}

func TestRunResetsGlobals(t *testing.T) {
	interp := New(WithOutput(&bytes.Buffer{}))
	program, err := NewProgramBuilder("again").Add(ast.Const("x", ast.Int(1))).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for n := 0; n < 2; n++ {
		if err := interp.Run(context.Background(), program); err != nil {
			t.Fatalf("run %d failed: %v", n, err)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	program, err := NewProgramBuilder("cancelled").Add(barProgram()...).Entry("main").Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := interp.Run(ctx, program); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestProgramBuilderValidates(t *testing.T) {
	if _, err := NewProgramBuilder("bad").Add(nil).Build(); err == nil {
		t.Fatalf("expected error for nil definition")
	}
	if _, err := NewProgramBuilder("bad").Add(ast.NewDefinition(ast.NewDeclaration(nil, ast.Int(1)))).Build(); err == nil {
		t.Fatalf("expected error for unnamed definition")
	}
}

func TestProgramIsImmutableAfterBuild(t *testing.T) {
	builder := NewProgramBuilder("frozen").Add(ast.Const("a", ast.Int(1)))
	program, err := builder.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	builder.Add(ast.Const("b", ast.Int(2)))
	defs := program.Definitions()
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	defs[0] = nil
	if program.Definitions()[0] == nil {
		t.Fatalf("program definitions should not be writable through the copy")
	}
}

func TestTraceWritesExecutedStatements(t *testing.T) {
	var out, trace bytes.Buffer
	interp := New(WithOutput(&out), WithTrace(&trace))
	program, err := NewProgramBuilder("traced").Add(barProgram()...).Entry("main").Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := interp.Run(context.Background(), program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	want := []string{
		"trace: DEFINE main := FUNCTION[] { ...",
		"trace: DEFINE foo := 5",
		"trace: DEFINE bar := FUNCTION[x] { ...",
		"trace: CALL main[]",
		"trace:     CALL print[CALL bar[5]]",
		"trace:     y := (x * x)",
		"trace:     bar := (y + 1)",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected trace:\n%s", trace.String())
	}
	for idx := range want {
		if lines[idx] != want[idx] {
			t.Fatalf("trace line %d: expected %q, got %q", idx, want[idx], lines[idx])
		}
	}
}
