package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

func TestRuntimeDiagnosticsFormatting(t *testing.T) {
	interp := New()
	state := newEvalState()
	path := filepath.Join(t.TempDir(), "main.yml")

	errorNode := ast.ID("boom")
	callNode := ast.Call("boom")
	ast.SetSpan(errorNode, ast.Span{
		Start: ast.Position{Line: 6, Column: 3},
		End:   ast.Position{Line: 6, Column: 7},
	})
	ast.SetSpan(callNode, ast.Span{
		Start: ast.Position{Line: 10, Column: 5},
		End:   ast.Position{Line: 10, Column: 9},
	})
	interp.SetNodeOrigins(map[ast.Node]string{
		errorNode: path,
		callNode:  path,
	})
	state.pushCallFrame(callNode)

	var err error = fmt.Errorf("%w: 'boom'", runtime.ErrUnboundName)
	err = interp.attachRuntimeContext(err, errorNode, state)

	diag := interp.BuildRuntimeDiagnostic(err)
	got := DescribeRuntimeDiagnostic(diag)
	expectedPath := normalizeRuntimePath(path)
	expected := fmt.Sprintf(
		"runtime: %s:6:3 unbound name: 'boom'\nnote: %s:10:5 called from here",
		expectedPath,
		expectedPath,
	)
	if got != expected {
		t.Fatalf("unexpected diagnostic output:\nexpected: %s\ngot: %s", expected, got)
	}
}

func TestRuntimeContextKeepsInnermostNode(t *testing.T) {
	interp := New()
	inner := ast.ID("missing")
	outer := ast.Add(ast.Int(1), inner)
	ast.SetSpan(inner, ast.Span{Start: ast.Position{Line: 2, Column: 9}})
	ast.SetSpan(outer, ast.Span{Start: ast.Position{Line: 2, Column: 3}})

	_, err := interp.Evaluate(outer, nil)
	if !errors.Is(err, runtime.ErrUnboundName) {
		t.Fatalf("expected unbound name, got %v", err)
	}
	diag := interp.BuildRuntimeDiagnostic(err)
	if diag.Location.Line != 2 || diag.Location.Column != 9 {
		t.Fatalf("expected innermost location 2:9, got %+v", diag.Location)
	}
	if got := DescribeRuntimeDiagnostic(diag); got != "runtime: line 2, column 9 unbound name: 'missing'" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestRuntimeDiagnosticNotesCallSites(t *testing.T) {
	failing := ast.Define("fail", nil, ast.Declare("fail", ast.Not(ast.Int(1))))
	call := ast.Call("fail")
	ast.SetSpan(call, ast.Span{Start: ast.Position{Line: 4, Column: 5}})
	entry := ast.Define("main", nil, ast.Eval(call))
	not := failing.Declaration.Value.(*ast.FunctionExpression).Body.Body[0].(*ast.Declaration).Value
	ast.SetSpan(not, ast.Span{Start: ast.Position{Line: 1, Column: 9}})

	interp := New(WithOutput(&bytes.Buffer{}))
	program, err := NewProgramBuilder("diag").Add(failing, entry).Entry("main").Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	err = interp.Run(context.Background(), program)
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	diag := interp.BuildRuntimeDiagnostic(err)
	if diag.Location.Line != 1 || diag.Location.Column != 9 {
		t.Fatalf("unexpected location %+v", diag.Location)
	}
	if len(diag.Notes) != 1 || diag.Notes[0].Location.Line != 4 {
		t.Fatalf("expected a single call-site note, got %+v", diag.Notes)
	}
}
