package interpreter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/driver"
)

type runtimeDiagnosticContext struct {
	node      ast.Node
	callStack []runtimeCallFrame
}

type runtimeDiagnosticError struct {
	err     error
	context *runtimeDiagnosticContext
}

func (e runtimeDiagnosticError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e runtimeDiagnosticError) Unwrap() error {
	return e.err
}

type RuntimeDiagnosticNote struct {
	Message  string
	Location driver.DiagnosticLocation
}

type RuntimeDiagnostic struct {
	Message  string
	Location driver.DiagnosticLocation
	Notes    []RuntimeDiagnosticNote
}

const maxRuntimeDiagnosticNotes = 8

// BuildRuntimeDiagnostic locates err at the innermost node that failed and
// lists the enclosing call sites as notes.
func (i *Interpreter) BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	message := runtimeMessageFromError(err)
	ctx := runtimeContextFromError(err)

	location := driver.DiagnosticLocation{}
	if ctx != nil && ctx.node != nil {
		location = runtimeLocationFromNode(i, ctx.node)
	}
	if location == (driver.DiagnosticLocation{}) && ctx != nil {
		for idx := len(ctx.callStack) - 1; idx >= 0; idx-- {
			if ctx.callStack[idx].node == nil {
				continue
			}
			location = runtimeLocationFromNode(i, ctx.callStack[idx].node)
			if location != (driver.DiagnosticLocation{}) {
				break
			}
		}
	}

	var notes []RuntimeDiagnosticNote
	if ctx != nil {
		for idx := len(ctx.callStack) - 1; idx >= 0 && len(notes) < maxRuntimeDiagnosticNotes; idx-- {
			node := ctx.callStack[idx].node
			if node == nil {
				continue
			}
			noteLocation := runtimeLocationFromNode(i, node)
			if noteLocation == (driver.DiagnosticLocation{}) || runtimeLocationsEqual(noteLocation, location) {
				continue
			}
			notes = append(notes, RuntimeDiagnosticNote{
				Message:  "called from here",
				Location: noteLocation,
			})
		}
	}

	return RuntimeDiagnostic{
		Message:  message,
		Location: location,
		Notes:    notes,
	}
}

func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if strings.HasPrefix(message, "runtime:") {
		message = strings.TrimSpace(strings.TrimPrefix(message, "runtime:"))
	}
	location := formatRuntimeLocation(diag.Location)
	prefix := "runtime: "
	var b strings.Builder
	if location != "" {
		fmt.Fprintf(&b, "%s%s %s", prefix, location, message)
	} else {
		fmt.Fprintf(&b, "%s%s", prefix, message)
	}
	for _, note := range diag.Notes {
		noteLoc := formatRuntimeLocation(note.Location)
		if noteLoc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", noteLoc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// attachRuntimeContext records the failing node the first time an error
// passes through; outer nodes leave it untouched.
func (i *Interpreter) attachRuntimeContext(err error, node ast.Node, state *evalState) error {
	if err == nil || node == nil {
		return err
	}
	if runtimeContextFromError(err) != nil {
		return err
	}
	return runtimeDiagnosticError{
		err: err,
		context: &runtimeDiagnosticContext{
			node:      node,
			callStack: state.snapshotCallStack(),
		},
	}
}

func runtimeContextFromError(err error) *runtimeDiagnosticContext {
	if err == nil {
		return nil
	}
	var diagErr runtimeDiagnosticError
	if errors.As(err, &diagErr) {
		return diagErr.context
	}
	return nil
}

func runtimeMessageFromError(err error) string {
	if err == nil {
		return ""
	}
	var diagErr runtimeDiagnosticError
	if errors.As(err, &diagErr) && diagErr.err != nil {
		return diagErr.err.Error()
	}
	return err.Error()
}

func formatRuntimeLocation(loc driver.DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	if path != "" {
		path = normalizeRuntimePath(path)
	}
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}

func runtimeLocationFromNode(i *Interpreter, node ast.Node) driver.DiagnosticLocation {
	if node == nil {
		return driver.DiagnosticLocation{}
	}
	span := node.Span()
	path := ""
	if i != nil && i.nodeOrigins != nil {
		if origin, ok := i.nodeOrigins[node]; ok {
			path = origin
		}
	}
	return driver.DiagnosticLocation{
		Path:      path,
		Line:      span.Start.Line,
		Column:    span.Start.Column,
		EndLine:   span.End.Line,
		EndColumn: span.End.Column,
	}
}

func runtimeLocationsEqual(left, right driver.DiagnosticLocation) bool {
	if left == (driver.DiagnosticLocation{}) || right == (driver.DiagnosticLocation{}) {
		return false
	}
	return left.Path == right.Path && left.Line == right.Line && left.Column == right.Column
}

// normalizeRuntimePath prints paths relative to the working directory when
// they live beneath it.
func normalizeRuntimePath(raw string) string {
	if raw == "" {
		return ""
	}
	path := raw
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
