package driver

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiagnosticLocation points at the YAML element a decode error concerns.
// EndLine and EndColumn are zero when the element has no known extent.
type DiagnosticLocation struct {
	Path      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// ProgramDiagnostic reports a malformed program file.
type ProgramDiagnostic struct {
	Message  string
	Location DiagnosticLocation
	// Excerpt is the source line at Location.Line, if the source was available.
	Excerpt string
}

// ProgramDiagnosticError wraps a diagnostic for error handling.
type ProgramDiagnosticError struct {
	Diagnostic ProgramDiagnostic
}

func (e *ProgramDiagnosticError) Error() string {
	location := formatDiagnosticLocation(e.Diagnostic.Location)
	if location == "" {
		return e.Diagnostic.Message
	}
	return location + ": " + e.Diagnostic.Message
}

// DescribeProgramDiagnostic formats a decode diagnostic for CLI output. When
// the offending line is known it is quoted below the message with the
// element underlined.
func DescribeProgramDiagnostic(diag ProgramDiagnostic) string {
	var b strings.Builder
	b.WriteString("decode: ")
	if location := formatDiagnosticLocation(diag.Location); location != "" {
		b.WriteString(location)
		b.WriteByte(' ')
	}
	b.WriteString(strings.TrimSpace(diag.Message))
	if diag.Excerpt == "" {
		return b.String()
	}
	if diag.Location.Column <= 0 {
		fmt.Fprintf(&b, "\n    %s", diag.Excerpt)
		return b.String()
	}
	width := 1
	if diag.Location.EndLine == diag.Location.Line && diag.Location.EndColumn > diag.Location.Column {
		width = diag.Location.EndColumn - diag.Location.Column
	}
	fmt.Fprintf(&b, "\n    %s\n    %s%s", diag.Excerpt,
		strings.Repeat(" ", diag.Location.Column-1), strings.Repeat("^", width))
	return b.String()
}

// nodeDiagnostic builds the error for a problem at node. A nil node yields a
// diagnostic that only names the file.
func nodeDiagnostic(path string, source []string, node *yaml.Node, message string) error {
	loc := DiagnosticLocation{Path: path}
	if node != nil {
		span := spanOf(node)
		loc.Line, loc.Column = span.Start.Line, span.Start.Column
		if span.End != span.Start {
			loc.EndLine, loc.EndColumn = span.End.Line, span.End.Column
		}
	}
	return &ProgramDiagnosticError{Diagnostic: ProgramDiagnostic{
		Message:  message,
		Location: loc,
		Excerpt:  excerptLine(source, loc.Line),
	}}
}

// syntaxDiagnostic converts a yaml.v3 parse error, recovering the line
// number the parser embeds in its message.
func syntaxDiagnostic(path string, source []string, err error) error {
	message := strings.TrimPrefix(err.Error(), "yaml: ")
	loc := DiagnosticLocation{Path: path}
	var line int
	if n, _ := fmt.Sscanf(message, "line %d:", &line); n == 1 && line > 0 {
		loc.Line = line
		message = strings.TrimSpace(message[strings.Index(message, ":")+1:])
	}
	return &ProgramDiagnosticError{Diagnostic: ProgramDiagnostic{
		Message:  message,
		Location: loc,
		Excerpt:  excerptLine(source, loc.Line),
	}}
}

func excerptLine(source []string, line int) string {
	if line <= 0 || line > len(source) {
		return ""
	}
	return strings.TrimRight(source[line-1], "\r")
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	switch {
	case path != "" && loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("%s:%d:%d", path, loc.Line, loc.Column)
	case path != "" && loc.Line > 0:
		return fmt.Sprintf("%s:%d", path, loc.Line)
	case path != "":
		return path
	case loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("line %d, column %d", loc.Line, loc.Column)
	case loc.Line > 0:
		return fmt.Sprintf("line %d", loc.Line)
	default:
		return ""
	}
}
