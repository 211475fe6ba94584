package interpreter

import (
	"fmt"
	"strings"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

// traceStatement writes one line per executed statement. Blocks are not
// traced themselves; their statements appear one level deeper.
func (i *Interpreter) traceStatement(node ast.Statement, env *runtime.Environment) {
	if i.trace == nil {
		return
	}
	if _, ok := node.(*ast.Block); ok {
		return
	}
	text := ast.Render(node)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx] + " ..."
	}
	indent := strings.Repeat("  ", env.Depth()-1)
	fmt.Fprintf(i.trace, "trace: %s%s\n", indent, text)
}
