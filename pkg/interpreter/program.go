package interpreter

import (
	"context"
	"fmt"

	"cellang/interpreter-go/pkg/ast"
)

// Program is an immutable list of top-level definitions plus an optional
// entry function invoked after they have all run.
type Program struct {
	name        string
	definitions []*ast.Definition
	entry       string
	origins     map[ast.Node]string
}

func (p *Program) Name() string  { return p.name }
func (p *Program) Entry() string { return p.entry }

// Definitions returns a copy of the definition list in execution order.
func (p *Program) Definitions() []*ast.Definition {
	out := make([]*ast.Definition, len(p.definitions))
	copy(out, p.definitions)
	return out
}

// Origins returns the node to source path table recorded by the builder.
func (p *Program) Origins() map[ast.Node]string {
	out := make(map[ast.Node]string, len(p.origins))
	for node, path := range p.origins {
		out[node] = path
	}
	return out
}

// ProgramBuilder accumulates definitions before execution.
type ProgramBuilder struct {
	name        string
	definitions []*ast.Definition
	entry       string
	origins     map[ast.Node]string
}

func NewProgramBuilder(name string) *ProgramBuilder {
	return &ProgramBuilder{name: name, origins: make(map[ast.Node]string)}
}

// Add appends definitions in order.
func (b *ProgramBuilder) Add(defs ...*ast.Definition) *ProgramBuilder {
	b.definitions = append(b.definitions, defs...)
	return b
}

// AddModule appends every definition of mod and records path as their
// origin for diagnostics.
func (b *ProgramBuilder) AddModule(mod *ast.Module, path string) *ProgramBuilder {
	if mod == nil {
		return b
	}
	b.definitions = append(b.definitions, mod.Definitions...)
	ast.AnnotateOrigins(mod, path, b.origins)
	return b
}

// Entry names the zero-argument function called once all definitions ran.
func (b *ProgramBuilder) Entry(name string) *ProgramBuilder {
	b.entry = name
	return b
}

// Origins merges a node origin table into the program.
func (b *ProgramBuilder) Origins(table map[ast.Node]string) *ProgramBuilder {
	for node, path := range table {
		if _, ok := b.origins[node]; !ok {
			b.origins[node] = path
		}
	}
	return b
}

// Build validates the accumulated definitions and freezes them.
func (b *ProgramBuilder) Build() (*Program, error) {
	defs := make([]*ast.Definition, len(b.definitions))
	for idx, def := range b.definitions {
		if def == nil || def.Declaration == nil {
			return nil, fmt.Errorf("program %s: definition %d is empty", b.name, idx)
		}
		if def.Name() == "" {
			return nil, fmt.Errorf("program %s: definition %d has no name", b.name, idx)
		}
		defs[idx] = def
	}
	origins := make(map[ast.Node]string, len(b.origins))
	for node, path := range b.origins {
		origins[node] = path
	}
	return &Program{name: b.name, definitions: defs, entry: b.entry, origins: origins}, nil
}

// Run executes program against a new global frame seeded with the
// builtins. Cancellation is checked between top-level definitions only.
func (i *Interpreter) Run(ctx context.Context, program *Program) error {
	if program == nil {
		return fmt.Errorf("interpreter: nil program")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := i.resetGlobals(); err != nil {
		return err
	}
	i.SetNodeOrigins(program.Origins())
	for _, def := range program.definitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.evaluateStatement(def, i.global); err != nil {
			return err
		}
	}
	if program.entry == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return i.EvaluateForEffect(ast.Call(program.entry), i.global)
}
