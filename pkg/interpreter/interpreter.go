package interpreter

import (
	"fmt"
	"io"
	"os"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/runtime"
)

type runtimeCallFrame struct {
	node *ast.FunctionCall
}

type evalState struct {
	callStack []runtimeCallFrame
}

func newEvalState() *evalState {
	return &evalState{callStack: make([]runtimeCallFrame, 0)}
}

func (s *evalState) pushCallFrame(node *ast.FunctionCall) {
	if s == nil {
		return
	}
	s.callStack = append(s.callStack, runtimeCallFrame{node: node})
}

func (s *evalState) popCallFrame() {
	if s == nil || len(s.callStack) == 0 {
		return
	}
	s.callStack = s.callStack[:len(s.callStack)-1]
}

func (s *evalState) snapshotCallStack() []runtimeCallFrame {
	if s == nil || len(s.callStack) == 0 {
		return nil
	}
	out := make([]runtimeCallFrame, len(s.callStack))
	copy(out, s.callStack)
	return out
}

// Interpreter executes cell programs by walking their AST.
type Interpreter struct {
	global      *runtime.Environment
	output      io.Writer
	trace       io.Writer
	natives     []runtime.NativeFunctionValue
	nodeOrigins map[ast.Node]string
	rootState   *evalState
	setupErr    error
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput redirects the print builtin. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.output = w
		}
	}
}

// WithTrace writes every executed statement to w.
func WithTrace(w io.Writer) Option {
	return func(i *Interpreter) {
		i.trace = w
	}
}

// WithNative registers an additional host builtin in the global frame. Its
// name must not collide with print or another registered builtin.
func WithNative(fn runtime.NativeFunctionValue) Option {
	return func(i *Interpreter) {
		i.natives = append(i.natives, fn)
	}
}

// New returns an interpreter with a fresh global frame seeded with builtins.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		output:      os.Stdout,
		nodeOrigins: make(map[ast.Node]string),
		rootState:   newEvalState(),
	}
	i.natives = append(i.natives, i.printNative())
	for _, opt := range opts {
		opt(i)
	}
	i.setupErr = i.resetGlobals()
	return i
}

// Err reports a failure to seed the builtins, such as two natives sharing a
// name. An interpreter with a setup error refuses to evaluate anything.
func (i *Interpreter) Err() error {
	return i.setupErr
}

func (i *Interpreter) resetGlobals() error {
	i.global = runtime.NewEnvironment(runtime.NewGlobalFrame())
	i.rootState = newEvalState()
	for _, fn := range i.natives {
		if err := i.global.Define(fn.Name, fn); err != nil {
			return fmt.Errorf("interpreter: builtin %s: %w", fn.Name, err)
		}
	}
	return nil
}

// GlobalEnvironment exposes the environment holding only the global frame.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// SetNodeOrigins installs a node to source path table used for diagnostics.
func (i *Interpreter) SetNodeOrigins(origins map[ast.Node]string) {
	if origins == nil {
		i.nodeOrigins = make(map[ast.Node]string)
		return
	}
	i.nodeOrigins = origins
}

func (i *Interpreter) stateFromEnv(_ *runtime.Environment) *evalState {
	if i.rootState == nil {
		i.rootState = newEvalState()
	}
	return i.rootState
}

// Evaluate evaluates expr in env. A nil env means the global environment.
func (i *Interpreter) Evaluate(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if i.setupErr != nil {
		return nil, i.setupErr
	}
	if env == nil {
		env = i.global
	}
	return i.evaluateExpression(expr, env)
}

// Execute runs stmt in env. A nil env means the global environment.
func (i *Interpreter) Execute(stmt ast.Statement, env *runtime.Environment) error {
	if i.setupErr != nil {
		return i.setupErr
	}
	if env == nil {
		env = i.global
	}
	return i.evaluateStatement(stmt, env)
}

// EvaluateForEffect evaluates expr as an expression statement.
func (i *Interpreter) EvaluateForEffect(expr ast.Expression, env *runtime.Environment) error {
	return i.Execute(ast.NewExpressionStatement(expr), env)
}
