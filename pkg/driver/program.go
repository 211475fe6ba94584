package driver

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cellang/interpreter-go/pkg/ast"
)

// Program files are YAML documents of the form
//
//	name: demo
//	definitions:
//	  - const: foo
//	    value: 5
//	  - define: bar
//	    params: [x]
//	    body:
//	      - declare: y
//	        value: {mul: [x, x]}
//	      - declare: bar
//	        value: {add: [y, 1]}
//
// Plain scalars are shorthand: integers and booleans become literals, any
// other scalar names a variable. Text literals use {text: ...}.

var binaryOperatorKeys = map[string]ast.BinaryOperator{
	"add": ast.BinaryAdd,
	"sub": ast.BinarySub,
	"mul": ast.BinaryMul,
	"div": ast.BinaryDiv,
	"mod": ast.BinaryMod,
	"and": ast.BinaryAnd,
	"or":  ast.BinaryOr,
	"lt":  ast.BinaryLess,
	"le":  ast.BinaryLessEqual,
	"eq":  ast.BinaryEqual,
	"ge":  ast.BinaryGreaterEqual,
	"gt":  ast.BinaryGreater,
}

// LoadProgramFile reads and decodes a program file.
func LoadProgramFile(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	return DecodeProgram(path, data)
}

// DecodeProgram turns a YAML program document into a module. Every node
// carries the span of the YAML element it was decoded from.
func DecodeProgram(path string, data []byte) (*ast.Module, error) {
	d := &programDecoder{path: path, source: strings.Split(string(data), "\n")}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, syntaxDiagnostic(path, d.source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, d.errorf(nil, "program is empty")
	}
	return d.module(doc.Content[0])
}

type programDecoder struct {
	path   string
	source []string
}

func (d *programDecoder) errorf(node *yaml.Node, format string, args ...any) error {
	return nodeDiagnostic(d.path, d.source, node, fmt.Sprintf(format, args...))
}

// fields splits a mapping node, rejecting keys outside allowed.
func (d *programDecoder) fields(node *yaml.Node, what string, allowed ...string) (map[string]*yaml.Node, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "%s must be a mapping", what)
	}
	out := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !containsString(allowed, key.Value) {
			return nil, d.errorf(key, "unknown %s field %q", what, key.Value)
		}
		if _, dup := out[key.Value]; dup {
			return nil, d.errorf(key, "duplicate %s field %q", what, key.Value)
		}
		out[key.Value] = resolveAlias(node.Content[i+1])
	}
	return out, nil
}

func (d *programDecoder) module(node *yaml.Node) (*ast.Module, error) {
	fields, err := d.fields(node, "program", "name", "definitions")
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
	if n, ok := fields["name"]; ok {
		if name, err = d.scalar(n, "program name"); err != nil {
			return nil, err
		}
	}
	defsNode, ok := fields["definitions"]
	if !ok {
		return nil, d.errorf(node, "program requires definitions")
	}
	items, err := d.sequence(defsNode, "definitions")
	if err != nil {
		return nil, err
	}
	defs := make([]*ast.Definition, 0, len(items))
	for _, item := range items {
		def, err := d.definition(item)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	mod := ast.NewModule(name, defs)
	setNodeSpan(mod, node)
	return mod, nil
}

func (d *programDecoder) definition(node *yaml.Node) (*ast.Definition, error) {
	fields, err := d.fields(node, "definition", "define", "const", "params", "body", "value")
	if err != nil {
		return nil, err
	}
	var decl *ast.Declaration
	switch {
	case fields["define"] != nil && fields["const"] == nil:
		if fields["value"] != nil {
			return nil, d.errorf(fields["value"], "define takes params and body, not value")
		}
		id, err := d.identifier(fields["define"])
		if err != nil {
			return nil, err
		}
		fn, err := d.function(node, id, fields["params"], fields["body"])
		if err != nil {
			return nil, err
		}
		decl = ast.NewDeclaration(id, fn)
	case fields["const"] != nil && fields["define"] == nil:
		if fields["params"] != nil || fields["body"] != nil {
			return nil, d.errorf(node, "const takes a value, not params or body")
		}
		id, err := d.identifier(fields["const"])
		if err != nil {
			return nil, err
		}
		value, err := d.required(fields, node, "value")
		if err != nil {
			return nil, err
		}
		decl = ast.NewDeclaration(id, value)
	default:
		return nil, d.errorf(node, "definition requires exactly one of define or const")
	}
	setNodeSpan(decl, node)
	def := ast.NewDefinition(decl)
	setNodeSpan(def, node)
	return def, nil
}

func (d *programDecoder) function(node *yaml.Node, id *ast.Identifier, paramsNode, bodyNode *yaml.Node) (*ast.FunctionExpression, error) {
	var params []*ast.Identifier
	if paramsNode != nil {
		items, err := d.sequence(paramsNode, "params")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			param, err := d.identifier(item)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
	}
	body := ast.NewBlock(nil)
	if bodyNode != nil {
		var err error
		if body, err = d.block(bodyNode); err != nil {
			return nil, err
		}
	}
	fn := ast.NewFunctionExpression(id, params, body)
	setNodeSpan(fn, node)
	return fn, nil
}

func (d *programDecoder) block(node *yaml.Node) (*ast.Block, error) {
	items, err := d.sequence(node, "block")
	if err != nil {
		return nil, err
	}
	stmts := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		stmt, err := d.statement(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	block := ast.NewBlock(stmts)
	setNodeSpan(block, node)
	return block, nil
}

func (d *programDecoder) statement(node *yaml.Node) (ast.Statement, error) {
	fields, err := d.fields(node, "statement", "declare", "assign", "eval", "block", "value")
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, d.errorf(node, "empty statement")
	}
	var stmt ast.Statement
	switch {
	case fields["declare"] != nil:
		id, err := d.identifier(fields["declare"])
		if err != nil {
			return nil, err
		}
		value, err := d.required(fields, node, "value")
		if err != nil {
			return nil, err
		}
		stmt = ast.NewDeclaration(id, value)
	case fields["assign"] != nil:
		target, err := d.cell(fields["assign"])
		if err != nil {
			return nil, err
		}
		value, err := d.required(fields, node, "value")
		if err != nil {
			return nil, err
		}
		stmt = ast.NewAssignment(target, value)
	case fields["eval"] != nil:
		if len(fields) != 1 {
			return nil, d.errorf(node, "eval takes no other fields")
		}
		expr, err := d.expression(fields["eval"])
		if err != nil {
			return nil, err
		}
		stmt = ast.NewExpressionStatement(expr)
	case fields["block"] != nil:
		if len(fields) != 1 {
			return nil, d.errorf(node, "block takes no other fields")
		}
		return d.block(fields["block"])
	default:
		return nil, d.errorf(node, "statement requires declare, assign, eval or block")
	}
	if len(fields) != 2 && fields["eval"] == nil {
		return nil, d.errorf(node, "statement mixes %d fields", len(fields))
	}
	ast.SetSpan(stmt, spanOf(node))
	return stmt, nil
}

func (d *programDecoder) required(fields map[string]*yaml.Node, parent *yaml.Node, key string) (ast.Expression, error) {
	node, ok := fields[key]
	if !ok || node == nil {
		return nil, d.errorf(parent, "missing %s", key)
	}
	return d.expression(node)
}

func (d *programDecoder) expression(node *yaml.Node) (ast.Expression, error) {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode {
		return d.scalarExpression(node)
	}
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return nil, d.errorf(node, "expression must be a scalar or a mapping")
	}
	key := node.Content[0].Value
	var (
		expr ast.Expression
		err  error
	)
	switch key {
	case "call":
		expr, err = d.call(node)
	case "fn":
		expr, err = d.functionExpression(node)
	default:
		if len(node.Content) != 2 {
			return nil, d.errorf(node, "%s expression takes a single field", key)
		}
		expr, err = d.singleFieldExpression(key, node.Content[0], resolveAlias(node.Content[1]))
	}
	if err != nil {
		return nil, err
	}
	ast.SetSpan(expr, spanOf(node))
	return expr, nil
}

func (d *programDecoder) singleFieldExpression(key string, keyNode, value *yaml.Node) (ast.Expression, error) {
	if op, ok := binaryOperatorKeys[key]; ok {
		items, err := d.sequence(value, key)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, d.errorf(value, "%s requires exactly two operands, got %d", key, len(items))
		}
		left, err := d.expression(items[0])
		if err != nil {
			return nil, err
		}
		right, err := d.expression(items[1])
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryExpression(op, left, right), nil
	}
	switch key {
	case "int":
		text, err := d.scalar(value, "int")
		if err != nil {
			return nil, err
		}
		return d.integer(value, text)
	case "bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return nil, d.errorf(value, "invalid bool %q", value.Value)
		}
		return ast.NewBooleanLiteral(b), nil
	case "text":
		text, err := d.scalar(value, "text")
		if err != nil {
			return nil, err
		}
		return ast.NewStringLiteral(text), nil
	case "var":
		return d.identifier(value)
	case "not":
		operand, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(ast.UnaryOperatorNot, operand), nil
	case "ref":
		target, err := d.cell(value)
		if err != nil {
			return nil, err
		}
		return ast.NewReferenceExpression(target), nil
	case "deref":
		pointer, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		return ast.NewDereferenceExpression(pointer), nil
	default:
		return nil, d.errorf(keyNode, "unknown expression %q", key)
	}
}

func (d *programDecoder) call(node *yaml.Node) (ast.Expression, error) {
	fields, err := d.fields(node, "call", "call", "args")
	if err != nil {
		return nil, err
	}
	callee, err := d.expression(fields["call"])
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if argsNode, ok := fields["args"]; ok {
		items, err := d.sequence(argsNode, "args")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			arg, err := d.expression(item)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	return ast.NewFunctionCall(callee, args), nil
}

func (d *programDecoder) functionExpression(node *yaml.Node) (ast.Expression, error) {
	fields, err := d.fields(node, "fn", "fn", "params", "body")
	if err != nil {
		return nil, err
	}
	id, err := d.identifier(fields["fn"])
	if err != nil {
		return nil, err
	}
	return d.function(node, id, fields["params"], fields["body"])
}

// cell decodes an assignable location: a name or a dereference.
func (d *programDecoder) cell(node *yaml.Node) (ast.Cell, error) {
	expr, err := d.expression(node)
	if err != nil {
		return nil, err
	}
	cell, ok := expr.(ast.Cell)
	if !ok {
		return nil, d.errorf(node, "%s is not assignable", expr.NodeType())
	}
	return cell, nil
}

func (d *programDecoder) scalarExpression(node *yaml.Node) (ast.Expression, error) {
	var expr ast.Expression
	switch node.ShortTag() {
	case "!!int":
		lit, err := d.integer(node, node.Value)
		if err != nil {
			return nil, err
		}
		expr = lit
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, d.errorf(node, "invalid bool %q", node.Value)
		}
		expr = ast.NewBooleanLiteral(b)
	case "!!str":
		id, err := d.identifier(node)
		if err != nil {
			return nil, err
		}
		expr = id
	default:
		return nil, d.errorf(node, "unsupported scalar %s", node.ShortTag())
	}
	ast.SetSpan(expr, spanOf(node))
	return expr, nil
}

func (d *programDecoder) integer(node *yaml.Node, text string) (*ast.IntegerLiteral, error) {
	value, ok := new(big.Int).SetString(strings.ReplaceAll(strings.TrimSpace(text), "_", ""), 0)
	if !ok {
		return nil, d.errorf(node, "invalid integer %q", text)
	}
	lit := ast.NewIntegerLiteral(value)
	ast.SetSpan(lit, spanOf(node))
	return lit, nil
}

func (d *programDecoder) identifier(node *yaml.Node) (*ast.Identifier, error) {
	name, err := d.scalar(node, "name")
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return nil, d.errorf(node, "invalid name %q", name)
	}
	id := ast.NewIdentifier(name)
	ast.SetSpan(id, spanOf(node))
	return id, nil
}

func (d *programDecoder) scalar(node *yaml.Node, what string) (string, error) {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", d.errorf(node, "%s must be a scalar", what)
	}
	return node.Value, nil
}

func (d *programDecoder) sequence(node *yaml.Node, what string) ([]*yaml.Node, error) {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "%s must be a sequence", what)
	}
	return node.Content, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func spanOf(node *yaml.Node) ast.Span {
	if node == nil {
		return ast.ZeroSpan()
	}
	start := ast.Position{Line: node.Line, Column: node.Column}
	end := start
	if node.Kind == yaml.ScalarNode {
		end.Column += len(node.Value)
	}
	return ast.Span{Start: start, End: end}
}

func setNodeSpan(n ast.Node, node *yaml.Node) {
	ast.SetSpan(n, spanOf(node))
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
