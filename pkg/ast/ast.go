package ast

import "math/big"

type NodeType string

const (
	NodeIdentifier            NodeType = "Identifier"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeIntegerLiteral        NodeType = "IntegerLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeReferenceExpression   NodeType = "ReferenceExpression"
	NodeDereferenceExpression NodeType = "DereferenceExpression"
	NodeFunctionExpression    NodeType = "FunctionExpression"
	NodeFunctionCall          NodeType = "FunctionCall"
	NodeDeclaration           NodeType = "Declaration"
	NodeAssignment            NodeType = "Assignment"
	NodeExpressionStatement   NodeType = "ExpressionStatement"
	NodeBlock                 NodeType = "Block"
	NodeDefinition            NodeType = "Definition"
	NodeModule                NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Cell is an expression that names a mutable location: it can be read like
// any expression, assigned through, and referenced with &.
type Cell interface {
	Expression
	cellNode()
}

type cellMarker struct{}

func (cellMarker) cellNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	cellMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value *big.Int `json:"value"`
}

func NewIntegerLiteral(value *big.Int) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

// Operators

type UnaryOperator string

const (
	UnaryOperatorNot UnaryOperator = "!"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryOperator string

const (
	BinaryAdd          BinaryOperator = "+"
	BinarySub          BinaryOperator = "-"
	BinaryMul          BinaryOperator = "*"
	BinaryDiv          BinaryOperator = "/"
	BinaryMod          BinaryOperator = "%"
	BinaryAnd          BinaryOperator = "&&"
	BinaryOr           BinaryOperator = "||"
	BinaryLess         BinaryOperator = "<"
	BinaryLessEqual    BinaryOperator = "<="
	BinaryEqual        BinaryOperator = "=="
	BinaryGreaterEqual BinaryOperator = ">="
	BinaryGreater      BinaryOperator = ">"
)

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator BinaryOperator `json:"operator"`
	Left     Expression     `json:"left"`
	Right    Expression     `json:"right"`
}

func NewBinaryExpression(operator BinaryOperator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// Pointers

// ReferenceExpression evaluates to a pointer to its target cell.
type ReferenceExpression struct {
	nodeImpl
	expressionMarker

	Target Cell `json:"target"`
}

func NewReferenceExpression(target Cell) *ReferenceExpression {
	return &ReferenceExpression{nodeImpl: newNodeImpl(NodeReferenceExpression), Target: target}
}

// DereferenceExpression reads or writes the location a pointer denotes.
type DereferenceExpression struct {
	nodeImpl
	expressionMarker
	cellMarker

	Pointer Expression `json:"pointer"`
}

func NewDereferenceExpression(pointer Expression) *DereferenceExpression {
	return &DereferenceExpression{nodeImpl: newNodeImpl(NodeDereferenceExpression), Pointer: pointer}
}

// Functions

// FunctionExpression evaluates to a function value. ID doubles as the
// result slot: the body must bind a variable with that name.
type FunctionExpression struct {
	nodeImpl
	expressionMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   *Block        `json:"body"`
}

func NewFunctionExpression(id *Identifier, params []*Identifier, body *Block) *FunctionExpression {
	return &FunctionExpression{nodeImpl: newNodeImpl(NodeFunctionExpression), ID: id, Params: params, Body: body}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

// Statements

// Declaration binds a new name in the innermost scope.
type Declaration struct {
	nodeImpl
	statementMarker

	ID    *Identifier `json:"id"`
	Value Expression  `json:"value"`
}

func NewDeclaration(id *Identifier, value Expression) *Declaration {
	return &Declaration{nodeImpl: newNodeImpl(NodeDeclaration), ID: id, Value: value}
}

// Assignment stores a value through a cell.
type Assignment struct {
	nodeImpl
	statementMarker

	Target Cell       `json:"target"`
	Value  Expression `json:"value"`
}

func NewAssignment(target Cell, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

// ExpressionStatement evaluates an expression and discards the result.
type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type Block struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

// Top level

// Definition is a top-level declaration executed once into the global frame.
type Definition struct {
	nodeImpl
	statementMarker

	Declaration *Declaration `json:"declaration"`
}

func NewDefinition(decl *Declaration) *Definition {
	return &Definition{nodeImpl: newNodeImpl(NodeDefinition), Declaration: decl}
}

// Name returns the bound name, or "" for a malformed definition.
func (d *Definition) Name() string {
	if d == nil || d.Declaration == nil || d.Declaration.ID == nil {
		return ""
	}
	return d.Declaration.ID.Name
}

type Module struct {
	nodeImpl

	Name        string        `json:"name"`
	Definitions []*Definition `json:"definitions"`
}

func NewModule(name string, defs []*Definition) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Name: name, Definitions: defs}
}
