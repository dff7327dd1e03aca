package ast

import "strings"

type NodeType string

const (
	NodeChunk               NodeType = "Chunk"
	NodeNoneExpression      NodeType = "NoneExpression"
	NodeNumberLiteral       NodeType = "NumberLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeNilLiteral          NodeType = "NilLiteral"
	NodeName                NodeType = "Name"
	NodeTableConstructor    NodeType = "TableConstructor"
	NodeParenExpression     NodeType = "ParenExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeGetIndex            NodeType = "GetIndex"
	NodeSetIndex            NodeType = "SetIndex"
	NodeGetMember           NodeType = "GetMember"
	NodeSetMember           NodeType = "SetMember"
	NodeInvokeExpression    NodeType = "InvokeExpression"
	NodeLambdaExpression    NodeType = "LambdaExpression"
	NodeFunctionBody        NodeType = "FunctionBody"
	NodeBlock               NodeType = "Block"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeRepeatStatement     NodeType = "RepeatStatement"
	NodeForStatement        NodeType = "ForStatement"
	NodeForInStatement      NodeType = "ForInStatement"
	NodeBreakStatement      NodeType = "BreakStatement"
	NodeFunctionStatement   NodeType = "FunctionStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeAssignStatement     NodeType = "AssignStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
)

type Node interface {
	NodeType() NodeType
	Span() Context
	Trace() Trace
	isNode()
}

type nodeImpl struct {
	Type    NodeType `json:"type"`
	Context Context  `json:"context"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Context      { return n.Context }
func (nodeImpl) isNode()              {}

func (n *nodeImpl) setContext(ctx Context) { n.Context = ctx }

// Trace describes the node for error traces. Nodes with a useful name override it.
func (n nodeImpl) Trace() Trace {
	return Trace{Qualifier: string(n.Type), Context: n.Context}
}

// Trace is one entry of an error trace: which construct was executing, and where.
type Trace struct {
	Qualifier string  `json:"qualifier"`
	Context   Context `json:"context"`
}

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

// Chunk is a parsed source unit.
type Chunk struct {
	nodeImpl

	Block *Block `json:"block"`
}

func NewChunk(block *Block) *Chunk {
	return &Chunk{nodeImpl: newNodeImpl(NodeChunk), Block: block}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

// NoneExpression stands in for an omitted optional expression.
type NoneExpression struct {
	nodeImpl
	expressionMarker
}

func NewNoneExpression() *NoneExpression {
	return &NoneExpression{nodeImpl: newNodeImpl(NodeNoneExpression)}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NilLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNilLiteral() *NilLiteral {
	return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral)}
}

type Name struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewName(name string) *Name {
	return &Name{nodeImpl: newNodeImpl(NodeName), Name: name}
}

// ToStringLiteral converts a member name into the string key it denotes.
func (n *Name) ToStringLiteral() *StringLiteral {
	return At(NewStringLiteral(n.Name), n.Context)
}

// TableField is a keyed entry of a table constructor.
type TableField struct {
	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

type TableConstructor struct {
	nodeImpl
	expressionMarker

	ListInit []Expression `json:"listInit"`
	MapInit  []TableField `json:"mapInit"`
}

func NewTableConstructor(list []Expression, fields []TableField) *TableConstructor {
	return &TableConstructor{nodeImpl: newNodeImpl(NodeTableConstructor), ListInit: list, MapInit: fields}
}

// ParenExpression truncates a multi-value expression to its first value.
type ParenExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression `json:"expression"`
}

func NewParenExpression(expr Expression) *ParenExpression {
	return &ParenExpression{nodeImpl: newNodeImpl(NodeParenExpression), Expression: expr}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type GetIndex struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Index  Expression `json:"index"`
}

func NewGetIndex(target, index Expression) *GetIndex {
	return &GetIndex{nodeImpl: newNodeImpl(NodeGetIndex), Target: target, Index: index}
}

type SetIndex struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Index  Expression `json:"index"`
	Value  Expression `json:"value"`
}

func NewSetIndex(target, index, value Expression) *SetIndex {
	return &SetIndex{nodeImpl: newNodeImpl(NodeSetIndex), Target: target, Index: index, Value: value}
}

type GetMember struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Member *Name      `json:"member"`
}

func NewGetMember(target Expression, member *Name) *GetMember {
	return &GetMember{nodeImpl: newNodeImpl(NodeGetMember), Target: target, Member: member}
}

type SetMember struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Member *Name      `json:"member"`
	Value  Expression `json:"value"`
}

func NewSetMember(target Expression, member *Name, value Expression) *SetMember {
	return &SetMember{nodeImpl: newNodeImpl(NodeSetMember), Target: target, Member: member, Value: value}
}

type InvokeExpression struct {
	nodeImpl
	expressionMarker

	Target    Expression   `json:"target"`
	Arguments []Expression `json:"arguments"`
}

func NewInvokeExpression(target Expression, args []Expression) *InvokeExpression {
	return &InvokeExpression{nodeImpl: newNodeImpl(NodeInvokeExpression), Target: target, Arguments: args}
}

// CalleeName renders the call target for traces: `f`, `t.f`, `t[...]`.
func (n *InvokeExpression) CalleeName() string {
	return describeTarget(n.Target)
}

func describeTarget(expr Expression) string {
	switch t := expr.(type) {
	case *Name:
		return t.Name
	case *GetMember:
		return describeTarget(t.Target) + "." + t.Member.Name
	case *GetIndex:
		return describeTarget(t.Target) + "[...]"
	case *InvokeExpression:
		return describeTarget(t.Target) + "(...)"
	case *ParenExpression:
		return describeTarget(t.Expression)
	case *LambdaExpression:
		return "function"
	default:
		return "?"
	}
}

func (n *InvokeExpression) Trace() Trace {
	return Trace{Qualifier: "Call " + n.CalleeName(), Context: n.Context}
}

type LambdaExpression struct {
	nodeImpl
	expressionMarker

	Body *FunctionBody `json:"body"`
}

func NewLambdaExpression(body *FunctionBody) *LambdaExpression {
	return &LambdaExpression{nodeImpl: newNodeImpl(NodeLambdaExpression), Body: body}
}

// FunctionBody is shared by function statements and lambdas.
type FunctionBody struct {
	nodeImpl

	Parameters []*Name `json:"parameters"`
	Block      *Block  `json:"block"`
}

func NewFunctionBody(params []*Name, block *Block) *FunctionBody {
	return &FunctionBody{nodeImpl: newNodeImpl(NodeFunctionBody), Parameters: params, Block: block}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type Block struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlock(stmts []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: stmts}
}

type IfBranch struct {
	Test Expression `json:"test"`
	Body *Block     `json:"body"`
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Branches []IfBranch `json:"branches"`
	Else     *Block     `json:"else,omitempty"`
}

func NewIfStatement(branches []IfBranch, elseBlock *Block) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Branches: branches, Else: elseBlock}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Test Expression `json:"test"`
	Body *Block     `json:"body"`
}

func NewWhileStatement(test Expression, body *Block) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Test: test, Body: body}
}

type RepeatStatement struct {
	nodeImpl
	statementMarker

	Body *Block     `json:"body"`
	Test Expression `json:"test"`
}

func NewRepeatStatement(body *Block, test Expression) *RepeatStatement {
	return &RepeatStatement{nodeImpl: newNodeImpl(NodeRepeatStatement), Body: body, Test: test}
}

// ForStatement is the numeric loop. Step is a NoneExpression when omitted.
type ForStatement struct {
	nodeImpl
	statementMarker

	Variable *Name      `json:"variable"`
	Start    Expression `json:"start"`
	Limit    Expression `json:"limit"`
	Step     Expression `json:"step"`
	Body     *Block     `json:"body"`
}

func NewForStatement(variable *Name, start, limit, step Expression, body *Block) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Variable: variable, Start: start, Limit: limit, Step: step, Body: body}
}

func (n *ForStatement) Trace() Trace {
	return Trace{Qualifier: string(n.Type) + " " + n.Variable.Name, Context: n.Context}
}

type ForInStatement struct {
	nodeImpl
	statementMarker

	Names       []*Name      `json:"names"`
	Expressions []Expression `json:"expressions"`
	Body        *Block       `json:"body"`
}

func NewForInStatement(names []*Name, exprs []Expression, body *Block) *ForInStatement {
	return &ForInStatement{nodeImpl: newNodeImpl(NodeForInStatement), Names: names, Expressions: exprs, Body: body}
}

func (n *ForInStatement) Trace() Trace {
	parts := make([]string, len(n.Names))
	for idx, name := range n.Names {
		parts[idx] = name.Name
	}
	return Trace{Qualifier: string(n.Type) + " " + strings.Join(parts, ", "), Context: n.Context}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type FunctionStatement struct {
	nodeImpl
	statementMarker

	Name    *Name         `json:"name"`
	Body    *FunctionBody `json:"body"`
	IsLocal bool          `json:"isLocal"`
}

func NewFunctionStatement(name *Name, body *FunctionBody, isLocal bool) *FunctionStatement {
	return &FunctionStatement{nodeImpl: newNodeImpl(NodeFunctionStatement), Name: name, Body: body, IsLocal: isLocal}
}

func (n *FunctionStatement) Trace() Trace {
	return Trace{Qualifier: string(n.Type) + " " + n.Name.Name, Context: n.Context}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Expressions []Expression `json:"expressions"`
}

func NewReturnStatement(exprs []Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Expressions: exprs}
}

// AssignStatement covers `a, b = x, y` and `local a, b = x, y`. Local targets are always Names.
type AssignStatement struct {
	nodeImpl
	statementMarker

	IsLocal bool         `json:"isLocal"`
	Targets []Expression `json:"targets"`
	Values  []Expression `json:"values"`
}

func NewAssignStatement(isLocal bool, targets, values []Expression) *AssignStatement {
	return &AssignStatement{nodeImpl: newNodeImpl(NodeAssignStatement), IsLocal: isLocal, Targets: targets, Values: values}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}
