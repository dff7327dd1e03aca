package interpreter

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

// evaluateExpression may yield a TupleValue when expr is a call.
func (i *Interpreter) evaluateExpression(node ast.Expression) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NoneExpression, *ast.NilLiteral:
		return runtime.Nil, nil
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.Name:
		return i.memory.Lookup(n.Name), nil
	case *ast.ParenExpression:
		return i.evaluateSingle(n.Expression)
	case *ast.TableConstructor:
		return i.evaluateTable(n)
	case *ast.LambdaExpression:
		return &runtime.FunctionValue{Declaration: n.Body, Closure: i.memory.Current()}, nil
	case *ast.UnaryExpression:
		return i.evaluateUnary(n)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n)
	case *ast.GetIndex:
		target, err := i.evaluateSingle(n.Target)
		if err != nil {
			return nil, err
		}
		index, err := i.evaluateSingle(n.Index)
		if err != nil {
			return nil, err
		}
		return getIndex(target, index, n.Span())
	case *ast.GetMember:
		target, err := i.evaluateSingle(n.Target)
		if err != nil {
			return nil, err
		}
		return getMember(target, n.Member.Name, n.Span())
	case *ast.SetIndex:
		return runtime.Nil, i.evaluateSetIndex(n)
	case *ast.SetMember:
		return runtime.Nil, i.evaluateSetMember(n)
	case *ast.InvokeExpression:
		return i.evaluateInvoke(n)
	default:
		return nil, diagnostics.Newf(diagnostics.General, node.Span(), "unsupported expression type: %s", node.NodeType())
	}
}

// evaluateSingle narrows the result to its first value.
func (i *Interpreter) evaluateSingle(node ast.Expression) (runtime.Value, error) {
	val, err := i.evaluateExpression(node)
	if err != nil {
		return nil, err
	}
	return runtime.First(val), nil
}

// evaluateExpressionList evaluates left to right and flattens every tuple in place.
func (i *Interpreter) evaluateExpressionList(exprs []ast.Expression) ([]runtime.Value, error) {
	out := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := i.evaluateExpression(expr)
		if err != nil {
			return nil, err
		}
		if tuple, ok := val.(runtime.TupleValue); ok {
			out = append(out, tuple.Values...)
			continue
		}
		out = append(out, val)
	}
	return out, nil
}

func (i *Interpreter) evaluateTable(node *ast.TableConstructor) (runtime.Value, error) {
	table := runtime.NewTable()
	items, err := i.evaluateExpressionList(node.ListInit)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		table.Append(item)
	}
	for _, field := range node.MapInit {
		key, err := i.evaluateSingle(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := i.evaluateSingle(field.Value)
		if err != nil {
			return nil, err
		}
		if err := setIndex(table, key, value, field.Key.Span()); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (i *Interpreter) evaluateUnary(node *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluateSingle(node.Operand)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "not":
		return runtime.Bool(!runtime.Truthy(operand)), nil
	case "-":
		n, err := arithmeticOperand(operand, node.Operator, node.Span(), diagnostics.InvalidUnaryOperand)
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: -n}, nil
	case "#":
		switch v := operand.(type) {
		case runtime.StringValue:
			return runtime.NumberValue{Val: float64(len(v.Val))}, nil
		case *runtime.Table:
			return runtime.NumberValue{Val: float64(v.Length())}, nil
		}
		return nil, diagnostics.InvalidUnaryOperand(runtime.ToDisplay(operand), node.Operator, node.Span())
	default:
		return nil, diagnostics.Newf(diagnostics.General, node.Span(), "unsupported unary operator %s", node.Operator)
	}
}

func (i *Interpreter) evaluateBinary(node *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluateSingle(node.Left)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "and":
		if !runtime.Truthy(left) {
			return left, nil
		}
		return i.evaluateSingle(node.Right)
	case "or":
		if runtime.Truthy(left) {
			return left, nil
		}
		return i.evaluateSingle(node.Right)
	}
	right, err := i.evaluateSingle(node.Right)
	if err != nil {
		return nil, err
	}
	return binaryOperation(node.Operator, left, right, node.Span())
}

func (i *Interpreter) evaluateSetIndex(node *ast.SetIndex) error {
	target, err := i.evaluateSingle(node.Target)
	if err != nil {
		return err
	}
	index, err := i.evaluateSingle(node.Index)
	if err != nil {
		return err
	}
	value, err := i.evaluateSingle(node.Value)
	if err != nil {
		return err
	}
	return setIndex(target, index, value, node.Span())
}

func (i *Interpreter) evaluateSetMember(node *ast.SetMember) error {
	target, err := i.evaluateSingle(node.Target)
	if err != nil {
		return err
	}
	value, err := i.evaluateSingle(node.Value)
	if err != nil {
		return err
	}
	if _, ok := node.Value.(*ast.LambdaExpression); ok {
		if fn, ok := value.(*runtime.FunctionValue); ok && fn.Name == "" {
			fn.Name = node.Member.Name
		}
	}
	return setMember(target, node.Member.Name, value, node.Span())
}
