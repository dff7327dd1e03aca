package interpreter

import (
	"fortio.org/log"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeStatement(node ast.Statement) error {
	log.LogVf("eval %s%s", node.NodeType(), node.Span())
	switch n := node.(type) {
	case *ast.Block:
		return i.executeBlock(n)
	case *ast.IfStatement:
		return trace(i.executeIf(n), n)
	case *ast.WhileStatement:
		return trace(i.executeWhile(n), n)
	case *ast.RepeatStatement:
		return trace(i.executeRepeat(n), n)
	case *ast.ForStatement:
		return trace(i.executeFor(n), n)
	case *ast.ForInStatement:
		return trace(i.executeForIn(n), n)
	case *ast.BreakStatement:
		return breakSignal{}
	case *ast.FunctionStatement:
		return trace(i.executeFunctionStatement(n), n)
	case *ast.ReturnStatement:
		return i.executeReturn(n)
	case *ast.AssignStatement:
		return i.executeAssign(n)
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression)
		return err
	default:
		return diagnostics.Newf(diagnostics.General, node.Span(), "unsupported statement type: %s", node.NodeType())
	}
}

// executeBlock runs stmts in a new scope that is popped on every exit path.
func (i *Interpreter) executeBlock(block *ast.Block) error {
	i.memory.Push()
	defer i.memory.Pop()
	return trace(i.executeStatements(block.Statements), block)
}

func (i *Interpreter) executeStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := i.executeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeIf(stmt *ast.IfStatement) error {
	for _, branch := range stmt.Branches {
		cond, err := i.evaluateSingle(branch.Test)
		if err != nil {
			return err
		}
		if runtime.Truthy(cond) {
			log.LogVf("if%s is TRUE, picking branch", branch.Test.Span())
			return i.executeBlock(branch.Body)
		}
	}
	if stmt.Else != nil {
		return i.executeBlock(stmt.Else)
	}
	return nil
}

// loopResult folds a body error into loop control: stop reports whether the loop ends.
func loopResult(err error) (stop bool, out error) {
	switch err.(type) {
	case nil:
		return false, nil
	case breakSignal:
		return true, nil
	default:
		return true, err
	}
}

func (i *Interpreter) executeWhile(stmt *ast.WhileStatement) error {
	for {
		if err := i.checkContext(stmt.Span()); err != nil {
			return err
		}
		cond, err := i.evaluateSingle(stmt.Test)
		if err != nil {
			return err
		}
		if !runtime.Truthy(cond) {
			return nil
		}
		if stop, err := loopResult(i.executeBlock(stmt.Body)); stop {
			return err
		}
	}
}

// executeRepeat evaluates the condition inside the body's scope so it can see the body's locals.
func (i *Interpreter) executeRepeat(stmt *ast.RepeatStatement) error {
	for {
		if err := i.checkContext(stmt.Span()); err != nil {
			return err
		}
		done, err := i.repeatIteration(stmt)
		if stop, err := loopResult(err); stop {
			return err
		}
		if done {
			return nil
		}
	}
}

func (i *Interpreter) repeatIteration(stmt *ast.RepeatStatement) (bool, error) {
	i.memory.Push()
	defer i.memory.Pop()
	if err := i.executeStatements(stmt.Body.Statements); err != nil {
		return false, trace(err, stmt.Body)
	}
	cond, err := i.evaluateSingle(stmt.Test)
	if err != nil {
		return false, err
	}
	return runtime.Truthy(cond), nil
}

func (i *Interpreter) forNumber(expr ast.Expression, what string) (float64, error) {
	val, err := i.evaluateSingle(expr)
	if err != nil {
		return 0, err
	}
	n, ok := toNumber(val)
	if !ok {
		return 0, diagnostics.Newf(diagnostics.Script, expr.Span(), "For %s '%s' must be a number", what, runtime.ToDisplay(val))
	}
	return n, nil
}

func (i *Interpreter) executeFor(stmt *ast.ForStatement) error {
	start, err := i.forNumber(stmt.Start, "initial value")
	if err != nil {
		return err
	}
	limit, err := i.forNumber(stmt.Limit, "limit")
	if err != nil {
		return err
	}
	step := 1.0
	if _, omitted := stmt.Step.(*ast.NoneExpression); !omitted {
		if step, err = i.forNumber(stmt.Step, "step"); err != nil {
			return err
		}
	}
	if step == 0 {
		return diagnostics.Newf(diagnostics.Script, stmt.Step.Span(), "For step is zero")
	}
	for v := start; (step > 0 && v <= limit) || (step < 0 && v >= limit); v += step {
		if err := i.checkContext(stmt.Span()); err != nil {
			return err
		}
		err := i.loopIteration(stmt.Body, func() {
			i.memory.Assign(stmt.Variable.Name, runtime.NumberValue{Val: v}, true)
		})
		if stop, err := loopResult(err); stop {
			return err
		}
	}
	return nil
}

// loopIteration runs one pass of a loop body in a fresh scope after bind has
// declared the loop variables there.
func (i *Interpreter) loopIteration(body *ast.Block, bind func()) error {
	i.memory.Push()
	defer i.memory.Pop()
	bind()
	return i.executeBlock(body)
}

// executeForIn iterates a table's entries directly, or calls an iterator
// function f(s, ctl) until its first result is nil.
func (i *Interpreter) executeForIn(stmt *ast.ForInStatement) error {
	values, err := i.evaluateExpressionList(stmt.Expressions)
	if err != nil {
		return err
	}
	iterator, state, control := valueAt(values, 0), valueAt(values, 1), valueAt(values, 2)

	bindNames := func(results []runtime.Value) func() {
		return func() {
			for idx, name := range stmt.Names {
				i.memory.Assign(name.Name, valueAt(results, idx), true)
			}
		}
	}

	if table, ok := iterator.(*runtime.Table); ok {
		for _, entry := range table.Entries() {
			if err := i.checkContext(stmt.Span()); err != nil {
				return err
			}
			err := i.loopIteration(stmt.Body, bindNames([]runtime.Value{entry.Key, entry.Value}))
			if stop, err := loopResult(err); stop {
				return err
			}
		}
		return nil
	}

	for {
		results, err := i.callValue(iterator, []runtime.Value{state, control}, stmt.Span(), "for iterator")
		if err != nil {
			return err
		}
		first := valueAt(results, 0)
		if first.Kind() == runtime.KindNil {
			return nil
		}
		control = first
		err = i.loopIteration(stmt.Body, bindNames(results))
		if stop, err := loopResult(err); stop {
			return err
		}
	}
}

// executeFunctionStatement captures the current scope. A local function is
// bound in that same scope, so its body can call itself.
func (i *Interpreter) executeFunctionStatement(stmt *ast.FunctionStatement) error {
	fn := &runtime.FunctionValue{
		Name:        stmt.Name.Name,
		Declaration: stmt.Body,
		Closure:     i.memory.Current(),
	}
	log.LogVf("define function %s (local=%t)", fn.Name, stmt.IsLocal)
	i.memory.Assign(stmt.Name.Name, fn, stmt.IsLocal)
	return nil
}

func (i *Interpreter) executeReturn(stmt *ast.ReturnStatement) error {
	values, err := i.evaluateExpressionList(stmt.Expressions)
	if err != nil {
		return err
	}
	return returnSignal{values: values}
}

// executeAssign evaluates every value first, then binds targets left to right.
// Missing values are nil and extra values are dropped.
func (i *Interpreter) executeAssign(stmt *ast.AssignStatement) error {
	values, err := i.evaluateExpressionList(stmt.Values)
	if err != nil {
		return err
	}
	for idx, target := range stmt.Targets {
		value := valueAt(values, idx)
		if err := i.assignTarget(target, value, stmt.IsLocal); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) assignTarget(target ast.Expression, value runtime.Value, local bool) error {
	switch t := target.(type) {
	case *ast.Name:
		log.LogVf("assign %s (local=%t)", t.Name, local)
		i.memory.Assign(t.Name, value, local)
		return nil
	case *ast.GetIndex:
		container, err := i.evaluateSingle(t.Target)
		if err != nil {
			return err
		}
		index, err := i.evaluateSingle(t.Index)
		if err != nil {
			return err
		}
		return setIndex(container, index, value, t.Span())
	case *ast.GetMember:
		container, err := i.evaluateSingle(t.Target)
		if err != nil {
			return err
		}
		return setMember(container, t.Member.Name, value, t.Span())
	default:
		return diagnostics.InvalidAssignment(target.Span())
	}
}

func valueAt(values []runtime.Value, idx int) runtime.Value {
	if idx < len(values) && values[idx] != nil {
		return values[idx]
	}
	return runtime.Nil
}
