package interpreter

import (
	"fortio.org/log"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

// evaluateInvoke evaluates the callee, then the arguments left to right, and
// packs the results: nil for none, the value for one, a tuple for more.
func (i *Interpreter) evaluateInvoke(node *ast.InvokeExpression) (runtime.Value, error) {
	callee, err := i.evaluateSingle(node.Target)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateExpressionList(node.Arguments)
	if err != nil {
		return nil, err
	}
	results, err := i.callValue(callee, args, node.Span(), node.CalleeName())
	if err != nil {
		return nil, trace(err, node)
	}
	return runtime.Pack(results), nil
}

// callValue invokes a closure or host function with already-evaluated arguments.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, at ast.Context, name string) ([]runtime.Value, error) {
	if err := i.checkContext(at); err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		if i.frames.Size() >= i.maxCallDepth {
			return nil, diagnostics.StackOverflow(i.maxCallDepth, at)
		}
		i.frames.Push(callFrame{name: name, context: at})
		defer i.frames.Pop()
		return i.callFunction(fn, args)
	case *runtime.NativeFunctionValue:
		log.LogVf("call native %s with %d args", fn.Name, len(args))
		result, err := fn.Impl(&runtime.NativeCallContext{Context: i.ctx, Output: i.output}, args)
		if err != nil {
			if _, ok := diagnostics.As(err); ok {
				return nil, err
			}
			return nil, diagnostics.Wrap(diagnostics.Script, at, err)
		}
		if tuple, ok := result.(runtime.TupleValue); ok {
			return tuple.Values, nil
		}
		if result == nil {
			return nil, nil
		}
		return []runtime.Value{result}, nil
	default:
		return nil, diagnostics.NonCallableValue(runtime.ToDisplay(callee), at)
	}
}

// callFunction binds parameters in a scope parented by the closure and runs the body.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) ([]runtime.Value, error) {
	decl := fn.Declaration
	log.LogVf("call %s with %d args (depth %d)", fn.Name, len(args), i.frames.Size())
	i.memory.PushScope(fn.Closure)
	defer i.memory.Pop()
	for idx, param := range decl.Parameters {
		i.memory.Assign(param.Name, valueAt(args, idx), true)
	}
	err := i.executeBlock(decl.Block)
	switch sig := err.(type) {
	case nil:
		return nil, nil
	case returnSignal:
		return sig.values, nil
	case breakSignal:
		return nil, diagnostics.Newf(diagnostics.Script, decl.Span(), "%s", sig.Error())
	default:
		return nil, err
	}
}
