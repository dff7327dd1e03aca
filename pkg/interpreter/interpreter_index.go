package interpreter

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

// getIndex implements `target[index]`.
func getIndex(target, index runtime.Value, ctx ast.Context) (runtime.Value, error) {
	switch t := target.(type) {
	case runtime.NilValue:
		return runtime.Nil, nil
	case runtime.StringValue:
		n, ok := index.(runtime.NumberValue)
		if !ok {
			return nil, diagnostics.InvalidStringIndex(runtime.ToDisplay(index), ctx)
		}
		slot, ok := runtime.ArrayIndex(n.Val)
		if !ok || slot >= len(t.Val) {
			return runtime.Nil, nil
		}
		return runtime.StringValue{Val: t.Val[slot : slot+1]}, nil
	case *runtime.Table:
		switch key := index.(type) {
		case runtime.NilValue:
			return runtime.Nil, nil
		case runtime.NumberValue:
			return t.Get(key.Val), nil
		case runtime.StringValue:
			return t.GetKey(key.Val), nil
		default:
			return nil, diagnostics.InvalidTableIndex(runtime.ToDisplay(index), ctx)
		}
	default:
		return nil, diagnostics.NonIndexedValue(runtime.ToDisplay(target), ctx)
	}
}

// setIndex implements `target[index] = value`.
func setIndex(target, index, value runtime.Value, ctx ast.Context) error {
	t, ok := target.(*runtime.Table)
	if !ok {
		return diagnostics.NonIndexedValue(runtime.ToDisplay(target), ctx)
	}
	switch key := index.(type) {
	case runtime.NilValue:
		return diagnostics.Newf(diagnostics.Script, ctx, "Table index is nil")
	case runtime.NumberValue:
		if !t.Set(key.Val, value) {
			return diagnostics.InvalidArrayIndex(runtime.ToDisplay(index), ctx)
		}
		return nil
	case runtime.StringValue:
		t.SetKey(key.Val, value)
		return nil
	default:
		return diagnostics.InvalidTableIndex(runtime.ToDisplay(index), ctx)
	}
}

// getMember implements `target.name`.
func getMember(target runtime.Value, name string, ctx ast.Context) (runtime.Value, error) {
	switch t := target.(type) {
	case runtime.NilValue:
		return runtime.Nil, nil
	case *runtime.Table:
		return t.GetKey(name), nil
	default:
		return nil, diagnostics.NonAccessedValue(runtime.ToDisplay(target), ctx)
	}
}

func setMember(target runtime.Value, name string, value runtime.Value, ctx ast.Context) error {
	t, ok := target.(*runtime.Table)
	if !ok {
		return diagnostics.NonAccessedValue(runtime.ToDisplay(target), ctx)
	}
	t.SetKey(name, value)
	return nil
}
