package interpreter

import (
	"cmp"
	"math"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

type operandError func(value any, operator string, ctx ast.Context) *diagnostics.Error

// toNumber accepts numbers and numeric strings.
func toNumber(v runtime.Value) (float64, bool) {
	switch val := v.(type) {
	case runtime.NumberValue:
		return val.Val, true
	case runtime.StringValue:
		return runtime.ParseNumber(val.Val)
	default:
		return 0, false
	}
}

// arithmeticOperand coerces v for an arithmetic operator. Strings that are not
// numerals fail with a coercion error, other kinds with invalid.
func arithmeticOperand(v runtime.Value, op string, ctx ast.Context, invalid operandError) (float64, error) {
	switch val := v.(type) {
	case runtime.NumberValue:
		return val.Val, nil
	case runtime.StringValue:
		if n, ok := runtime.ParseNumber(val.Val); ok {
			return n, nil
		}
		return 0, diagnostics.NumberCoercion(val.Val, ctx)
	default:
		return 0, invalid(runtime.ToDisplay(v), op, ctx)
	}
}

func binaryOperation(op string, left, right runtime.Value, ctx ast.Context) (runtime.Value, error) {
	switch op {
	case "+", "-", "*", "/", "//", "%", "^":
		return arithmetic(op, left, right, ctx)
	case "..":
		return runtime.StringValue{Val: runtime.ToDisplay(left) + runtime.ToDisplay(right)}, nil
	case "==":
		return runtime.Bool(runtime.Equal(left, right)), nil
	case "~=":
		return runtime.Bool(!runtime.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return compare(op, left, right, ctx)
	default:
		return nil, diagnostics.Newf(diagnostics.General, ctx, "unsupported binary operator %s", op)
	}
}

func arithmetic(op string, left, right runtime.Value, ctx ast.Context) (runtime.Value, error) {
	a, err := arithmeticOperand(left, op, ctx, diagnostics.InvalidLeftOperand)
	if err != nil {
		return nil, err
	}
	b, err := arithmeticOperand(right, op, ctx, diagnostics.InvalidRightOperand)
	if err != nil {
		return nil, err
	}
	var out float64
	switch op {
	case "+":
		out = a + b
	case "-":
		out = a - b
	case "*":
		out = a * b
	case "/":
		out = a / b
	case "//":
		out = math.Floor(a / b)
	case "%":
		out = floorMod(a, b)
	case "^":
		out = math.Pow(a, b)
	}
	return runtime.NumberValue{Val: out}, nil
}

// floorMod is a - floor(a/b)*b: the result takes the sign of the divisor.
func floorMod(a, b float64) float64 {
	if math.IsInf(b, 0) && !math.IsInf(a, 0) && !math.IsNaN(a) {
		if a == 0 || (a > 0) == (b > 0) {
			return a
		}
		return b
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func compare(op string, left, right runtime.Value, ctx ast.Context) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.NumberValue:
		r, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, diagnostics.InvalidRightOperand(runtime.ToDisplay(right), op, ctx)
		}
		return runtime.Bool(ordered(op, l.Val, r.Val)), nil
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		if !ok {
			return nil, diagnostics.InvalidRightOperand(runtime.ToDisplay(right), op, ctx)
		}
		return runtime.Bool(ordered(op, l.Val, r.Val)), nil
	default:
		return nil, diagnostics.InvalidLeftOperand(runtime.ToDisplay(left), op, ctx)
	}
}

func ordered[T cmp.Ordered](op string, a, b T) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}
