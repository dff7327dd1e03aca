package runtime

import (
	"context"
	"fmt"
	"io"

	"kua/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindFunction
	KindTable
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindTable:
		return "table"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

// Nil is the only nil value.
var Nil Value = NilValue{}

type BooleanValue struct {
	Val bool
}

func (v BooleanValue) Kind() Kind { return KindBoolean }

var (
	True  Value = BooleanValue{Val: true}
	False Value = BooleanValue{Val: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// FunctionValue is a closure: a declaration plus the scope it was created in.
// The declaration is shared and never mutated.
type FunctionValue struct {
	Name        string
	Declaration *ast.FunctionBody
	Closure     *Scope
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeCallContext is handed to host functions.
type NativeCallContext struct {
	Context context.Context
	Output  io.Writer
}

// NativeFunc returns a single value; multiple results are returned as a TupleValue.
type NativeFunc func(call *NativeCallContext, args []Value) (Value, error)

type NativeFunctionValue struct {
	Name string
	Impl NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindFunction }

//-----------------------------------------------------------------------------
// Aggregates
//-----------------------------------------------------------------------------

// TupleValue carries multiple results out of a call. Consumers flatten it.
type TupleValue struct {
	Values []Value
}

func (v TupleValue) Kind() Kind { return KindTuple }

// Pack collapses a result list: none is nil, one is itself, more is a tuple.
func Pack(values []Value) Value {
	switch len(values) {
	case 0:
		return Nil
	case 1:
		return values[0]
	default:
		return TupleValue{Values: values}
	}
}

// First narrows a value to a single position.
func First(v Value) Value {
	if tuple, ok := v.(TupleValue); ok {
		if len(tuple.Values) == 0 {
			return Nil
		}
		return tuple.Values[0]
	}
	if v == nil {
		return Nil
	}
	return v
}

// Truthy reports whether v counts as true in a condition: everything except false and nil.
func Truthy(v Value) bool {
	switch val := First(v).(type) {
	case NilValue:
		return false
	case BooleanValue:
		return val.Val
	default:
		return true
	}
}

// Equal compares without coercion. Tables and functions compare by identity.
func Equal(a, b Value) bool {
	a, b = First(a), First(b)
	switch av := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case BooleanValue:
		bv, ok := b.(BooleanValue)
		return ok && av.Val == bv.Val
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case *Table:
		bv, ok := b.(*Table)
		return ok && av == bv
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av == bv
	case *NativeFunctionValue:
		bv, ok := b.(*NativeFunctionValue)
		return ok && av == bv
	default:
		return false
	}
}
