package interpreter

import "kua/interpreter-go/pkg/runtime"

// breakSignal unwinds to the nearest enclosing loop.
type breakSignal struct{}

func (breakSignal) Error() string { return "break outside loop" }

// returnSignal unwinds to the nearest call boundary or to Run.
type returnSignal struct {
	values []runtime.Value
}

func (returnSignal) Error() string { return "return outside function" }

func isSignal(err error) bool {
	switch err.(type) {
	case breakSignal, returnSignal:
		return true
	default:
		return false
	}
}
