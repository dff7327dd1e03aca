// Package interpreter evaluates a parsed chunk by walking its AST.
//
// Variables live in a runtime.Memory scope chain. Control flow (break and
// return) travels up the call chain as unexported error values that loops and
// calls consume; language errors are *diagnostics.Error values that collect a
// trace entry from every block, loop and call they pass through.
package interpreter
