// Package diagnostics defines the error type shared by every interpreter stage.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"kua/interpreter-go/pkg/ast"
)

// Stage names the phase that produced an error.
type Stage int

const (
	General Stage = iota
	Lexer
	Parser
	Script
)

func (s Stage) String() string {
	switch s {
	case General:
		return "General"
	case Lexer:
		return "Lexer"
	case Parser:
		return "Parser"
	case Script:
		return "Script"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Error is a language error. Statements append trace entries while it propagates.
type Error struct {
	Stage   Stage
	Message string
	Context ast.Context
	Trace   []ast.Trace
	Cause   error
}

func Newf(stage Stage, ctx ast.Context, format string, args ...any) *Error {
	return &Error{Stage: stage, Message: fmt.Sprintf(format, args...), Context: ctx}
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kua %s Error: %s!%s", e.Stage, e.Message, e.Context)
	width := 0
	for _, tr := range e.Trace {
		if len(tr.Qualifier) > width {
			width = len(tr.Qualifier)
		}
	}
	for _, tr := range e.Trace {
		fmt.Fprintf(&b, "\n\t%-*s%s", width, tr.Qualifier, tr.Context)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap reports err as a language error at ctx, keeping it reachable through errors.Is.
func Wrap(stage Stage, ctx ast.Context, err error) *Error {
	return &Error{Stage: stage, Message: err.Error(), Context: ctx, Cause: err}
}

// AddTrace records the construct the error is propagating through.
func (e *Error) AddTrace(tr ast.Trace) {
	e.Trace = append(e.Trace, tr)
}

// As extracts a *Error from an error chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Failure reports a driver-level problem with no source location.
func Failure(format string, args ...any) *Error {
	return Newf(General, ast.NoContext, format, args...)
}

// Lexer errors

func IllegalCharacter(ch byte, ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "Character '%c' is illegal", ch)
}

func InvalidEscape(ch byte, ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "Escaped character '%c' is invalid", ch)
}

func IllegalSequence(seq string, ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "Character sequence '%s' is illegal", seq)
}

func InvalidNumber(text string, ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "Number '%s' is invalid", text)
}

func UnfinishedString(ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "String is unfinished")
}

func UnfinishedLongString(ctx ast.Context) *Error {
	return Newf(Lexer, ctx, "Long string is unfinished")
}

// Parser errors

func InvalidReturn(ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Return must be the last statement in a block or chunk")
}

func InvalidTableKey(ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Table key is invalid; must be a valid name")
}

func InvalidTerminal(found string, ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Terminal beginning with '%s' is invalid", found)
}

func InvalidToken(found, expected string, ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Token '%s' is invalid; expected '%s'", found, expected)
}

func InvalidAssignment(ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Assignment target is invalid; must be a name, index or member")
}

func InvalidBreak(ctx ast.Context) *Error {
	return Newf(Parser, ctx, "Break must appear inside a loop")
}

// Script errors

func InvalidStringIndex(index any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Index '%v' for string is invalid; must be a number", index)
}

func InvalidTableIndex(index any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Index '%v' for table is invalid; must be a number or string", index)
}

func InvalidArrayIndex(index any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Index '%v' for table is invalid; must be a positive integer", index)
}

func InvalidLeftOperand(left any, operator string, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Left operand '%v' for '%s' operator is invalid", left, operator)
}

func InvalidRightOperand(right any, operator string, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Right operand '%v' for '%s' operator is invalid", right, operator)
}

func InvalidUnaryOperand(operand any, operator string, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Operand '%v' for '%s' operator is invalid", operand, operator)
}

func NonAccessedValue(value any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Value '%v' cannot be accessed", value)
}

func NonIndexedValue(value any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Value '%v' cannot be indexed", value)
}

func NonCallableValue(value any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Value '%v' cannot be called", value)
}

func NumberCoercion(value any, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Value '%v' cannot be coerced to a number", value)
}

func StackOverflow(depth int, ctx ast.Context) *Error {
	return Newf(Script, ctx, "Stack overflow; call depth exceeded %d", depth)
}
