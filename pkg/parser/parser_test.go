package parser

import (
	"strconv"
	"strings"
	"testing"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, err := ParseChunk("test.lua", src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return chunk
}

func expectParseError(t *testing.T, src, fragment string) *diagnostics.Error {
	t.Helper()
	_, err := ParseChunk("test.lua", src)
	if err == nil {
		t.Fatalf("expected parse error for %q", src)
	}
	diag, ok := diagnostics.As(err)
	if !ok {
		t.Fatalf("expected diagnostics error, got %T: %v", err, err)
	}
	if !strings.Contains(diag.Message, fragment) {
		t.Fatalf("error %q does not contain %q", diag.Message, fragment)
	}
	return diag
}

func onlyStatement(t *testing.T, chunk *ast.Chunk) ast.Statement {
	t.Helper()
	if len(chunk.Block.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(chunk.Block.Statements))
	}
	return chunk.Block.Statements[0]
}

func returnedExpression(t *testing.T, src string) ast.Expression {
	t.Helper()
	ret, ok := onlyStatement(t, mustParse(t, src)).(*ast.ReturnStatement)
	if !ok || len(ret.Expressions) != 1 {
		t.Fatalf("expected single-value return in %q", src)
	}
	return ret.Expressions[0]
}

// render prints an expression fully parenthesized so precedence is visible.
func render(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *ast.Name:
		return e.Name
	case *ast.StringLiteral:
		return "'" + e.Value + "'"
	case *ast.UnaryExpression:
		return "(" + e.Operator + " " + render(e.Operand) + ")"
	case *ast.BinaryExpression:
		return "(" + render(e.Left) + " " + e.Operator + " " + render(e.Right) + ")"
	case *ast.ParenExpression:
		return render(e.Expression)
	case *ast.InvokeExpression:
		parts := make([]string, len(e.Arguments))
		for idx, arg := range e.Arguments {
			parts[idx] = render(arg)
		}
		return render(e.Target) + "(" + strings.Join(parts, ", ") + ")"
	case *ast.GetMember:
		return render(e.Target) + "." + e.Member.Name
	case *ast.GetIndex:
		return render(e.Target) + "[" + render(e.Index) + "]"
	default:
		return string(expr.NodeType())
	}
}

func TestPrecedence(t *testing.T) {
	cases := map[string]string{
		"return 1 + 2 * 3":         "(1 + (2 * 3))",
		"return 1 - 2 - 3":         "((1 - 2) - 3)",
		"return 2 ^ 3 ^ 2":         "(2 ^ (3 ^ 2))",
		"return -2 ^ 2":            "(- (2 ^ 2))",
		"return 2 ^ -1":            "(2 ^ (- 1))",
		"return 'a' .. 'b' .. 'c'": "('a' .. ('b' .. 'c'))",
		"return 1 + 2 .. 3":        "((1 + 2) .. 3)",
		"return a or b and c":      "(a or (b and c))",
		"return not a == b":        "((not a) == b)",
		"return 1 < 2 == true":     "((1 < 2) == BooleanLiteral)",
		"return true == 1 < 2":     "(BooleanLiteral == (1 < 2))",
		"return a ~= b >= c":       "(a ~= (b >= c))",
		"return #t + 1":            "((# t) + 1)",
		"return (1 + 2) * 3":       "((1 + 2) * 3)",
		"return 7 // 2 % 3":        "((7 // 2) % 3)",
	}
	for src, want := range cases {
		if got := render(returnedExpression(t, src)); got != want {
			t.Fatalf("%s parsed as %s, want %s", src, got, want)
		}
	}
}

func TestPostfixChain(t *testing.T) {
	got := render(returnedExpression(t, "return a.b[1](2, 3).c"))
	if got != "a.b[1](2, 3).c" {
		t.Fatalf("postfix = %s", got)
	}
	call, ok := returnedExpression(t, `return f "x"`).(*ast.InvokeExpression)
	if !ok || len(call.Arguments) != 1 {
		t.Fatalf("expected string-call sugar")
	}
	call, ok = returnedExpression(t, `return f { 1 }`).(*ast.InvokeExpression)
	if !ok {
		t.Fatalf("expected table-call sugar")
	}
	if _, ok := call.Arguments[0].(*ast.TableConstructor); !ok {
		t.Fatalf("expected table argument, got %T", call.Arguments[0])
	}
}

func TestLocalAssignment(t *testing.T) {
	stmt := onlyStatement(t, mustParse(t, "local a, b = 1"))
	assign, ok := stmt.(*ast.AssignStatement)
	if !ok || !assign.IsLocal || len(assign.Targets) != 2 || len(assign.Values) != 1 {
		t.Fatalf("unexpected local assignment %#v", stmt)
	}
	assign = onlyStatement(t, mustParse(t, "local x")).(*ast.AssignStatement)
	if len(assign.Values) != 0 {
		t.Fatalf("expected no values for `local x`")
	}
}

func TestAssignmentTargets(t *testing.T) {
	stmt := onlyStatement(t, mustParse(t, "t.x = 1"))
	expr, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", stmt)
	}
	if _, ok := expr.Expression.(*ast.SetMember); !ok {
		t.Fatalf("expected SetMember, got %T", expr.Expression)
	}
	stmt = onlyStatement(t, mustParse(t, "t[2] = 5"))
	if _, ok := stmt.(*ast.ExpressionStatement).Expression.(*ast.SetIndex); !ok {
		t.Fatalf("expected SetIndex")
	}
	assign, ok := onlyStatement(t, mustParse(t, "a, t.b = 1, 2")).(*ast.AssignStatement)
	if !ok || assign.IsLocal || len(assign.Targets) != 2 {
		t.Fatalf("expected multi-target assignment")
	}
	if _, ok := assign.Targets[1].(*ast.GetMember); !ok {
		t.Fatalf("second target should be a member, got %T", assign.Targets[1])
	}
	expectParseError(t, "a, f() = 1, 2", "Assignment target is invalid")
}

func TestFunctionStatements(t *testing.T) {
	fn, ok := onlyStatement(t, mustParse(t, "function add(a, b) return a + b end")).(*ast.FunctionStatement)
	if !ok || fn.IsLocal || fn.Name.Name != "add" || len(fn.Body.Parameters) != 2 {
		t.Fatalf("unexpected function statement")
	}
	fn = onlyStatement(t, mustParse(t, "local function f() end")).(*ast.FunctionStatement)
	if !fn.IsLocal {
		t.Fatalf("expected local function")
	}
	stmt := onlyStatement(t, mustParse(t, "function a.b.c() end")).(*ast.ExpressionStatement)
	set, ok := stmt.Expression.(*ast.SetMember)
	if !ok || set.Member.Name != "c" || render(set.Target) != "a.b" {
		t.Fatalf("unexpected dotted function %#v", stmt.Expression)
	}
	if _, ok := set.Value.(*ast.LambdaExpression); !ok {
		t.Fatalf("expected lambda value")
	}
}

func TestLoops(t *testing.T) {
	loop, ok := onlyStatement(t, mustParse(t, "for i = 1, 10 do end")).(*ast.ForStatement)
	if !ok || loop.Variable.Name != "i" {
		t.Fatalf("expected numeric for")
	}
	if _, ok := loop.Step.(*ast.NoneExpression); !ok {
		t.Fatalf("omitted step should be NoneExpression, got %T", loop.Step)
	}
	forIn, ok := onlyStatement(t, mustParse(t, "for k, v in pairs(t) do break end")).(*ast.ForInStatement)
	if !ok || len(forIn.Names) != 2 || len(forIn.Expressions) != 1 {
		t.Fatalf("expected generic for")
	}
	repeat, ok := onlyStatement(t, mustParse(t, "repeat x = x + 1 until x > 3")).(*ast.RepeatStatement)
	if !ok || len(repeat.Body.Statements) != 1 {
		t.Fatalf("expected repeat")
	}
	expectParseError(t, "for i do end", "expected '= or in'")
}

func TestIfChain(t *testing.T) {
	stmt := onlyStatement(t, mustParse(t, "if a then x = 1 elseif b then x = 2 else x = 3 end"))
	ifStmt, ok := stmt.(*ast.IfStatement)
	if !ok || len(ifStmt.Branches) != 2 || ifStmt.Else == nil {
		t.Fatalf("unexpected if statement %#v", stmt)
	}
}

func TestTableConstructor(t *testing.T) {
	expr := returnedExpression(t, "return { 1, 2; x = 3, ['y'] = 4, 5, }")
	table, ok := expr.(*ast.TableConstructor)
	if !ok {
		t.Fatalf("expected table, got %T", expr)
	}
	if len(table.ListInit) != 3 || len(table.MapInit) != 2 {
		t.Fatalf("list=%d map=%d", len(table.ListInit), len(table.MapInit))
	}
	if key, ok := table.MapInit[0].Key.(*ast.StringLiteral); !ok || key.Value != "x" {
		t.Fatalf("first key should be the string x")
	}
	expectParseError(t, "return { 1 + 1 = 2 }", "Table key is invalid")
}

func TestReturnMustBeLast(t *testing.T) {
	mustParse(t, "do return end")
	mustParse(t, "return 1;")
	diag := expectParseError(t, "return 1 x = 2", "Return must be the last statement")
	if diag.Stage != diagnostics.Parser {
		t.Fatalf("stage = %s", diag.Stage)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	expectParseError(t, "break", "Break must appear inside a loop")
	expectParseError(t, "while true do local f = function() break end end", "Break must appear inside a loop")
	mustParse(t, "while true do if x then break end end")
}

func TestExpectedTokenErrors(t *testing.T) {
	diag := expectParseError(t, "if x thn y() end", "expected 'then'")
	if !strings.Contains(diag.Message, "did you mean 'then'?") {
		t.Fatalf("missing keyword hint: %s", diag.Message)
	}
	if diag.Context.Row != 1 || diag.Context.Column != 6 {
		t.Fatalf("unexpected position %+v", diag.Context)
	}
	diag = expectParseError(t, "for i = 1, 2 od x() end", "expected 'do'")
	if !strings.Contains(diag.Message, "did you mean 'do'?") {
		t.Fatalf("missing keyword hint: %s", diag.Message)
	}
	diag = expectParseError(t, "f(1, 2", "expected ')'")
	if strings.Contains(diag.Message, "did you mean") {
		t.Fatalf("unexpected hint: %s", diag.Message)
	}
}

func TestInvalidTerminal(t *testing.T) {
	expectParseError(t, "x = )", "Terminal beginning with ')' is invalid")
}

func TestPostfixAfterAnyTerminal(t *testing.T) {
	cases := map[string]string{
		"return {1, 2, 3}[2]": "TableConstructor[2]",
		"return 'abc'[1]":     "'abc'[1]",
		"return f 5":          "f(5)",
		"return ('s').len":    "'s'.len",
	}
	for src, want := range cases {
		if got := render(returnedExpression(t, src)); got != want {
			t.Fatalf("%s parsed as %s, want %s", src, got, want)
		}
	}
}

func TestNodeContexts(t *testing.T) {
	chunk := mustParse(t, "local x = 1\nprint(x)")
	call := chunk.Block.Statements[1].(*ast.ExpressionStatement)
	ctx := call.Span()
	if ctx.Row != 2 || ctx.Column != 1 || ctx.Length != 8 {
		t.Fatalf("unexpected call context %+v", ctx)
	}
}
