package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRangeSameRow(t *testing.T) {
	start := Context{Row: 2, Column: 3, Length: 1}
	end := Context{Row: 2, Column: 9, Length: 2}
	got := Range(start, end)
	if got.Row != 2 || got.Column != 3 || got.Length != 8 {
		t.Fatalf("Range = %+v", got)
	}
	if Range(NoContext, end) != end {
		t.Fatalf("expected end when start is empty")
	}
}

func TestContextString(t *testing.T) {
	if NoContext.String() != "" {
		t.Fatalf("expected empty rendering for NoContext")
	}
	if got := (Context{Row: 4, Column: 7, Length: 1}).String(); got != " (row 4, col 7)" {
		t.Fatalf("String = %q", got)
	}
}

func TestTraceQualifiers(t *testing.T) {
	ctx := Context{Row: 1, Column: 1, Length: 8}
	fn := At(NewFunctionStatement(NewName("fib"), NewFunctionBody(nil, NewBlock(nil)), false), ctx)
	if tr := fn.Trace(); tr.Qualifier != "FunctionStatement fib" || tr.Context != ctx {
		t.Fatalf("unexpected trace %+v", tr)
	}
	call := NewInvokeExpression(NewGetMember(NewName("t"), NewName("f")), nil)
	if tr := call.Trace(); tr.Qualifier != "Call t.f" {
		t.Fatalf("unexpected call trace %+v", tr)
	}
	block := NewBlock(nil)
	if tr := block.Trace(); tr.Qualifier != "Block" {
		t.Fatalf("unexpected block trace %+v", tr)
	}
	loop := NewForInStatement([]*Name{NewName("k"), NewName("v")}, nil, NewBlock(nil))
	if tr := loop.Trace(); tr.Qualifier != "ForInStatement k, v" {
		t.Fatalf("unexpected for-in trace %+v", tr)
	}
}

func TestChunkJSON(t *testing.T) {
	stmt := NewAssignStatement(true, []Expression{NewName("x")}, []Expression{NewNumberLiteral(1)})
	chunk := NewChunk(NewBlock([]Statement{stmt}))
	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"type":"Chunk"`, `"type":"AssignStatement"`, `"isLocal":true`, `"name":"x"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("json %s missing %s", text, want)
		}
	}
}
