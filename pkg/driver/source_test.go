package driver

import (
	"os"
	"path/filepath"
	"testing"

	"kua/interpreter-go/pkg/diagnostics"
)

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.lua")
	if err := os.WriteFile(path, []byte("local x = 1\nreturn x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	prog, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prog.Source.Name != "main.lua" || len(prog.Chunk.Block.Statements) != 2 {
		t.Fatalf("unexpected program %#v", prog)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestCompileReportsStage(t *testing.T) {
	cases := map[string]diagnostics.Stage{
		"x = 'open":   diagnostics.Lexer,
		"x = = 1":     diagnostics.Parser,
		"local @ = 1": diagnostics.Lexer,
	}
	for src, stage := range cases {
		prog, err := Compile("inline", src)
		diag, ok := diagnostics.As(err)
		if !ok {
			t.Fatalf("%q: expected diagnostics error, got %v", src, err)
		}
		if diag.Stage != stage {
			t.Fatalf("%q: stage = %s, want %s", src, diag.Stage, stage)
		}
		if prog == nil || prog.Source.Text != src {
			t.Fatalf("%q: program source should be kept for snippets", src)
		}
	}
}
