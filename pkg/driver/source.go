package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/log"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/parser"
)

// Source is a script's name and text. The name is what diagnostics report.
type Source struct {
	Name string
	Text string
}

// Program is a parsed source ready to run.
type Program struct {
	Source Source
	Chunk  *ast.Chunk
}

// ReadSource loads path from disk.
func ReadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Source{Name: filepath.Base(path), Text: string(data)}, nil
}

// Load reads and compiles a script file.
func Load(path string) (*Program, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Compile(src.Name, src.Text)
}

// Compile lexes and parses an in-memory source. Lexer and parser errors come
// back as *diagnostics.Error with the program's source attached for snippets.
func Compile(name, text string) (*Program, error) {
	log.LogVf("compiling %s (%d bytes)", name, len(text))
	chunk, err := parser.ParseChunk(name, text)
	return &Program{Source: Source{Name: name, Text: text}, Chunk: chunk}, err
}
