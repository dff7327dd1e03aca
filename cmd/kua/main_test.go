package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunFilePrintsAndReportsResult(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.lua")
	writeFile(t, script, `
local function greet(name) return "hello " .. name end
print(greet("kua"), 42)
return 1, "two"
`)
	code, stdout, stderr := runCLI(t, script)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "hello kua\t42\nDone: [1, two] (") || !strings.HasSuffix(stdout, " ms)\n") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRunFileScriptErrorShowsSnippet(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.lua")
	writeFile(t, script, `
local x = 1
return x + {}
`)
	code, _, stderr := runCLI(t, script)
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr, "Kua Script Error: Right operand") {
		t.Fatalf("stderr missing diagnostic: %s", stderr)
	}
	if !strings.Contains(stderr, "   2 | return x + {}") || !strings.Contains(stderr, "^") {
		t.Fatalf("stderr missing snippet: %s", stderr)
	}
}

func TestRunFileParseError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.lua")
	writeFile(t, script, "if x thn y() end")
	code, _, stderr := runCLI(t, script)
	if code != 1 || !strings.Contains(stderr, "Kua Parser Error") || !strings.Contains(stderr, "did you mean 'then'?") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
}

func TestRunMissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "absent.lua"))
	if code != 1 || !strings.Contains(stderr, "absent.lua") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
}

func TestRunUsageErrors(t *testing.T) {
	if code, _, stderr := runCLI(t, "a.lua", "b.lua"); code != 2 || !strings.Contains(stderr, "unexpected arguments: b.lua") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
	if code, _, _ := runCLI(t, "-nope"); code != 2 {
		t.Fatalf("unknown flag exit code %d, want 2", code)
	}
	if code, stdout, _ := runCLI(t, "-version"); code != 0 || !strings.Contains(stdout, cliToolVersion) {
		t.Fatalf("version: code %d, stdout %q", code, stdout)
	}
}

func TestRunWithoutArgumentsOrManifest(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, stderr := runCLI(t)
	if code != 1 || !strings.Contains(stderr, "Kua General Error: interactive mode is not supported") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
}

func TestRunManifestDefaultTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kua.yml"), `
name: demo
targets:
  checks:
    type: test
    main: test/all.lua
  app: src/app.lua
runtime:
  max_call_depth: 20
`)
	writeFile(t, filepath.Join(dir, "src", "app.lua"), `
local function depth(n) return depth(n + 1) end
print("app")
depth(1)
`)
	chdir(t, dir)
	code, stdout, stderr := runCLI(t)
	if code != 1 {
		t.Fatalf("exit code %d, want 1 (stack overflow)", code)
	}
	if stdout != "app\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "call depth exceeded 20") {
		t.Fatalf("manifest call depth not applied: %s", stderr)
	}
}

func TestRunManifestNamedTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kua.yml"), `
name: demo
targets:
  app: src/app.lua
  checks:
    type: test
    main: test/all.lua
`)
	writeFile(t, filepath.Join(dir, "src", "app.lua"), `print("app")`)
	writeFile(t, filepath.Join(dir, "test", "all.lua"), `print("checks")`)
	chdir(t, dir)
	code, stdout, stderr := runCLI(t, "-target", "CHECKS")
	if code != 0 || !strings.HasPrefix(stdout, "checks\n") {
		t.Fatalf("code %d, stdout %q, stderr %s", code, stdout, stderr)
	}
	code, _, stderr = runCLI(t, "-target", "missing")
	if code != 1 || !strings.Contains(stderr, "Kua General Error: manifest error: no target named \"missing\"") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
	if code, _, _ := runCLI(t, "-target", "app", "src/app.lua"); code != 2 {
		t.Fatalf("-target with a file: exit code %d, want 2", code)
	}
}

func TestRunTimeout(t *testing.T) {
	script := filepath.Join(t.TempDir(), "spin.lua")
	writeFile(t, script, "while true do end")
	code, _, stderr := runCLI(t, "-timeout", "50ms", script)
	if code != 1 || !strings.Contains(stderr, "deadline exceeded") {
		t.Fatalf("code %d, stderr: %s", code, stderr)
	}
}

func TestDumpAST(t *testing.T) {
	script := filepath.Join(t.TempDir(), "ast.lua")
	writeFile(t, script, "local x = 1")
	code, stdout, stderr := runCLI(t, "-ast", script)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("ast output is not JSON: %v\n%s", err, stdout)
	}
	if decoded["type"] != "Chunk" {
		t.Fatalf("root node = %v", decoded["type"])
	}
}

func TestLogFileMirrorsOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.lua")
	logPath := filepath.Join(dir, "run.log")
	writeFile(t, script, `print("logged")`)
	code, _, stderr := runCLI(t, "-log", logPath, script)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "LOG START: ") || !strings.Contains(text, "logged\nDone: []") || !strings.Contains(text, "LOG STOP: ") {
		t.Fatalf("log contents: %q", text)
	}
}
