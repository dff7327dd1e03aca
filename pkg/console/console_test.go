package console

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWritesGoToStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)
	c.WriteLine("hello")
	c.Write([]byte("x"))
	c.NewLine()
	c.ErrorLine("bad")
	if out.String() != "hello\nx\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	if errOut.String() != "bad\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestSessionLog(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)
	stamp := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return stamp }

	path := filepath.Join(t.TempDir(), "session.log")
	c.WriteLine("before")
	if err := c.StartLog(path); err != nil {
		t.Fatalf("StartLog: %v", err)
	}
	session := c.Session()
	if len(session) != 26 {
		t.Fatalf("session id %q is not a ulid", session)
	}
	c.WriteLine("during")
	c.ErrorLine("oops")
	if err := c.StopLog(); err != nil {
		t.Fatalf("StopLog: %v", err)
	}
	c.WriteLine("after")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "LOG START: 2024-05-01T12:30:00Z session " + session + "\n\n" +
		"during\noops\n" +
		"LOG STOP: 2024-05-01T12:30:00Z\n\n"
	if string(data) != want {
		t.Fatalf("log =\n%q\nwant\n%q", data, want)
	}
	if c.Session() != "" {
		t.Fatalf("session should clear after StopLog")
	}
	if !strings.Contains(out.String(), "after") {
		t.Fatalf("console output lost after StopLog")
	}
}

func TestStartLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")
	if err := os.WriteFile(path, []byte("earlier\n"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New(&bytes.Buffer{}, &bytes.Buffer{})
	if err := c.StartLog(path); err != nil {
		t.Fatalf("StartLog: %v", err)
	}
	if err := c.StopLog(); err != nil {
		t.Fatalf("StopLog: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "earlier\nLOG START: ") {
		t.Fatalf("log was not appended: %q", data)
	}
	if err := c.StopLog(); err != nil {
		t.Fatalf("second StopLog should be a no-op: %v", err)
	}
}
