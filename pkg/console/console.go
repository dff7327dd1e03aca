// Package console is the program's text sink. Everything written to it can be
// mirrored to an append-only session log.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/oklog/ulid/v2"
)

type Console struct {
	mu      sync.Mutex
	stdout  io.Writer
	stderr  io.Writer
	logFile io.WriteCloser
	session string
	now     func() time.Time
}

func New(stdout, stderr io.Writer) *Console {
	return &Console{stdout: stdout, stderr: stderr, now: time.Now}
}

// Session is the id of the active log session, or "" when not logging.
func (c *Console) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// StartLog appends a session header to path and mirrors all further output there.
func (c *Console) StartLog(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("console: open log %s: %w", path, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logFile != nil {
		c.stopLocked()
	}
	c.logFile = file
	c.session = ulid.Make().String()
	fmt.Fprintf(file, "LOG START: %s session %s\n\n", c.now().Format(time.RFC3339), c.session)
	log.LogVf("console log %s started, session %s", path, c.session)
	return nil
}

// StopLog writes the closing marker and closes the log. It is a no-op when not logging.
func (c *Console) StopLog() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Console) stopLocked() error {
	if c.logFile == nil {
		return nil
	}
	fmt.Fprintf(c.logFile, "LOG STOP: %s\n\n", c.now().Format(time.RFC3339))
	err := c.logFile.Close()
	c.logFile = nil
	c.session = ""
	return err
}

// Write makes the console an io.Writer for program output.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror(p)
	return c.stdout.Write(p)
}

func (c *Console) WriteLine(s string) {
	c.Write([]byte(s + "\n"))
}

func (c *Console) NewLine() {
	c.Write([]byte("\n"))
}

func (c *Console) Error(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror([]byte(s))
	c.stderr.Write([]byte(s))
}

func (c *Console) ErrorLine(s string) {
	c.Error(s + "\n")
}

func (c *Console) mirror(p []byte) {
	if c.logFile == nil {
		return
	}
	if _, err := c.logFile.Write(p); err != nil {
		log.Warnf("console log write failed: %v", err)
	}
}
