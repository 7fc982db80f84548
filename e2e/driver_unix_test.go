//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unsafe"

	"github.com/creack/pty"
)

const ringSize = 1 << 20      // 1 MiB of scrollback
var binPath = "vsxbrowse_e2e" // unified binary path

// Key constants for better readability
const (
	KeyEnter = "\r"
	KeyEsc   = "\x1b"
	KeyCtrlC = "\x03"
	KeyDown  = "j"
	KeyEnd   = "G"
	KeyQuit  = "q"
	KeySlash = "/"
	KeyTab   = "\t"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// FakeRegistry serves synthetic extensions from the search endpoint and
// records every request it sees
type FakeRegistry struct {
	Server *httptest.Server
	Total  int

	mu       sync.Mutex
	requests []string
}

// NewFakeRegistry starts a registry holding total extensions
func NewFakeRegistry(t *testing.T, total int) *FakeRegistry {
	t.Helper()
	r := &FakeRegistry{Total: total}
	r.Server = httptest.NewServer(http.HandlerFunc(r.search))
	t.Cleanup(r.Server.Close)
	return r
}

func (r *FakeRegistry) search(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	r.mu.Lock()
	r.requests = append(r.requests, req.URL.RawQuery)
	r.mu.Unlock()

	offset, _ := strconv.Atoi(q.Get("offset"))
	size, _ := strconv.Atoi(q.Get("size"))
	prefix := q.Get("query")
	if prefix == "" {
		prefix = "ext"
	}

	var exts []map[string]any
	for i := offset; i < offset+size && i < r.Total; i++ {
		exts = append(exts, map[string]any{
			"namespace":     "e2e",
			"name":          fmt.Sprintf("%s%03d", prefix, i),
			"displayName":   fmt.Sprintf("Extension %s %d", prefix, i),
			"version":       "1.0.0",
			"downloadCount": 42,
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"offset":     offset,
		"totalSize":  r.Total,
		"extensions": exts,
	})
}

// Requests returns the query strings received so far
func (r *FakeRegistry) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

// TUITestFramework provides utilities for testing TUI applications
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
	cond *sync.Cond
}

// NewTUITest creates a new TUI test framework instance
func NewTUITest(t *testing.T) *TUITestFramework {
	tf := &TUITestFramework{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: t.TempDir(),
	}
	tf.cond = sync.NewCond(&tf.mu)
	return tf
}

// StartBrowser launches vsxbrowse against registry with an isolated config
func (tf *TUITestFramework) StartBrowser(registry *FakeRegistry, args ...string) error {
	base := []string{
		"--registry", registry.Server.URL,
		"--config", filepath.Join(tf.workspace, "config.toml"),
		"--log-file", filepath.Join(tf.workspace, "vsxbrowse.log"),
		"--log-level", "debug",
		"--no-cache",
		"--debounce", "50ms",
	}
	return tf.StartApp(append(base, args...)...)
}

// StartApp launches the application with given arguments in a PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)

	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace, // isolate $HOME
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
		"XDG_CACHE_HOME="+filepath.Join(tf.workspace, ".cache"),
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}

	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty

	ws := struct {
		Row uint16
		Col uint16
		X   uint16
		Y   uint16
	}{40, 120, 0, 0}
	syscall.Syscall(syscall.SYS_IOCTL, ptyFile.Fd(), uintptr(syscall.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	tf.startReader()
	return nil
}

// startReader starts the continuous reader goroutine
func (tf *TUITestFramework) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := tf.pty.Read(buf)
			if n > 0 {
				tf.mu.Lock()
				for i := 0; i < n; i++ {
					tf.buf[tf.head] = buf[i]
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.cond.Broadcast()
				tf.mu.Unlock()
			}
			if err != nil {
				tf.mu.Lock()
				tf.cond.Broadcast()
				tf.mu.Unlock()
				return
			}
		}
	}()
}

// SendKeys sends keystrokes to the application
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Type sends text one key at a time
func (tf *TUITestFramework) Type(text string) error {
	tf.t.Helper()
	for _, r := range text {
		if err := tf.SendKeys(string(r)); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// SeePlain waits for specific plain text to appear (normalized output)
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

// OutputContainsPlain checks if the normalized output contains specific text within a timeout
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor waits for a predicate to be true in the output
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond) // simple, reliable polling; tests only
	}
}

// Snapshot returns the current contents of the ring buffer (thread-safe)
func (tf *TUITestFramework) Snapshot() string {
	tf.t.Helper()
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, ringSize)
	copy(out, tf.buf[tf.head:])
	copy(out[ringSize-tf.head:], tf.buf[:tf.head])
	return string(out)
}

// SnapshotPlain returns the current contents of the ring buffer with ANSI sequences removed
func (tf *TUITestFramework) SnapshotPlain() string {
	tf.t.Helper()
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// WaitExit waits for the process to end
func (tf *TUITestFramework) WaitExit(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- tf.cmd.Wait() }()
	select {
	case err := <-done:
		tf.cmd = nil
		return err
	case <-time.After(timeout):
		return fmt.Errorf("process still running after %s", timeout)
	}
}

// Cleanup closes the PTY and terminates the application
func (tf *TUITestFramework) Cleanup() {
	// Close PTY first to deliver SIGHUP to child process
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
