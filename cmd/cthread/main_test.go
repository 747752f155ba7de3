package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	err := app.Run(append([]string{"cthread"}, args...))
	return out.String(), err
}

func TestIdentifyCommand(t *testing.T) {
	out, err := runApp(t, "identify")
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if !strings.Contains(out, "cooperative user-level threads") {
		t.Fatalf("identify output = %q", out)
	}
}

// TestDemoJoin verifies each worker's result is reported after its join
func TestDemoJoin(t *testing.T) {
	out, err := runApp(t, "--round-robin", "demo", "join", "--threads", "3")
	if err != nil {
		t.Fatalf("demo join failed: %v", err)
	}

	for _, want := range []string{
		"join: thread 1 returned 1",
		"join: thread 2 returned 4",
		"join: thread 3 returned 9",
		"created=3 finished=3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

// TestDemoYield_RoundRobin verifies equal workers take turns
func TestDemoYield_RoundRobin(t *testing.T) {
	out, err := runApp(t, "--round-robin", "demo", "yield", "--threads", "2", "--steps", "2")
	if err != nil {
		t.Fatalf("demo yield failed: %v", err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "yield:") {
			lines = append(lines, line)
		}
	}
	want := []string{
		"yield: thread 1 step 0",
		"yield: thread 2 step 0",
		"yield: thread 1 step 1",
		"yield: thread 2 step 1",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("yield lines = %q, want %q", lines, want)
	}
}

func TestDemoAll_WritesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "cthread.log")

	out, err := runApp(t, "--log-file", logPath, "--verbose", "demo", "all", "--steps", "4")
	if err != nil {
		t.Fatalf("demo all failed: %v", err)
	}

	if got := strings.Count(out, "semaphore: consumed"); got != 4 {
		t.Fatalf("consumed lines = %d, want 4:\n%s", got, out)
	}
	logs, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(logs), "[DEBUG] Created thread") {
		t.Fatalf("log file has no debug lines:\n%s", logs)
	}
}

func TestDemo_RejectsBadFlags(t *testing.T) {
	if _, err := runApp(t, "demo", "yield", "--threads", "0"); err == nil {
		t.Fatal("expected an error for --threads 0")
	}
	if _, err := runApp(t, "--log-level", "loud", "demo", "join"); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
