// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes a harness running amt commands in-process, fixtures for merge
// scenarios, and assertions on outputs, exit codes and merged files.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/amt/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Stderr holds the message printed for the returned error, as main does.
	Stderr string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the process exit code main would use.
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness provides a test harness for running E2E CLI tests.
// It manages environment isolation, temp directories, and output capture.
type Harness struct {
	t       *testing.T
	homeDir string
}

// NewHarness creates a new E2E test harness. HOME and XDG_CONFIG_HOME point
// to an empty directory, so neither the user's amt configuration nor their
// ~/.gitconfig leak into the test, and AMT_* variables are cleared.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	h := &Harness{t: t, homeDir: homeDir}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))
	h.SetEnv("GIT_CONFIG_NOSYSTEM", "1")
	for _, key := range []string{
		"AMT_TOOLS", "AMT_VERBOSE", "AMT_KEEP_REPORT", "AMT_SIMPLIFY_MAX_CELLS",
		"AMT_IMPORTS_PRESETS_FILE", "AMT_IMPORTS_ORDER", "AMT_REPORT_MODE", "AMT_OUTPUT_COLOR",
	} {
		h.SetEnv(key, "")
	}

	return h
}

// SetEnv sets an environment variable for CLI commands run through this harness.
// The environment will be restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// WriteGlobalGitConfig writes content as the user's ~/.gitconfig.
func (h *Harness) WriteGlobalGitConfig(content string) {
	h.t.Helper()
	path := filepath.Join(h.homeDir, ".gitconfig")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Run executes a CLI command with the given arguments and captures the output.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.run(args)
}

// RunWithStdin executes a CLI command with stdin input and captures output.
// This is useful for testing commands that ask questions with --plain-prompt.
func (h *Harness) RunWithStdin(stdin string, args ...string) *Result {
	h.t.Helper()

	oldStdin := os.Stdin
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdin pipe: %v", err)
	}
	go func() {
		defer func() {
			_ = stdinW.Close()
		}()
		_, _ = stdinW.WriteString(stdin)
	}()
	os.Stdin = stdinR
	defer func() {
		os.Stdin = oldStdin
		_ = stdinR.Close()
	}()

	return h.run(args)
}

func (h *Harness) run(args []string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "amt" {
		args = append([]string{"amt"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Read stdout concurrently: a command printing more than the pipe
	// buffer would block otherwise.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	var stderr bytes.Buffer
	exitCode := cli.ExitCode(&stderr, cmdErr)

	return &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderr.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
