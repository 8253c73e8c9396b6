package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/klauern/amt/internal/cli"
)

// runCLI runs the CLI with args and returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := cli.Run(context.Background(), append([]string{"amt"}, args...))

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close pipe writer: %v", closeErr)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("failed to read captured output: %v", copyErr)
	}
	return buf.String(), runErr
}

func TestCLIInitialization(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("CLI initialization failed: %v", err)
	}

	if !strings.Contains(output, "amt") {
		t.Errorf("expected help output to contain 'amt', got: %q", output)
	}
	if !strings.Contains(output, "USAGE") || !strings.Contains(output, "COMMANDS") {
		t.Errorf("expected help output to contain USAGE and COMMANDS sections, got: %q", output)
	}
}

func TestVersionFlag(t *testing.T) {
	output, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version flag failed: %v", err)
	}

	if !strings.Contains(output, "amt") {
		t.Errorf("expected version output to contain 'amt', got: %q", output)
	}
}

func TestGlobalFlagsRecognized(t *testing.T) {
	tests := map[string][]string{
		"verbose flag":   {"--verbose", "version"},
		"debug flag":     {"--debug", "version"},
		"no-color flag":  {"--no-color", "version"},
		"combined flags": {"--verbose", "--no-color", "version"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := runCLI(t, args...); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		})
	}
}

func TestAllCommandsRegistered(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	for _, cmd := range []string{"merge", "solve", "imports", "check", "tools", "config", "version"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("expected command %q to be registered, help output: %q", cmd, output)
		}
	}
}

func TestMergeWithoutTools(t *testing.T) {
	dir := t.TempDir()
	merged := dir + "/file.txt"
	if err := os.WriteFile(merged, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "merge", "--base", merged, "--local", merged, "--remote", merged, "--merged", merged)

	var stderr bytes.Buffer
	if code := cli.ExitCode(&stderr, err); code != 1 {
		t.Errorf("expected exit code 1 without tools, got %d (err = %v)", code, err)
	}
	if !strings.Contains(stderr.String(), "amt.tools") {
		t.Errorf("expected the missing configuration to be reported, got %q", stderr.String())
	}
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer

	if code := cli.ExitCode(&buf, nil); code != 0 {
		t.Errorf("expected 0 for nil, got %d", code)
	}
	if code := cli.ExitCode(&buf, errors.New("boom")); code != 1 {
		t.Errorf("expected 1 for a plain error, got %d", code)
	}
	if !strings.Contains(buf.String(), "Error: boom") {
		t.Errorf("expected the error to be printed, got %q", buf.String())
	}
}
