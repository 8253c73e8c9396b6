package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/solver"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func additionConflict() *conflict.Conflict {
	return conflict.New("local line\n", "", "remote line\n", "<<<<<<< HEAD\n", ">>>>>>> feature/x\n")
}

func TestPrompter_AskOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  solver.Order
	}{
		{name: "remote first", input: "1\n", want: solver.OrderRemoteFirst},
		{name: "local first", input: "2\n", want: solver.OrderLocalFirst},
		{name: "remote only", input: "3\n", want: solver.OrderRemoteOnly},
		{name: "local only", input: "4\n", want: solver.OrderLocalOnly},
		{name: "ignore", input: "5\n", want: solver.OrderNone},
		{name: "retry after invalid", input: "x\n9\n2\n", want: solver.OrderLocalFirst},
		{name: "last line without newline", input: "4", want: solver.OrderLocalOnly},
		{name: "end of input", input: "", want: solver.OrderNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)

			got, err := p.AskOrder(additionConflict())
			if err != nil {
				t.Fatalf("AskOrder() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("AskOrder() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrompter_AskOrderOutput(t *testing.T) {
	p, out := newTestPrompter("1\n")

	if _, err := p.AskOrder(additionConflict()); err != nil {
		t.Fatalf("AskOrder() error = %v", err)
	}

	for _, want := range []string{"LOCAL (HEAD)", "REMOTE (feature/x)", "local line", "remote line", "1. Remote first", "5. Ignore conflict"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got %q", want, out.String())
		}
	}
}

func TestPrompter_InvalidChoice(t *testing.T) {
	p, out := newTestPrompter("0\n1\n")

	if _, err := p.AskOrder(additionConflict()); err != nil {
		t.Fatalf("AskOrder() error = %v", err)
	}
	if !strings.Contains(out.String(), "Invalid choice. Enter 1-5") {
		t.Errorf("expected an invalid choice message, got %q", out.String())
	}
}

func TestPrompter_Confirm(t *testing.T) {
	c := conflict.New("a = 1, b = 0\n", "a = 0, b = 0\n", "a = 0, b = 1\n", "<<<<<<< HEAD\n", ">>>>>>> feature\n")

	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\ny\n", want: true},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p, out := newTestPrompter(tt.input)

			got, err := p.Confirm(c, "a = 1, b = 1\n")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "a = 1, b = 1") {
				t.Errorf("expected the resolution to be shown, got %q", out.String())
			}
		})
	}
}

func TestPrompter_LongSidesTruncated(t *testing.T) {
	c := conflict.New(strings.Repeat("x\n", maxPreviewLines+2), "", "y\n", "<<<<<<< HEAD\n", ">>>>>>> b\n")
	p, out := newTestPrompter("5\n")

	if _, err := p.AskOrder(c); err != nil {
		t.Fatalf("AskOrder() error = %v", err)
	}
	if !strings.Contains(out.String(), "... (2 more lines)") {
		t.Errorf("expected the local side to be truncated, got %q", out.String())
	}
}

func TestPrompts_NonInteractive(t *testing.T) {
	if isInteractive() {
		t.Skip("stdin is a terminal")
	}

	ask, confirm := prompts(false)
	if ask != nil || confirm != nil {
		t.Error("expected no prompts without a terminal")
	}

	ask, confirm = prompts(true)
	if ask == nil || confirm == nil {
		t.Error("expected text prompts when requested")
	}
}
