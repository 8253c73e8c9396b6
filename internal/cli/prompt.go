package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/solver"
	"github.com/klauern/amt/internal/ui"
	"github.com/klauern/amt/internal/ui/tui"
)

// maxPreviewLines limits how much of each side is printed before a prompt.
const maxPreviewLines = 10

// Prompter asks the user how to resolve conflicts over plain text, for
// terminals where the TUI is not wanted and for piped answers.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter creates a prompter reading answers from r and writing
// questions to out.
func NewPrompter(r io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		out:    out,
	}
}

var promptOrders = []solver.Order{
	solver.OrderRemoteFirst,
	solver.OrderLocalFirst,
	solver.OrderRemoteOnly,
	solver.OrderLocalOnly,
	solver.OrderNone,
}

// AskOrder implements solver.OrderPrompt. End of input leaves the conflict
// unresolved.
func (p *Prompter) AskOrder(c *conflict.Conflict) (solver.Order, error) {
	fmt.Fprintf(p.out, "\n=== Both sides added lines ===\n")
	p.showSide("LOCAL", c.MarkerLocal(), c.LocalLines())
	p.showSide("REMOTE", c.MarkerRemote(), c.RemoteLines())

	fmt.Fprintln(p.out, "\nHow would you like to combine them?")
	for i, o := range promptOrders {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, o.Description())
	}
	fmt.Fprintf(p.out, "\nEnter choice [1-%d]: ", len(promptOrders))

	for {
		response, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return solver.OrderNone, nil
		}
		if err != nil {
			return solver.OrderNone, err
		}

		choice, err := strconv.Atoi(response)
		if err != nil || choice < 1 || choice > len(promptOrders) {
			fmt.Fprintf(p.out, "Invalid choice. Enter 1-%d: ", len(promptOrders))
			continue
		}
		return promptOrders[choice-1], nil
	}
}

// Confirm implements solver.ConfirmFunc. End of input rejects the
// resolution.
func (p *Prompter) Confirm(c *conflict.Conflict, resolution string) (bool, error) {
	fmt.Fprintf(p.out, "\n=== Single line conflict ===\n")
	p.showSide("LOCAL", c.MarkerLocal(), c.LocalLines())
	p.showSide("BASE", "", c.BaseLines())
	p.showSide("REMOTE", c.MarkerRemote(), c.RemoteLines())
	p.showSide("RESOLUTION", "", conflict.Lines(resolution))
	fmt.Fprint(p.out, "\nApply this resolution? [y/N]: ")

	for {
		response, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(response) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			fmt.Fprint(p.out, "Please answer y or n: ")
		}
	}
}

// readLine returns the next trimmed answer. A last line without newline is
// still an answer.
func (p *Prompter) readLine() (string, error) {
	response, err := p.reader.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && response != "":
	case errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// showSide prints a titled preview of lines.
func (p *Prompter) showSide(label, marker string, lines []string) {
	title := label
	if fields := strings.Fields(marker); len(fields) > 1 {
		title += " (" + strings.Join(fields[1:], " ") + ")"
	}
	fmt.Fprintf(p.out, "%s\n", ui.Bold(title))
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
	for i, line := range lines {
		if i == maxPreviewLines {
			fmt.Fprintf(p.out, "... (%d more lines)\n", len(lines)-maxPreviewLines)
			break
		}
		fmt.Fprintf(p.out, "%4d | %s\n", i+1, strings.TrimRight(line, "\n"))
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompts returns the callbacks used by the builtin solvers. gen_additions
// gets the TUI picker on a terminal, the text prompt when plain is set, and
// nothing otherwise. gen_single_line asks on a terminal or when plain is set,
// and accepts every resolution otherwise.
func prompts(plain bool) (solver.OrderPrompt, solver.ConfirmFunc) {
	interactive := isInteractive()
	if !plain && !interactive {
		return nil, nil
	}
	p := NewPrompter(os.Stdin, os.Stdout)
	if plain {
		return p.AskOrder, p.Confirm
	}
	return tui.PickOrder, p.Confirm
}
