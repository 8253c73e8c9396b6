package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Files are the four files of a merge, as passed by git mergetool.
type Files struct {
	Base   string
	Local  string
	Remote string
	Merged string
}

// Expand substitutes $BASE, $LOCAL, $REMOTE and $MERGED in cmd.
func Expand(cmd string, f Files) string {
	return strings.NewReplacer(
		"$BASE", f.Base,
		"$LOCAL", f.Local,
		"$REMOTE", f.Remote,
		"$MERGED", f.Merged,
	).Replace(cmd)
}

// Sanitize splits cmd into arguments on blanks. Single or double quotes
// group blanks into an argument and are removed, so -o="a b" gives the
// single argument -o=a b. Empty arguments are dropped.
func Sanitize(cmd string) []string {
	var (
		tokens []string
		acc    strings.Builder
		quote  rune
	)
	flush := func() {
		if acc.Len() > 0 {
			tokens = append(tokens, acc.String())
			acc.Reset()
		}
	}

	for _, c := range cmd {
		switch {
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			acc.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
		case c == ' ' || c == '\t' || c == '\n':
			flush()
		default:
			acc.WriteRune(c)
		}
	}
	flush()
	return tokens
}

// Invoke runs argv and returns its exit code. The error is only set when
// the process could not be run at all.
func Invoke(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command")
	}
	// #nosec G204 - the command comes from the user's merge tool configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("running %s: %w", argv[0], err)
	}
}
