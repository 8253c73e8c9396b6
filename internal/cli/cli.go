// Package cli provides the command-line interface for amt.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	return newApp().Run(ctx, args)
}

// ExitCode returns the process exit code for an error returned by Run and
// prints its message to w. Errors carrying no exit code map to 1.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(w, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "amt",
		Usage:   "Solve git merge conflicts with a chain of automatic merge tools",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		// Exit codes are reported by ExitCode once Run returns.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return configureLogging(ctx, cmd), nil
		},
		Commands: []*cli.Command{
			mergeCommand(),
			solveCommand(),
			importsCommand(),
			checkCommand(),
			toolsCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags and
// attaches the logger to ctx.
func configureLogging(ctx context.Context, cmd *cli.Command) context.Context {
	opts := logging.DefaultOptions()
	opts.Level = logging.LevelFor(cmd.Bool("verbose"), cmd.Bool("debug"))
	opts.AddSource = cmd.Bool("debug")

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return logging.NewContext(ctx, logger)
}
