package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v3"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/progress"
	"github.com/klauern/amt/internal/solver"
	"github.com/klauern/amt/internal/ui"
)

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Run one builtin solver over conflicted files",
		UsageText: "amt solve <solver> [options] --merged FILE [--merged FILE...]",
		Description: fmt.Sprintf(`Run a builtin solver over each file, rewriting the conflicts it
   solves. Files are processed one after the other; a file whose walk
   fails is left untouched.

   Solvers: %s

   Examples:
     amt solve gen_simplify --merged src/Main.java
     amt solve gen_additions --order localfirst --merged a.txt --merged b.txt`,
			strings.Join(solver.Names(), ", ")),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "merged",
				Aliases: []string{"m"},
				Usage:   "Conflicted file to solve (repeatable)",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"r"},
				Usage:   "Report mode: none, solved, unsolved, full",
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "gen_additions order: remotefirst, localfirst, remoteonly, localonly, ask",
			},
			&cli.BoolFlag{
				Name:  "whitespace",
				Usage: "Let gen_additions treat a whitespace-only base as empty",
			},
			plainPromptFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("solve requires a solver name (available: %s)", strings.Join(solver.Names(), ", "))
			}
			paths := append(cmd.StringSlice("merged"), cmd.Args().Tail()...)
			if len(paths) == 0 {
				return errors.New("solve requires at least one --merged file")
			}

			cfg, err := loadConfig(filepath.Dir(paths[0]))
			if err != nil {
				return err
			}

			opts := solver.DefaultOptions()
			if cfg.Simplify.MaxCells > 0 {
				opts.MaxCells = cfg.Simplify.MaxCells
			}
			if cmd.IsSet("order") {
				if opts.Order, err = solver.ParseOrder(cmd.String("order")); err != nil {
					return err
				}
			}
			opts.Whitespace = cmd.Bool("whitespace")
			opts.AskOrder, opts.Confirm = prompts(cmd.Bool("plain-prompt"))

			report := cfg.GetReportMode()
			if cmd.IsSet("report") {
				if report, err = conflict.ParseReportMode(cmd.String("report")); err != nil {
					return err
				}
			}

			s, err := solver.Lookup(name, opts)
			if err != nil {
				return err
			}

			remaining, err := solveFiles(os.Stdout, paths, s, report)
			fmt.Printf("\nSolved %d of %d file(s)\n", len(paths)-len(remaining), len(paths))
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

type fileState int

const (
	fileSolved fileState = iota
	fileConflicted
	fileFailed
)

// solveFiles runs s over every path and returns the paths still holding
// conflicts. Failures are collected so that one bad file does not stop the
// others; a failed file also counts as remaining.
func solveFiles(out io.Writer, paths []string, s solver.Solver, report conflict.ReportMode) ([]string, error) {
	var (
		errs   *multierror.Error
		states = make([]fileState, len(paths))
		bar    *progress.Bar
	)
	if len(paths) > 1 {
		bar = progress.Files(len(paths), os.Stderr)
	}

	for i, path := range paths {
		if bar != nil {
			bar.Start(path)
		}

		status, err := solver.Run(path, s, report)
		switch {
		case err != nil:
			logging.Warn("solve failed", logging.Path(path), logging.Solver(s.Name()), logging.Err(err))
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			states[i] = fileFailed
		case status == conflict.StatusSuccess:
			logging.Info("file solved", logging.Path(path), logging.Solver(s.Name()))
			states[i] = fileSolved
		default:
			states[i] = fileConflicted
		}

		if bar != nil {
			if err := bar.Done(path); err != nil {
				logging.Debug("progress update failed", logging.Err(err))
			}
		}
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			logging.Debug("progress finish failed", logging.Err(err))
		}
	}

	var remaining []string
	for i, path := range paths {
		switch states[i] {
		case fileSolved:
			fmt.Fprintf(out, "%s\n", ui.StatusSuccess(path))
			continue
		case fileConflicted:
			fmt.Fprintf(out, "%s\n", ui.StatusWarning(path+": conflicts remain"))
		case fileFailed:
			fmt.Fprintf(out, "%s\n", ui.StatusError(path))
		}
		remaining = append(remaining, path)
	}

	return remaining, errs.ErrorOrNil()
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report whether files still contain conflict markers",
		UsageText: "amt check FILE...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("check requires at least one file")
			}

			conflicted, err := checkFiles(os.Stdout, paths)
			if err != nil {
				return err
			}
			if conflicted > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// checkFiles prints the state of each path and returns how many still hold
// conflict markers.
func checkFiles(out io.Writer, paths []string) (int, error) {
	var (
		errs       *multierror.Error
		conflicted int
	)
	for _, path := range paths {
		remaining, err := conflict.HasRemainingConflicts(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if remaining {
			conflicted++
			fmt.Fprintf(out, "%s\n", ui.StatusError(path+": conflicts remain"))
		} else {
			fmt.Fprintf(out, "%s\n", ui.StatusSuccess(path))
		}
	}
	return conflicted, errs.ErrorOrNil()
}
