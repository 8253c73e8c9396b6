// Package launcher runs the configured chain of merge tools on a merge,
// stopping at the first tool that leaves no conflict behind.
//
// Builtin solvers run in-process. Other tools are resolved from the known
// command templates or from the mergetool configuration, then invoked as
// external processes.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauern/amt/internal/config"
	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/solver"
	"github.com/klauern/amt/internal/ui"
	"github.com/samber/lo"
)

// Outcome is the result of running one tool, or the whole chain. Its value
// is the process exit code of `amt merge`.
type Outcome int

const (
	// Success means the merged file holds no conflict anymore.
	Success Outcome = 0
	// NoTool means the tool name was empty, or the chain was.
	NoTool Outcome = 1
	// BadExtension means the tool does not handle the merged file.
	BadExtension Outcome = 2
	// UnknownTool means no command could be found for the tool.
	UnknownTool Outcome = 3
	// Conflicts means the tool ran but conflicts remain.
	Conflicts Outcome = 4
	// InvocationFailed means the tool could not be run.
	InvocationFailed Outcome = 6
)

// String returns a short description of the outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "merged"
	case NoTool:
		return "no tool"
	case BadExtension:
		return "extension not handled"
	case UnknownTool:
		return "unknown tool"
	case Conflicts:
		return "conflicts remain"
	case InvocationFailed:
		return "invocation failed"
	default:
		return fmt.Sprintf("outcome %d", int(o))
	}
}

// ExitCode returns the process exit code for the outcome.
func (o Outcome) ExitCode() int {
	return int(o)
}

// Launcher resolves and runs merge tools.
type Launcher struct {
	cfg        *config.Config
	out        io.Writer
	solverOpts solver.Options
	invoke     func(ctx context.Context, argv []string) (int, error)
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithOutput prints the progress of the chain to w. Nothing is printed by
// default.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) {
		l.out = w
	}
}

// WithSolverOptions sets the options of the builtin solvers. Per tool
// extras still apply on top of them.
func WithSolverOptions(opts solver.Options) Option {
	return func(l *Launcher) {
		l.solverOpts = opts
	}
}

// New returns a launcher reading tool settings from cfg.
func New(cfg *config.Config, opts ...Option) *Launcher {
	if cfg == nil {
		cfg = config.Default()
	}
	l := &Launcher{
		cfg:        cfg,
		solverOpts: solver.DefaultOptions(),
		invoke:     Invoke,
	}
	if cfg.Simplify.MaxCells > 0 {
		l.solverOpts.MaxCells = cfg.Simplify.MaxCells
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Trust reports whether the exit code of tool tells whether conflicts
// remain.
func (l *Launcher) Trust(tool string) bool {
	if t := l.cfg.Tool(tool).TrustExitCode; t != nil {
		return *t
	}
	if IsBuiltin(tool) && l.cfg.Tool(tool).Cmd == "" {
		return true
	}
	return knownTrusts[tool]
}

// Extensions returns the extensions tool is restricted to, nil for any.
func (l *Launcher) Extensions(tool string) []string {
	if exts := l.cfg.Tool(tool).Extensions; len(exts) > 0 {
		return exts
	}
	return knownExtensions[tool]
}

// IgnoredExtensions returns the extensions tool must not run on.
func (l *Launcher) IgnoredExtensions(tool string) []string {
	return l.cfg.Tool(tool).IgnoreExtensions
}

// Path returns the executable of tool.
func (l *Launcher) Path(tool string) string {
	if p := l.cfg.Tool(tool).Path; p != "" {
		return p
	}
	return tool
}

// Command returns the command line template of an external tool: the
// configured cmd, or the known template with the tool path and extra
// options appended as --key value.
func (l *Launcher) Command(tool string) (string, bool) {
	settings := l.cfg.Tool(tool)
	if settings.Cmd != "" {
		return settings.Cmd, true
	}
	tmpl, ok := knownCommands[tool]
	if !ok {
		return "", false
	}
	cmd := strings.ReplaceAll(tmpl, pathPlaceholder, l.Path(tool))

	keys := lo.Keys(settings.Extras)
	slices.Sort(keys)
	for _, k := range keys {
		cmd += fmt.Sprintf(" --%s %s", k, settings.Extras[k])
	}
	return cmd, true
}

// Merge runs the tool chain until a tool succeeds. It returns the outcome
// of the last tool tried. An error is only returned when no chain is
// configured.
func (l *Launcher) Merge(ctx context.Context, files Files) (Outcome, error) {
	if err := l.cfg.CheckTools(); err != nil {
		return NoTool, err
	}

	outcome := NoTool
	for _, tool := range l.cfg.Tools {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		outcome = l.MergeWith(ctx, tool, files)
		if outcome == Success {
			if !l.cfg.KeepReport {
				l.printf(" [AMT] * Cleaning up reports\n")
				if err := CleanReports(files.Merged); err != nil {
					logging.Warn("failed to clean reports", logging.Path(files.Merged), logging.Err(err))
				}
			}
			return Success, nil
		}
	}

	l.printf(" [AMT] ⚑ Sorry, it seems we can't solve it this time\n")
	return outcome, nil
}

// MergeWith runs a single tool on files.
func (l *Launcher) MergeWith(ctx context.Context, tool string, files Files) Outcome {
	log := logging.WithContext(ctx).With(logging.Tool(tool), logging.Path(files.Merged))

	if strings.TrimSpace(tool) == "" {
		l.printf(" [AMT] ø Ignoring empty tool\n")
		return NoTool
	}

	ext := strings.TrimPrefix(filepath.Ext(files.Merged), ".")
	if exts := l.Extensions(tool); len(exts) > 0 && !slices.Contains(exts, ext) {
		l.printf(" [AMT] %s\n", ui.StatusSkipped(fmt.Sprintf("Ignoring tool %s (bad extension : %s)", tool, ext)))
		return BadExtension
	}
	if slices.Contains(l.IgnoredExtensions(tool), ext) {
		l.printf(" [AMT] %s\n", ui.StatusSkipped(fmt.Sprintf("Ignoring tool %s (ignoring extension : %s)", tool, ext)))
		return BadExtension
	}

	l.printf(" [AMT] → Trying merge with %s\n", tool)
	start := time.Now()
	result, err := l.run(ctx, tool, files)
	log = log.With(logging.Duration(time.Since(start)))
	if err != nil {
		log.Error("tool invocation failed", logging.Err(err))
		l.printf(" [AMT] %s\n", ui.StatusError(fmt.Sprintf("%s error running command: %v", tool, err)))
		return InvocationFailed
	}
	if result == UnknownTool {
		l.printf(" [AMT] %s\n", ui.StatusSkipped(fmt.Sprintf("Ignoring tool %s (unknown tool)", tool)))
		return UnknownTool
	}

	solved := result == Success
	if !l.Trust(tool) {
		l.printf(" [AMT] ? %s returned, but this should not be trusted\n", tool)
		remaining, err := conflict.HasRemainingConflicts(files.Merged)
		if err != nil {
			log.Warn("failed to analyse merged file", logging.Err(err))
			remaining = true
		}
		solved = !remaining
	}

	if solved {
		log.Info("tool merged file", logging.Outcome(Success.String()))
		l.printf(" [AMT] %s\n", ui.StatusSuccess(tool+" merged successfully"))
		return Success
	}
	log.Info("tool left conflicts", logging.Outcome(Conflicts.String()))
	l.printf(" [AMT] %s\n", ui.StatusError(tool+" didn't solve all conflicts"))
	return Conflicts
}

// run runs tool and maps its exit code to Success or Conflicts.
func (l *Launcher) run(ctx context.Context, tool string, files Files) (Outcome, error) {
	if IsBuiltin(tool) && l.cfg.Tool(tool).Cmd == "" {
		solved, err := l.runBuiltin(tool, files)
		if err != nil {
			return InvocationFailed, err
		}
		return lo.Ternary(solved, Success, Conflicts), nil
	}

	tmpl, ok := l.Command(tool)
	if !ok {
		return UnknownTool, nil
	}
	cmd := Expand(tmpl, files)
	logging.Debug("invoking tool", logging.Tool(tool), logging.Operation(cmd))
	code, err := l.invoke(ctx, Sanitize(cmd))
	if err != nil {
		return InvocationFailed, err
	}
	return lo.Ternary(code == 0, Success, Conflicts), nil
}

func (l *Launcher) printf(format string, args ...any) {
	if l.out == nil {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// CleanReports removes the report files written next to merged.
func CleanReports(merged string) error {
	abs, err := filepath.Abs(merged)
	if err != nil {
		return err
	}
	dir, base := filepath.Dir(abs), filepath.Base(abs)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, base+".") && strings.HasSuffix(name, conflict.ReportSuffix) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}
