package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/amt/internal/config"
	"github.com/klauern/amt/internal/imports"
	"github.com/klauern/amt/internal/launcher"
	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/solver"
	"github.com/klauern/amt/internal/ui"
)

// mergeFlags are the four paths handed over by git mergetool.
func mergeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "base",
			Usage:    "Common ancestor version (git $BASE)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "local",
			Usage:    "Current branch version (git $LOCAL)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "remote",
			Usage:    "Merged branch version (git $REMOTE)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "merged",
			Usage:    "File holding the conflicts, rewritten in place (git $MERGED)",
			Required: true,
		},
	}
}

func mergeFiles(cmd *cli.Command) launcher.Files {
	return launcher.Files{
		Base:   cmd.String("base"),
		Local:  cmd.String("local"),
		Remote: cmd.String("remote"),
		Merged: cmd.String("merged"),
	}
}

func plainPromptFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "plain-prompt",
		Usage: "Ask questions as plain text on stdin instead of the interactive picker",
	}
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Run the configured merge tool chain on a conflicted file",
		UsageText: "amt merge --base B --local L --remote R --merged M",
		Description: `Try each tool of the amt.tools chain until one leaves no conflict
   in the merged file.

   Configure amt as a git mergetool:
     git config --global mergetool.amt.cmd \
       'amt merge --base "$BASE" --local "$LOCAL" --remote "$REMOTE" --merged "$MERGED"'
     git config --global mergetool.amt.trustExitCode true
     git config --global amt.tools "gen_simplify;gen_woven;gen_additions;meld"

   Exit codes:
     0  merged
     1  no tool configured
     2  the last tool does not handle the file extension
     3  the last tool is unknown
     4  conflicts remain
     6  the last tool could not be run`,
		Flags: append(mergeFlags(), plainPromptFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := mergeFiles(cmd)

			cfg, err := loadConfig(filepath.Dir(files.Merged))
			if err != nil {
				return err
			}

			l := newLauncher(cfg, cmd)
			outcome, err := l.Merge(ctx, files)
			if errors.Is(err, config.ErrNoTools) {
				return cli.Exit(ui.StatusError(err.Error()), outcome.ExitCode())
			}
			if err != nil {
				return err
			}
			logging.Info("merge finished", logging.Path(files.Merged), logging.Outcome(outcome.String()))
			return exitFor(outcome)
		},
	}
}

func importsCommand() *cli.Command {
	return &cli.Command{
		Name:      "imports",
		Usage:     "Merge the import section of a Java or Kotlin file",
		UsageText: "amt imports <java|kotlin> --base B --local L --remote R --merged M [--order PRESET] [--custom-order FILE]",
		Description: `Merge the imports of the three versions and rewrite the import
   section of the merged file, sorted by the groups of an order preset.

   Builtin presets: android, idea, and eclipse (Java only).
   Custom presets are read from a TOML file:

     [presets.mycompany]
     languages = ["java", "kotlin"]
     groups = [
       { prefix = "import com.mycompany.", group = 0 },
       { prefix = "import ", group = 1 },
     ]`,
		Flags: append(mergeFlags(),
			&cli.StringFlag{
				Name:    "order",
				Aliases: []string{"o"},
				Usage:   "Import order preset (android, idea, eclipse or a custom preset)",
			},
			&cli.StringFlag{
				Name:  "custom-order",
				Usage: "TOML file with custom import order presets",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tool, err := importTool(cmd.Args().First())
			if err != nil {
				return err
			}
			files := mergeFiles(cmd)

			cfg, err := loadConfig(filepath.Dir(files.Merged))
			if err != nil {
				return err
			}

			settings := cfg.Tool(tool)
			extras := make(map[string]string, len(settings.Extras)+2)
			for k, v := range settings.Extras {
				extras[k] = v
			}
			if cmd.IsSet("order") {
				extras[launcher.ExtraOrder] = cmd.String("order")
			}
			if cmd.IsSet("custom-order") {
				extras[launcher.ExtraPresets] = cmd.String("custom-order")
			}
			settings.Extras = extras
			cfg.MergeTools[tool] = settings

			outcome := launcher.New(cfg, launcher.WithOutput(os.Stdout)).MergeWith(ctx, tool, files)
			return exitFor(outcome)
		},
	}
}

// importTool maps a language argument to its builtin tool.
func importTool(lang string) (string, error) {
	switch lang {
	case imports.LanguageJava:
		return launcher.ToolJavaImports, nil
	case imports.LanguageKotlin:
		return launcher.ToolKotlinImports, nil
	case "":
		return "", errors.New("imports requires a language: java or kotlin")
	default:
		return "", fmt.Errorf("unsupported language %q (use java or kotlin)", lang)
	}
}

// loadConfig loads the configuration seen from dir and applies its output
// preferences.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	switch cfg.Output.Color {
	case "never":
		ui.DisableColors()
	case "always":
		ui.EnableColors()
	}
	return cfg, nil
}

// newLauncher builds a launcher printing its progress when verbose.
func newLauncher(cfg *config.Config, cmd *cli.Command) *launcher.Launcher {
	opts := solver.DefaultOptions()
	if cfg.Simplify.MaxCells > 0 {
		opts.MaxCells = cfg.Simplify.MaxCells
	}
	opts.AskOrder, opts.Confirm = prompts(cmd.Bool("plain-prompt"))

	lopts := []launcher.Option{launcher.WithSolverOptions(opts)}
	if out := progressOutput(cfg, cmd); out != nil {
		lopts = append(lopts, launcher.WithOutput(out))
	}
	return launcher.New(cfg, lopts...)
}

// progressOutput returns stdout when the tool chain progress is wanted.
func progressOutput(cfg *config.Config, cmd *cli.Command) io.Writer {
	if cfg.Verbose || cmd.Bool("verbose") || cmd.Bool("debug") {
		return os.Stdout
	}
	return nil
}

// exitFor turns a non successful outcome into its exit code.
func exitFor(outcome launcher.Outcome) error {
	if outcome == launcher.Success {
		return nil
	}
	return cli.Exit("", outcome.ExitCode())
}
