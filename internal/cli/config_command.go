package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/amt/internal/config"
	"github.com/klauern/amt/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage amt configuration",
		Description: `Show or create the amt configuration.

   Settings are read in this order, later sources winning:
     1. built-in defaults
     2. ` + "`~/.config/amt/config.yaml`" + `
     3. the [amt] and [mergetool "<name>"] sections of ~/.gitconfig
     4. the same sections in the repository .git/config and .git/gitconfig
     5. AMT_* environment variables`,
		Commands: []*cli.Command{
			configShowCommand(),
			configInitCommand(),
			configPathCommand(),
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Display the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "yaml",
				Usage:   "Output format: yaml, json",
			},
			&cli.StringFlag{
				Name:  "dir",
				Value: ".",
				Usage: "Directory whose repository configuration is read",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("dir"))
			if err != nil {
				return err
			}
			return showConfig(os.Stdout, cfg, cmd.String("format"))
		},
	}
}

func configInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration file with the default settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return initConfig(os.Stdout, config.FilePath(), cmd.Bool("force"))
		},
	}
}

func configPathCommand() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "Print the configuration file path",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Println(config.FilePath())
			return nil
		},
	}
}

// showConfig writes cfg in the given format.
func showConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
	}
}

// initConfig writes a starter configuration at path.
func initConfig(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.Tools = []string{"gen_simplify", "gen_woven", "gen_additions", "gen_deletions"}
	if err := cfg.SaveToPath(path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Fprintln(w, ui.StatusSuccess("Wrote "+filepath.Clean(path)))
	return nil
}
