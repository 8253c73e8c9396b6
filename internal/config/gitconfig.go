package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/logging"
)

// Git configuration sections and options read by amt.
const (
	sectionAMT       = "amt"
	sectionMergeTool = "mergetool"

	optTools            = "tools"
	optVerbose          = "verbose"
	optKeepReport       = "keepReport"
	optReport           = "report"
	optMaxCells         = "maxCells"
	optPresetsFile      = "presetsFile"
	optPath             = "path"
	optCmd              = "cmd"
	optExtensions       = "extensions"
	optIgnoreExtensions = "ignoreExtensions"
	optTrustExitCode    = "trustExitCode"
)

// amtConfigName is an amt only configuration file kept next to the
// repository configuration, so settings can be shared without touching
// .git/config.
const amtConfigName = "gitconfig"

// applyGlobalGitConfig applies the [amt] and [mergetool "..."] sections of
// the user's global git configuration.
func (c *Config) applyGlobalGitConfig() error {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return fmt.Errorf("reading global git config: %w", err)
	}
	return c.applyGit(cfg.Raw)
}

// applyRepoGitConfig applies the configuration of the repository holding
// dir, then its .git/gitconfig file. Directories outside a repository are
// ignored.
func (c *Config) applyRepoGitConfig(dir string) error {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		logging.Debug("no repository configuration", logging.Path(dir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("reading repository git config: %w", err)
	}
	if err := c.applyGit(cfg.Raw); err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no amt file
		return nil
	}
	return c.applyGitFile(filepath.Join(wt.Filesystem.Root(), ".git", amtConfigName))
}

// applyGitFile decodes a git configuration file and applies it. A missing
// file is not an error.
func (c *Config) applyGitFile(path string) error {
	// #nosec G304 - path is derived from the repository root
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	raw := format.New()
	if err := format.NewDecoder(f).Decode(raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	logging.Debug("applying git config file", logging.Path(path))
	return c.applyGit(raw)
}

// applyGit applies the amt sections of a raw git configuration.
func (c *Config) applyGit(raw *format.Config) error {
	if raw == nil {
		return nil
	}
	for _, s := range raw.Sections {
		switch {
		case s.IsName(sectionAMT):
			for _, o := range s.Options {
				if err := c.setOption(o.Key, o.Value); err != nil {
					return err
				}
			}
		case s.IsName(sectionMergeTool):
			for _, sub := range s.Subsections {
				tool := c.Tool(sub.Name)
				for _, o := range sub.Options {
					if err := tool.setOption(o.Key, o.Value); err != nil {
						return fmt.Errorf("mergetool %q: %w", sub.Name, err)
					}
				}
				if c.MergeTools == nil {
					c.MergeTools = map[string]ToolConfig{}
				}
				c.MergeTools[sub.Name] = tool
			}
		}
	}
	return nil
}

func (c *Config) setOption(key, value string) error {
	switch {
	case strings.EqualFold(key, optTools):
		c.Tools = splitList(value)
	case strings.EqualFold(key, optVerbose):
		b, err := parseGitBool(key, value)
		if err != nil {
			return err
		}
		c.Verbose = b
	case strings.EqualFold(key, optKeepReport):
		b, err := parseGitBool(key, value)
		if err != nil {
			return err
		}
		c.KeepReport = b
	case strings.EqualFold(key, optReport):
		if _, err := conflict.ParseReportMode(value); err != nil {
			return fmt.Errorf("amt.%s: %w", key, err)
		}
		c.Report.Mode = value
	case strings.EqualFold(key, optMaxCells):
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("amt.%s: invalid size %q", key, value)
		}
		c.Simplify.MaxCells = n
	case strings.EqualFold(key, optPresetsFile):
		c.Imports.PresetsFile = value
	}
	return nil
}

func (t *ToolConfig) setOption(key, value string) error {
	switch {
	case strings.EqualFold(key, optPath):
		t.Path = value
	case strings.EqualFold(key, optCmd):
		t.Cmd = value
	case strings.EqualFold(key, optExtensions):
		t.Extensions = splitList(value)
	case strings.EqualFold(key, optIgnoreExtensions):
		t.IgnoreExtensions = splitList(value)
	case strings.EqualFold(key, optTrustExitCode):
		b, err := parseGitBool(key, value)
		if err != nil {
			return err
		}
		t.TrustExitCode = &b
	default:
		if t.Extras == nil {
			t.Extras = map[string]string{}
		}
		t.Extras[key] = value
	}
	return nil
}

// parseGitBool parses a git boolean. Unlike parseBool, unknown values are
// an error.
func parseGitBool(key, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1", "":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", key, value)
}
