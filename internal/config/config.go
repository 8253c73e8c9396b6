// Package config provides configuration management for amt.
// It supports a YAML configuration file, git configuration files,
// environment variables, and sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/util"
)

// Config represents the complete amt configuration.
type Config struct {
	// Tools is the ordered merge tool chain tried by `amt merge`
	Tools []string `yaml:"tools"`

	// Verbose prints the progress of the tool chain
	Verbose bool `yaml:"verbose"`

	// KeepReport keeps the solver reports after a successful merge
	KeepReport bool `yaml:"keep_report"`

	// MergeTools holds per tool settings, keyed by tool name
	MergeTools map[string]ToolConfig `yaml:"mergetools,omitempty"`

	// Simplify configures gen_simplify and gen_single_line
	Simplify SimplifyConfig `yaml:"simplify"`

	// Imports configures the import solvers
	Imports ImportsConfig `yaml:"imports"`

	// Report configures solver reports
	Report ReportConfig `yaml:"report"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// ToolConfig holds the settings of a single merge tool.
type ToolConfig struct {
	// Path is the executable of the tool, defaults to the tool name
	Path string `yaml:"path,omitempty"`
	// Cmd replaces the whole command line of the tool
	Cmd string `yaml:"cmd,omitempty"`
	// Extensions restricts the tool to files with these extensions
	Extensions []string `yaml:"extensions,omitempty"`
	// IgnoreExtensions skips the tool for files with these extensions
	IgnoreExtensions []string `yaml:"ignore_extensions,omitempty"`
	// TrustExitCode overrides whether the exit code of the tool is trusted
	TrustExitCode *bool `yaml:"trust_exit_code,omitempty"`
	// Extras are passed to the tool as --key value
	Extras map[string]string `yaml:"extras,omitempty"`
}

// SimplifyConfig holds LCS settings.
type SimplifyConfig struct {
	// MaxCells bounds the LCS table size, 0 means the engine default
	MaxCells int `yaml:"max_cells"`
}

// ImportsConfig holds import solver settings.
type ImportsConfig struct {
	// PresetsFile is a TOML file with custom import order presets
	PresetsFile string `yaml:"presets_file,omitempty"`
	// Order is the default import order preset
	Order string `yaml:"order,omitempty"`
}

// ReportConfig holds report settings.
type ReportConfig struct {
	// Mode is the report mode (none, solved, unsolved, full), empty means
	// the solver default
	Mode string `yaml:"mode,omitempty"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
}

// ErrNoTools is returned when no merge tool chain is configured.
var ErrNoTools = errors.New("missing the amt.tools configuration")

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MergeTools: map[string]ToolConfig{},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.ConfigDir(), configFileName)
}

// Load loads the configuration from file, merging with defaults, then
// applies the global git configuration, the git configuration of the
// repository holding dir (when dir is not empty) and the environment.
// If the config file doesn't exist, defaults are used.
func Load(dir string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is constructed from trusted config directory
	data, err := os.ReadFile(FilePath())
	switch {
	case err == nil:
		if err := cfg.unmarshal(data); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := cfg.applyGlobalGitConfig(); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := cfg.applyRepoGitConfig(dir); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvironment()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific YAML file. Git
// configuration is not consulted.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.unmarshal(data); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects settings that would otherwise be ignored silently.
func (c *Config) validate() error {
	if _, err := conflict.ParseReportMode(c.Report.Mode); err != nil {
		return fmt.Errorf("report.mode: %w", err)
	}
	return nil
}

func (c *Config) unmarshal(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if c.MergeTools == nil {
		c.MergeTools = map[string]ToolConfig{}
	}
	return nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern AMT_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("AMT_TOOLS"); v != "" {
		c.Tools = splitList(v)
	}
	if v := os.Getenv("AMT_VERBOSE"); v != "" {
		c.Verbose = parseBool(v)
	}
	if v := os.Getenv("AMT_KEEP_REPORT"); v != "" {
		c.KeepReport = parseBool(v)
	}

	if v := os.Getenv("AMT_SIMPLIFY_MAX_CELLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Simplify.MaxCells = n
		}
	}

	if v := os.Getenv("AMT_IMPORTS_PRESETS_FILE"); v != "" {
		c.Imports.PresetsFile = v
	}
	if v := os.Getenv("AMT_IMPORTS_ORDER"); v != "" {
		c.Imports.Order = v
	}

	if v := os.Getenv("AMT_REPORT_MODE"); v != "" {
		c.Report.Mode = v
	}

	if v := os.Getenv("AMT_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitList splits a semicolon separated list, as used by amt.tools and
// the extension lists. Empty segments are filtered out.
func splitList(s string) []string {
	parts := strings.Split(s, ";")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Tool returns the settings of the named tool.
func (c *Config) Tool(name string) ToolConfig {
	return c.MergeTools[name]
}

// GetReportMode returns the configured report mode, or the empty mode
// (solver default) when unset or invalid.
func (c *Config) GetReportMode() conflict.ReportMode {
	mode := conflict.ReportMode(strings.ToLower(strings.TrimSpace(c.Report.Mode)))
	if mode.IsValid() {
		return mode
	}
	return ""
}

// CheckTools returns ErrNoTools when the tool chain is empty.
func (c *Config) CheckTools() error {
	if len(c.Tools) == 0 {
		return ErrNoTools
	}
	return nil
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
