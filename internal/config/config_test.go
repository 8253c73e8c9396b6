package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauern/amt/internal/conflict"
)

// isolate points every configuration location at fresh temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"AMT_TOOLS", "AMT_VERBOSE", "AMT_KEEP_REPORT", "AMT_SIMPLIFY_MAX_CELLS",
		"AMT_IMPORTS_PRESETS_FILE", "AMT_IMPORTS_ORDER", "AMT_REPORT_MODE", "AMT_OUTPUT_COLOR",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if len(cfg.Tools) != 0 {
		t.Errorf("expected no default tools, got %v", cfg.Tools)
	}
	if cfg.Verbose || cfg.KeepReport {
		t.Error("expected Verbose and KeepReport to be false by default")
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to be 'auto', got %q", cfg.Output.Color)
	}
	if cfg.MergeTools == nil {
		t.Error("expected MergeTools to be initialized")
	}
	if err := cfg.CheckTools(); err != ErrNoTools {
		t.Errorf("expected ErrNoTools, got %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	trust := true
	cfg := Default()
	cfg.Tools = []string{"gen_simplify", "meld"}
	cfg.KeepReport = true
	cfg.Simplify.MaxCells = 1000
	cfg.MergeTools["meld"] = ToolConfig{
		Path:          "/usr/bin/meld",
		Extensions:    []string{"txt"},
		TrustExitCode: &trust,
		Extras:        map[string]string{"label": "merge"},
	}

	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if !reflect.DeepEqual(loaded.Tools, cfg.Tools) {
		t.Errorf("expected tools %v, got %v", cfg.Tools, loaded.Tools)
	}
	if !loaded.KeepReport {
		t.Error("expected KeepReport to be true")
	}
	if loaded.Simplify.MaxCells != 1000 {
		t.Errorf("expected MaxCells 1000, got %d", loaded.Simplify.MaxCells)
	}
	if !reflect.DeepEqual(loaded.Tool("meld"), cfg.Tool("meld")) {
		t.Errorf("expected meld config %+v, got %+v", cfg.Tool("meld"), loaded.Tool("meld"))
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		check    func(*Config) bool
	}{
		{
			name:     "tools",
			envKey:   "AMT_TOOLS",
			envValue: "gen_simplify; ;meld",
			check:    func(c *Config) bool { return reflect.DeepEqual(c.Tools, []string{"gen_simplify", "meld"}) },
		},
		{
			name:     "verbose",
			envKey:   "AMT_VERBOSE",
			envValue: "yes",
			check:    func(c *Config) bool { return c.Verbose },
		},
		{
			name:     "keep report",
			envKey:   "AMT_KEEP_REPORT",
			envValue: "1",
			check:    func(c *Config) bool { return c.KeepReport },
		},
		{
			name:     "max cells",
			envKey:   "AMT_SIMPLIFY_MAX_CELLS",
			envValue: "4096",
			check:    func(c *Config) bool { return c.Simplify.MaxCells == 4096 },
		},
		{
			name:     "invalid max cells ignored",
			envKey:   "AMT_SIMPLIFY_MAX_CELLS",
			envValue: "lots",
			check:    func(c *Config) bool { return c.Simplify.MaxCells == 0 },
		},
		{
			name:     "presets file",
			envKey:   "AMT_IMPORTS_PRESETS_FILE",
			envValue: "/etc/amt/presets.toml",
			check:    func(c *Config) bool { return c.Imports.PresetsFile == "/etc/amt/presets.toml" },
		},
		{
			name:     "imports order",
			envKey:   "AMT_IMPORTS_ORDER",
			envValue: "android",
			check:    func(c *Config) bool { return c.Imports.Order == "android" },
		},
		{
			name:     "report mode",
			envKey:   "AMT_REPORT_MODE",
			envValue: "full",
			check:    func(c *Config) bool { return c.Report.Mode == "full" },
		},
		{
			name:     "output color",
			envKey:   "AMT_OUTPUT_COLOR",
			envValue: "never",
			check:    func(c *Config) bool { return c.Output.Color == "never" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg := Default()
			cfg.applyEnvironment()

			if !tt.check(cfg) {
				t.Errorf("environment override for %s did not apply correctly", tt.envKey)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"True", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseBool(tt.input)
			if result != tt.expected {
				t.Errorf("parseBool(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseGitBool(t *testing.T) {
	for _, v := range []string{"true", "YES", "on", "1", ""} {
		if b, err := parseGitBool("k", v); err != nil || !b {
			t.Errorf("parseGitBool(%q) = %v, %v; expected true", v, b, err)
		}
	}
	for _, v := range []string{"false", "No", "off", "0"} {
		if b, err := parseGitBool("k", v); err != nil || b {
			t.Errorf("parseGitBool(%q) = %v, %v; expected false", v, b, err)
		}
	}
	if _, err := parseGitBool("trustExitCode", "plop"); err == nil {
		t.Error("expected an error for a non boolean value")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"java", []string{"java"}},
		{"a;b;c", []string{"a", "b", "c"}},
		{" a ; ;b;", []string{"a", "b"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := splitList(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("splitList(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetReportMode(t *testing.T) {
	tests := []struct {
		mode     string
		expected conflict.ReportMode
	}{
		{"full", conflict.ReportFull},
		{" Unsolved ", conflict.ReportUnsolved},
		{"none", conflict.ReportNone},
		{"", ""},
		{"everything", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := Default()
			cfg.Report.Mode = tt.mode
			if got := cfg.GetReportMode(); got != tt.expected {
				t.Errorf("GetReportMode() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestLoadInvalidReportMode(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		isolate(t)
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		// #nosec G306 - test file permissions are acceptable
		if err := os.WriteFile(configPath, []byte("report:\n  mode: everything\n"), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		_, err := LoadFromPath(configPath)
		if err == nil || !strings.Contains(err.Error(), "report.mode") {
			t.Fatalf("expected a report.mode error, got %v", err)
		}
	})

	t.Run("environment", func(t *testing.T) {
		isolate(t)
		t.Setenv("AMT_REPORT_MODE", "loud")

		if _, err := Load(""); err == nil {
			t.Fatal("expected an error for AMT_REPORT_MODE=loud")
		}
	})

	t.Run("valid", func(t *testing.T) {
		isolate(t)
		t.Setenv("AMT_REPORT_MODE", "Solved")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.GetReportMode() != conflict.ReportSolved {
			t.Errorf("expected solved report, got %q", cfg.Report.Mode)
		}
	})
}

func TestLoadNonExistentFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() should not fail for non-existent file: %v", err)
	}
	if len(cfg.Tools) != 0 {
		t.Errorf("expected default tools, got %v", cfg.Tools)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath should fail for invalid YAML")
	}
}

func TestPartialConfigMerge(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	partialConfig := `
tools: [gen_woven]
report:
  mode: unsolved
`
	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte(partialConfig), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Tools, []string{"gen_woven"}) {
		t.Errorf("expected tools [gen_woven], got %v", cfg.Tools)
	}
	if cfg.GetReportMode() != conflict.ReportUnsolved {
		t.Errorf("expected unsolved report, got %q", cfg.Report.Mode)
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to retain default value, got %q", cfg.Output.Color)
	}
	if cfg.MergeTools == nil {
		t.Error("expected MergeTools to be initialized")
	}
}

func TestExists(t *testing.T) {
	isolate(t)

	if Exists() {
		t.Error("Exists() should return false for non-existent config")
	}

	if err := Default().Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !Exists() {
		t.Error("Exists() should return true after saving config")
	}
}

func TestLoad_YAMLThenEnvironment(t *testing.T) {
	isolate(t)
	if err := (&Config{Tools: []string{"gen_debug"}, Verbose: true}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Setenv("AMT_TOOLS", "meld")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Tools, []string{"meld"}) {
		t.Errorf("expected environment tools, got %v", cfg.Tools)
	}
	if !cfg.Verbose {
		t.Error("expected Verbose from the config file")
	}
}
