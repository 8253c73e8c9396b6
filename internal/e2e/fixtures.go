package e2e

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// Merge holds the four files git hands over to a merge tool.
type Merge struct {
	Base   string
	Local  string
	Remote string
	Merged string
}

// Args returns the --base, --local, --remote and --merged flags.
func (m Merge) Args() []string {
	return []string{"--base", m.Base, "--local", m.Local, "--remote", m.Remote, "--merged", m.Merged}
}

// WriteMerge writes the files of a merge of relPath the way git mergetool
// names them: relPath holds the conflicts, the three versions sit next to it.
func (f *Fixture) WriteMerge(relPath, base, local, remote, merged string) Merge {
	f.t.Helper()
	return Merge{
		Base:   f.WriteFile(relPath+".BASE", base),
		Local:  f.WriteFile(relPath+".LOCAL", local),
		Remote: f.WriteFile(relPath+".REMOTE", remote),
		Merged: f.WriteFile(relPath, merged),
	}
}

// InitRepo turns the fixture directory into a git repository and appends
// gitConfig to its .git/config.
func (f *Fixture) InitRepo(gitConfig string) {
	f.t.Helper()
	if _, err := git.PlainInit(f.baseDir, false); err != nil {
		f.t.Fatalf("failed to init repository in %s: %v", f.baseDir, err)
	}
	if gitConfig == "" {
		return
	}

	path := filepath.Join(f.baseDir, ".git", "config")
	// #nosec G304 - path is inside the fixture directory
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		f.t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := file.WriteString(gitConfig); err != nil {
		f.t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(filepath.Join(f.baseDir, relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}
