package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the amt configuration directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amt")
	}
	return filepath.Join(HomeDir(), ".config", "amt")
}

// ConfigFilePath returns the default amt YAML configuration file
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// RepoGitConfigPath returns the path of the local git configuration of a
// repository rooted at repoDir
func RepoGitConfigPath(repoDir string) string {
	return filepath.Join(repoDir, ".git", "config")
}

// ExpandHome replaces a leading ~ with the home directory
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}
