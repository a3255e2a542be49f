package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "tasknotes"

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// WorkingDir returns the current working directory.
func WorkingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

// DefaultDataDir returns the directory holding the note and task snapshots.
// Uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// DefaultStateDir returns the directory holding user preferences.
// Uses XDG_STATE_HOME if set, otherwise $HOME/.local/state.
func DefaultStateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

// DefaultConfigPath returns the global config file path.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && (len(path) < 2 || path[:2] != "~/") {
		return path, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func xdgDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	parts = append(parts, AppName)
	return filepath.Join(parts...), nil
}
