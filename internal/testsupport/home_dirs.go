package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// xdgVars are cleared so tests resolve every default under HOME.
var xdgVars = []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_STATE_HOME"}

// EnsureHomeDirs creates the default state and data directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	if err := os.MkdirAll(filepath.Join(homeDir, ".local", "state", "tasknotes"), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(homeDir, ".local", "share", "tasknotes"), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// SetupTestHome creates a temp home directory, ensures state/data dirs, and
// sets HOME. XDG base directory overrides are cleared.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, name := range xdgVars {
		t.Setenv(name, "")
	}
	return homeDir
}

// CommandEnv returns the current environment with HOME pointed at homeDir
// and color, editor, and XDG overrides cleared, for running tn directly.
func CommandEnv(homeDir string) []string {
	env := append(os.Environ(), "HOME="+homeDir, "NO_COLOR=1", "EDITOR=")
	for _, name := range xdgVars {
		env = append(env, name+"=")
	}
	return env
}
