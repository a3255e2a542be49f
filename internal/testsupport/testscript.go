package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/amonks/tasknotes/note"
	"github.com/amonks/tasknotes/task"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	tnPath    string
	buildErr  error
)

// BuildTN builds the tn binary once and returns its path.
func BuildTN(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "tn-bin-")
		if err != nil {
			buildErr = err
			return
		}

		tnPath = filepath.Join(binDir, "tn")
		cmd := exec.Command("go", "build", "-o", tnPath, "./cmd/tn")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build tn: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return tnPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TN", BuildTN(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	for _, name := range xdgVars {
		env.Setenv(name, "")
	}
	env.Setenv("NO_COLOR", "1")
	env.Setenv("EDITOR", "")
	return nil
}

// Commands returns the custom testscript commands shared by CLI tests.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset": CmdEnvSet,
		"noteid": CmdNoteID,
		"taskid": CmdTaskID,
	}
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdNoteID finds a note by title in `tn note list --json` output and
// stores its ID in an env var.
func CmdNoteID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("noteid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: noteid FILE TITLE VAR")
	}

	var items []note.Note
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse note list: %v", err)
	}

	for _, item := range items {
		if item.Title == args[1] {
			ts.Setenv(args[2], item.ID)
			return
		}
	}
	ts.Fatalf("note with title %q not found", args[1])
}

// CmdTaskID finds a task by title in `tn task list --json` output and
// stores its ID in an env var.
func CmdTaskID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("taskid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: taskid FILE TITLE VAR")
	}

	var items []task.Task
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}

	for _, item := range items {
		if item.Title == args[1] {
			ts.Setenv(args[2], item.ID)
			return
		}
	}
	ts.Fatalf("task with title %q not found", args[1])
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
