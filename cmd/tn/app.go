package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/logging"
	"github.com/amonks/tasknotes/internal/markdown"
	"github.com/amonks/tasknotes/internal/paths"
	"github.com/amonks/tasknotes/internal/state"
	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/amonks/tasknotes/internal/ui"
	"github.com/amonks/tasknotes/note"
	"github.com/amonks/tasknotes/snapshot"
	"github.com/amonks/tasknotes/task"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeTimeout bounds how long a command waits for a load or final save.
const storeTimeout = 30 * time.Second

// app holds what a single command invocation needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	styles *ui.Styles
	now    func() time.Time

	stdout io.Writer
	stderr io.Writer

	notes *note.Store
	tasks *task.Store
}

// runWithApp builds an app for cmd, runs fn, and closes any opened stores
// so queued saves land before the process exits.
func runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runErr := fn(ctx, a)
	a.close(ctx)
	return runErr
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	st := state.NewStore(stateDir)

	theme, err := st.Theme(cfg.Display.Theme)
	if err != nil {
		logger.Warn("read theme preference", zap.Error(err))
		theme = cfg.Display.Theme
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		styles: ui.NewStyles(theme, cmd.OutOrStdout()),
		now:    time.Now,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

// loadConfig loads config files and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rootConfigPath != "" {
		path, expandErr := paths.ExpandHome(rootConfigPath)
		if expandErr != nil {
			return nil, expandErr
		}
		cfg, err = config.LoadFile(path)
	} else {
		var cwd string
		cwd, err = paths.WorkingDir()
		if err != nil {
			return nil, err
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}

	return applyFlagOverrides(cfg, rootDataDir, rootBackend, rootLogLevel)
}

func applyFlagOverrides(cfg *config.Config, dataDir, backend, logLevel string) (*config.Config, error) {
	if dataDir != "" {
		dir, err := paths.ExpandHome(dataDir)
		if err != nil {
			return nil, err
		}
		cfg.Storage.Dir = dir
	}
	if backend != "" {
		cfg.Storage.Backend = snapshot.Backend(internalstrings.NormalizeLowerTrimSpace(backend))
	}
	if logLevel != "" {
		cfg.Log.Level = internalstrings.NormalizeLowerTrimSpace(logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) openNotes(ctx context.Context) (*note.Store, error) {
	if a.notes != nil {
		return a.notes, nil
	}
	store, err := note.Open(note.OpenOptions{
		Dir:     a.cfg.Storage.Dir,
		Backend: a.cfg.Storage.Backend,
		Backup:  a.cfg.Storage.Backup,
		Logger:  a.logger,
		Now:     a.now,
	})
	if err != nil {
		return nil, err
	}
	a.notes = store

	waitCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := store.Wait(waitCtx); err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	a.warnIfFailed("notes", store.Err())
	return store, nil
}

func (a *app) openTasks(ctx context.Context) (*task.Store, error) {
	if a.tasks != nil {
		return a.tasks, nil
	}
	store, err := task.Open(task.OpenOptions{
		Dir:     a.cfg.Storage.Dir,
		Backend: a.cfg.Storage.Backend,
		Backup:  a.cfg.Storage.Backup,
		Logger:  a.logger,
		Now:     a.now,
	})
	if err != nil {
		return nil, err
	}
	a.tasks = store

	waitCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := store.Wait(waitCtx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	a.warnIfFailed("tasks", store.Err())
	return store, nil
}

// close stops the opened stores. Save failures are reported as warnings;
// the command itself already succeeded in memory.
func (a *app) close(ctx context.Context) {
	closeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if a.notes != nil {
		a.warnIfFailed("notes", a.notes.Close(closeCtx))
	}
	if a.tasks != nil {
		a.warnIfFailed("tasks", a.tasks.Close(closeCtx))
	}
}

func (a *app) warnIfFailed(collection string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(a.stderr, "warning: %s: %v\n", collection, err)
}

func (a *app) markdownStyle() markdown.Style {
	if a.styles.Plain() {
		return markdown.StyleASCII
	}
	if a.styles.Theme() == config.ThemeDark {
		return markdown.StyleDark
	}
	return markdown.StyleLight
}

func (a *app) formatDate(t time.Time) string {
	return ui.FormatDate(t, a.cfg.Display.DateFormat)
}
