package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/validation"
)

// Store manages the state file with locking.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a new state store using the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// statePath returns the path to the state file.
func (s *Store) statePath() string {
	return filepath.Join(s.dir, "state.json")
}

// lockPath returns the path to the lock file.
func (s *Store) lockPath() string {
	return filepath.Join(s.dir, "state.lock")
}

// Load reads the state from disk. Returns an empty state if the file doesn't exist.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.statePath())
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	return &st, nil
}

// Save writes the state to disk.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if existing, err := os.ReadFile(s.statePath()); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read state file: %w", err)
	}

	// Write atomically via temp file
	tmpFile, err := os.CreateTemp(s.dir, filepath.Base(s.statePath())+".tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := os.Rename(name, s.statePath()); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// Update atomically reads, modifies, and writes the state with file locking.
func (s *Store) Update(fn func(st *State) error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	st, err := s.Load()
	if err != nil {
		return err
	}

	if err := fn(st); err != nil {
		return err
	}

	return s.Save(st)
}

// Theme returns the saved theme, or fallback if none has been saved.
func (s *Store) Theme(fallback config.Theme) (config.Theme, error) {
	st, err := s.Load()
	if err != nil {
		return "", err
	}
	if st.Preferences.Theme.IsValid() {
		return st.Preferences.Theme, nil
	}
	return fallback, nil
}

// SetTheme saves theme as the preferred theme.
func (s *Store) SetTheme(theme config.Theme) error {
	if !theme.IsValid() {
		return validation.FormatInvalidValueError(ErrInvalidTheme, theme, config.ValidThemes())
	}
	return s.Update(func(st *State) error {
		st.Preferences.Theme = theme
		st.Preferences.UpdatedAt = s.now()
		return nil
	})
}

// ToggleTheme flips the preferred theme and returns the new one. fallback
// is the theme considered current when none has been saved.
func (s *Store) ToggleTheme(fallback config.Theme) (config.Theme, error) {
	var next config.Theme
	err := s.Update(func(st *State) error {
		current := st.Preferences.Theme
		if !current.IsValid() {
			current = fallback
		}
		next = current.Toggle()
		st.Preferences.Theme = next
		st.Preferences.UpdatedAt = s.now()
		return nil
	})
	return next, err
}
