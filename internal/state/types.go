// Package state manages the tasknotes state file.
//
// The state file (~/.local/state/tasknotes/state.json) stores user
// preferences that outlive a single command, such as the display theme.
// All writes are serialized through file locking so that concurrent
// invocations do not clobber each other.
package state

import (
	"errors"
	"time"

	"github.com/amonks/tasknotes/internal/config"
)

// ErrInvalidTheme is returned when saving an unknown theme.
var ErrInvalidTheme = errors.New("invalid theme")

// State represents the persisted state file.
type State struct {
	Preferences Preferences `json:"preferences"`
}

// Preferences are settings chosen interactively rather than in a config file.
type Preferences struct {
	// Theme is empty until the user picks one.
	Theme     config.Theme `json:"theme,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}
