// Package snapshot persists a whole ordered collection at once.
//
// A snapshot is written wholesale on every save and read back once when a
// store starts. Two on-disk formats are available: JSONL files (the
// default) and SQLite databases.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/amonks/tasknotes/internal/validation"
)

var (
	// ErrCorrupt wraps decode failures: the snapshot exists but cannot be parsed.
	ErrCorrupt = errors.New("snapshot is corrupt")

	// ErrNoBackup is returned by ReadBackup when no backup has been written.
	ErrNoBackup = errors.New("no snapshot backup")

	// ErrUnknownBackend is returned for a backend name New does not know.
	ErrUnknownBackend = errors.New("unknown snapshot backend")
)

// Snapshotter reads and writes a full collection.
type Snapshotter[T any] interface {
	// Read returns the stored items, or nil and no error when nothing has
	// been stored yet.
	Read() ([]T, error)

	// Write replaces the stored items.
	Write(items []T) error
}

// BackupReader is implemented by snapshotters that keep the previous
// snapshot around.
type BackupReader[T any] interface {
	ReadBackup() ([]T, error)
}

// Quarantiner is implemented by snapshotters that can move a corrupt
// snapshot out of the way so it is not overwritten by the next save.
type Quarantiner interface {
	Quarantine() (string, error)
}

// Backend selects the on-disk format.
type Backend string

const (
	// BackendJSONL stores one JSON record per line.
	BackendJSONL Backend = "jsonl"

	// BackendSQLite stores records in a SQLite database.
	BackendSQLite Backend = "sqlite"
)

// ValidBackends returns all known backends.
func ValidBackends() []Backend {
	return []Backend{BackendJSONL, BackendSQLite}
}

// IsValid returns true if the backend is known.
func (b Backend) IsValid() bool {
	for _, valid := range ValidBackends() {
		if b == valid {
			return true
		}
	}
	return false
}

// Extension returns the file extension used by the backend.
func (b Backend) Extension() string {
	if b == BackendSQLite {
		return ".db"
	}
	return ".jsonl"
}

// Config describes where a collection's snapshot lives.
type Config struct {
	// Dir is the directory holding the snapshot file.
	Dir string

	// Name is the collection name; the file is Name plus the backend extension.
	Name string

	// Backend selects the format. Empty means BackendJSONL.
	Backend Backend

	// Backup keeps the previous snapshot next to the current one (JSONL only).
	Backup bool
}

func (c Config) backend() Backend {
	if c.Backend == "" {
		return BackendJSONL
	}
	return c.Backend
}

// Path returns the snapshot file path.
func (c Config) Path() string {
	return filepath.Join(c.Dir, c.Name+c.backend().Extension())
}

// New builds the snapshotter selected by cfg. key identifies records and is
// used by backends that index by id.
func New[T any](cfg Config, key func(T) string) (Snapshotter[T], error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}

	switch backend := cfg.backend(); backend {
	case BackendJSONL:
		return NewFile[T](cfg.Path(), FileOptions{Backup: cfg.Backup}), nil
	case BackendSQLite:
		if key == nil {
			return nil, fmt.Errorf("sqlite snapshot requires a key function")
		}
		return NewSQLite(cfg.Path(), key), nil
	default:
		return nil, fmt.Errorf("%w %q: must be %s", ErrUnknownBackend, backend, validation.FormatValidValues(ValidBackends()))
	}
}
