package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const maxJSONLineBytes = 1024 * 1024

// FileOptions configures a JSONL snapshot file.
type FileOptions struct {
	// Backup hard-links the current file to <path>.bak before each write.
	Backup bool
}

// File stores a collection as a JSONL file, one record per line.
type File[T any] struct {
	path   string
	backup bool
}

// NewFile returns a JSONL snapshot at path.
func NewFile[T any](path string, opts FileOptions) *File[T] {
	return &File[T]{path: path, backup: opts.Backup}
}

// Path returns the snapshot file path.
func (f *File[T]) Path() string {
	return f.path
}

// BackupPath returns the path of the previous snapshot.
func (f *File[T]) BackupPath() string {
	return f.path + ".bak"
}

func (f *File[T]) lockPath() string {
	return f.path + ".lock"
}

// Read reads all records. A missing file yields no records and no error.
func (f *File[T]) Read() ([]T, error) {
	return readJSONL[T](f.path)
}

// ReadBackup reads the previous snapshot.
func (f *File[T]) ReadBackup() ([]T, error) {
	if _, err := os.Stat(f.BackupPath()); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoBackup
	} else if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	return readJSONL[T](f.BackupPath())
}

// Write replaces the file with items. The new content is written to a
// temporary file and renamed into place, so readers see either the old or
// the new snapshot.
func (f *File[T]) Write(items []T) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	return withFileLock(f.lockPath(), func() error {
		if f.backup {
			if err := f.linkBackup(); err != nil {
				return err
			}
		}
		return writeJSONL(f.path, items)
	})
}

// Quarantine renames the snapshot to <path>.corrupt-<nanos> and returns the
// new path.
func (f *File[T]) Quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().UnixNano())
	if err := os.Rename(f.path, target); err != nil {
		return "", fmt.Errorf("quarantine snapshot: %w", err)
	}
	return target, nil
}

func (f *File[T]) linkBackup() error {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	backupPath := f.BackupPath()
	if err := os.Remove(backupPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old backup: %w", err)
	}
	if err := os.Link(f.path, backupPath); err == nil {
		return nil
	}
	// Some filesystems refuse hard links.
	return copyFile(f.path, backupPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	return nil
}

// withFileLock executes fn while holding an exclusive lock on the file at path.
// Creates the file if it doesn't exist.
func withFileLock(path string, fn func() error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open file for locking: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

// readJSONL reads all JSON objects from a JSONL file into a slice.
func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return readJSONLFromReader[T](f)
}

func readJSONLFromReader[T any](reader io.Reader) ([]T, error) {
	var items []T
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("%w: parse line %d: %v", ErrCorrupt, lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d exceeds %d bytes", ErrCorrupt, lineNum+1, maxJSONLineBytes)
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

// writeJSONL writes a slice of items to a JSONL file, overwriting any existing content.
func writeJSONL[T any](path string, items []T) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	writer := bufio.NewWriter(f)
	encoder := json.NewEncoder(writer)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}

	if err := writer.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
