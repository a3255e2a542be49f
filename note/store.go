package note

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/tasknotes/collection"
	"github.com/amonks/tasknotes/internal/ids"
	"github.com/amonks/tasknotes/snapshot"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionName names the notes snapshot file and log scope.
const CollectionName = "notes"

// OpenOptions configures Open.
type OpenOptions struct {
	// Dir holds the snapshot file.
	Dir string

	// Backend selects the snapshot format.
	Backend snapshot.Backend

	// Backup keeps the previous snapshot as <file>.bak.
	Backup bool

	// Snapshot overrides Dir, Backend, and Backup.
	Snapshot snapshot.Snapshotter[Note]

	Logger *zap.Logger

	// Now stamps timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Store is the ordered collection of notes.
type Store struct {
	items *collection.Store[Note]
	now   func() time.Time
}

// Open starts loading the notes snapshot and returns immediately.
func Open(opts OpenOptions) (*Store, error) {
	snap := opts.Snapshot
	if snap == nil {
		var err error
		snap, err = snapshot.New(snapshot.Config{
			Dir:     opts.Dir,
			Name:    CollectionName,
			Backend: opts.Backend,
			Backup:  opts.Backup,
		}, key)
		if err != nil {
			return nil, fmt.Errorf("open notes snapshot: %w", err)
		}
	}

	items, err := collection.Open(collection.Options[Note]{
		Name:     CollectionName,
		Key:      key,
		Snapshot: snap,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{items: items, now: now}, nil
}

// Upsert inserts the note, or replaces the note with the same id in place.
// A missing id is generated and a zero timestamp is stamped. It returns the
// note as stored.
func (s *Store) Upsert(n Note) Note {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}
	s.items.Upsert(n)
	return n
}

// Delete removes the note with the given id, if present.
func (s *Store) Delete(id string) {
	s.items.Delete(id)
}

// Notes returns the notes in order.
func (s *Store) Notes() []Note {
	return s.items.Items()
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (Note, bool) {
	return s.items.Get(id)
}

// Subscribe calls fn with the notes after every change.
func (s *Store) Subscribe(fn func([]Note)) (cancel func()) {
	return s.items.Subscribe(fn)
}

// Wait blocks until the snapshot has been loaded.
func (s *Store) Wait(ctx context.Context) error {
	return s.items.Wait(ctx)
}

// Flush waits for pending saves and returns the latest save error.
func (s *Store) Flush(ctx context.Context) error {
	return s.items.Flush(ctx)
}

// Err returns the latest save error.
func (s *Store) Err() error {
	return s.items.Err()
}

// Close writes outstanding changes and stops the store.
func (s *Store) Close(ctx context.Context) error {
	return s.items.Close(ctx)
}

// IDIndex indexes the current note ids for prefix lookup.
func (s *Store) IDIndex() ids.Index {
	notes := s.items.Items()
	noteIDs := make([]string, 0, len(notes))
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
	}
	return ids.NewIndex(noteIDs)
}

// Resolve returns the note matching an id or unique id prefix.
func (s *Store) Resolve(prefix string) (Note, error) {
	id, err := s.IDIndex().Resolve(prefix)
	if err != nil {
		return Note{}, err
	}
	n, ok := s.items.Get(id)
	if !ok {
		return Note{}, fmt.Errorf("%w: %s", ids.ErrNotFound, prefix)
	}
	return n, nil
}
