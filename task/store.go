package task

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

// CollectionName names the tasks snapshot file and log scope.
const CollectionName = "tasks"

// OpenOptions configures Open.
type OpenOptions struct {
	// Dir holds the snapshot file.
	Dir string

	// Backend selects the snapshot format.
	Backend snapshot.Backend

	// Backup keeps the previous snapshot as <file>.bak.
	Backup bool

	// Snapshot overrides Dir, Backend, and Backup.
	Snapshot snapshot.Snapshotter[Task]

	Logger *zap.Logger

	// Now stamps timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Store is the ordered collection of tasks.
type Store struct {
	items *collection.Store[Task]
	now   func() time.Time
}

// Open starts loading the tasks snapshot and returns immediately.
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
			return nil, fmt.Errorf("open tasks snapshot: %w", err)
		}
	}

	items, err := collection.Open(collection.Options[Task]{
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

// Upsert inserts the task, or replaces the task with the same id in place.
// A missing id is generated, a zero timestamp is stamped, and an empty
// priority becomes DefaultPriority. It returns the task as stored.
func (s *Store) Upsert(t Task) Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = s.now()
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	s.items.Upsert(t)
	return t
}

// ToggleCompletion flips Completed on the task with the given id. Nothing
// else changes, including the timestamp. Absent ids are ignored.
func (s *Store) ToggleCompletion(id string) {
	s.items.Update(id, func(t Task) Task {
		t.Completed = !t.Completed
		return t
	})
}

// Delete removes the task with the given id, if present.
func (s *Store) Delete(id string) {
	s.items.Delete(id)
}

// Tasks returns the tasks in order.
func (s *Store) Tasks() []Task {
	return s.items.Items()
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	return s.items.Get(id)
}

// Subscribe calls fn with the tasks after every change.
func (s *Store) Subscribe(fn func([]Task)) (cancel func()) {
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

// IDIndex indexes the current task ids for prefix lookup.
func (s *Store) IDIndex() ids.Index {
	tasks := s.items.Items()
	taskIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	return ids.NewIndex(taskIDs)
}

// Resolve returns the task matching an id or unique id prefix.
func (s *Store) Resolve(prefix string) (Task, error) {
	id, err := s.IDIndex().Resolve(prefix)
	if err != nil {
		return Task{}, err
	}
	t, ok := s.items.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ids.ErrNotFound, prefix)
	}
	return t, nil
}
