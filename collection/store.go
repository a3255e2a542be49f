// Package collection keeps an ordered, keyed collection in memory and
// persists it through a snapshot.Snapshotter.
//
// Mutations apply to memory immediately and never return errors. A single
// background writer per store saves the latest state; bursts of mutations
// coalesce into one write. Persistence failures are logged and reported
// through Flush and Err.
package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/amonks/tasknotes/snapshot"
	"go.uber.org/zap"
)

// ErrClosed is logged when a mutation arrives after Close.
var ErrClosed = errors.New("collection is closed")

// Options configures a Store.
type Options[T any] struct {
	// Name identifies the collection in logs.
	Name string

	// Key returns the identifier of an item. Required.
	Key func(T) string

	// Snapshot persists the collection. Required.
	Snapshot snapshot.Snapshotter[T]

	// Logger receives load and save failures. Nil disables logging.
	Logger *zap.Logger
}

type state int

const (
	stateLoading state = iota
	stateLoaded
	stateClosed
)

// Store is an ordered collection of T, unique by Key.
type Store[T any] struct {
	key    func(T) string
	snap   snapshot.Snapshotter[T]
	logger *zap.Logger

	mu        sync.Mutex
	state     state
	items     []T
	index     map[string]int
	pending   []func() bool
	observers map[int]func([]T)
	nextObs   int
	viewSeq   uint64

	// notifyMu orders deliveries; delivered is the seq of the newest view
	// handed to observers.
	notifyMu  sync.Mutex
	delivered uint64

	// version counts applied mutations; saved is the version covered by
	// the most recent save attempt.
	version uint64
	saved   uint64
	err     error
	savedCh chan struct{}

	dirty chan struct{}
	ready chan struct{}
	done  chan struct{}
}

// Open starts loading the snapshot in the background and returns
// immediately. Until the load settles the store is empty; mutations made in
// the meantime are queued and applied on top of the loaded items.
func Open[T any](opts Options[T]) (*Store[T], error) {
	if opts.Key == nil {
		return nil, fmt.Errorf("collection key function is required")
	}
	if opts.Snapshot == nil {
		return nil, fmt.Errorf("collection snapshot is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name != "" {
		logger = logger.Named(opts.Name)
	}

	s := &Store[T]{
		key:       opts.Key,
		snap:      opts.Snapshot,
		logger:    logger,
		index:     make(map[string]int),
		observers: make(map[int]func([]T)),
		savedCh:   make(chan struct{}),
		dirty:     make(chan struct{}, 1),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}

	go s.load()
	go s.run()

	return s, nil
}

// Upsert replaces the item with the same key in place, or appends it.
func (s *Store[T]) Upsert(item T) {
	s.mutate(func() bool {
		id := s.key(item)
		if i, ok := s.index[id]; ok {
			s.items[i] = item
			return true
		}
		s.index[id] = len(s.items)
		s.items = append(s.items, item)
		return true
	})
}

// Delete removes the item with the given key. Deleting an absent key does
// nothing and schedules no save.
func (s *Store[T]) Delete(id string) {
	s.mutate(func() bool {
		i, ok := s.index[id]
		if !ok {
			return false
		}
		s.items = slices.Delete(s.items, i, i+1)
		s.reindex()
		return true
	})
}

// Update replaces the item with fn applied to it, keeping its position.
// Absent keys are ignored. fn must not change the key.
func (s *Store[T]) Update(id string, fn func(T) T) {
	s.mutate(func() bool {
		i, ok := s.index[id]
		if !ok {
			return false
		}
		next := fn(s.items[i])
		if got := s.key(next); got != id {
			s.logger.Warn("update changed item key; ignoring",
				zap.String("id", id), zap.String("new_id", got))
			return false
		}
		s.items[i] = next
		return true
	})
}

// Items returns a copy of the current items in order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Get returns the item with the given key.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn to receive a copy of the items after every visible
// change, including the initial load. fn runs on the goroutine that made
// the change and must not block or mutate the store. Views arrive in the
// order their changes were applied; a view older than one already
// delivered is dropped. The returned func unregisters fn.
func (s *Store[T]) Subscribe(fn func([]T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Ready is closed once the initial load has settled.
func (s *Store[T]) Ready() <-chan struct{} {
	return s.ready
}

// Loaded reports whether the initial load has settled.
func (s *Store[T]) Loaded() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the initial load has settled.
func (s *Store[T]) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every mutation made before the call has been written,
// and returns the most recent persistence error.
func (s *Store[T]) Flush(ctx context.Context) error {
	if err := s.Wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	target := s.version
	for s.saved < target {
		if s.state == stateClosed && s.isDone() {
			break
		}
		ch := s.savedCh
		s.mu.Unlock()
		select {
		case <-ch:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	err := s.err
	s.mu.Unlock()
	return err
}

// Err returns the most recent persistence error, or nil if the last save
// succeeded.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close waits for the initial load, writes any outstanding changes, and
// stops the writer. Mutations after Close are ignored.
func (s *Store[T]) Close(ctx context.Context) error {
	if err := s.Wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != stateClosed {
		s.state = stateClosed
		close(s.dirty)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Err()
}

func (s *Store[T]) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// mutate applies op under the lock. op reports whether it changed anything.
func (s *Store[T]) mutate(op func() bool) {
	s.mu.Lock()
	switch s.state {
	case stateClosed:
		s.mu.Unlock()
		s.logger.Warn("mutation after close ignored", zap.Error(ErrClosed))
		return
	case stateLoading:
		s.pending = append(s.pending, op)
		s.mu.Unlock()
		return
	}

	if !op() {
		s.mu.Unlock()
		return
	}
	s.version++
	s.markDirtyLocked()
	v := s.viewLocked()
	s.mu.Unlock()

	s.notify(v)
}

func (s *Store[T]) markDirtyLocked() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// view is the state observers are told about after one change.
type view[T any] struct {
	seq       uint64
	items     []T
	observers []func([]T)
}

func (s *Store[T]) viewLocked() view[T] {
	s.viewSeq++
	observers := make([]func([]T), 0, len(s.observers))
	for _, id := range sortedKeys(s.observers) {
		observers = append(observers, s.observers[id])
	}
	return view[T]{seq: s.viewSeq, items: slices.Clone(s.items), observers: observers}
}

// notify runs after mu is released, so two mutators can race here with
// their views swapped. Stale views are dropped.
func (s *Store[T]) notify(v view[T]) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if v.seq <= s.delivered {
		return
	}
	s.delivered = v.seq
	for _, fn := range v.observers {
		fn(slices.Clone(v.items))
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store[T]) reindex() {
	clear(s.index)
	for i, item := range s.items {
		s.index[s.key(item)] = i
	}
}

func (s *Store[T]) load() {
	items, err := s.snap.Read()
	restored := false
	if err != nil {
		items, restored = s.recoverLoad(err)
	}

	s.mu.Lock()
	if err != nil && !restored {
		s.err = err
	}
	collapsed := s.setItemsLocked(items)
	s.state = stateLoaded

	changed := false
	for _, op := range s.pending {
		if op() {
			changed = true
		}
	}
	s.pending = nil

	if changed || restored || collapsed {
		s.version++
		s.markDirtyLocked()
	}
	v := s.viewLocked()
	s.mu.Unlock()

	s.notify(v)
	close(s.ready)
}

// setItemsLocked installs loaded items. Duplicate keys keep the first
// position and the last value. It reports whether any were collapsed.
func (s *Store[T]) setItemsLocked(items []T) bool {
	s.items = make([]T, 0, len(items))
	clear(s.index)
	duplicates := 0
	for _, item := range items {
		id := s.key(item)
		if i, ok := s.index[id]; ok {
			s.items[i] = item
			duplicates++
			continue
		}
		s.index[id] = len(s.items)
		s.items = append(s.items, item)
	}
	if duplicates > 0 {
		s.logger.Warn("collapsed duplicate ids in snapshot", zap.Int("duplicates", duplicates))
	}
	return duplicates > 0
}

// recoverLoad handles a failed read. Corrupt snapshots are moved aside and
// the backup, if any, is used instead.
func (s *Store[T]) recoverLoad(err error) ([]T, bool) {
	s.logger.Error("load snapshot failed", zap.Error(err))
	if !errors.Is(err, snapshot.ErrCorrupt) {
		return nil, false
	}

	if q, ok := s.snap.(snapshot.Quarantiner); ok {
		path, qerr := q.Quarantine()
		if qerr != nil {
			s.logger.Error("quarantine corrupt snapshot failed", zap.Error(qerr))
		} else {
			s.logger.Warn("moved corrupt snapshot aside", zap.String("path", path))
		}
	}

	backup, ok := s.snap.(snapshot.BackupReader[T])
	if !ok {
		return nil, false
	}
	items, berr := backup.ReadBackup()
	if berr != nil {
		if !errors.Is(berr, snapshot.ErrNoBackup) {
			s.logger.Error("read snapshot backup failed", zap.Error(berr))
		}
		return nil, false
	}
	s.logger.Warn("restored collection from backup", zap.Int("items", len(items)))
	return items, true
}

// run is the single writer. Each token on dirty triggers one save of the
// state current at that moment.
func (s *Store[T]) run() {
	defer close(s.done)
	for range s.dirty {
		s.save()
	}
}

func (s *Store[T]) save() {
	s.mu.Lock()
	items := slices.Clone(s.items)
	version := s.version
	s.mu.Unlock()

	err := s.snap.Write(items)
	if err != nil {
		s.logger.Error("save snapshot failed", zap.Error(err), zap.Int("items", len(items)))
	}

	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	s.err = err
	ch := s.savedCh
	s.savedCh = make(chan struct{})
	s.mu.Unlock()
	close(ch)
}
