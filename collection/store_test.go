package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amonks/tasknotes/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func itemKey(i item) string { return i.ID }

// memSnapshot is an in-memory Snapshotter. When gate is non-nil, Read
// blocks until it is closed.
type memSnapshot struct {
	mu       sync.Mutex
	stored   []item
	readErr  error
	writeErr error
	writes   int
	gate     chan struct{}
}

func (m *memSnapshot) Read() ([]item, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]item(nil), m.stored...), nil
}

func (m *memSnapshot) Write(items []item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.stored = append([]item(nil), items...)
	return nil
}

func (m *memSnapshot) snapshot() ([]item, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]item(nil), m.stored...), m.writes
}

func openStore(t *testing.T, snap snapshot.Snapshotter[item], logger *zap.Logger) *Store[item] {
	t.Helper()
	s, err := Open(Options[item]{Name: "items", Key: itemKey, Snapshot: snap, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close(ctx)
	})
	return s
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestOpen_RequiresKeyAndSnapshot(t *testing.T) {
	_, err := Open(Options[item]{Snapshot: &memSnapshot{}})
	assert.Error(t, err)

	_, err = Open(Options[item]{Key: itemKey})
	assert.Error(t, err)
}

func TestStore_LoadsExistingItems(t *testing.T) {
	snap := &memSnapshot{stored: []item{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}}
	s := openStore(t, snap, nil)

	require.NoError(t, s.Wait(testContext(t)))
	assert.True(t, s.Loaded())
	assert.Equal(t, snap.stored, s.Items())

	got, ok := s.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "two", got.Name)
	assert.Equal(t, 2, s.Len())
}

func TestStore_UpsertAppendsThenReplacesInPlace(t *testing.T) {
	snap := &memSnapshot{}
	s := openStore(t, snap, nil)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	s.Upsert(item{ID: "a", Name: "first"})
	s.Upsert(item{ID: "b", Name: "second"})
	s.Upsert(item{ID: "a", Name: "edited"})

	want := []item{{ID: "a", Name: "edited"}, {ID: "b", Name: "second"}}
	assert.Equal(t, want, s.Items())

	require.NoError(t, s.Flush(ctx))
	stored, _ := snap.snapshot()
	assert.Equal(t, want, stored)
}

func TestStore_DeleteAbsentDoesNotSave(t *testing.T) {
	snap := &memSnapshot{stored: []item{{ID: "a"}}}
	s := openStore(t, snap, nil)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	s.Delete("missing")
	require.NoError(t, s.Flush(ctx))

	_, writes := snap.snapshot()
	assert.Equal(t, 0, writes)
	assert.Equal(t, []item{{ID: "a"}}, s.Items())
}

func TestStore_DeleteKeepsOrderOfRest(t *testing.T) {
	snap := &memSnapshot{stored: []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	s := openStore(t, snap, nil)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	s.Delete("b")
	s.Delete("b")
	s.Upsert(item{ID: "c", Name: "still last"})

	assert.Equal(t, []item{{ID: "a"}, {ID: "c", Name: "still last"}}, s.Items())

	require.NoError(t, s.Flush(ctx))
	stored, _ := snap.snapshot()
	assert.Equal(t, s.Items(), stored)
}

func TestStore_Update(t *testing.T) {
	snap := &memSnapshot{stored: []item{{ID: "a", Name: "x"}, {ID: "b", Name: "y"}}}
	s := openStore(t, snap, nil)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	s.Update("a", func(i item) item {
		i.Name = "changed"
		return i
	})
	s.Update("missing", func(i item) item {
		t.Fatalf("update fn called for missing id")
		return i
	})
	s.Update("b", func(i item) item {
		i.ID = "z"
		return i
	})

	assert.Equal(t, []item{{ID: "a", Name: "changed"}, {ID: "b", Name: "y"}}, s.Items())
}

func TestStore_MutationsBeforeLoadAreReplayed(t *testing.T) {
	snap := &memSnapshot{
		stored: []item{{ID: "a", Name: "loaded"}, {ID: "b", Name: "loaded"}},
		gate:   make(chan struct{}),
	}
	s := openStore(t, snap, nil)

	var mu sync.Mutex
	var calls [][]item
	s.Subscribe(func(items []item) {
		mu.Lock()
		calls = append(calls, items)
		mu.Unlock()
	})

	s.Upsert(item{ID: "c", Name: "early"})
	s.Upsert(item{ID: "a", Name: "early edit"})
	s.Delete("b")
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Items())

	close(snap.gate)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	want := []item{{ID: "a", Name: "early edit"}, {ID: "c", Name: "early"}}
	assert.Equal(t, want, s.Items())

	mu.Lock()
	require.Len(t, calls, 1, "observers should see the load as a single update")
	assert.Equal(t, want, calls[0])
	mu.Unlock()

	require.NoError(t, s.Flush(ctx))
	stored, _ := snap.snapshot()
	assert.Equal(t, want, stored)
}

func TestStore_ObserversGetCopies(t *testing.T) {
	s := openStore(t, &memSnapshot{}, nil)
	require.NoError(t, s.Wait(testContext(t)))

	var got []item
	cancel := s.Subscribe(func(items []item) {
		got = items
	})

	s.Upsert(item{ID: "a", Name: "x"})
	require.Len(t, got, 1)
	got[0].Name = "mutated by observer"

	current, _ := s.Get("a")
	assert.Equal(t, "x", current.Name)

	cancel()
	s.Upsert(item{ID: "b"})
	assert.Len(t, got, 1, "cancelled observer should not be called")
}

func TestStore_StaleViewIsDropped(t *testing.T) {
	s := openStore(t, &memSnapshot{}, nil)
	require.NoError(t, s.Wait(testContext(t)))

	var got [][]item
	s.Subscribe(func(items []item) { got = append(got, items) })

	// Two mutators whose deliveries race: the newer view lands first.
	s.mu.Lock()
	s.items = append(s.items, item{ID: "a"})
	older := s.viewLocked()
	s.items = append(s.items, item{ID: "b"})
	newer := s.viewLocked()
	s.mu.Unlock()

	s.notify(newer)
	s.notify(older)

	require.Len(t, got, 1)
	assert.Equal(t, []item{{ID: "a"}, {ID: "b"}}, got[0])
}

func TestStore_ConcurrentMutationsNotifyInOrder(t *testing.T) {
	s := openStore(t, &memSnapshot{}, nil)
	require.NoError(t, s.Wait(testContext(t)))

	var mu sync.Mutex
	var lengths []int
	s.Subscribe(func(items []item) {
		mu.Lock()
		lengths = append(lengths, len(items))
		mu.Unlock()
	})

	const writers, each = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				s.Upsert(item{ID: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, lengths)
	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Fatalf("observer went from %d items back to %d", lengths[i-1], lengths[i])
		}
	}
	assert.Equal(t, writers*each, lengths[len(lengths)-1])
}

func TestStore_SaveFailureIsReportedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	snap := &memSnapshot{writeErr: errors.New("disk full")}
	s := openStore(t, snap, zap.New(core))
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	s.Upsert(item{ID: "a"})
	assert.Equal(t, []item{{ID: "a"}}, s.Items(), "mutation stays visible in memory")

	err := s.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, err, s.Err())
	assert.Equal(t, 1, logs.FilterMessage("save snapshot failed").Len())

	snap.mu.Lock()
	snap.writeErr = nil
	snap.mu.Unlock()

	s.Upsert(item{ID: "b"})
	require.NoError(t, s.Flush(ctx))
	assert.NoError(t, s.Err())
}

func TestStore_ReadFailureStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	snap := &memSnapshot{readErr: errors.New("permission denied")}
	s := openStore(t, snap, zap.New(core))
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	assert.Empty(t, s.Items())
	assert.Error(t, s.Err())
	assert.Equal(t, 1, logs.FilterMessage("load snapshot failed").Len())
}

func TestStore_DuplicateIDsCollapse(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	snap := &memSnapshot{stored: []item{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "b"},
		{ID: "a", Name: "last"},
	}}
	s := openStore(t, snap, zap.New(core))
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	want := []item{{ID: "a", Name: "last"}, {ID: "b", Name: "b"}}
	assert.Equal(t, want, s.Items())
	assert.Equal(t, 1, logs.FilterMessage("collapsed duplicate ids in snapshot").Len())

	require.NoError(t, s.Flush(ctx))
	stored, _ := snap.snapshot()
	assert.Equal(t, want, stored)
}

func TestStore_CloseDrainsAndIgnoresLaterMutations(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	snap := &memSnapshot{}
	s, err := Open(Options[item]{Key: itemKey, Snapshot: snap, Logger: zap.New(core)})
	require.NoError(t, err)
	ctx := testContext(t)

	for i := 0; i < 50; i++ {
		s.Upsert(item{ID: "a", Name: strings.Repeat("x", i)})
	}
	require.NoError(t, s.Close(ctx))

	stored, writes := snap.snapshot()
	assert.Equal(t, []item{{ID: "a", Name: strings.Repeat("x", 49)}}, stored)
	assert.LessOrEqual(t, writes, 50)

	s.Upsert(item{ID: "late"})
	_, ok := s.Get("late")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("mutation after close ignored").Len())

	require.NoError(t, s.Close(ctx), "second close is a no-op")
	require.NoError(t, s.Flush(ctx))
}

func TestStore_WaitHonorsContext(t *testing.T) {
	snap := &memSnapshot{gate: make(chan struct{})}
	s, err := Open(Options[item]{Key: itemKey, Snapshot: snap})
	require.NoError(t, err)
	defer close(snap.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
}

func TestStore_CorruptSnapshotRestoresBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.jsonl")
	file := snapshot.NewFile[item](path, snapshot.FileOptions{Backup: true})
	require.NoError(t, file.Write([]item{{ID: "a", Name: "backed up"}}))
	require.NoError(t, file.Write([]item{{ID: "a", Name: "current"}}))
	require.NoError(t, os.WriteFile(path, []byte("{broken\n"), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	s := openStore(t, file, zap.New(core))
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	assert.Equal(t, []item{{ID: "a", Name: "backed up"}}, s.Items())
	assert.Equal(t, 1, logs.FilterMessage("restored collection from backup").Len())

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{broken\n", string(data))

	require.NoError(t, s.Flush(ctx))
	reloaded, err := file.Read()
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "a", Name: "backed up"}}, reloaded)
}

func TestStore_CorruptSnapshotWithoutBackupStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("nope\n"), 0o644))

	file := snapshot.NewFile[item](path, snapshot.FileOptions{})
	s := openStore(t, file, nil)
	ctx := testContext(t)
	require.NoError(t, s.Wait(ctx))

	assert.Empty(t, s.Items())
	assert.ErrorIs(t, s.Err(), snapshot.ErrCorrupt)

	s.Upsert(item{ID: "new"})
	require.NoError(t, s.Flush(ctx))

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "corrupt file must not be overwritten")
}
