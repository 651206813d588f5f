package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lanote/pkg/adapters/sqlite"
	"github.com/aretw0/lanote/pkg/core"
)

// setupStore creates an initialized store in a temp dir.
func setupStore(t *testing.T, opts ...func(*sqlite.Config)) (*sqlite.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "notes.db")
	cfg := sqlite.Config{Path: path}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := sqlite.NewStore(cfg)
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store, path
}

// collector records every snapshot of a subscription.
type collector struct {
	mu    sync.Mutex
	snaps []core.Snapshot
}

func (c *collector) add(s core.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
}

func (c *collector) all() []core.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Snapshot(nil), c.snaps...)
}

func (c *collector) waitRev(t *testing.T, rev uint64) core.Snapshot {
	t.Helper()
	var last core.Snapshot
	require.Eventually(t, func() bool {
		snaps := c.all()
		if len(snaps) == 0 {
			return false
		}
		last = snaps[len(snaps)-1]
		return last.Rev >= rev
	}, 2*time.Second, 5*time.Millisecond, "no snapshot at rev %d", rev)
	return last
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory and Database", func(t *testing.T) {
		_, path := setupStore(t)

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected database at %s: %v", path, err)
		}
	})

	t.Run("Is Idempotent", func(t *testing.T) {
		store, _ := setupStore(t)
		require.NoError(t, store.Initialize(context.Background()))
	})

	t.Run("Fails When Path Is a Directory", func(t *testing.T) {
		dir := t.TempDir()
		store := sqlite.NewStore(sqlite.Config{Path: dir})
		err := store.Initialize(context.Background())
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	})

	t.Run("Operations Before Initialize", func(t *testing.T) {
		store := sqlite.NewStore(sqlite.Config{Path: sqlite.MemoryPath})
		_, err := store.Create(context.Background(), "a", "b")
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)
		_, err = store.Subscribe(func(core.Snapshot) {})
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	})
}

func TestCRUD(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "Title here", "Type Something Here")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	b, err := store.Create(ctx, "Second", "content")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID)

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	a.Title = "Renamed"
	require.NoError(t, store.Update(ctx, a))

	require.NoError(t, store.Delete(ctx, b))

	list, err := store.List(ctx)
	require.NoError(t, err)
	want := []core.Note{{ID: 1, Title: "Renamed", Content: "Type Something Here"}}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Get(ctx, b.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEmptyStore(t *testing.T) {
	store, _ := setupStore(t)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdate_NotFound(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var c collector
	_, err := store.Subscribe(c.add)
	require.NoError(t, err)

	err = store.Update(ctx, core.Note{ID: 42, Title: "ghost"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, errors.Is(err, core.ErrStorageUnavailable))

	err = store.Update(ctx, core.NewNotePlaceholder())
	assert.ErrorIs(t, err, core.ErrNotFound)

	// A failed write publishes nothing.
	assert.Equal(t, uint64(0), store.Revision())

	// And the live query keeps working afterwards.
	_, err = store.Create(ctx, "after", "failure")
	require.NoError(t, err)
	snap := c.waitRev(t, 1)
	assert.Len(t, snap.Notes, 1)
}

func TestDelete_AbsentIsNoOp(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	n, err := store.Create(ctx, "a", "b")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, n))
	require.NoError(t, store.Delete(ctx, n))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Every successful write emits, including the no-op delete.
	assert.Equal(t, uint64(3), store.Revision())
}

func TestInvalidNote(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "\xff", "x")
	assert.ErrorIs(t, err, core.ErrInvalidNote)
	assert.ErrorIs(t, store.Update(ctx, core.Note{ID: -3}), core.ErrInvalidNote)
	assert.ErrorIs(t, store.Delete(ctx, core.Note{ID: -3}), core.ErrInvalidNote)
}

func TestIDsAreNeverReused(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "1", "")
	require.NoError(t, err)
	second, err := store.Create(ctx, "2", "")
	require.NoError(t, err)

	// Deleting the highest id must not hand it out again.
	require.NoError(t, store.Delete(ctx, second))
	third, err := store.Create(ctx, "3", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(3), third.ID)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	ctx := context.Background()

	store := sqlite.NewStore(sqlite.Config{Path: path})
	require.NoError(t, store.Initialize(ctx))
	_, err := store.Create(ctx, "kept", "on disk")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := sqlite.NewStore(sqlite.Config{Path: path})
	require.NoError(t, reopened.Initialize(ctx))
	defer reopened.Close()

	list, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Note{{ID: 1, Title: "kept", Content: "on disk"}}, list)
}

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	ctx := context.Background()

	rw := sqlite.NewStore(sqlite.Config{Path: path})
	require.NoError(t, rw.Initialize(ctx))
	_, err := rw.Create(ctx, "existing", "")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro := sqlite.NewStore(sqlite.Config{Path: path, ReadOnly: true})
	require.NoError(t, ro.Initialize(ctx))
	defer ro.Close()

	_, err = ro.Create(ctx, "new", "")
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, ro.Update(ctx, core.Note{ID: 1, Title: "x"}), core.ErrReadOnly)
	assert.ErrorIs(t, ro.Delete(ctx, core.Note{ID: 1}), core.ErrReadOnly)

	var c collector
	_, err = ro.Subscribe(c.add)
	require.NoError(t, err)
	snap := c.waitRev(t, 0)
	assert.Len(t, snap.Notes, 1)
}

func TestClosed(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var c collector
	sub, err := store.Subscribe(c.add)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not released on close")
	}

	_, err = store.Create(ctx, "a", "b")
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.ErrorIs(t, err, core.ErrClosed)
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	_, err = store.Subscribe(c.add)
	assert.ErrorIs(t, err, core.ErrClosed)
}

func TestCanceledContext(t *testing.T) {
	store, _ := setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), store.Revision())
}

func TestInMemory(t *testing.T) {
	store := sqlite.NewStore(sqlite.Config{Path: sqlite.MemoryPath})
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))
	defer store.Close()

	_, err := store.Create(ctx, "a", "b")
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestState(t *testing.T) {
	store, path := setupStore(t, func(c *sqlite.Config) { c.ReadOnly = true })

	state, ok := store.State().(sqlite.StoreState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.True(t, state.ReadOnly)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "sqlite-store", store.ComponentType())
}
