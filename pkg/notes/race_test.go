package notes_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lanote/pkg/core"
)

// TestSynchronizer_UpdateDeleteRace issues an update and a delete of the same
// note concurrently. Whichever lands first, the note must end up deleted and
// the update either applies or reports ErrNotFound.
func TestSynchronizer_UpdateDeleteRace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping race test in short mode")
	}

	store := newMemoryStore(t)
	s := newSynchronizer(t, store)
	ctx := context.Background()

	var mu sync.Mutex
	var revs []uint64
	_, err := store.Subscribe(func(snap core.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		revs = append(revs, snap.Rev)
	})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		n, err := s.AddNote(ctx, "racy", "before")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var updateErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			updateErr = s.UpdateNote(ctx, core.Note{ID: n.ID, Title: "racy", Content: "after"})
		}()
		go func() {
			defer wg.Done()
			deleteErr = s.DeleteNote(ctx, n)
		}()
		wg.Wait()

		require.NoError(t, deleteErr)
		if updateErr != nil {
			require.True(t, errors.Is(updateErr, core.ErrNotFound), "update: %v", updateErr)
		}

		require.NoError(t, s.Settle(ctx))
		_, found := s.Find(n.ID)
		require.False(t, found, "note %d came back after delete", n.ID)
	}

	assert.Empty(t, s.CurrentNotes())

	target := store.Revision()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(revs) > 0 && revs[len(revs)-1] == target
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	first := revs[0]
	for i, rev := range revs {
		require.Equal(t, first+uint64(i), rev, "revision gap at emission %d", i)
	}
}
