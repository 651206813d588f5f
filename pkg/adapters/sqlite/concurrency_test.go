package sqlite_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWriters hammers one store from several goroutines and checks
// that every subscriber still sees a gap-free, strictly ordered revision
// sequence that ends with the committed collection.
func TestConcurrentWriters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	store, _ := setupStore(t)
	ctx := context.Background()

	var c collector
	_, err := store.Subscribe(c.add)
	require.NoError(t, err)

	const writers, perWriter = 4, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				n, err := store.Create(ctx, fmt.Sprintf("w%d-%d", w, i), "")
				if !assert.NoError(t, err) {
					return
				}
				if rand.Intn(3) == 0 {
					n.Content = "touched"
					assert.NoError(t, store.Update(ctx, n))
				}
			}
		}(w)
	}
	wg.Wait()

	final := c.waitRev(t, store.Revision())
	for i, s := range c.all() {
		require.Equal(t, uint64(i), s.Rev, "revision gap at emission %d", i)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, writers*perWriter)
	assert.Equal(t, list, final.Notes)

	seen := map[int64]bool{}
	for _, n := range final.Notes {
		assert.False(t, seen[n.ID], "duplicate id %d", n.ID)
		seen[n.ID] = true
	}
}
