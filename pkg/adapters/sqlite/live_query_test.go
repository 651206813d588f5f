package sqlite_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lanote/pkg/core"
)

func TestSubscribe_FirstEmissionIsCurrentState(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "before", "subscribe")
	require.NoError(t, err)

	var c collector
	_, err = store.Subscribe(c.add)
	require.NoError(t, err)

	first := c.waitRev(t, 1)
	assert.Equal(t, core.EventInitial, first.Cause.Type)
	assert.Equal(t, []core.Note{{ID: 1, Title: "before", Content: "subscribe"}}, first.Notes)
}

func TestSubscribe_EveryWriteEmitsInCommitOrder(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var c collector
	_, err := store.Subscribe(c.add)
	require.NoError(t, err)

	a, err := store.Create(ctx, "A", "x")
	require.NoError(t, err)
	a.Title = "A'"
	require.NoError(t, store.Update(ctx, a))
	b, err := store.Create(ctx, "B", "y")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, a))

	c.waitRev(t, 4)
	snaps := c.all()
	require.Len(t, snaps, 5)

	causes := make([]core.Event, len(snaps))
	for i, s := range snaps {
		assert.Equal(t, uint64(i), s.Rev)
		causes[i] = core.Event{Type: s.Cause.Type, ID: s.Cause.ID}
	}
	wantCauses := []core.Event{
		{Type: core.EventInitial},
		{Type: core.EventCreate, ID: 1},
		{Type: core.EventModify, ID: 1},
		{Type: core.EventCreate, ID: 2},
		{Type: core.EventDelete, ID: 1},
	}
	if diff := cmp.Diff(wantCauses, causes); diff != "" {
		t.Errorf("causes mismatch (-want +got):\n%s", diff)
	}

	// The update is visible, never the original title.
	assert.Equal(t, []core.Note{{ID: 1, Title: "A'", Content: "x"}}, snaps[2].Notes)
	assert.Equal(t, []core.Note{b}, snaps[4].Notes)
}

func TestSubscribe_MultipleSubscribersSeeSameSequence(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var c1, c2 collector
	_, err := store.Subscribe(c1.add)
	require.NoError(t, err)
	_, err = store.Subscribe(c2.add)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := store.Create(ctx, "n", "")
		require.NoError(t, err)
	}

	c1.waitRev(t, 10)
	c2.waitRev(t, 10)
	// Initial emissions are stamped per subscriber; compare from the first write.
	if diff := cmp.Diff(c1.all()[1:], c2.all()[1:]); diff != "" {
		t.Errorf("subscribers diverged (-c1 +c2):\n%s", diff)
	}
}

func TestUnsubscribe_NoFurtherEmissions(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var c collector
	sub, err := store.Subscribe(c.add)
	require.NoError(t, err)
	c.waitRev(t, 0)

	store.Unsubscribe(sub)
	<-sub.Done()

	_, err = store.Create(ctx, "unseen", "")
	require.NoError(t, err)

	assert.Len(t, c.all(), 1)
}

func TestWatch_Channel(t *testing.T) {
	store, _ := setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := store.Watch(ctx)
	require.NoError(t, err)

	initial := <-stream
	assert.Empty(t, initial.Notes)

	_, err = store.Create(context.Background(), "live", "")
	require.NoError(t, err)

	next := <-stream
	assert.Equal(t, core.EventCreate, next.Cause.Type)
	assert.Len(t, next.Notes, 1)

	cancel()
	for range stream {
	}
}
