// Package notes bridges a store's live query to the note list shown to the
// user, and turns user intents into store writes.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lanote/pkg/core"
)

// Synchronizer holds the latest snapshot of the store's live query.
//
// Its published view is only ever replaced by an emission from the store;
// AddNote, UpdateNote and DeleteNote write to the store and then wait for
// the emission that carries their result.
type Synchronizer struct {
	store    core.Store
	logger   *slog.Logger
	onChange func(View)

	mu      sync.RWMutex
	view    View
	changed chan struct{}

	sub       *core.Subscription
	closed    chan struct{}
	closeOnce sync.Once
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers fn to be called with every new view, in order.
// fn runs on the subscription goroutine and must not block for long.
func WithOnChange(fn func(View)) Option {
	return func(s *Synchronizer) {
		s.onChange = fn
	}
}

// New subscribes to store. The subscription lives until ctx ends or Close is called.
func New(ctx context.Context, store core.Store, opts ...Option) (*Synchronizer, error) {
	if store == nil {
		return nil, fmt.Errorf("synchronizer: nil store")
	}

	s := &Synchronizer{
		store:   store,
		logger:  slog.New(slog.DiscardHandler),
		view:    View{State: StateUninitialized, Notes: []core.Note{}},
		changed: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	sub, err := store.Subscribe(s.apply)
	if err != nil {
		return nil, fmt.Errorf("synchronizer: %w", err)
	}
	s.sub = sub

	lifecycle.Go(ctx, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.closed:
		case <-sub.Done():
			s.Close()
		}
		return nil
	})

	s.logger.Debug("synchronizer subscribed", "subscription", sub.ID())
	return s, nil
}

func (s *Synchronizer) apply(snap core.Snapshot) {
	s.mu.Lock()
	view, ok := s.view.next(snap)
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("stale snapshot ignored", "rev", snap.Rev, "current", s.view.Rev)
		return
	}
	s.view = view
	close(s.changed)
	s.changed = make(chan struct{})
	published := s.view.clone()
	s.mu.Unlock()

	s.logger.Debug("view updated", "rev", published.Rev, "cause", published.Cause.String(), "notes", len(published.Notes))
	if s.onChange != nil {
		s.onChange(published)
	}
}

// CurrentNotes returns the notes of the latest emission, or an empty slice
// before the first one arrives.
func (s *Synchronizer) CurrentNotes() []core.Note {
	return s.View().Notes
}

// View returns a copy of the published view.
func (s *Synchronizer) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.clone()
}

// Status returns StateUninitialized until the first emission, StateSynced afterwards.
func (s *Synchronizer) Status() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.State
}

// Find looks a note up in the published view.
func (s *Synchronizer) Find(id int64) (core.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Snapshot{Notes: s.view.Notes}.Find(id)
}

// AddNote creates a note and returns it once the view contains it.
func (s *Synchronizer) AddNote(ctx context.Context, title, content string) (core.Note, error) {
	n, err := s.store.Create(ctx, title, content)
	if err != nil {
		s.logger.Warn("add note failed", "error", err)
		return core.Note{}, err
	}
	if err := s.Settle(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// UpdateNote persists the note's current title and content.
func (s *Synchronizer) UpdateNote(ctx context.Context, n core.Note) error {
	if err := s.store.Update(ctx, n); err != nil {
		s.logger.Warn("update note failed", "id", n.ID, "error", err)
		return err
	}
	return s.Settle(ctx)
}

// DeleteNote removes the note from the store.
func (s *Synchronizer) DeleteNote(ctx context.Context, n core.Note) error {
	if err := s.store.Delete(ctx, n); err != nil {
		s.logger.Warn("delete note failed", "id", n.ID, "error", err)
		return err
	}
	return s.Settle(ctx)
}

// SaveNote is the edit view's save action: new notes are added, existing
// ones updated.
func (s *Synchronizer) SaveNote(ctx context.Context, n core.Note) (core.Note, error) {
	if n.IsNew() {
		return s.AddNote(ctx, n.Title, n.Content)
	}
	if err := s.UpdateNote(ctx, n); err != nil {
		return core.Note{}, err
	}
	return n, nil
}

// Settle waits until the view reflects every write the store has committed so far.
func (s *Synchronizer) Settle(ctx context.Context) error {
	return s.WaitFor(ctx, s.store.Revision())
}

// WaitFor blocks until the view reaches revision rev, ctx ends or the
// synchronizer is closed.
func (s *Synchronizer) WaitFor(ctx context.Context, rev uint64) error {
	for {
		s.mu.RLock()
		if s.view.State == StateSynced && s.view.Rev >= rev {
			s.mu.RUnlock()
			return nil
		}
		changed := s.changed
		s.mu.RUnlock()

		select {
		case <-changed:
		case <-s.closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed when the synchronizer has been closed.
func (s *Synchronizer) Done() <-chan struct{} {
	return s.closed
}

// Close releases the subscription. The view keeps its last value.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		s.store.Unsubscribe(s.sub)
		close(s.closed)
		s.logger.Debug("synchronizer closed", "subscription", s.sub.ID())
	})
}
