package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
)

// Broker fans snapshots out to subscribers.
//
// Each subscriber owns an unbounded FIFO drained by its own goroutine, so a
// slow callback never blocks the publisher or other subscribers, and every
// subscriber sees the same sequence of snapshots in publish order.
type Broker struct {
	mu        sync.Mutex
	subs      map[uuid.UUID]*Subscription
	closed    bool
	published atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewBroker creates a broker. A nil logger discards output.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		subs:   make(map[uuid.UUID]*Subscription),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id uuid.UUID
	fn func(Snapshot)

	mu    sync.Mutex
	queue []Snapshot
	wake  chan struct{}

	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	delivered atomic.Uint64
}

// ID identifies the subscription in logs and introspection output.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Done is closed once the subscription has been released and its callback
// will not run again.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Delivered counts the snapshots handed to the callback so far.
func (s *Subscription) Delivered() uint64 {
	return s.delivered.Load()
}

// Subscribe registers fn and queues initial as its first emission.
func (b *Broker) Subscribe(initial Snapshot, fn func(Snapshot)) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("subscribe: %w", ErrClosed)
	}

	sub := &Subscription{
		id:   uuid.New(),
		fn:   fn,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	b.subs[sub.id] = sub
	sub.enqueue(initial.Clone())

	lifecycle.Go(b.ctx, func(ctx context.Context) error {
		return sub.run(ctx, b.logger)
	})

	b.logger.Debug("subscriber added", "subscription", sub.id, "rev", initial.Rev)
	return sub, nil
}

// Publish queues snap for every current subscriber.
func (b *Broker) Publish(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.published.Add(1)
	for _, sub := range b.subs {
		sub.enqueue(snap.Clone())
	}
}

// Unsubscribe releases sub. Queued snapshots that were not yet delivered are
// dropped. It is safe to call more than once, and from inside the callback.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
	sub.release()
}

// Len returns the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close releases every subscription and rejects new ones.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uuid.UUID]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.release()
	}
	b.cancel()
}

func (s *Subscription) enqueue(snap Snapshot) {
	s.mu.Lock()
	s.queue = append(s.queue, snap)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) release() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		s.queue = nil
		s.mu.Unlock()
	})
}

func (s *Subscription) next() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Snapshot{}, false
	}
	snap := s.queue[0]
	s.queue[0] = Snapshot{}
	s.queue = s.queue[1:]
	return snap, true
}

func (s *Subscription) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Subscription) run(ctx context.Context, logger *slog.Logger) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-s.wake:
		}

		for !s.stopped() {
			snap, ok := s.next()
			if !ok {
				break
			}
			s.deliver(ctx, snap, logger)
		}
	}
}

// deliver invokes the callback. A panicking callback is logged and the
// subscription keeps running.
func (s *Subscription) deliver(ctx context.Context, snap Snapshot, logger *slog.Logger) {
	defer func() {
		if recovered := recover(); recovered != nil {
			args := []any{"subscription", s.id, "rev", snap.Rev, "error", fmt.Errorf("subscriber panic: %v", recovered)}
			if logger.Enabled(ctx, slog.LevelDebug) {
				args = append(args, "stack", string(debug.Stack()))
			}
			logger.Error("subscriber panic", args...)
		}
	}()
	s.fn(snap)
	s.delivered.Add(1)
}
