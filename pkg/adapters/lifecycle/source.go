package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lanote/pkg/core"
)

// snapshotSource forwards live query snapshots as lifecycle events.
//
// Every snapshot is the complete collection, so only the newest one matters:
// while the consumer is busy, incoming snapshots replace the pending one
// instead of queueing behind it. Snapshots older than one already forwarded
// are dropped.
type snapshotSource struct {
	snapshots <-chan core.Snapshot
	out       chan lifecycle.Event
}

// NewSource creates a lifecycle.Source over the channel returned by a
// store's Watch. Events closes once that channel is closed and the last
// pending snapshot has been taken, or when the Start context ends.
func NewSource(snapshots <-chan core.Snapshot) lifecycle.Source {
	return &snapshotSource{
		snapshots: snapshots,
		out:       make(chan lifecycle.Event),
	}
}

func (s *snapshotSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *snapshotSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		s.forward(ctx)
		return nil
	})
	return nil
}

func (s *snapshotSource) forward(ctx context.Context) {
	in := s.snapshots
	var (
		pending core.Snapshot
		has     bool
		sent    bool
		lastRev uint64
	)

	for in != nil || has {
		// A nil channel disables the send case until something is pending.
		var out chan lifecycle.Event
		if has {
			out = s.out
		}

		select {
		case <-ctx.Done():
			return
		case snap, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			if (sent && snap.Rev <= lastRev) || (has && snap.Rev < pending.Rev) {
				continue
			}
			pending, has = snap, true
		case out <- pending:
			lastRev, sent, has = pending.Rev, true, false
		}
	}
}
