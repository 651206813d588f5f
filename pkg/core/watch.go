package core

import (
	"context"

	"github.com/aretw0/lifecycle"
)

// Watch exposes the live query of o as a channel scoped to ctx.
//
// The first value is the collection at subscription time. When ctx ends the
// subscription is released and the channel is closed; nothing is delivered
// after that.
func Watch(ctx context.Context, o Observable) (<-chan Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(chan Snapshot)
	sub, err := o.Subscribe(func(snap Snapshot) {
		select {
		case out <- snap:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			o.Unsubscribe(sub)
		case <-sub.Done():
		}
		<-sub.Done()
		close(out)
		return nil
	})
	return out, nil
}
