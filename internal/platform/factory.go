package platform

import (
	"context"
	"errors"

	"github.com/aretw0/lanote/pkg/core"
	"github.com/aretw0/lanote/pkg/notes"
)

// App owns one store and the synchronizer bound to it.
type App struct {
	Store core.Store
	Notes *notes.Synchronizer
}

// New opens the store for uri and subscribes a synchronizer to it.
// The synchronizer is released when ctx ends; Close releases everything.
//
//	app, err := lanote.Open(ctx, "notes.db", lanote.WithLogger(logger))
func New(ctx context.Context, uri string, opts ...Option) (*App, error) {
	o := defaultOptions().apply(opts)

	store, err := OpenStore(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	syncOpts := []notes.Option{notes.WithLogger(o.logger)}
	if o.onChange != nil {
		syncOpts = append(syncOpts, notes.WithOnChange(o.onChange))
	}
	syncer, err := notes.New(ctx, store, syncOpts...)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	return &App{Store: store, Notes: syncer}, nil
}

// Close releases the synchronizer and then the store.
func (a *App) Close() error {
	a.Notes.Close()
	return a.Store.Close()
}
