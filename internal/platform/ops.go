package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/lanote/pkg/adapters/sqlite"
	"github.com/aretw0/lanote/pkg/core"
)

// OpenStore creates and initializes the store for uri.
// The uri is adapter-specific: a file path (or ":memory:") for sqlite.
func OpenStore(ctx context.Context, uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions().apply(opts)

	store := o.store
	if store == nil {
		switch o.adapter {
		case "sqlite":
			store = sqlite.NewStore(sqlite.Config{
				Path:          uri,
				ReadOnly:      o.readOnly,
				WatchExternal: o.watchExternal,
				BusyTimeout:   o.busyTimeout,
				Logger:        o.logger,
			})
		default:
			return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
		}
	}

	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
