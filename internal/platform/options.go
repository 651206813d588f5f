package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/lanote/pkg/config"
	"github.com/aretw0/lanote/pkg/core"
	"github.com/aretw0/lanote/pkg/notes"
)

// options holds the internal configuration for opening a note database.
type options struct {
	store         core.Store
	logger        *slog.Logger
	adapter       string
	readOnly      bool
	watchExternal bool
	busyTimeout   time.Duration
	onChange      func(notes.View)
}

// Option defines a functional option for configuring lanote.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter: "sqlite",
	}
}

func (o *options) apply(opts []Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger shared by the store and the synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom store. The default adapter is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = readOnly
	}
}

// WithExternalWatch re-emits the collection when another process changes
// the database file.
func WithExternalWatch(enabled bool) Option {
	return func(o *options) {
		o.watchExternal = enabled
	}
}

// WithBusyTimeout sets how long a write waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// WithOnChange registers a callback for every new view of the synchronizer.
func WithOnChange(fn func(notes.View)) Option {
	return func(o *options) {
		o.onChange = fn
	}
}

// WithConfig applies the settings of a loaded config file.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.readOnly = cfg.ReadOnly
		o.watchExternal = cfg.WatchExternal
		o.busyTimeout = cfg.BusyTimeout
	}
}
