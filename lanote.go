package lanote

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/lanote/internal/platform"
	"github.com/aretw0/lanote/pkg/config"
	"github.com/aretw0/lanote/pkg/core"
	"github.com/aretw0/lanote/pkg/notes"
)

// --- Types ---

// Note is a public alias for the note entity.
type Note = core.Note

// Snapshot is one emission of the live query.
type Snapshot = core.Snapshot

// View is the synchronizer's published value.
type View = notes.View

// App owns a store and the synchronizer bound to it.
type App = platform.App

// --- Errors ---

var (
	ErrStorageUnavailable = core.ErrStorageUnavailable
	ErrNotFound           = core.ErrNotFound
	ErrReadOnly           = core.ErrReadOnly
)

// NewNotePlaceholder returns the unsaved note shown by the edit view.
func NewNotePlaceholder() Note {
	return core.NewNotePlaceholder()
}

// --- Configuration ---

// Option defines a functional option for configuring lanote.
type Option = platform.Option

// WithLogger sets the logger for the store and the synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithReadOnly rejects writes with ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return platform.WithReadOnly(readOnly)
}

// WithExternalWatch picks up changes written to the database by other processes.
func WithExternalWatch(enabled bool) Option {
	return platform.WithExternalWatch(enabled)
}

// WithBusyTimeout sets how long a write waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return platform.WithBusyTimeout(d)
}

// WithOnChange is called with every new view.
func WithOnChange(fn func(View)) Option {
	return platform.WithOnChange(fn)
}

// WithConfig applies a loaded configuration file.
func WithConfig(cfg config.Config) Option {
	return platform.WithConfig(cfg)
}

// --- Factory ---

// Open opens the note database at path and subscribes a synchronizer to it.
func Open(ctx context.Context, path string, opts ...Option) (*App, error) {
	return platform.New(ctx, path, opts...)
}

// OpenStore opens only the store, for callers that manage their own subscriptions.
func OpenStore(ctx context.Context, path string, opts ...Option) (core.Store, error) {
	return platform.OpenStore(ctx, path, opts...)
}
