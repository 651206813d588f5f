package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// The store is the single writer and the single source of truth.
type Repository interface {
	// Initialize ensures the underlying storage is ready (open, create table if absent).
	Initialize(ctx context.Context) error

	// Create inserts a new note with a freshly generated ID.
	Create(ctx context.Context, title, content string) (Note, error)

	// Get retrieves a note by its ID.
	Get(ctx context.Context, id int64) (Note, error)

	// List returns all notes ordered by ID.
	List(ctx context.Context) ([]Note, error)

	// Update overwrites title and content of an existing note.
	// It fails with ErrNotFound when no record has n.ID.
	Update(ctx context.Context, n Note) error

	// Delete removes the record with n.ID. Deleting an absent ID succeeds.
	Delete(ctx context.Context, n Note) error

	// Close releases the storage and ends every subscription.
	Close() error
}

// Observable is implemented by repositories that expose a live query over
// the whole collection.
//
// Subscribe registers fn and delivers the collection as of subscription time
// as the first emission. Every successful write emits a new snapshot to every
// subscriber, in commit order, before the write returns.
type Observable interface {
	Subscribe(fn func(Snapshot)) (*Subscription, error)
	Unsubscribe(sub *Subscription)
	// Revision is the revision of the latest published snapshot.
	Revision() uint64
}

// Store is a Repository with a live query.
type Store interface {
	Repository
	Observable
}
