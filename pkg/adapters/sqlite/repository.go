package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/aretw0/lanote/pkg/core"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// AUTOINCREMENT keeps ids from being reused after the highest row is deleted.
const schema = `CREATE TABLE IF NOT EXISTS note (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	title   TEXT NOT NULL,
	content TEXT NOT NULL
)`

// Store implements core.Store on top of a single SQLite table.
type Store struct {
	config Config
	db     *sql.DB
	broker *core.Broker

	// mu serializes writes, publishing and subscription so that snapshots
	// leave the store in commit order.
	mu     sync.Mutex
	last   core.Snapshot
	closed bool
	rev    atomic.Uint64

	stateMu       sync.RWMutex
	watcherActive bool
	lastReload    *time.Time
	watch         *watchSupervisor
}

// Config holds the configuration for the SQLite store.
type Config struct {
	Path          string        // database file, or MemoryPath
	ReadOnly      bool          // reject writes with core.ErrReadOnly
	WatchExternal bool          // re-emit when another process changes the file
	BusyTimeout   time.Duration // how long to wait on a locked database
	Logger        *slog.Logger
	ErrorHandler  func(error) // receives background (watcher) errors
}

// NewStore creates a store. Call Initialize before use.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	return &Store{
		config: config,
		broker: core.NewBroker(config.Logger),
	}
}

// Path returns the configured database location.
func (s *Store) Path() string {
	return s.config.Path
}

func (s *Store) inMemory() bool {
	return s.config.Path == "" || s.config.Path == MemoryPath
}

func (s *Store) dsn() string {
	if s.inMemory() {
		return MemoryPath
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)",
		filepath.ToSlash(s.config.Path), s.config.BusyTimeout.Milliseconds())
}

// Initialize opens the database, creates the table if absent and loads the
// current collection. It starts the external watcher when configured.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return closedError("initialize")
	}
	if s.db != nil {
		return nil
	}

	if !s.inMemory() {
		if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
			return storageError("initialize", fmt.Errorf("failed to create directories: %w", err))
		}
	}

	db, err := sql.Open("sqlite3", s.dsn())
	if err != nil {
		return storageError("initialize", err)
	}
	// One connection: an in-memory database lives per connection, and a
	// single local writer needs no pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return storageError("initialize", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return storageError("initialize", fmt.Errorf("failed to create schema: %w", err))
	}

	notes, err := queryAll(ctx, db)
	if err != nil {
		_ = db.Close()
		return storageError("initialize", err)
	}

	s.db = db
	s.last = core.Snapshot{Rev: s.rev.Load(), Notes: notes}
	s.config.Logger.Info("note store opened", "path", s.config.Path, "notes", len(notes))

	if s.config.WatchExternal && !s.inMemory() {
		s.watch = newWatchSupervisor(s)
		if err := s.watch.start(); err != nil {
			s.config.Logger.Error("external watcher failed to start", "error", err)
			s.watch = nil
		}
	}
	return nil
}

// Create inserts a new note and publishes the resulting collection.
func (s *Store) Create(ctx context.Context, title, content string) (core.Note, error) {
	n := core.Note{Title: title, Content: content}
	if err := n.Validate(); err != nil {
		return core.Note{}, fmt.Errorf("create: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable("create"); err != nil {
		return core.Note{}, err
	}

	err := s.write(ctx, "create", func(tx *sql.Tx) (core.Event, error) {
		res, err := tx.ExecContext(ctx, `INSERT INTO note (title, content) VALUES (?, ?)`, title, content)
		if err != nil {
			return core.Event{}, err
		}
		n.ID, err = res.LastInsertId()
		if err != nil {
			return core.Event{}, err
		}
		return core.Event{Type: core.EventCreate, ID: n.ID}, nil
	})
	if err != nil {
		return core.Note{}, err
	}
	return n, nil
}

// Update overwrites title and content of the note with n.ID.
func (s *Store) Update(ctx context.Context, n core.Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable("update"); err != nil {
		return err
	}

	return s.write(ctx, "update", func(tx *sql.Tx) (core.Event, error) {
		res, err := tx.ExecContext(ctx, `UPDATE note SET title = ?, content = ? WHERE id = ?`, n.Title, n.Content, n.ID)
		if err != nil {
			return core.Event{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return core.Event{}, err
		}
		if affected == 0 {
			return core.Event{}, fmt.Errorf("note %d: %w", n.ID, core.ErrNotFound)
		}
		return core.Event{Type: core.EventModify, ID: n.ID}, nil
	})
}

// Delete removes the note with n.ID. An absent ID is not an error; the
// current collection is still published.
func (s *Store) Delete(ctx context.Context, n core.Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable("delete"); err != nil {
		return err
	}

	return s.write(ctx, "delete", func(tx *sql.Tx) (core.Event, error) {
		res, err := tx.ExecContext(ctx, `DELETE FROM note WHERE id = ?`, n.ID)
		if err != nil {
			return core.Event{}, err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			s.config.Logger.Debug("delete of absent note", "id", n.ID)
		}
		return core.Event{Type: core.EventDelete, ID: n.ID}, nil
	})
}

// Get retrieves a note by its ID.
func (s *Store) Get(ctx context.Context, id int64) (core.Note, error) {
	db, err := s.handle("get")
	if err != nil {
		return core.Note{}, err
	}

	n := core.Note{ID: id}
	err = db.QueryRowContext(ctx, `SELECT title, content FROM note WHERE id = ?`, id).Scan(&n.Title, &n.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, fmt.Errorf("get note %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, storageError("get", err)
	}
	return n, nil
}

// List returns all notes ordered by ID.
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	db, err := s.handle("list")
	if err != nil {
		return nil, err
	}
	notes, err := queryAll(ctx, db)
	if err != nil {
		return nil, storageError("list", err)
	}
	return notes, nil
}

// Subscribe registers fn on the live query. The first emission is read
// from the database at subscription time.
func (s *Store) Subscribe(fn func(core.Snapshot)) (*core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, closedError("subscribe")
	}
	if s.db == nil {
		return nil, storageError("subscribe", errors.New("store is not initialized"))
	}

	// Another process may have written since the last publish.
	if err := s.reloadLocked(context.Background()); err != nil {
		return nil, err
	}

	initial := s.last
	initial.Cause = core.Event{Type: core.EventInitial, Timestamp: time.Now().Unix()}
	return s.broker.Subscribe(initial, fn)
}

// Unsubscribe releases a subscription returned by Subscribe.
func (s *Store) Unsubscribe(sub *core.Subscription) {
	s.broker.Unsubscribe(sub)
}

// Watch returns the live query as a channel scoped to ctx.
func (s *Store) Watch(ctx context.Context) (<-chan core.Snapshot, error) {
	return core.Watch(ctx, s)
}

// Revision is the revision of the latest published snapshot.
func (s *Store) Revision() uint64 {
	return s.rev.Load()
}

// Reload re-reads the table and publishes it if it differs from the last
// snapshot. It picks up writes made by other processes.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedError("reload")
	}
	if s.db == nil {
		return storageError("reload", errors.New("store is not initialized"))
	}
	return s.reloadLocked(ctx)
}

// Close stops the watcher, ends every subscription and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	watch := s.watch
	s.watch = nil
	db := s.db
	s.mu.Unlock()

	if watch != nil {
		watch.stop()
	}
	s.broker.Close()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return storageError("close", err)
	}
	s.config.Logger.Debug("note store closed", "path", s.config.Path)
	return nil
}

// write runs fn in a transaction, re-reads the collection inside the same
// transaction and publishes it once committed. Callers hold s.mu.
func (s *Store) write(ctx context.Context, op string, fn func(tx *sql.Tx) (core.Event, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail(op, err)
	}

	event, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.fail(op, err)
	}

	notes, err := queryAll(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return s.fail(op, err)
	}

	if err := tx.Commit(); err != nil {
		return s.fail(op, err)
	}

	event.Timestamp = time.Now().Unix()
	s.publishLocked(event, notes)
	s.config.Logger.Debug("note committed", "op", op, "id", event.ID, "rev", s.last.Rev)
	return nil
}

func (s *Store) reloadLocked(ctx context.Context) error {
	notes, err := queryAll(ctx, s.db)
	if err != nil {
		return s.fail("reload", err)
	}
	if (core.Snapshot{Notes: notes}).SameNotes(s.last) {
		return nil
	}

	s.publishLocked(core.Event{Type: core.EventReload, Timestamp: time.Now().Unix()}, notes)
	now := time.Now()
	s.stateMu.Lock()
	s.lastReload = &now
	s.stateMu.Unlock()
	s.config.Logger.Debug("external change picked up", "rev", s.last.Rev, "notes", len(notes))
	return nil
}

func (s *Store) publishLocked(event core.Event, notes []core.Note) {
	s.last = core.Snapshot{
		Rev:   s.rev.Add(1),
		Cause: event,
		Notes: notes,
	}
	s.broker.Publish(s.last)
}

func (s *Store) writable(op string) error {
	if s.closed {
		return closedError(op)
	}
	if s.db == nil {
		return storageError(op, errors.New("store is not initialized"))
	}
	if s.config.ReadOnly {
		return fmt.Errorf("%s: %w", op, core.ErrReadOnly)
	}
	return nil
}

func (s *Store) handle(op string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, closedError(op)
	}
	if s.db == nil {
		return nil, storageError(op, errors.New("store is not initialized"))
	}
	return s.db, nil
}

func (s *Store) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.config.Logger.Error("note store failure", "op", op, "error", err)
	return storageError(op, err)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryAll(ctx context.Context, q querier) ([]core.Note, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, title, content FROM note ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		var n core.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

func closedError(op string) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, core.ErrClosed)
}

var _ core.Store = (*Store)(nil)
