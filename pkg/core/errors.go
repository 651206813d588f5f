package core

import "errors"

// Common errors.
var (
	// ErrStorageUnavailable means the underlying storage could not be opened,
	// read or written. Driver errors are wrapped together with it.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when an update or lookup references an absent id.
	ErrNotFound = errors.New("note not found")

	ErrReadOnly    = errors.New("store is in read-only mode")
	ErrClosed      = errors.New("store is closed")
	ErrInvalidNote = errors.New("invalid note")
)
