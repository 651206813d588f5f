package core

import (
	"cmp"
	"fmt"
	"slices"
)

// EventType represents what caused a snapshot to be emitted.
type EventType string

const (
	// EventInitial is the first emission a subscriber receives.
	EventInitial EventType = "INITIAL"
	EventCreate  EventType = "CREATE"
	EventModify  EventType = "MODIFY"
	EventDelete  EventType = "DELETE"
	// EventReload is emitted when the store picked up a change it did not make itself.
	EventReload EventType = "RELOAD"
)

// Event describes the mutation behind a snapshot.
type Event struct {
	Type      EventType
	ID        int64
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.ID == 0 {
		return string(e.Type)
	}
	return fmt.Sprintf("%s #%d", e.Type, e.ID)
}

// Snapshot is one emission of the live query: the complete note collection
// as of store revision Rev, ordered by ascending ID.
type Snapshot struct {
	Rev   uint64
	Cause Event
	Notes []Note
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	s.Notes = slices.Clone(s.Notes)
	return s
}

// Find looks up a note by ID.
func (s Snapshot) Find(id int64) (Note, bool) {
	i, ok := slices.BinarySearchFunc(s.Notes, id, func(n Note, id int64) int {
		return cmp.Compare(n.ID, id)
	})
	if !ok {
		return Note{}, false
	}
	return s.Notes[i], true
}

// SameNotes reports whether both snapshots hold exactly the same notes,
// ignoring revision and cause.
func (s Snapshot) SameNotes(other Snapshot) bool {
	return slices.Equal(s.Notes, other.Notes)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("rev %d %s (%d notes)", s.Rev, s.Cause, len(s.Notes))
}
