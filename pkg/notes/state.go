package notes

import (
	"slices"

	"github.com/aretw0/lanote/pkg/core"
)

// State is the synchronizer's position in its lifecycle.
type State int

const (
	// StateUninitialized: no emission received yet. The view reports no notes.
	StateUninitialized State = iota
	// StateSynced: at least one emission received. The view holds the latest one verbatim.
	StateSynced
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSynced:
		return "synced"
	}
	return "unknown"
}

// View is the value published to the presentation layer.
type View struct {
	State State
	Rev   uint64
	Cause core.Event
	Notes []core.Note
}

// IsEmpty reports whether there is nothing to list. It is true while
// uninitialized, so "loading" renders as the empty state.
func (v View) IsEmpty() bool {
	return len(v.Notes) == 0
}

func (v View) clone() View {
	v.Notes = slices.Clone(v.Notes)
	if v.Notes == nil {
		v.Notes = []core.Note{}
	}
	return v
}

// next returns the view after receiving snap. Only forward revisions apply.
func (v View) next(snap core.Snapshot) (View, bool) {
	if v.State == StateSynced && snap.Rev < v.Rev {
		return v, false
	}
	return View{
		State: StateSynced,
		Rev:   snap.Rev,
		Cause: snap.Cause,
		Notes: snap.Notes,
	}, true
}
