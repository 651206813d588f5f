// Package core holds the note entity, the storage contracts and the
// publish/subscribe machinery behind the live query.
package core

import (
	"fmt"
	"unicode/utf8"
)

// Values shown in the edit view for a note that has not been saved yet.
const (
	PlaceholderTitle   = "Title here"
	PlaceholderContent = "Type Something Here ..."
)

// Note is the central entity of the domain.
// ID is assigned by the store on creation and never changes afterwards.
// A Note held outside the store is a snapshot; mutate it only through a Repository.
type Note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewNotePlaceholder returns the sentinel note passed to the edit view when
// the user starts a new note. It has no ID until it is created.
func NewNotePlaceholder() Note {
	return Note{Title: PlaceholderTitle, Content: PlaceholderContent}
}

// IsNew reports whether the note has never been persisted.
func (n Note) IsNew() bool {
	return n.ID == 0
}

// Validate checks the fields a store can persist.
// Title and content length are not limited here.
func (n Note) Validate() error {
	if n.ID < 0 {
		return fmt.Errorf("%w: negative id %d", ErrInvalidNote, n.ID)
	}
	if !utf8.ValidString(n.Title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidNote)
	}
	if !utf8.ValidString(n.Content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidNote)
	}
	return nil
}

func (n Note) String() string {
	if n.IsNew() {
		return fmt.Sprintf("#new %q", n.Title)
	}
	return fmt.Sprintf("#%d %q", n.ID, n.Title)
}
