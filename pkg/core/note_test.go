package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/lanote/pkg/core"
)

func TestNotePlaceholder(t *testing.T) {
	n := core.NewNotePlaceholder()
	if !n.IsNew() {
		t.Fatalf("placeholder should be new, got id %d", n.ID)
	}
	if n.Title != core.PlaceholderTitle || n.Content != core.PlaceholderContent {
		t.Errorf("unexpected placeholder %+v", n)
	}
	if got := n.String(); got != `#new "Title here"` {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestNoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		note    core.Note
		wantErr bool
	}{
		{"new note", core.Note{Title: "a", Content: "b"}, false},
		{"stored note", core.Note{ID: 7, Title: "", Content: ""}, false},
		{"negative id", core.Note{ID: -1}, true},
		{"invalid title", core.Note{ID: 1, Title: "\xff"}, true},
		{"invalid content", core.Note{ID: 1, Content: "ok\xfe"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate()
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidNote) {
					t.Errorf("expected ErrInvalidNote, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
