// Package lanote is the composition root of a small note-taking core.
//
// A note is an id, a title and a content. Notes live in a single SQLite
// table that is the only source of truth. The store exposes a live query:
// every committed create, update or delete emits the complete collection to
// every subscriber, in commit order. A synchronizer keeps the latest
// emission as the list the user sees and turns user intents into writes.
//
// Usage:
//
//	app, err := lanote.Open(ctx, "notes.db", lanote.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	note, err := app.Notes.AddNote(ctx, "Groceries", "milk, eggs")
//	for _, n := range app.Notes.CurrentNotes() {
//		fmt.Println(n)
//	}
package lanote
