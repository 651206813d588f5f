package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/aretw0/lanote"
	"github.com/aretw0/lanote/pkg/core"
	"github.com/aretw0/lanote/pkg/notes"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and edit notes interactively",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, err := openApp(ctx, lanote.WithExternalWatch(true))
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		r := &shell{ctx: ctx, notes: app.Notes, out: os.Stdout}
		if err := r.Run(); err != nil {
			fatal("Shell failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCommands = []string{"list", "show", "add", "edit", "delete", "help", "quit"}

// shell is the interactive list/edit loop.
type shell struct {
	ctx   context.Context
	notes *notes.Synchronizer
	out   io.Writer
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lanote_history")
}

// Run starts the loop and returns when the user quits.
func (r *shell) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(func(line string) []string {
		var c []string
		for _, cmd := range shellCommands {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				c = append(c, cmd)
			}
		}
		return c
	})

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}
	defer r.saveHistory()

	fmt.Fprintln(r.out, "lanote shell. Type 'help' for commands.")
	r.list()

	for {
		line, err := r.liner.Prompt("notes> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		fields := strings.Fields(line)
		cmd, rest := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Fprintln(r.out, "Bye!")
			return nil
		case "help", "?":
			r.help()
		case "list", "ls":
			r.list()
		case "show", "cat":
			r.show(rest)
		case "add", "new":
			r.edit(core.NewNotePlaceholder())
		case "edit":
			if n, ok := r.lookup(rest); ok {
				r.edit(n)
			}
		case "delete", "rm":
			r.delete(rest)
		default:
			fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (r *shell) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *shell) help() {
	fmt.Fprintln(r.out, `Commands:
  list            list notes
  show <id>       print a note
  add             write a new note
  edit <id>       change a note
  delete <id>     delete a note
  quit            leave the shell`)
}

func (r *shell) list() {
	printNotes(r.out, r.notes.CurrentNotes())
}

func (r *shell) lookup(args []string) (core.Note, bool) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: <command> <id>")
		return core.Note{}, false
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return core.Note{}, false
	}
	n, ok := r.notes.Find(id)
	if !ok {
		fmt.Fprintf(r.out, "No note %d.\n", id)
	}
	return n, ok
}

func (r *shell) show(args []string) {
	if n, ok := r.lookup(args); ok {
		fmt.Fprintf(r.out, "# %s\n\n%s\n", n.Title, n.Content)
	}
}

// edit prompts for title and content, prefilled with the current values,
// and saves. An empty answer keeps the current value.
func (r *shell) edit(n core.Note) {
	title, err := r.liner.PromptWithSuggestion("title: ", n.Title, -1)
	if err != nil {
		fmt.Fprintln(r.out, "Cancelled.")
		return
	}
	content, err := r.liner.PromptWithSuggestion("content: ", n.Content, -1)
	if err != nil {
		fmt.Fprintln(r.out, "Cancelled.")
		return
	}
	if strings.TrimSpace(title) != "" {
		n.Title = title
	}
	if strings.TrimSpace(content) != "" {
		n.Content = content
	}

	saved, err := r.notes.SaveNote(r.ctx, n)
	if err != nil {
		fmt.Fprintf(r.out, "Save failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Saved note %d.\n", saved.ID)
}

func (r *shell) delete(args []string) {
	n, ok := r.lookup(args)
	if !ok {
		return
	}
	answer, err := r.liner.Prompt(fmt.Sprintf("Delete %q? (yes/no): ", n.Title))
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		fmt.Fprintln(r.out, "Kept.")
		return
	}
	if err := r.notes.DeleteNote(r.ctx, n); err != nil {
		fmt.Fprintf(r.out, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Deleted note %d.\n", n.ID)
}
