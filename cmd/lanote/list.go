package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/lanote/pkg/core"
)

var (
	listJSON  bool
	listMatch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			fatal("Error", fmt.Errorf("invalid --match pattern %q", listMatch))
		}

		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		filtered := filterNotes(app.Notes.CurrentNotes(), listMatch)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		printNotes(os.Stdout, filtered)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Only notes whose title matches a glob (e.g. 'meeting*')")
}

// filterNotes keeps notes whose title matches pattern, case-insensitively.
// An empty pattern keeps everything.
func filterNotes(notes []core.Note, pattern string) []core.Note {
	if pattern == "" {
		return notes
	}
	pattern = strings.ToLower(pattern)
	filtered := []core.Note{}
	for _, n := range notes {
		if ok, _ := doublestar.Match(pattern, strings.ToLower(n.Title)); ok {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

func printNotes(w io.Writer, notes []core.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes yet. Add one with 'lanote add'.")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%4d  %s\n", n.ID, n.Title)
	}
}
