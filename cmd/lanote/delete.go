package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote/pkg/core"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note. Deleting an id that does not exist is not an error.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fatal("Error", err)
		}

		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		if err := app.Notes.DeleteNote(ctx, core.Note{ID: id}); err != nil {
			fatal("Failed to delete note", err)
		}
		fmt.Printf("Note deleted: %d\n", id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
