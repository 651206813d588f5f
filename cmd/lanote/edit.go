package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote/pkg/core"
)

var (
	editTitle   string
	editContent string
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the title or content of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fatal("Error", err)
		}
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			fatal("Error", errors.New("nothing to change (use --title or --content)"))
		}

		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		n, ok := app.Notes.Find(id)
		if !ok {
			fatal("Failed to edit note", fmt.Errorf("note %d: %w", id, core.ErrNotFound))
		}
		if cmd.Flags().Changed("title") {
			n.Title = editTitle
		}
		if cmd.Flags().Changed("content") {
			n.Content = editContent
		}

		if err := app.Notes.UpdateNote(ctx, n); err != nil {
			fatal("Failed to edit note", err)
		}
		fmt.Printf("Note %d updated.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "m", "", "New content")
}
