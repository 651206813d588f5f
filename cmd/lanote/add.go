package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote/pkg/core"
)

var (
	addTitle   string
	addContent string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note",
	Long:  `Add creates a note. Omitted fields get the placeholder text of a new note.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		n := core.NewNotePlaceholder()
		if cmd.Flags().Changed("title") {
			n.Title = addTitle
		}
		if cmd.Flags().Changed("content") {
			n.Content = addContent
		}

		saved, err := app.Notes.SaveNote(ctx, n)
		if err != nil {
			fatal("Failed to add note", err)
		}
		fmt.Printf("Note %d added.\n", saved.ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Note title")
	addCmd.Flags().StringVarP(&addContent, "content", "m", "", "Note content")
}
