package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote"
	lifecycleadapter "github.com/aretw0/lanote/pkg/adapters/lifecycle"
	"github.com/aretw0/lanote/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the note list every time it changes",
	Long: `Watch keeps the database open and prints the full list after every change,
including changes made by other lanote processes. Stop it with Ctrl-C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchRaw {
			watchRawSnapshots(ctx)
			return
		}

		app, err := openApp(ctx,
			lanote.WithExternalWatch(true),
			lanote.WithOnChange(func(v lanote.View) {
				fmt.Printf("--- rev %d (%s)\n", v.Rev, v.Cause)
				printNotes(os.Stdout, v.Notes)
			}),
		)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		select {
		case <-ctx.Done():
		case <-app.Notes.Done():
		}
	},
}

var watchRaw bool

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchRaw, "raw", false, "Print one line per store emission instead of the full list")
}

// watchRawSnapshots streams the store's live query without a synchronizer.
func watchRawSnapshots(ctx context.Context) {
	app, err := openApp(ctx, lanote.WithExternalWatch(true))
	if err != nil {
		fatal("Failed to open notes", err)
	}
	defer app.Close()

	snapshots, err := core.Watch(ctx, app.Store)
	if err != nil {
		fatal("Failed to watch notes", err)
	}
	source := lifecycleadapter.NewSource(snapshots)
	if err := source.Start(ctx); err != nil {
		fatal("Failed to start event source", err)
	}
	for event := range source.Events() {
		fmt.Println(event)
	}
}
