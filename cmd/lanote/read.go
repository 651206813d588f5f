package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Print a note",
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

		n, err := app.Store.Get(ctx, id)
		if err != nil {
			fatal("Failed to read note", err)
		}

		if readJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(n); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		fmt.Printf("# %s\n\n%s\n", n.Title, n.Content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
