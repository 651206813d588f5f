package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the internal state of the store and the synchronizer",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			fatal("Failed to open notes", err)
		}
		defer app.Close()

		state := map[string]any{}
		for _, c := range []any{app.Store, app.Notes} {
			intro, ok := c.(introspection.Introspectable)
			if !ok {
				continue
			}
			name := fmt.Sprintf("%T", c)
			if comp, ok := c.(introspection.Component); ok {
				name = comp.ComponentType()
			}
			state[name] = intro.State()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(state); err != nil {
			fatal("Failed to encode JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
