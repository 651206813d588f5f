package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote"
	"github.com/aretw0/lanote/pkg/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and an empty note database",
	Long: `Initialize writes ` + config.FileName + ` in the current directory and creates
the database it points to.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		path := filepath.Join(cwd, config.FileName)
		if _, err := os.Stat(path); err == nil && !initForce {
			fatal("Refusing to overwrite", errors.New(path+" exists (use --force)"))
		}

		cfg := config.Default()
		if dbPath != "" {
			cfg.Database = dbPath
		}
		if err := cfg.Save(path); err != nil {
			fatal("Failed to write config", err)
		}

		cfg, err = config.Load(path)
		if err != nil {
			fatal("Failed to reload config", err)
		}
		store, err := lanote.OpenStore(context.Background(), cfg.DatabasePath(), lanote.WithConfig(cfg))
		if err != nil {
			fatal("Failed to create database", err)
		}
		if err := store.Close(); err != nil {
			fatal("Failed to close database", err)
		}

		fmt.Printf("Initialized note database %s (config %s)\n", cfg.DatabasePath(), path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}
