package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/lanote"
	"github.com/aretw0/lanote/internal/platform"
	"github.com/aretw0/lanote/pkg/config"
)

var (
	verbose    bool
	configPath string
	dbPath     string

	settings config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lanote",
	Short: "A small note keeper backed by a local SQLite database",
	Long: `lanote keeps notes (a title and a content) in a local SQLite file.
Every change is pushed live to anything watching the list.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		settings, err = config.Load(path)
		if err != nil {
			return err
		}
		if err := settings.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
		if dbPath != "" {
			settings.SetDatabase(dbPath)
		}

		level, err := settings.Level()
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file, overrides the config")
}

// resolveConfigPath picks --config, then $LANOTE_CONFIG, then the nearest
// config file above the working directory, then one in the working directory.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if env := os.Getenv(config.EnvConfig); env != "" {
		return env, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := platform.FindRoot(wd); err == nil {
		return filepath.Join(root, config.FileName), nil
	}
	return filepath.Join(wd, config.FileName), nil
}

// openApp opens the configured database and waits for the first view.
func openApp(ctx context.Context, extra ...lanote.Option) (*lanote.App, error) {
	opts := append([]lanote.Option{
		lanote.WithConfig(settings),
		lanote.WithLogger(slog.Default()),
	}, extra...)

	app, err := lanote.Open(ctx, settings.DatabasePath(), opts...)
	if err != nil {
		return nil, err
	}
	if err := app.Notes.Settle(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
