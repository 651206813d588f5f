// Package config loads and saves the lanote.yaml configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the configuration file looked up in the working directory.
	FileName = "lanote.yaml"
	// DefaultDatabase is the database file used when none is configured.
	DefaultDatabase = "lanote.db"
)

// Environment variables that override the file.
const (
	EnvDatabase = "LANOTE_DB"
	EnvConfig   = "LANOTE_CONFIG"
	EnvReadOnly = "LANOTE_READ_ONLY"
	EnvLogLevel = "LANOTE_LOG_LEVEL"
)

// Config holds the settings of a note database.
type Config struct {
	Database      string        `yaml:"database"`
	ReadOnly      bool          `yaml:"read_only,omitempty"`
	WatchExternal bool          `yaml:"watch_external,omitempty"`
	BusyTimeout   time.Duration `yaml:"busy_timeout,omitempty"`
	LogLevel      string        `yaml:"log_level,omitempty"`

	// dir is where the file was loaded from; relative paths resolve against it.
	dir string
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database:    DefaultDatabase,
		BusyTimeout: 5 * time.Second,
		LogLevel:    "info",
	}
}

// Load reads path. A missing file yields Default without error.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if _, err := cfg.Level(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to path atomically.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup
// (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.SetDatabase(v)
	}
	if v, ok := lookup(EnvReadOnly); ok && v != "" {
		ro, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvReadOnly, v, err)
		}
		c.ReadOnly = ro
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
		if _, err := c.Level(); err != nil {
			return err
		}
	}
	return nil
}

// SetDatabase overrides the database location. An explicit path is taken
// as given, not relative to the config file.
func (c *Config) SetDatabase(path string) {
	c.Database = path
	c.dir = ""
}

// DatabasePath resolves Database against the directory of the config file.
func (c Config) DatabasePath() string {
	if c.Database == ":memory:" || filepath.IsAbs(c.Database) || c.dir == "" {
		return c.Database
	}
	return filepath.Join(c.dir, c.Database)
}

// Level parses LogLevel. Empty means info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}
