package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/TechXTT/LiteRM/internal/logging"
)

const (
	EnvDatabase  = "LITERM_DATABASE"
	EnvLogLevel  = "LITERM_LOG_LEVEL"
	EnvLogFormat = "LITERM_LOG_FORMAT"

	DefaultDatabase = "literm.db"
)

// Config holds the settings shared by the CLI and the example.
type Config struct {
	Database  string
	LogLevel  logging.Level
	LogFormat logging.Format
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then builds a Config from it.
// An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{Database: os.Getenv(EnvDatabase)}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	level, err := logging.ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	cfg.LogLevel = level

	format, err := logging.ParseFormat(os.Getenv(EnvLogFormat))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogFormat, err)
	}
	cfg.LogFormat = format
	return cfg, nil
}
