package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	defaultFilePath   = "appointments.txt"
	defaultSQLitePath = "appointments.db"
)

type Config struct {
	Path         string
	Variant      Variant
	Backend      string
	LogLevel     slog.Level
	UpcomingDays int
}

// LoadConfig reads settings from the environment, after loading a .env
// file from the working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Path:    getEnv("APPTBOOK_FILE", ""),
		Variant: Variant(getEnv("APPTBOOK_VARIANT", string(VariantBooking))),
		Backend: getEnv("APPTBOOK_BACKEND", BackendFile),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("APPTBOOK_LOG_LEVEL", "warn"))); err != nil {
		return nil, fmt.Errorf("APPTBOOK_LOG_LEVEL: %w", err)
	}

	days, err := strconv.Atoi(getEnv("APPTBOOK_UPCOMING_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("APPTBOOK_UPCOMING_DAYS must be a number: %w", err)
	}
	cfg.UpcomingDays = days

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks the settings and fills in the backend's default path.
func (c *Config) Validate() error {
	c.Variant = Variant(strings.ToLower(string(c.Variant)))
	if !c.Variant.Valid() {
		return fmt.Errorf("unknown variant %q (want %s or %s)", c.Variant, VariantBooking, VariantPlanner)
	}

	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendFile:
		if c.Path == "" {
			c.Path = defaultFilePath
		}
	case BackendSQLite:
		if c.Path == "" {
			c.Path = defaultSQLitePath
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendFile, BackendSQLite)
	}

	if c.UpcomingDays < 1 {
		return fmt.Errorf("upcoming window must be at least one day, got %d", c.UpcomingDays)
	}
	return nil
}

// OpenStore opens the configured backend.
func (c *Config) OpenStore(log *slog.Logger) (Store, error) {
	if c.Backend == BackendSQLite {
		return NewRepo(c.Path, log)
	}
	return NewFileStore(c.Path, CodecFor(c.Variant), log)
}

func NewLogger(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("app", "apptbook")
}
