// Package logging builds the zerolog logger shared by the CLI, planner and API.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level and output format.
type Config struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" (default) or "console".
	Format string `json:"format"`
}

func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("invalid logging level %q: %w", c.Level, err)
	}
	switch c.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("invalid logging format %q (want json or console)", c.Format)
	}
}

// New returns a logger writing to w, or stdout when w is nil.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component derives a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
