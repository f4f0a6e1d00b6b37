package config

import (
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("TUBEFETCH_LOG_LEVEL"),
			Value:       "info",
			Destination: &c.Level,
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs as JSON",
			Sources:     cli.EnvVars("TUBEFETCH_LOG_JSON"),
			Destination: &c.JSON,
		},
	}
}

// Configure configures and returns a logger writing to w
func (c *Logger) Configure(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
