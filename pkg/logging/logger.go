// Package logging configures the global zerolog logger used by every
// harvest command.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "LOG_LEVEL"
	EnvPretty = "LOG_PRETTY"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns the configuration used by the commands: console
// output on stderr at info level, since the commands are run by hand.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: true,
		Output: os.Stderr,
	}
}

// FromEnv overlays LOG_LEVEL and LOG_PRETTY onto DefaultConfig.
// getenv is usually os.Getenv.
func FromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()
	if level := getenv(EnvLevel); level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}
	if pretty := getenv(EnvPretty); pretty != "" {
		if b, err := strconv.ParseBool(pretty); err == nil {
			cfg.Pretty = b
		}
	}
	return cfg
}

// Setup configures and returns the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request and per-item detail
//   - page URLs, cursors, item counts
//   - skipped items and field gaps
//   - quota header updates when healthy
//
// Info: run milestones
//   - fetch start, each collected page, fetch complete
//   - files written
//
// Warn: degraded but continuing
//   - page failures (partial results returned)
//   - quota running low
//   - optional sinks failing (Redis, chart)
//
// Error: the command cannot finish its output
//   - invalid configuration
//   - output file write failures
//
// Context Fields:
//   - component: package-level logger name
//   - collection: subreddit / listing path
//   - page: 1-based page number within a run
//   - collected: records accumulated so far
//   - stop: terminal reason of a fetch run
//   - path: output file
