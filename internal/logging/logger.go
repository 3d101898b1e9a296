// Package logging builds the charmbracelet/log loggers used across the task manager.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"task-manager/internal/config"
)

// DebugEnv forces debug logging regardless of the configured level when set
const DebugEnv = "TM_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TM_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// New creates a logger writing to w. TM_DEBUG overrides cfg.Level.
func New(cfg config.LoggingConfig, w io.Writer) *log.Logger {
	level := ParseLevel(cfg.Level)
	if DebugEnabled() {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       ParseFormatter(cfg.Format),
		ReportTimestamp: level == log.DebugLevel,
		Prefix:          "tm",
	})
}

// NewNop returns a logger that discards everything.
func NewNop() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel parses a string log level to a charmbracelet/log Level.
// Unknown levels fall back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
