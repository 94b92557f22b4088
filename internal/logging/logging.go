// Package logging builds the diagnostic logger with charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"taskflow/internal/config"
)

// Options holds configuration for the logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultOptions returns default options for logging.
func DefaultOptions() Options {
	return Options{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    "taskflow",
	}
}

// OptionsFrom derives options from the loaded configuration. --debug wins
// over the configured level.
func OptionsFrom(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()
	level, err := ParseLevel(cfg.Settings.Log.Level)
	if err != nil {
		return opts, err
	}
	formatter, err := ParseFormatter(cfg.Settings.Log.Format)
	if err != nil {
		return opts, err
	}
	opts.Level = level
	opts.Formatter = formatter
	// Structured logs are usually collected, so they carry a time.
	opts.ReportTimestamp = formatter != log.TextFormatter
	if cfg.Debug {
		opts.Level = log.DebugLevel
	}
	return opts, nil
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// ParseFormatter parses a formatter name: text, json or logfmt. Empty means text.
func ParseFormatter(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("invalid log format %q (want text, json or logfmt)", s)
}
