// Package logging builds the client's charmbracelet/log logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Level           string
	Format          string
	ReportTimestamp bool
	Prefix          string
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	if opts.Prefix == "" {
		opts.Prefix = "tada"
	}
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// OpenFile returns a logger appending to path, with timestamps. The caller
// closes the returned file.
func OpenFile(path string, opts Options) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	opts.ReportTimestamp = true
	return New(f, opts), f, nil
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a formatter name to a log.Formatter, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
