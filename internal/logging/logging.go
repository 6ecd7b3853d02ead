// Package logging builds the slog logger used across the console.
//
// Records are rendered by charmbracelet/log: human-readable text by
// default, JSON lines when the CLI runs with --format json so that
// diagnostics on stderr stay machine-readable too.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Writer receives log output; os.Stderr by default.
	Writer io.Writer
	// Verbose enables debug records.
	Verbose bool
	// Format is "text" or "json".
	Format string
	// Prefix is printed before every message in text mode.
	Prefix string
}

// New creates a logger. The returned *slog.Logger is backed by a
// charmbracelet/log handler.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	formatter := log.TextFormatter
	if opts.Format == "json" {
		formatter = log.JSONFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Verbose,
	})
	return slog.New(handler)
}

// Install makes the logger from New the process default and returns it.
func Install(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
