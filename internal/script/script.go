// Package script runs bootstrap scripts named in a project manifest.
//
// Go scripts are interpreted with yaegi and may hand back a replacement
// class map; shell scripts are interpreted with mvdan.cc/sh and only have
// side effects.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/consoleapp/pkg/classmap"
)

var (
	// ErrUnsupportedScript is returned for extensions no runner handles.
	ErrUnsupportedScript = errors.New("unsupported bootstrap script")
	// ErrScriptFailed is returned when a script exits with a non-zero status.
	ErrScriptFailed = errors.New("bootstrap script failed")
)

// Runner executes the script at path. current is the class map in effect;
// a non-nil result replaces it.
type Runner interface {
	Run(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error) {
	return f(ctx, path, current)
}

// IO holds the streams handed to scripts.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s IO) withDefaults() IO {
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}

// Dispatcher picks a Runner by file extension.
type Dispatcher struct {
	runners map[string]Runner
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRunner handles files with extension ext (".go", ".sh") using r.
func WithRunner(ext string, r Runner) DispatcherOption {
	return func(d *Dispatcher) {
		d.runners[strings.ToLower(ext)] = r
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher handling .go, .sh and .bash files,
// with script output on streams.
func NewDispatcher(streams IO, opts ...DispatcherOption) *Dispatcher {
	shell := NewShellRunner(streams)
	d := &Dispatcher{
		runners: map[string]Runner{
			".go":   NewGoRunner(streams),
			".sh":   shell,
			".bash": shell,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run implements Runner.
func (d *Dispatcher) Run(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r, ok := d.runners[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, filepath.Base(path))
	}
	d.logger.Debug("running bootstrap script", "path", path, "kind", strings.TrimPrefix(ext, "."))
	return r.Run(ctx, path, current)
}
