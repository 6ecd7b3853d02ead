package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/consoleapp/pkg/classmap"
)

var (
	// ErrBootstrapNotFound is returned when the bootstrap script does not exist.
	ErrBootstrapNotFound = errors.New("bootstrap script not found")
	// ErrBootstrapNotReadable is returned when the bootstrap script cannot be read.
	ErrBootstrapNotReadable = errors.New("bootstrap script not readable")
)

// BootstrapError reports a bootstrap script that could not be run.
type BootstrapError struct {
	// Script is the name as configured.
	Script string
	// Path is the resolved location.
	Path string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Script)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// LoaderCounter is the part of the registry adapter HandleAutoloader needs.
type LoaderCounter interface {
	CountRegisteredLoaders() int
	Unregister()
}

// LoadCustomInit runs the bootstrap script and returns the class map it
// produced, or nil when it produced none. Relative script paths are
// resolved against the working directory.
func (l *Loader) LoadCustomInit(ctx context.Context, current *classmap.ClassMap, script string) (*classmap.ClassMap, error) {
	path, err := l.resolve(script)
	if err != nil {
		return nil, err
	}

	if err := checkReadable(path); err != nil {
		return nil, &BootstrapError{Script: script, Path: path, Err: err}
	}

	l.logger.Debug("running bootstrap", "script", script, "path", path)
	replacement, err := l.opts.Scripts.Run(ctx, path, current)
	if err != nil {
		return nil, fmt.Errorf("bootstrap %s: %w", script, err)
	}
	return replacement, nil
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBootstrapNotFound
	}
	if err != nil || info.IsDir() {
		return ErrBootstrapNotReadable
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrBootstrapNotReadable
	}
	return f.Close()
}

// HandleAutoloader runs action and, when it registered additional class
// map loaders, unregisters the one reg had before. This keeps a bootstrap
// that installs its own map from leaving two maps active. The check runs
// even when action fails.
func (l *Loader) HandleAutoloader(reg LoaderCounter, action func() error) error {
	before := reg.CountRegisteredLoaders()
	err := action()
	if after := reg.CountRegisteredLoaders(); after > before {
		l.logger.Debug("bootstrap registered a class map; unregistering the original",
			"before", before, "after", after)
		reg.Unregister()
	}
	return err
}
