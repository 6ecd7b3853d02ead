// Package manifest reads the console section of a project manifest and
// runs the bootstrap script it names.
//
// The manifest lives in the project root, the nearest directory above the
// working directory holding a go.mod. Its console section looks like this
// in YAML:
//
//	extra:
//	  console:
//	    bootstrap: scripts/bootstrap.go
//	    provider:
//	      - example.com/app/commands.AppCommandProvider
//
// A missing or malformed manifest is not an error; it yields an empty
// Config. A bootstrap script that the manifest names but that cannot be
// found or read is.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/roach88/consoleapp/internal/script"
)

// ErrWorkingDir is returned when the working directory cannot be determined.
var ErrWorkingDir = errors.New("cannot determine working directory")

// Options configures a Loader. Zero values select the defaults.
type Options struct {
	// WorkingDir overrides the process working directory.
	WorkingDir string
	// ProjectRoot overrides the go.mod lookup.
	ProjectRoot string
	// ManifestPath names the manifest file directly.
	ManifestPath string
	// ReadFile reads the manifest; os.ReadFile by default.
	ReadFile func(name string) ([]byte, error)
	// Scripts runs bootstrap scripts; a script.Dispatcher by default.
	Scripts script.Runner
	Logger  *slog.Logger
}

// Loader loads the manifest at most once and runs bootstrap scripts.
type Loader struct {
	opts   Options
	logger *slog.Logger

	once   sync.Once
	config Config
	source string
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Scripts == nil {
		opts.Scripts = script.NewDispatcher(script.IO{}, script.WithLogger(logger))
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadConfig returns the console section of the manifest. The first call
// reads the file; later calls return the same value.
func (l *Loader) LoadConfig() Config {
	l.once.Do(func() {
		l.config, l.source = l.load()
		if l.source == "" {
			l.logger.Debug("no manifest found")
			return
		}
		l.logger.Debug("loaded manifest",
			"path", l.source,
			"bootstrap", l.config.Bootstrap,
			"providers", len(l.config.Providers))
	})
	return l.config
}

// Source returns the path of the manifest LoadConfig read, or "".
func (l *Loader) Source() string {
	l.LoadConfig()
	return l.source
}

// BootstrapPath returns the configured bootstrap script, or "".
func (l *Loader) BootstrapPath() string {
	return l.LoadConfig().Bootstrap
}

// ProviderIDs returns the declared provider identifiers in manifest order.
func (l *Loader) ProviderIDs() []string {
	return l.LoadConfig().Providers
}

func (l *Loader) load() (Config, string) {
	if l.opts.ManifestPath != "" {
		path, err := l.resolve(l.opts.ManifestPath)
		if err != nil {
			return Config{}, ""
		}
		data, err := l.opts.ReadFile(path)
		if err != nil {
			l.logger.Debug("manifest unreadable", "path", path, "error", err)
			return Config{}, ""
		}
		return parse(path, data), path
	}

	root, err := l.projectRoot()
	if err != nil {
		return Config{}, ""
	}
	for _, name := range Candidates {
		path := filepath.Join(root, name)
		data, err := l.opts.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			l.logger.Debug("manifest unreadable", "path", path, "error", err)
			return Config{}, ""
		}
		return parse(path, data), path
	}
	return Config{}, ""
}

// WorkingDir returns the configured working directory, or the process one.
func (l *Loader) WorkingDir() (string, error) {
	if l.opts.WorkingDir != "" {
		return l.opts.WorkingDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWorkingDir, err)
	}
	return wd, nil
}

// resolve makes path absolute against the working directory.
func (l *Loader) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := l.WorkingDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}

// projectRoot returns the configured root, else the nearest ancestor of
// the working directory holding go.mod, else the working directory.
func (l *Loader) projectRoot() (string, error) {
	if l.opts.ProjectRoot != "" {
		return l.resolve(l.opts.ProjectRoot)
	}
	wd, err := l.WorkingDir()
	if err != nil {
		return "", err
	}
	if root, ok := FindProjectRoot(wd); ok {
		return root, nil
	}
	return wd, nil
}

// FindProjectRoot walks up from dir to the first directory holding go.mod.
func FindProjectRoot(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if info, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
