// Package app assembles the console application.
//
// Assembly runs once per process, in this order: the manifest is read,
// its bootstrap script (if any) runs against the class map and may replace
// it, then the default providers are composed over the resulting map. The
// composed sequence is the catalog the CLI registers as subcommands.
package app

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/roach88/consoleapp/internal/compose"
	"github.com/roach88/consoleapp/internal/config"
	"github.com/roach88/consoleapp/internal/discovery"
	"github.com/roach88/consoleapp/internal/manifest"
	"github.com/roach88/consoleapp/internal/registry"
	"github.com/roach88/consoleapp/internal/script"
	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

// Name is the application name shown in help and version output.
const Name = "console"

// Assembly stages reported by StageError.
const (
	StageBootstrap = "bootstrap"
	StageProviders = "providers"
)

// StageError reports the assembly stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options configures New.
type Options struct {
	Settings config.Settings
	// ClassMap is the map discovery starts from; classmap.Default when nil.
	ClassMap *classmap.ClassMap
	// Scripts runs the bootstrap script; a script.Dispatcher writing to
	// Stdout and Stderr when nil.
	Scripts script.Runner
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// App is the assembled console. It implements console.Provider.
type App struct {
	registry  *registry.Adapter
	loader    *manifest.Loader
	composite *compose.Composite
	logger    *slog.Logger

	once    sync.Once
	catalog []console.Command
	err     error
}

// New assembles the application. A bootstrap script that cannot be found,
// read or run, and a declared provider that cannot be constructed, are
// returned as a *StageError.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := opts.Settings

	scripts := opts.Scripts
	if scripts == nil {
		scripts = script.NewDispatcher(
			script.IO{Stdout: opts.Stdout, Stderr: opts.Stderr},
			script.WithLogger(logger))
	}

	reg := registry.New(opts.ClassMap)
	loader := manifest.NewLoader(manifest.Options{
		WorkingDir:   s.WorkingDir,
		ProjectRoot:  s.ProjectRoot,
		ManifestPath: s.Manifest,
		Scripts:      scripts,
		Logger:       logger,
	})

	if err := bootstrap(ctx, reg, loader); err != nil {
		return nil, &StageError{Stage: StageBootstrap, Err: err}
	}

	helperOpts := []discovery.HelperOption{
		discovery.WithOwner(s.Owner),
		discovery.WithMainModule(mainModule()),
		discovery.WithLogger(logger),
	}
	if s.VendorDirs != nil {
		helperOpts = append(helperOpts, discovery.WithVendorDirs(s.VendorDirs...))
	}
	helper := discovery.NewHelper(reg, helperOpts...)

	providers, err := compose.DefaultProviders(loader, reg, helper)
	if err != nil {
		return nil, &StageError{Stage: StageProviders, Err: err}
	}
	logger.Debug("application assembled",
		"manifest", loader.Source(),
		"symbols", reg.ClassMap().Len(),
		"providers", len(providers))

	return &App{
		registry:  reg,
		loader:    loader,
		composite: compose.New(providers...),
		logger:    logger,
	}, nil
}

// bootstrap runs the manifest's bootstrap script, if any, and installs the
// class map it returned.
func bootstrap(ctx context.Context, reg *registry.Adapter, loader *manifest.Loader) error {
	path := loader.BootstrapPath()
	if path == "" {
		return nil
	}

	var replacement *classmap.ClassMap
	err := loader.HandleAutoloader(reg, func() error {
		var err error
		replacement, err = loader.LoadCustomInit(ctx, reg.ClassMap(), path)
		return err
	})
	if err != nil {
		return err
	}
	reg.InstallReplacement(replacement)
	return nil
}

// Commands yields the composed command sequence. Each call runs discovery
// again; use Catalog for the memoized list.
func (a *App) Commands() iter.Seq2[console.Command, error] {
	return a.composite.Commands()
}

// Catalog returns the composed commands. Discovery runs on the first call;
// later calls return the same slice and error.
func (a *App) Catalog() ([]console.Command, error) {
	a.once.Do(func() {
		a.catalog, a.err = console.Collect(a.composite)
		if a.err != nil {
			a.err = fmt.Errorf("collect commands: %w", a.err)
			return
		}
		a.logger.Debug("catalog built", "commands", len(a.catalog))
	})
	return a.catalog, a.err
}

// ClassMap returns the class map discovery runs against, after bootstrap.
func (a *App) ClassMap() *classmap.ClassMap {
	return a.registry.ClassMap()
}

// ManifestPath returns the manifest that configured the application, or "".
func (a *App) ManifestPath() string {
	return a.loader.Source()
}

// WorkingDir returns the directory relative paths resolve against.
func (a *App) WorkingDir() (string, error) {
	return a.loader.WorkingDir()
}

// Version returns the main module version from the build info, or "dev".
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

// mainModule returns the main module path from the build info, or "".
func mainModule() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return info.Main.Path
}
