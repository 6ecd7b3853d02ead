package cli

import (
	"context"
	"errors"
	"io"

	"github.com/roach88/consoleapp/internal/app"
	"github.com/roach88/consoleapp/internal/config"
	"github.com/roach88/consoleapp/internal/logging"
	"github.com/roach88/consoleapp/internal/store"
	"github.com/roach88/consoleapp/pkg/classmap"
)

// Environment is what Execute runs against.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// ClassMap is the map discovery starts from; classmap.Default when nil.
	ClassMap *classmap.ClassMap
}

// Execute runs the console with args (the program name excluded) and
// returns the process exit code.
//
// Global flags are resolved first, then the application is assembled and
// its catalog registered on the root command, then cobra dispatches.
func Execute(ctx context.Context, env Environment, args []string) int {
	settings, err := config.Load(args)
	if err != nil {
		f := &OutputFormatter{Format: "text", Writer: env.Stdout, ErrWriter: env.Stderr}
		_ = f.Fail(WrapExitError(ExitCommandError, ErrCodeSettings, "invalid settings", err))
		return ExitCommandError
	}

	logger := logging.Install(logging.Options{
		Writer:  env.Stderr,
		Verbose: settings.Verbose,
		Format:  settings.Format,
	})
	formatter := &OutputFormatter{
		Format:    settings.Format,
		Writer:    env.Stdout,
		ErrWriter: env.Stderr,
		Verbose:   settings.Verbose,
	}
	fail := func(err error) int {
		_ = formatter.Fail(err)
		return GetExitCode(err)
	}

	a, err := app.New(ctx, app.Options{
		Settings: settings,
		ClassMap: env.ClassMap,
		Stdout:   env.Stdout,
		Stderr:   env.Stderr,
		Logger:   logger,
	})
	if err != nil {
		return fail(assemblyError(err))
	}

	commands, err := a.Catalog()
	if err != nil {
		return fail(WrapExitError(ExitCommandError, ErrCodeCatalog, "list commands", err))
	}

	opts := &RootOptions{
		Settings: settings,
		Commands: commands,
		Manifest: a.ManifestPath(),
		Logger:   logger,
	}
	if wd, err := a.WorkingDir(); err == nil {
		opts.WorkingDir = wd
	}

	if settings.Journal != "" {
		journal, err := store.Open(settings.Journal)
		if err != nil {
			return fail(WrapExitError(ExitCommandError, ErrCodeJournal, "open journal", err))
		}
		defer journal.Close()

		recorder, err := store.NewRecorder(ctx, journal)
		if err != nil {
			return fail(WrapExitError(ExitCommandError, ErrCodeJournal, "open journal", err))
		}
		opts.Journal = journal
		opts.Recorder = recorder
	}

	root := NewRootCommand(opts)
	root.SetArgs(args)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			// Anything cobra rejects before a command runs.
			err = WrapExitError(ExitCommandError, ErrCodeUsage, "usage", err)
		}
		return fail(err)
	}
	return ExitSuccess
}

// assemblyError maps an app.New failure to an exit error.
func assemblyError(err error) *ExitError {
	var stage *app.StageError
	if errors.As(err, &stage) {
		switch stage.Stage {
		case app.StageBootstrap:
			return WrapExitError(ExitCommandError, ErrCodeBootstrap, "bootstrap failed", stage.Err)
		case app.StageProviders:
			return WrapExitError(ExitCommandError, ErrCodeProvider, "command providers unavailable", stage.Err)
		}
	}
	return WrapExitError(ExitCommandError, ErrCodeGeneric, "startup failed", err)
}
