package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/roach88/consoleapp/pkg/classmap"
)

// ShellRunner interprets POSIX shell bootstrap scripts in-process. Scripts
// run in their own directory and see the process environment plus
// CONSOLE_BOOTSTRAP (the script path) and CONSOLE_CLASSMAP_SIZE.
type ShellRunner struct {
	io IO
}

// NewShellRunner creates a ShellRunner writing script output to streams.
func NewShellRunner(streams IO) *ShellRunner {
	return &ShellRunner{io: streams.withDefaults()}
}

// Run implements Runner. It never returns a class map.
func (r *ShellRunner) Run(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	prog, err := syntax.NewParser().Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	size := 0
	if current != nil {
		size = current.Len()
	}
	env := append(os.Environ(),
		"CONSOLE_BOOTSTRAP="+path,
		"CONSOLE_CLASSMAP_SIZE="+strconv.Itoa(size),
	)

	runner, err := interp.New(
		interp.Dir(filepath.Dir(path)),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, r.io.Stdout, r.io.Stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return nil, fmt.Errorf("%w: %s exited with status %d", ErrScriptFailed, filepath.Base(path), status)
		}
		return nil, fmt.Errorf("run %s: %w", filepath.Base(path), err)
	}
	return nil, nil
}
