package script

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/roach88/consoleapp/pkg/classmap"
)

// HookName is the optional function a Go bootstrap script defines to
// return a replacement class map. Accepted signatures:
//
//	func Bootstrap(current *classmap.ClassMap) *classmap.ClassMap
//	func Bootstrap(current *classmap.ClassMap) (*classmap.ClassMap, error)
const HookName = "Bootstrap"

// GoRunner interprets Go bootstrap scripts with yaegi.
//
// The script sees the standard library and package classmap. A main
// package's main function runs on evaluation; the Bootstrap hook, when
// declared, runs afterwards.
type GoRunner struct {
	io IO
}

// NewGoRunner creates a GoRunner writing script output to streams.
func NewGoRunner(streams IO) *GoRunner {
	return &GoRunner{io: streams.withDefaults()}
}

// Run implements Runner.
func (r *GoRunner) Run(ctx context.Context, path string, current *classmap.ClassMap) (*classmap.ClassMap, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	pkg, hasHook, err := inspect(path, src)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	i := interp.New(interp.Options{
		Stdout: r.io.Stdout,
		Stderr: r.io.Stderr,
		Env:    os.Environ(),
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("load classmap symbols: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, string(src)); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if !hasHook {
		return nil, nil
	}

	hook, err := i.Eval(pkg + "." + HookName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", HookName, err)
	}

	switch fn := hook.Interface().(type) {
	case func(*classmap.ClassMap) *classmap.ClassMap:
		return fn(current), nil
	case func(*classmap.ClassMap) (*classmap.ClassMap, error):
		return fn(current)
	default:
		return nil, fmt.Errorf("%s has signature %T, want func(*classmap.ClassMap) *classmap.ClassMap", HookName, fn)
	}
}

// inspect returns the script's package name and whether it declares the
// Bootstrap hook at top level.
func inspect(path string, src []byte) (string, bool, error) {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.SkipObjectResolution)
	if err != nil {
		return "", false, err
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Recv == nil && fn.Name.Name == HookName {
			return f.Name.Name, true, nil
		}
	}
	return f.Name.Name, false, nil
}
