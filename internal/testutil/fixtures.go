package testutil

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

// Command is a fake console.Command that records its executions.
type Command struct {
	CommandName string
	Desc        string
	Err         error
	Calls       [][]string
}

// NewCommand creates a fake command named name.
func NewCommand(name string) *Command {
	return &Command{CommandName: name}
}

// Name implements console.Command.
func (c *Command) Name() string { return c.CommandName }

// Description implements console.Describer.
func (c *Command) Description() string { return c.Desc }

// Execute records args and returns c.Err.
func (c *Command) Execute(_ context.Context, args []string) error {
	c.Calls = append(c.Calls, args)
	return c.Err
}

// Provider is a fake console.Provider yielding Cmds, then Err if set.
type Provider struct {
	Cmds []console.Command
	Err  error
	// Iterations counts how many times Commands was ranged over.
	Iterations int
}

// NewProvider creates a fake provider over commands with the given names.
func NewProvider(names ...string) *Provider {
	p := &Provider{}
	for _, n := range names {
		p.Cmds = append(p.Cmds, NewCommand(n))
	}
	return p
}

// Commands implements console.Provider.
func (p *Provider) Commands() iter.Seq2[console.Command, error] {
	return func(yield func(console.Command, error) bool) {
		p.Iterations++
		for _, c := range p.Cmds {
			if !yield(c, nil) {
				return
			}
		}
		if p.Err != nil {
			yield(nil, p.Err)
		}
	}
}

// Names drains p and returns the command names, failing the test on error.
func Names(t *testing.T, p console.Provider) []string {
	t.Helper()
	cmds, err := console.Collect(p)
	require.NoError(t, err)
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name())
	}
	return names
}

// CommandCtor returns a zero-argument constructor for a fake command.
// Each registration gets its own constructor, so one Go type can stand in
// for many registered identifiers.
func CommandCtor(name string) func() *Command {
	return func() *Command { return NewCommand(name) }
}

// ProviderCtor returns a zero-argument constructor for a fake provider.
func ProviderCtor(names ...string) func() *Provider {
	return func() *Provider { return NewProvider(names...) }
}

// AddAt registers ctor in m, failing the test on error.
func AddAt(t *testing.T, m *classmap.ClassMap, id, location string, ctor any) {
	t.Helper()
	_, err := m.AddAt(id, location, ctor)
	require.NoError(t, err)
}

// WriteFile writes content to dir/name, creating parent directories,
// and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
