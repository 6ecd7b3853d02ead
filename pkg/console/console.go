// Package console defines the capabilities discovered and composed by the
// console application: commands, which the CLI front-end executes, and
// providers, which lazily yield commands.
//
// Types become discoverable by adding their constructor to a class map
// (see package classmap), usually from an init function in a file whose
// name follows the *Command / *CommandProvider convention:
//
//	// file: hello_command.go
//	func init() { classmap.MustAdd(NewHelloCommand) }
package console

import (
	"context"
	"iter"
)

// Command is a single executable unit exposed to the CLI front-end.
// Name is used for lookup and help text; Execute receives the raw
// arguments that followed the command name.
type Command interface {
	Name() string
	Execute(ctx context.Context, args []string) error
}

// Describer is implemented by commands that carry a one-line description.
type Describer interface {
	Description() string
}

// Aliaser is implemented by commands reachable under additional names.
type Aliaser interface {
	Aliases() []string
}

// Provider lazily yields commands.
//
// A pair with a non-nil error ends the provider's sequence; consumers
// should stop iterating and surface the error.
type Provider interface {
	Commands() iter.Seq2[Command, error]
}

// ProviderFunc adapts an iterator function to the Provider interface.
type ProviderFunc func(yield func(Command, error) bool)

// Commands implements Provider.
func (f ProviderFunc) Commands() iter.Seq2[Command, error] {
	return iter.Seq2[Command, error](f)
}

// staticProvider yields a fixed list of commands.
type staticProvider []Command

func (p staticProvider) Commands() iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		for _, cmd := range p {
			if !yield(cmd, nil) {
				return
			}
		}
	}
}

// Commands returns a Provider yielding cmds in order.
func Commands(cmds ...Command) Provider {
	return staticProvider(cmds)
}

// Collect drains a provider into a slice.
// Returns the commands gathered so far together with the first error.
func Collect(p Provider) ([]Command, error) {
	var cmds []Command
	for cmd, err := range p.Commands() {
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// DescriptionOf returns the command's description, or "" when it has none.
func DescriptionOf(cmd Command) string {
	if d, ok := cmd.(Describer); ok {
		return d.Description()
	}
	return ""
}

// AliasesOf returns the command's aliases, or nil when it has none.
func AliasesOf(cmd Command) []string {
	if a, ok := cmd.(Aliaser); ok {
		return a.Aliases()
	}
	return nil
}
