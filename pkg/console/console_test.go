package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedCommand struct {
	name string
	desc string
}

func (c namedCommand) Name() string { return c.name }
func (c namedCommand) Execute(context.Context, []string) error { return nil }
func (c namedCommand) Description() string { return c.desc }
func (c namedCommand) Aliases() []string { return []string{c.name + "-alias"} }

type bareCommand struct{}

func (bareCommand) Name() string { return "bare" }
func (bareCommand) Execute(context.Context, []string) error { return nil }

func TestCommands_PreservesOrder(t *testing.T) {
	p := Commands(namedCommand{name: "a"}, namedCommand{name: "b"}, namedCommand{name: "c"})

	cmds, err := Collect(p)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, "a", cmds[0].Name())
	assert.Equal(t, "b", cmds[1].Name())
	assert.Equal(t, "c", cmds[2].Name())
}

func TestCommands_StopsWhenConsumerStops(t *testing.T) {
	p := Commands(namedCommand{name: "a"}, namedCommand{name: "b"})

	var seen []string
	for cmd := range p.Commands() {
		seen = append(seen, cmd.Name())
		break
	}
	assert.Equal(t, []string{"a"}, seen)
}

func TestCollect_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	p := ProviderFunc(func(yield func(Command, error) bool) {
		if !yield(namedCommand{name: "first"}, nil) {
			return
		}
		if !yield(nil, boom) {
			return
		}
		yield(namedCommand{name: "never"}, nil)
	})

	cmds, err := Collect(p)
	require.ErrorIs(t, err, boom)
	require.Len(t, cmds, 1)
	assert.Equal(t, "first", cmds[0].Name())
}

func TestOptionalCapabilities(t *testing.T) {
	described := namedCommand{name: "hello", desc: "says hello"}
	assert.Equal(t, "says hello", DescriptionOf(described))
	assert.Equal(t, []string{"hello-alias"}, AliasesOf(described))

	assert.Empty(t, DescriptionOf(bareCommand{}))
	assert.Nil(t, AliasesOf(bareCommand{}))
}
