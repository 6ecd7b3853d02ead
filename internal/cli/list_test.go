package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/consoleapp/internal/config"
	"github.com/roach88/consoleapp/internal/testutil"
	"github.com/roach88/consoleapp/pkg/console"
)

// aliasedCommand adds aliases to a fake command.
type aliasedCommand struct {
	*testutil.Command
	aliases []string
}

func (c aliasedCommand) Aliases() []string { return c.aliases }

func describedCommand(name, desc string) *testutil.Command {
	c := testutil.NewCommand(name)
	c.Desc = desc
	return c
}

func sampleCatalog() []console.Command {
	return []console.Command{
		aliasedCommand{Command: describedCommand("hello", "Say hello"), aliases: []string{"hi"}},
		describedCommand("db:seed", "Seed the database"),
		testutil.NewCommand("plain"),
	}
}

// runRoot executes the root command with args and returns stdout, stderr
// and the error.
func runRoot(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.DiscardLogger()
	}
	if opts.Settings.Format == "" {
		opts.Settings.Format = "text"
	}
	root := NewRootCommand(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestListCommand_Golden(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"list_text", "text"},
		{"list_json", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &RootOptions{
				Settings: config.Settings{Format: tt.format},
				Commands: sampleCatalog(),
				Manifest: "/srv/app/manifest.yaml",
			}

			stdout, _, err := runRoot(t, opts, "list")
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, []byte(stdout))
		})
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, err := runRoot(t, &RootOptions{}, "list")
	require.NoError(t, err)
	assert.Equal(t, "No commands found\n", stdout)

	stdout, _, err = runRoot(t, &RootOptions{Settings: config.Settings{Format: "json"}}, "list")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data.Commands)
	assert.Empty(t, resp.Data.Commands)
}

func TestListCommand_VerboseManifest(t *testing.T) {
	opts := &RootOptions{
		Settings: config.Settings{Format: "json", Verbose: true},
		Manifest: "/srv/app/manifest.yaml",
	}

	stdout, stderr, err := runRoot(t, opts, "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Manifest: /srv/app/manifest.yaml")
	assert.NotContains(t, stdout, "Manifest:")
}

func TestListCommand_RejectsArgs(t *testing.T) {
	_, _, err := runRoot(t, &RootOptions{}, "list", "extra")
	assert.Error(t, err)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 commands", plural(0, "command"))
	assert.Equal(t, "1 command", plural(1, "command"))
	assert.Equal(t, "2 executions", plural(2, "execution"))
}
