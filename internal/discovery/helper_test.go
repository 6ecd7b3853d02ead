package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/consoleapp/internal/registry"
	"github.com/roach88/consoleapp/internal/testutil"
	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

// abstractCommand is an interface refining console.Command; it passes the
// capability check but cannot be constructed.
type abstractCommand interface {
	console.Command
	Abstract()
}

type argsCommand struct{ name string }

func (c *argsCommand) Name() string                            { return c.name }
func (c *argsCommand) Execute(context.Context, []string) error { return nil }

func newArgsCommand(name string) *argsCommand { return &argsCommand{name: name} }

type plainStruct struct{}

func newPlainStruct() *plainStruct { return &plainStruct{} }

func newHelper(t *testing.T, m *classmap.ClassMap, opts ...HelperOption) *Helper {
	t.Helper()
	return NewHelper(registry.New(m), opts...)
}

func TestHelper_Canonicalize(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()))

	t.Run("missing file is returned unchanged", func(t *testing.T) {
		assert.Equal(t, "/app/HelloCommand.go", h.Canonicalize("/app/HelloCommand.go"))
	})

	t.Run("empty location", func(t *testing.T) {
		assert.Equal(t, "", h.Canonicalize(""))
	})

	t.Run("symlink is resolved", func(t *testing.T) {
		dir := t.TempDir()
		target := testutil.WriteFile(t, dir, "src/HelloCommand.go", "package src\n")
		link := filepath.Join(dir, "LinkCommand.go")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}

		want, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		assert.Equal(t, want, h.Canonicalize(link))
	})

	t.Run("relative path becomes absolute", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "RelCommand.go", "package x\n")
		t.Chdir(dir)

		want, err := filepath.EvalSymlinks(filepath.Join(dir, "RelCommand.go"))
		require.NoError(t, err)
		assert.Equal(t, want, h.Canonicalize("RelCommand.go"))
	})

	t.Run("unresolved decomposed name is returned verbatim", func(t *testing.T) {
		decomposed := "/app/Cafe\u0301Command.go"
		assert.Equal(t, decomposed, h.Canonicalize(decomposed))
	})

	t.Run("decomposed name resolves before normalization", func(t *testing.T) {
		dir := t.TempDir()
		decomposed := testutil.WriteFile(t, dir, "Cafe\u0301Command.go", "package x\n")

		resolved, err := filepath.EvalSymlinks(decomposed)
		require.NoError(t, err)
		assert.Equal(t, norm.NFC.String(resolved), h.Canonicalize(decomposed))
	})
}

func TestHelper_IsOwnCode(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()))

	tests := []struct {
		location string
		want     bool
	}{
		{"/app/src/HelloCommand.go", true},
		{"/app/vendor/x/SomeCommand.go", false},
		{"/vendor/x/SomeCommand.go", false},
		{"/home/me/go/pkg/mod/example.com/lib@v1.0.0/cmd/HelloCommand.go", false},
		{"/app/vendors/HelloCommand.go", true},
		{"/app/pkg/HelloCommand.go", true},
		{"/app/src/vendor", true}, // file named vendor, not a directory
		{"HelloCommand.go", true},
		{"example.com/lib@v1.2.0/cmd/HelloCommand.go", false},
		{"/app/lib@v2/HelloCommand.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, h.IsOwnCode(tt.location))
		})
	}
}

func TestHelper_IsOwnCode_CustomVendorDirs(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()), WithVendorDirs("third_party", "/external/libs/"))

	assert.False(t, h.IsOwnCode("/app/third_party/x/HelloCommand.go"))
	assert.False(t, h.IsOwnCode("/app/external/libs/HelloCommand.go"))
	assert.True(t, h.IsOwnCode("/app/vendor/x/HelloCommand.go"))
	assert.True(t, h.IsOwnCode("/app/external/HelloCommand.go"))
}

func TestHelper_IsOwnCode_TrimmedPaths(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()), WithMainModule("github.com/roach88/consoleapp"))

	tests := []struct {
		location string
		want     bool
	}{
		{"github.com/roach88/consoleapp/internal/tasks/HelloCommand.go", true},
		{"github.com/roach88/consoleapp/HelloCommand.go", true},
		{"example.com/lib/cmd/HelloCommand.go", false},
		{"example.com/lib@v1.2.0/cmd/HelloCommand.go", false},
		{"github.com/roach88/consoleapp2/cmd/HelloCommand.go", false},
		{"/app/src/HelloCommand.go", true},
		{"HelloCommand.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, h.IsOwnCode(tt.location))
		})
	}
}

func TestHelper_FilenameConventions(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()))

	tests := []struct {
		location      string
		looksCommand  bool
		looksProvider bool
	}{
		{"/app/HelloCommand.go", true, false},
		{"/app/hello_command.go", true, false},
		{"/app/hello-command.go", true, false},
		{"/app/HELLOCOMMAND.GO", true, false},
		{"/app/AppCommandProvider.go", false, true},
		{"/app/app_command_provider.go", false, true},
		{"/app/Commander.go", false, false},
		{"/app/hello.go", false, false},
		{"/app/command/hello.go", false, false},
		{"/app/Command.go", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.looksCommand, h.LooksLikeCommand(tt.location))
			assert.Equal(t, tt.looksProvider, h.LooksLikeProvider(tt.location))
		})
	}
}

func TestHelper_TypeChecks(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.Hello", "", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "app.Provider", "", testutil.ProviderCtor("a"))
	testutil.AddAt(t, m, "app.Abstract", "", reflect.TypeFor[abstractCommand]())
	testutil.AddAt(t, m, "app.Capability", "", reflect.TypeFor[console.Command]())
	testutil.AddAt(t, m, "app.ProviderCapability", "", reflect.TypeFor[console.Provider]())
	testutil.AddAt(t, m, "app.Plain", "", newPlainStruct)
	h := newHelper(t, m)

	assert.True(t, h.IsCommandType("app.Hello"))
	assert.True(t, h.IsCommandType("app.Abstract"))
	assert.False(t, h.IsCommandType("app.Capability"), "the capability itself is not a subtype")
	assert.False(t, h.IsCommandType("app.Plain"))
	assert.False(t, h.IsCommandType("app.Provider"))
	assert.False(t, h.IsCommandType("app.Missing"))

	assert.True(t, h.IsProviderType("app.Provider"))
	assert.False(t, h.IsProviderType("app.ProviderCapability"))
	assert.False(t, h.IsProviderType("app.Hello"))
}

func TestHelper_IsOutsideOwnNamespace(t *testing.T) {
	h := NewHelper(registry.New(classmap.New()))
	assert.False(t, h.IsOutsideOwnNamespace("github.com/roach88/consoleapp/internal/discovery.ProviderDiscoverer"))
	assert.True(t, h.IsOutsideOwnNamespace("example.com/app/providers.Custom"))

	custom := NewHelper(registry.New(classmap.New()), WithOwner("example.com/engine/"))
	assert.False(t, custom.IsOutsideOwnNamespace("example.com/engine/discovery.Thing"))
	assert.True(t, custom.IsOutsideOwnNamespace("github.com/roach88/consoleapp/internal/x.Y"))

	disabled := NewHelper(registry.New(classmap.New()), WithOwner(""))
	assert.True(t, disabled.IsOutsideOwnNamespace("github.com/roach88/consoleapp/internal/x.Y"))
}

func TestHelper_IsOutsideOwnNamespace_PathBoundary(t *testing.T) {
	tests := []struct {
		owner string
		id    string
		want  bool
	}{
		{"example.com/engine", "example.com/engine.Root", false},
		{"example.com/engine", "example.com/engine/discovery.Thing", false},
		{"example.com/engine", "example.com/engine2/discovery.Thing", true},
		{"example.com/engine", "example.com/enginex.Thing", true},
		{"example.com/engine/", "example.com/engine/discovery.Thing", false},
		{"example.com/engine/", "example.com/engine2/discovery.Thing", true},
	}

	for _, tt := range tests {
		t.Run(tt.owner+" "+tt.id, func(t *testing.T) {
			h := NewHelper(registry.New(classmap.New()), WithOwner(tt.owner))
			assert.Equal(t, tt.want, h.IsOutsideOwnNamespace(tt.id))
		})
	}
}

func TestHelper_Construct(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.Hello", "", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "app.Args", "", newArgsCommand)
	testutil.AddAt(t, m, "app.Abstract", "", reflect.TypeFor[abstractCommand]())
	testutil.AddAt(t, m, "app.Failing", "", func() (*testutil.Command, error) { return nil, errors.New("db down") })
	testutil.AddAt(t, m, "app.Panicking", "", func() *testutil.Command { panic("boom") })
	testutil.AddAt(t, m, "app.Plain", "", newPlainStruct)
	h := newHelper(t, m)

	cmd, err := h.Construct("app.Hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", cmd.Name())

	tests := map[string]error{
		"app.Args":      classmap.ErrRequiresArguments,
		"app.Abstract":  classmap.ErrAbstract,
		"app.Failing":   classmap.ErrConstructor,
		"app.Panicking": classmap.ErrConstructor,
		"app.Plain":     ErrNotCommand,
		"app.Missing":   ErrNotRegistered,
	}
	for id, wantErr := range tests {
		t.Run(id, func(t *testing.T) {
			_, err := h.Construct(id)
			require.ErrorIs(t, err, wantErr)

			cmd, ok := h.TryConstruct(id)
			assert.False(t, ok)
			assert.Nil(t, cmd)
		})
	}
}

func TestHelper_ConstructProvider(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.Provider", "", testutil.ProviderCtor("a", "b"))
	testutil.AddAt(t, m, "app.Hello", "", testutil.CommandCtor("hello"))
	h := newHelper(t, m)

	p, err := h.ConstructProvider("app.Provider")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, testutil.Names(t, p))

	_, err = h.ConstructProvider("app.Hello")
	require.ErrorIs(t, err, ErrNotProvider)

	_, ok := h.TryConstructProvider("app.Missing")
	assert.False(t, ok)
}
