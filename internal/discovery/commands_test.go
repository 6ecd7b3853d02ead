package discovery

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/consoleapp/internal/registry"
	"github.com/roach88/consoleapp/internal/testutil"
	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

// countingRegistry records how the discoverers touch the registry.
type countingRegistry struct {
	inner      Registry
	symbolMaps int
	lookups    []string
}

func (r *countingRegistry) SymbolMap() iter.Seq2[string, string] {
	r.symbolMaps++
	return r.inner.SymbolMap()
}

func (r *countingRegistry) Lookup(id string) (classmap.Entry, bool) {
	r.lookups = append(r.lookups, id)
	return r.inner.Lookup(id)
}

func newCounting(m *classmap.ClassMap) *countingRegistry {
	return &countingRegistry{inner: registry.New(m)}
}

func commandNames(t *testing.T, p console.Provider) []string {
	t.Helper()
	return testutil.Names(t, p)
}

func TestCommandDiscoverer_OwnCodeOnly(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.HelloCommand", "/app/HelloCommand.go", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "thirdparty.Cmd", "/vendor/x/SomeCommand.go", testutil.CommandCtor("vendored"))
	reg := registry.New(m)

	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Equal(t, []string{"hello"}, commandNames(t, d))
}

func TestCommandDiscoverer_RegistryOrder(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.C", "/app/CCommand.go", testutil.CommandCtor("c"))
	testutil.AddAt(t, m, "app.A", "/app/ACommand.go", testutil.CommandCtor("a"))
	testutil.AddAt(t, m, "app.B", "/app/BCommand.go", testutil.CommandCtor("b"))
	reg := registry.New(m)

	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Equal(t, []string{"c", "a", "b"}, commandNames(t, d))
}

func TestCommandDiscoverer_SkipsUnconstructible(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.Args", "/app/ArgsCommand.go", newArgsCommand)
	testutil.AddAt(t, m, "app.Hello", "/app/HelloCommand.go", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "app.Panics", "/app/PanicCommand.go", func() *testutil.Command { panic("boom") })
	testutil.AddAt(t, m, "app.Plain", "/app/PlainCommand.go", newPlainStruct)
	reg := registry.New(m)

	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Equal(t, []string{"hello"}, commandNames(t, d))
}

func TestCommandDiscoverer_FilenameBeforeTypeChecks(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.Hello", "/app/hello.go", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "app.Vendored", "/vendor/x/HelloCommand.go", testutil.CommandCtor("vendored"))
	testutil.AddAt(t, m, "app.Real", "/app/RealCommand.go", testutil.CommandCtor("real"))
	reg := newCounting(m)

	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Equal(t, []string{"real"}, commandNames(t, d))
	for _, id := range reg.lookups {
		assert.Equal(t, "app.Real", id, "only filename matches may be introspected")
	}
}

func TestCommandDiscoverer_Lazy(t *testing.T) {
	m := classmap.New()
	built := 0
	for _, name := range []string{"a", "b", "c"} {
		testutil.AddAt(t, m, "app."+name, "/app/"+name+"Command.go", func() *testutil.Command {
			built++
			return testutil.NewCommand(name)
		})
	}
	reg := registry.New(m)
	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Equal(t, 0, built, "creating the discoverer constructs nothing")

	for cmd, err := range d.Commands() {
		require.NoError(t, err)
		assert.Equal(t, "a", cmd.Name())
		break
	}
	assert.Equal(t, 1, built)
}

func TestCommandDiscoverer_Idempotent(t *testing.T) {
	m := classmap.New()
	testutil.AddAt(t, m, "app.A", "/app/ACommand.go", testutil.CommandCtor("a"))
	testutil.AddAt(t, m, "app.B", "/app/BCommand.go", testutil.CommandCtor("b"))
	reg := newCounting(m)

	d := NewCommandDiscoverer(reg, NewHelper(reg))

	first := commandNames(t, d)
	second := commandNames(t, d)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, reg.symbolMaps, "symbol map handle is fetched once")
}

func TestCommandDiscoverer_Empty(t *testing.T) {
	reg := registry.New(classmap.New())
	d := NewCommandDiscoverer(reg, NewHelper(reg))

	assert.Empty(t, commandNames(t, d))
}

func TestCommandDiscoverer_ImplementsProvider(t *testing.T) {
	var _ console.Provider = (*CommandDiscoverer)(nil)
}
