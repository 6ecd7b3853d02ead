package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/consoleapp/internal/discovery"
	"github.com/roach88/consoleapp/internal/registry"
	"github.com/roach88/consoleapp/internal/testutil"
	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

type staticIDs []string

func (s staticIDs) ProviderIDs() []string { return s }

func TestComposite_ConcatenatesInOrder(t *testing.T) {
	c := New(
		testutil.NewProvider("a", "b"),
		testutil.NewProvider(),
		testutil.NewProvider("c"),
	)

	assert.Equal(t, []string{"a", "b", "c"}, testutil.Names(t, c))
}

func TestComposite_KeepsDuplicates(t *testing.T) {
	c := New(testutil.NewProvider("hello"), testutil.NewProvider("hello"))

	assert.Equal(t, []string{"hello", "hello"}, testutil.Names(t, c))
}

func TestComposite_Empty(t *testing.T) {
	assert.Empty(t, testutil.Names(t, New()))
}

func TestComposite_Lazy(t *testing.T) {
	first := testutil.NewProvider("a", "b")
	second := testutil.NewProvider("c")
	c := New(first, second)

	for range c.Commands() {
		break
	}
	assert.Equal(t, 1, first.Iterations)
	assert.Equal(t, 0, second.Iterations, "later providers are not polled early")
}

func TestComposite_ErrorStopsSequence(t *testing.T) {
	boom := errors.New("boom")
	failing := testutil.NewProvider("a")
	failing.Err = boom
	after := testutil.NewProvider("b")

	cmds, err := console.Collect(New(failing, after))

	require.ErrorIs(t, err, boom)
	require.Len(t, cmds, 1)
	assert.Equal(t, 0, after.Iterations)
}

func TestComposite_Reiterable(t *testing.T) {
	c := New(testutil.NewProvider("a"), testutil.NewProvider("b"))

	assert.Equal(t, testutil.Names(t, c), testutil.Names(t, c))
}

func registryWith(t *testing.T) *registry.Adapter {
	t.Helper()
	m := classmap.New()
	testutil.AddAt(t, m, "app.HelloCommand", "/app/HelloCommand.go", testutil.CommandCtor("hello"))
	testutil.AddAt(t, m, "app.AppCommandProvider", "/app/AppCommandProvider.go", testutil.ProviderCtor("nested"))
	testutil.AddAt(t, m, "app.Declared", "/app/declared.go", testutil.ProviderCtor("declared1", "declared2"))
	testutil.AddAt(t, m, "app.Broken", "/app/broken.go", func() (*testutil.Provider, error) {
		return nil, errors.New("no database")
	})
	return registry.New(m)
}

func TestDefaultProviders(t *testing.T) {
	reg := registryWith(t)
	h := discovery.NewHelper(reg)

	tests := []struct {
		name      string
		ids       []string
		wantCount int
		wantNames []string
	}{
		{
			name:      "no declared providers",
			wantCount: 2,
			wantNames: []string{"hello", "nested"},
		},
		{
			name:      "one declared provider",
			ids:       []string{"app.Declared"},
			wantCount: 3,
			wantNames: []string{"hello", "nested", "declared1", "declared2"},
		},
		{
			name:      "same provider declared twice",
			ids:       []string{"app.Declared", "app.Declared"},
			wantCount: 4,
			wantNames: []string{"hello", "nested", "declared1", "declared2", "declared1", "declared2"},
		},
		{
			name:      "declared provider also discovered",
			ids:       []string{"app.AppCommandProvider"},
			wantCount: 3,
			wantNames: []string{"hello", "nested", "nested"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := DefaultProviders(staticIDs(tt.ids), reg, h)
			require.NoError(t, err)
			assert.Len(t, providers, tt.wantCount)
			assert.Equal(t, tt.wantNames, testutil.Names(t, New(providers...)))
		})
	}
}

func TestDefaultProviders_DeclaredFailure(t *testing.T) {
	reg := registryWith(t)
	h := discovery.NewHelper(reg)

	tests := []struct {
		id      string
		wantErr error
	}{
		{"app.Broken", classmap.ErrConstructor},
		{"app.Missing", discovery.ErrNotRegistered},
		{"app.HelloCommand", discovery.ErrNotProvider},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := DefaultProviders(staticIDs{"app.Declared", tt.id}, reg, h)
			require.ErrorIs(t, err, tt.wantErr)

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.id, perr.ID)
			assert.Contains(t, err.Error(), tt.id)
		})
	}
}
