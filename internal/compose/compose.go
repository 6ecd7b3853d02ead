// Package compose joins several command providers into the single ordered
// command sequence the CLI consumes.
package compose

import (
	"fmt"
	"iter"

	"github.com/roach88/consoleapp/internal/discovery"
	"github.com/roach88/consoleapp/internal/stream"
	"github.com/roach88/consoleapp/pkg/console"
)

// ProviderSource supplies the identifiers of manifest-declared providers.
type ProviderSource interface {
	ProviderIDs() []string
}

// ProviderError reports a declared provider that could not be constructed.
type ProviderError struct {
	ID  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("command provider %q: %v", e.ID, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Composite is a console.Provider over the concatenation of its children.
type Composite struct {
	providers []console.Provider
}

// New creates a Composite over providers, in the given order.
func New(providers ...console.Provider) *Composite {
	return &Composite{providers: providers}
}

// Providers returns the child providers.
func (c *Composite) Providers() []console.Provider {
	return c.providers
}

// Commands yields every child's commands in child order. Duplicates are
// kept. The first error from any child is yielded and ends the sequence.
func (c *Composite) Commands() iter.Seq2[console.Command, error] {
	seqs := make([]iter.Seq2[console.Command, error], len(c.providers))
	for i, p := range c.providers {
		seqs[i] = p.Commands()
	}
	return stream.UntilError(stream.Concat(seqs...))
}

// DefaultProviders returns the standard provider list: directly registered
// commands, commands of discovered providers, then one provider per id
// declared in cfg, in declaration order.
//
// Declared providers are constructed eagerly; the first one that fails
// aborts with a *ProviderError.
func DefaultProviders(cfg ProviderSource, reg discovery.Registry, h *discovery.Helper) ([]console.Provider, error) {
	providers := []console.Provider{
		discovery.NewCommandDiscoverer(reg, h),
		discovery.NewProviderDiscoverer(reg, h),
	}
	for _, id := range cfg.ProviderIDs() {
		p, err := h.ConstructProvider(id)
		if err != nil {
			return nil, &ProviderError{ID: id, Err: err}
		}
		providers = append(providers, p)
	}
	return providers, nil
}
