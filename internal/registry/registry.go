// Package registry adapts the process-wide class map for discovery.
//
// The Adapter is the single seam between discovery and the host registry:
// it exposes the current symbol map, resolves identifiers to constructible
// entries, and lets a bootstrap step swap the whole map before the first
// discovery pass.
package registry

import (
	"iter"

	"github.com/roach88/consoleapp/pkg/classmap"
)

// Adapter exposes a class map to discovery. Not safe for concurrent use;
// replacement must complete before any discovery pass begins.
type Adapter struct {
	current *classmap.ClassMap
}

// New creates an adapter over m. A nil map falls back to classmap.Default.
func New(m *classmap.ClassMap) *Adapter {
	if m == nil {
		m = classmap.Default
	}
	return &Adapter{current: m}
}

// SymbolMap iterates identifier -> location pairs of the current map in
// registration order.
func (a *Adapter) SymbolMap() iter.Seq2[string, string] {
	return a.current.Symbols()
}

// Lookup resolves an identifier in the current map.
func (a *Adapter) Lookup(id string) (classmap.Entry, bool) {
	return a.current.Lookup(id)
}

// ClassMap returns the current map.
func (a *Adapter) ClassMap() *classmap.ClassMap {
	return a.current
}

// InstallReplacement swaps the current map for m. A nil m is ignored.
func (a *Adapter) InstallReplacement(m *classmap.ClassMap) {
	if m == nil {
		return
	}
	a.current = m
}

// CountRegisteredLoaders returns the number of active class map loaders.
func (a *Adapter) CountRegisteredLoaders() int {
	return classmap.RegisteredLoaders()
}

// Unregister removes the current map from the active loader list.
func (a *Adapter) Unregister() {
	a.current.Unregister()
}
