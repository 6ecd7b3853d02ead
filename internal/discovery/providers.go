package discovery

import (
	"iter"

	"github.com/roach88/consoleapp/internal/stream"
	"github.com/roach88/consoleapp/pkg/console"
)

// ProviderDiscoverer finds registered command providers and yields the
// commands each of them provides, flattened.
//
// Construction failures are skipped like in CommandDiscoverer. An error
// yielded by a discovered provider while it is iterated ends the sequence
// and is passed on to the consumer.
type ProviderDiscoverer struct {
	source  SymbolSource
	helper  *Helper
	symbols iter.Seq2[string, string]
}

// NewProviderDiscoverer creates a discoverer over source's symbol map.
func NewProviderDiscoverer(source SymbolSource, helper *Helper) *ProviderDiscoverer {
	return &ProviderDiscoverer{source: source, helper: helper}
}

// Commands yields the commands of all discovered providers: providers in
// registry order, each provider's commands in its own order.
func (d *ProviderDiscoverer) Commands() iter.Seq2[console.Command, error] {
	return func(yield func(console.Command, error) bool) {
		flat := stream.FlatMap(d.Providers(), console.Provider.Commands)
		for cmd, err := range stream.UntilError(flat) {
			if !yield(cmd, err) {
				return
			}
		}
	}
}

// Providers yields the discovered providers themselves.
func (d *ProviderDiscoverer) Providers() iter.Seq[console.Provider] {
	return func(yield func(console.Provider) bool) {
		h := d.helper

		located := stream.MapValues(d.symbolMap(), h.Canonicalize)
		located = stream.FilterValues(located, h.IsOwnCode)
		located = stream.FilterValues(located, h.LooksLikeProvider)

		ids := stream.Filter(stream.Keys(located), h.IsOutsideOwnNamespace)
		ids = stream.Filter(ids, h.IsProviderType)

		for p := range stream.FilterMap(ids, h.TryConstructProvider) {
			if !yield(p) {
				return
			}
		}
	}
}

func (d *ProviderDiscoverer) symbolMap() iter.Seq2[string, string] {
	if d.symbols == nil {
		d.symbols = d.source.SymbolMap()
	}
	return d.symbols
}
