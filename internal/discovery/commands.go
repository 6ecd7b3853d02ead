package discovery

import (
	"iter"

	"github.com/roach88/consoleapp/internal/stream"
	"github.com/roach88/consoleapp/pkg/console"
)

// CommandDiscoverer yields every registered type that is itself a command.
// It implements console.Provider and never yields an error.
type CommandDiscoverer struct {
	source  SymbolSource
	helper  *Helper
	symbols iter.Seq2[string, string]
}

// NewCommandDiscoverer creates a discoverer over source's symbol map.
func NewCommandDiscoverer(source SymbolSource, helper *Helper) *CommandDiscoverer {
	return &CommandDiscoverer{source: source, helper: helper}
}

// Commands yields the discovered commands in registry order. Each call
// re-runs the pipeline; the symbol map handle is fetched once.
func (d *CommandDiscoverer) Commands() iter.Seq2[console.Command, error] {
	return func(yield func(console.Command, error) bool) {
		for cmd := range d.discover() {
			if !yield(cmd, nil) {
				return
			}
		}
	}
}

func (d *CommandDiscoverer) discover() iter.Seq[console.Command] {
	h := d.helper

	located := stream.MapValues(d.symbolMap(), h.Canonicalize)
	located = stream.FilterValues(located, h.IsOwnCode)
	// Filename check before any type introspection.
	located = stream.FilterValues(located, h.LooksLikeCommand)

	ids := stream.Filter(stream.Keys(located), h.IsCommandType)
	return stream.FilterMap(ids, h.TryConstruct)
}

func (d *CommandDiscoverer) symbolMap() iter.Seq2[string, string] {
	if d.symbols == nil {
		d.symbols = d.source.SymbolMap()
	}
	return d.symbols
}
