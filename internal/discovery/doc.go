// Package discovery finds commands and command providers in a class map.
//
// Both discoverers run the same staged, lazy pipeline over the registry's
// symbol map. Cheap string predicates on the source location run first
// (canonical path, not vendored, file named after the convention) so type
// introspection and construction only happen for plausible candidates:
//
//	symbols -> canonicalize -> own code -> file convention -> ids
//	        -> capability check -> construct -> drop failures
//
// Discovery is opportunistic. A candidate that cannot be constructed is
// left out of the results and logged at debug level; it is never an error.
//
// File organization:
//   - helper.go: predicates and construction shared by the discoverers
//   - commands.go: CommandDiscoverer, types that are commands
//   - providers.go: ProviderDiscoverer, types that yield further commands
package discovery
