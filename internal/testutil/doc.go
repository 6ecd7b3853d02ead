// Package testutil provides fixtures shared by the package tests: fake
// commands and providers, class map builders, temp-file helpers, and
// deterministic sequence and ID sources for the journal.
package testutil
