// Package server wires the form server: configuration, logging, metrics,
// tracing, the blueprint factory with the standard fields and defaults, the
// document library and the gin router behind gzip compression.
//
// Application handlers passed WithBindings are each guarded by a circuit
// breaker; the built-in "store" handler saves submissions in memory.
package server
