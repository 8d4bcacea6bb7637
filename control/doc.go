// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for upgrade clients.
//
// Provides concurrent-safe state handling primitives including:
//   - Handshake counters keyed by outcome and failure kind
//   - Named debug probes evaluated on demand
//
// Handshake drivers accept an optional *MetricsRegistry; a nil registry
// disables accounting.
package control
