// Package api
// Author: momentics <momentics@gmail.com>
//
// Shared contracts for the pollwake library: registration tokens, the
// dispatchable Source interface, and the error taxonomy used by every layer.
// This package is import-cycle free by construction; all concrete packages
// (wake, reactor, ping, loop) depend on it and never on each other's internals.
package api
