// File: api/source.go
// Package api defines the contracts shared between the wake primitives, the
// reactor, and the owning event loop.
// Author: momentics <momentics@gmail.com>

package api

// Token is an opaque identifier correlating a registered wake source with a
// readiness event reported by the reactor. Tokens are unique for the lifetime
// of the process.
type Token uint64

// Source is anything the owning event loop can dispatch readiness to.
//
// OnReady is invoked on the loop goroutine when the reactor reports the
// source's token ready. Implementations must not block; they typically drain
// the underlying wake handle and flip internal state so the next Poll by the
// consumer observes Ready.
type Source interface {
	Token() Token
	OnReady()
}
