// File: ping/ping.go
// Author: momentics <momentics@gmail.com>
//
// Ping is the cross-thread wake primitive: one wake handle plus one
// registration in the polling engine. Notify is callable from any thread and
// only ever touches the handle's fire path; Reset belongs to the owning
// thread. The registration is created once at construction and held for the
// whole lifetime, which is what makes the notify/wait race safe: the handle
// is level-observable, so a fire that lands before the owner enters Wait is
// still reported by that Wait.

package ping

import (
	"sync/atomic"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/reactor"
	"github.com/momentics/pollwake/wake"
)

// tokenSeq hands out process-unique registration tokens.
var tokenSeq atomic.Uint64

// NextToken returns a fresh token, never zero.
func NextToken() api.Token {
	return api.Token(tokenSeq.Add(1))
}

// Ping owns exactly one wake handle and one reactor registration.
type Ping struct {
	handle wake.Handle
	engine reactor.Reactor
	token  api.Token
	closed atomic.Bool
}

// New allocates a wake handle with the platform default backend and registers
// it with the engine under a fresh token.
func New(engine reactor.Reactor) (*Ping, error) {
	return NewWithBackend(engine, wake.BackendAuto)
}

// NewWithBackend is New with an explicit wake backend, chosen at construction
// time (configuration-level selection, never per-fire dispatch).
func NewWithBackend(engine reactor.Reactor, backend wake.Backend) (*Ping, error) {
	h, err := wake.New(backend)
	if err != nil {
		return nil, err
	}
	token := NextToken()
	if err := engine.Register(h.Fd(), token); err != nil {
		h.Close()
		return nil, api.NewError(api.ErrCodeRegistration, "ping: engine rejected wake source").
			WithContext("cause", err.Error())
	}
	return &Ping{handle: h, engine: engine, token: token}, nil
}

// Notify fires the wake handle. Safe from any thread, never blocks, and is a
// no-op after Close. Any wait on the engine that watches this token returns
// no later than its next invocation.
func (p *Ping) Notify() {
	p.handle.Fire()
}

// Reset drains the wake handle and reports whether a notify was pending.
// Owner-only; must be called after observing readiness and before the next
// wait, or the engine reports this token ready again immediately.
func (p *Ping) Reset() bool {
	return p.handle.Drain()
}

// IsSet is a best-effort peek at the pending state.
func (p *Ping) IsSet() bool {
	return p.handle.IsSet()
}

// Token returns the registration token the engine reports for this ping.
func (p *Ping) Token() api.Token {
	return p.token
}

// Close deregisters from the engine and then releases the wake handle, in
// that order: the engine must never touch a released descriptor during a
// concurrent wait on another thread.
func (p *Ping) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	derr := p.engine.Deregister(p.handle.Fd())
	cerr := p.handle.Close()
	if derr != nil {
		return derr
	}
	return cerr
}
