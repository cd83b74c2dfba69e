// File: ping/notifier.go
// Author: momentics <momentics@gmail.com>
//
// Notifier adapts the edge-triggered ping signal into a poll-once-per-fire
// suspend/resume contract for cooperative schedulers. At most one waiter may
// be armed at a time; the armed-to-fired transition is applied by the
// readiness dispatch step (the owning event loop), never by Poll itself.

package ping

import (
	"sync/atomic"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/reactor"
	"github.com/momentics/pollwake/wake"
)

// Notifier states.
const (
	stateIdle int32 = iota
	stateArmed
	stateFired
)

// Notifier wraps one Ping and a single waiter slot.
type Notifier struct {
	ping  *Ping
	state atomic.Int32
}

// NewNotifier builds a Notifier over a fresh Ping registered with the engine.
func NewNotifier(engine reactor.Reactor) (*Notifier, error) {
	return NewNotifierWithBackend(engine, wake.BackendAuto)
}

// NewNotifierWithBackend is NewNotifier with an explicit wake backend.
func NewNotifierWithBackend(engine reactor.Reactor, backend wake.Backend) (*Notifier, error) {
	p, err := NewWithBackend(engine, backend)
	if err != nil {
		return nil, err
	}
	return &Notifier{ping: p}, nil
}

// Poll advances the waiter state machine without blocking.
//
// Fired: consume the event, return ready. Idle: defensively clear any stale
// signal, arm the waiter slot, return pending. Armed: a second waiter is a
// usage error and fails immediately.
func (n *Notifier) Poll() (ready bool, err error) {
	switch n.state.Load() {
	case stateFired:
		n.state.Store(stateIdle)
		return true, nil
	case stateArmed:
		return false, api.NewError(api.ErrCodeConcurrentWait, "notifier: poll while a waiter is armed")
	default:
		n.ping.Reset()
		n.state.Store(stateArmed)
		return false, nil
	}
}

// OnReady is the readiness dispatch step, invoked by the owning loop when the
// engine reports this token. It drains the ping so a level-triggered engine
// stops reporting, then moves an armed waiter to fired. A ready report with
// no armed waiter is consumed silently (stale signal, see Poll).
func (n *Notifier) OnReady() {
	n.ping.Reset()
	n.state.CompareAndSwap(stateArmed, stateFired)
}

// Cancel abandons a pending wait so the next Poll starts clean. Clearing the
// armed slot without notifying the engine means no spurious wake is produced.
func (n *Notifier) Cancel() {
	if n.state.CompareAndSwap(stateArmed, stateIdle) {
		n.ping.Reset()
	}
}

// Notify fires the underlying ping. Safe from any thread.
func (n *Notifier) Notify() {
	n.ping.Notify()
}

// Token returns the engine token dispatch should route to this Notifier.
func (n *Notifier) Token() api.Token {
	return n.ping.Token()
}

// Close tears down the underlying ping. A pending wait is implicitly
// cancelled.
func (n *Notifier) Close() error {
	n.state.Store(stateIdle)
	return n.ping.Close()
}
