// File: dispatch/dispatch.go
// Author: momentics <momentics@gmail.com>
//
// Dispatcher hands blocking work to a worker pool and signals completion back
// to the polling loop through a per-task ping. The pool is the external
// collaborator; the contract here is only that finishing a task fires the
// notifier on its handle.

package dispatch

import (
	"sync"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/internal/concurrency"
	"github.com/momentics/pollwake/ping"
	"github.com/momentics/pollwake/reactor"
)

// Dispatcher submits blocking functions to a shared worker pool.
type Dispatcher struct {
	pool   *concurrency.Pool
	engine reactor.Reactor
}

// New creates a dispatcher with the given worker count (<= 0 means one per
// CPU) signaling through the given engine.
func New(engine reactor.Reactor, workers int) *Dispatcher {
	return &Dispatcher{
		pool:   concurrency.NewPool(workers),
		engine: engine,
	}
}

// Close shuts the pool down, waiting for in-flight tasks. Their completions
// still fire, so handles polled afterwards resolve normally.
func (d *Dispatcher) Close() {
	d.pool.Close()
}

// Task is the handle for one submitted function. It is an event-loop source:
// register it with the loop, poll it from the consumer side.
type Task[T any] struct {
	notifier *ping.Notifier

	mu   sync.Mutex
	val  T
	err  error
	done bool
}

// Submit schedules fn on the pool. The returned task's notifier fires when fn
// completes.
func Submit[T any](d *Dispatcher, fn func() (T, error)) (*Task[T], error) {
	n, err := ping.NewNotifier(d.engine)
	if err != nil {
		return nil, err
	}
	t := &Task[T]{notifier: n}
	if err := d.pool.Submit(func() {
		v, e := fn()
		t.mu.Lock()
		t.val, t.err, t.done = v, e, true
		t.mu.Unlock()
		n.Notify()
	}); err != nil {
		n.Close()
		return nil, err
	}
	return t, nil
}

// Poll reports the task result. done is false while the work is still
// running, in which case the waiter is armed. A second poll while armed
// fails with the concurrent-wait error.
//
// The stored result is the authority, not the notifier: a completion that
// raced ahead of the arm had its notify cleared by the arm's stale-signal
// reset, so a pending poll re-checks the result and releases the armed slot;
// conversely a readiness report that raced ahead of the worker's store never
// yields a phantom result.
func (t *Task[T]) Poll() (result T, done bool, err error) {
	var zero T
	ready, err := t.notifier.Poll()
	if err != nil {
		return zero, false, err
	}
	t.mu.Lock()
	v, e, finished := t.val, t.err, t.done
	t.mu.Unlock()
	if finished {
		if !ready {
			t.notifier.Cancel()
		}
		return v, true, e
	}
	if ready {
		// Fired with no stored result: re-arm so the worker's own notify
		// still lands.
		if _, err := t.notifier.Poll(); err != nil {
			return zero, false, err
		}
	}
	return zero, false, nil
}

// Cancel abandons a pending wait on the task. The work itself keeps running;
// only the waiter slot is released.
func (t *Task[T]) Cancel() {
	t.notifier.Cancel()
}

// Token implements api.Source.
func (t *Task[T]) Token() api.Token {
	return t.notifier.Token()
}

// OnReady implements api.Source; invoked by the owning loop.
func (t *Task[T]) OnReady() {
	t.notifier.OnReady()
}

// Close releases the task's ping and engine registration.
func (t *Task[T]) Close() error {
	return t.notifier.Close()
}
