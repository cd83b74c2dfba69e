// File: channel/channel.go
// Author: momentics <momentics@gmail.com>
//
// Multi-producer channel bridge. Producers push values into an unbounded
// queue and fire the shared ping; the consumer task drains after each wake.
// The queue transport is the external collaborator here; the bridge only
// specifies the pairing of enqueue with notify so a blocked consumer wakes.

package channel

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/ping"
	"github.com/momentics/pollwake/reactor"
)

type core[T any] struct {
	mu       sync.Mutex
	q        *queue.Queue
	closed   bool
	notifier *ping.Notifier
}

// Sender is the producer half. Copies of a Sender share the same bridge; any
// number of goroutines may send concurrently.
type Sender[T any] struct {
	c *core[T]
}

// Receiver is the consumer half, dispatchable by the owning event loop.
type Receiver[T any] struct {
	c *core[T]
}

// New builds a bridge over the given engine.
func New[T any](engine reactor.Reactor) (Sender[T], *Receiver[T], error) {
	n, err := ping.NewNotifier(engine)
	if err != nil {
		return Sender[T]{}, nil, err
	}
	c := &core[T]{q: queue.New(), notifier: n}
	return Sender[T]{c: c}, &Receiver[T]{c: c}, nil
}

// Send enqueues a value and wakes the consumer. Never blocks; fails only
// after Close.
func (s Sender[T]) Send(v T) error {
	c := s.c
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return api.ErrClosed
	}
	c.q.Add(v)
	c.mu.Unlock()
	c.notifier.Notify()
	return nil
}

// Close marks the send side closed and wakes the consumer so it can observe
// the end of the stream after draining.
func (s Sender[T]) Close() {
	c := s.c
	c.mu.Lock()
	already := c.closed
	c.closed = true
	c.mu.Unlock()
	if !already {
		c.notifier.Notify()
	}
}

// TryRecv pops one value without blocking.
func (r *Receiver[T]) TryRecv() (T, bool) {
	var zero T
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if r.c.q.Length() == 0 {
		return zero, false
	}
	return r.c.q.Remove().(T), true
}

// Closed reports whether the send side is closed and the queue drained.
func (r *Receiver[T]) Closed() bool {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.c.closed && r.c.q.Length() == 0
}

// Len returns the number of queued values.
func (r *Receiver[T]) Len() int {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.c.q.Length()
}

// Poll arms the receiver's notifier: pending means the consumer should
// suspend until the loop dispatches readiness. The queue is the authority: a
// send that raced ahead of the arm had its notify cleared by the arm's stale-
// signal reset, so a pending poll re-checks the queue and releases the armed
// slot when values (or end of stream) are already waiting.
func (r *Receiver[T]) Poll() (bool, error) {
	ready, err := r.c.notifier.Poll()
	if err != nil || ready {
		return ready, err
	}
	r.c.mu.Lock()
	waiting := r.c.q.Length() > 0 || r.c.closed
	r.c.mu.Unlock()
	if waiting {
		r.c.notifier.Cancel()
		return true, nil
	}
	return false, nil
}

// Cancel abandons a pending wait.
func (r *Receiver[T]) Cancel() {
	r.c.notifier.Cancel()
}

// Token implements api.Source.
func (r *Receiver[T]) Token() api.Token {
	return r.c.notifier.Token()
}

// OnReady implements api.Source; invoked by the owning loop.
func (r *Receiver[T]) OnReady() {
	r.c.notifier.OnReady()
}

// Close tears down the receive side and its engine registration.
func (r *Receiver[T]) Close() error {
	r.c.mu.Lock()
	r.c.closed = true
	r.c.mu.Unlock()
	return r.c.notifier.Close()
}
