// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness polling engine interface. The engine blocks one
// owning thread until a registered descriptor becomes readable and reports the
// token it was registered under. The wake primitives in ping/ and wake/ are
// its main clients; any readable descriptor can be registered.

package reactor

import (
	"time"

	"github.com/momentics/pollwake/api"
)

// Event is one readiness report returned by Wait.
type Event struct {
	// Token identifies the registered source that became ready.
	Token api.Token
}

// Reactor defines basic polling engine operations across OS platforms.
type Reactor interface {
	// Register adds a descriptor under a caller-chosen token. The token
	// namespace is append-only until Deregister removes the entry.
	Register(fd uintptr, token api.Token) error

	// Deregister removes a descriptor from the interest set.
	Deregister(fd uintptr) error

	// Wait blocks until readiness events are available or the timeout
	// elapses, and writes them into the output slice. A negative timeout
	// blocks indefinitely. Returns the number of events written. Only one
	// goroutine at a time may call Wait.
	Wait(events []Event, timeout time.Duration) (n int, err error)

	// Close cleans up the engine's kernel resources.
	Close() error
}

// timeoutMillis converts a wait timeout to the millisecond form the kernel
// interfaces take, rounding sub-millisecond timeouts up so short deadlines do
// not degenerate into a busy spin.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := int(timeout.Milliseconds())
	if ms == 0 && timeout > 0 {
		ms = 1
	}
	return ms
}
