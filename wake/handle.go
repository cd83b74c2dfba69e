// File: wake/handle.go
// Author: momentics <momentics@gmail.com>
//
// Cross-thread wake handle abstraction. A Handle is an OS-backed object that
// any thread can fire and whose owning thread observes and clears. The file
// descriptor side is what a reactor watches; the userspace flag side is what
// gives both physical variants identical observable semantics.

package wake

// Handle is the cross-thread wake primitive.
//
// Fire is safe from any goroutine or OS thread, never blocks, and never fails
// recoverably: an OS-level write failure on a live handle means the kernel
// object is exhausted or corrupted and panics. Drain and IsSet belong to the
// logical owner; this single-owner discipline is by contract, not runtime
// checked.
type Handle interface {
	// Fire marks the handle set and wakes any reactor wait watching Fd.
	Fire()

	// Drain consumes all fire signals accumulated since the last Drain and
	// reports whether at least one was pending. Calling Drain again with no
	// intervening Fire reports false.
	Drain() bool

	// IsSet is a non-consuming peek. Best-effort: it may race with a
	// concurrent Fire; only Drain is authoritative.
	IsSet() bool

	// Fd returns the descriptor a reactor should register for read readiness.
	Fd() uintptr

	// Close releases the OS resources. Fire on a closed handle is a no-op.
	Close() error
}

// Backend selects the physical wake variant at construction time.
type Backend int

const (
	// BackendAuto picks the platform default: eventfd on Linux, a self-pipe
	// on other Unix systems.
	BackendAuto Backend = iota

	// BackendEventFD is the counter-style variant (Linux only).
	BackendEventFD

	// BackendPipe is the byte-stream variant, available on all Unix systems.
	BackendPipe
)

// New constructs a wake handle using the requested backend.
func New(b Backend) (Handle, error) {
	return newBackend(b)
}
