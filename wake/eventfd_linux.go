//go:build linux

// File: wake/eventfd_linux.go
// Author: momentics <momentics@gmail.com>
//
// Counter-style wake handle backed by a Linux eventfd(2). An atomic pending
// flag coalesces redundant wake syscalls: only the 0->1 transition performs
// the kernel write, so a burst of N fires costs one syscall and is observed
// as exactly one set state by the owner.

package wake

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

type eventfdHandle struct {
	fd      int
	pending atomic.Bool
	closed  atomic.Bool
}

func newEventFD() (Handle, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("wake: eventfd create: %w", err)
	}
	return &eventfdHandle{fd: fd}, nil
}

// Fire sets the pending flag and, on the 0->1 transition only, bumps the
// eventfd counter. The flag is set before the write so a drain that consumes
// the counter always observes the flag as well.
func (h *eventfdHandle) Fire() {
	if h.closed.Load() {
		return
	}
	if h.pending.Swap(true) {
		// Already set; the owner will observe the existing signal.
		return
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(h.fd, buf[:])
		switch err {
		case nil, unix.EAGAIN:
			// EAGAIN means the counter is saturated, which still reads as
			// readable; the wake is not lost.
			return
		case unix.EINTR:
			continue
		case unix.EBADF:
			if h.closed.Load() {
				return
			}
			panic(fmt.Sprintf("wake: eventfd fire on stale descriptor: %v", err))
		default:
			panic(fmt.Sprintf("wake: eventfd fire: %v", err))
		}
	}
}

// Drain reads the counter down to zero, then consumes the pending flag. The
// read happens first: any fire whose counter bump we consumed set the flag
// before writing, so the swap below cannot miss it.
func (h *eventfdHandle) Drain() bool {
	var buf [8]byte
	for {
		_, err := unix.Read(h.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		// nil or EAGAIN: counter is zero now. Any other error on a live
		// descriptor leaves the flag as the source of truth.
		break
	}
	return h.pending.Swap(false)
}

func (h *eventfdHandle) IsSet() bool {
	return h.pending.Load()
}

func (h *eventfdHandle) Fd() uintptr {
	return uintptr(h.fd)
}

func (h *eventfdHandle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	return unix.Close(h.fd)
}
