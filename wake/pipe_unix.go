//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// File: wake/pipe_unix.go
// Author: momentics <momentics@gmail.com>
//
// Byte-stream wake handle backed by a non-blocking self-pipe. Fire writes one
// byte per call; a full pipe (EAGAIN) is success-no-op because the reader only
// needs "at least one byte available". Drain reads and discards everything in
// one pass. The same pending flag as the eventfd variant carries the
// authoritative set state, keeping the two variants observably identical.

package wake

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

type pipeHandle struct {
	readFd  int
	writeFd int
	pending atomic.Bool
	closed  atomic.Bool
}

func newPipe() (Handle, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("wake: pipe create: %w", err)
	}
	return &pipeHandle{readFd: fds[0], writeFd: fds[1]}, nil
}

func (h *pipeHandle) Fire() {
	if h.closed.Load() {
		return
	}
	h.pending.Store(true)
	var one = [1]byte{0}
	for {
		_, err := unix.Write(h.writeFd, one[:])
		switch err {
		case nil, unix.EAGAIN:
			// A full pipe already guarantees the reader wakes.
			return
		case unix.EINTR:
			continue
		case unix.EBADF, unix.EPIPE:
			if h.closed.Load() {
				return
			}
			panic(fmt.Sprintf("wake: pipe fire on stale descriptor: %v", err))
		default:
			panic(fmt.Sprintf("wake: pipe fire: %v", err))
		}
	}
}

func (h *pipeHandle) Drain() bool {
	var buf [64]byte
	for {
		n, err := unix.Read(h.readFd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil || n < len(buf) {
			break
		}
	}
	return h.pending.Swap(false)
}

func (h *pipeHandle) IsSet() bool {
	return h.pending.Load()
}

func (h *pipeHandle) Fd() uintptr {
	return uintptr(h.readFd)
}

func (h *pipeHandle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	werr := unix.Close(h.writeFd)
	rerr := unix.Close(h.readFd)
	if werr != nil {
		return werr
	}
	return rerr
}
