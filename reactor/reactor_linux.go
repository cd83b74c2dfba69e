//go:build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory. Interest is
// level-triggered read readiness: a wake handle that has not been drained
// keeps reporting ready, which is exactly the busy-wake contract the ping
// layer documents.

package reactor

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/pollwake/api"
)

// linuxReactor is an epoll-based readiness engine.
type linuxReactor struct {
	epfd   int
	raw    []unix.EpollEvent // reused across Wait calls; single waiter
	tokens sync.Map          // map[int32]api.Token
}

// New constructs the platform reactor for Linux.
func New() (Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll create: %w", err)
	}
	return &linuxReactor{epfd: epfd}, nil
}

func (r *linuxReactor) Register(fd uintptr, token api.Token) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("reactor: epoll ctl add: %w", err)
	}
	r.tokens.Store(int32(fd), token)
	return nil
}

func (r *linuxReactor) Deregister(fd uintptr) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("reactor: epoll ctl del: %w", err)
	}
	r.tokens.Delete(int32(fd))
	return nil
}

func (r *linuxReactor) Wait(events []Event, timeout time.Duration) (int, error) {
	if cap(r.raw) < len(events) {
		r.raw = make([]unix.EpollEvent, len(events))
	}
	raw := r.raw[:len(events)]
	n, err := unix.EpollWait(r.epfd, raw, timeoutMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("reactor: epoll wait: %w", err)
	}
	out := 0
	for i := 0; i < n; i++ {
		val, ok := r.tokens.Load(raw[i].Fd)
		if !ok {
			// Raced with a Deregister on another thread.
			continue
		}
		events[out] = Event{Token: val.(api.Token)}
		out++
	}
	return out, nil
}

func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}
