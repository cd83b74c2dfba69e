//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: reactor/reactor_bsd.go
// Author: momentics <momentics@gmail.com>
//
// kqueue(2)-based reactor implementation for BSD-derived systems. Read
// filters default to level-triggered delivery, matching the Linux side.

package reactor

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/pollwake/api"
)

// bsdReactor is a kqueue-based readiness engine.
type bsdReactor struct {
	kq     int
	raw    []unix.Kevent_t // reused across Wait calls; single waiter
	tokens sync.Map        // map[uint64]api.Token
}

// New constructs the platform reactor for BSD-derived systems.
func New() (Reactor, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("reactor: kqueue create: %w", err)
	}
	unix.CloseOnExec(kq)
	return &bsdReactor{kq: kq}, nil
}

func (r *bsdReactor) Register(fd uintptr, token api.Token) error {
	var change unix.Kevent_t
	unix.SetKevent(&change, int(fd), unix.EVFILT_READ, unix.EV_ADD)
	if _, err := unix.Kevent(r.kq, []unix.Kevent_t{change}, nil, nil); err != nil {
		return fmt.Errorf("reactor: kevent add: %w", err)
	}
	r.tokens.Store(uint64(fd), token)
	return nil
}

func (r *bsdReactor) Deregister(fd uintptr) error {
	var change unix.Kevent_t
	unix.SetKevent(&change, int(fd), unix.EVFILT_READ, unix.EV_DELETE)
	if _, err := unix.Kevent(r.kq, []unix.Kevent_t{change}, nil, nil); err != nil {
		return fmt.Errorf("reactor: kevent delete: %w", err)
	}
	r.tokens.Delete(uint64(fd))
	return nil
}

func (r *bsdReactor) Wait(events []Event, timeout time.Duration) (int, error) {
	if cap(r.raw) < len(events) {
		r.raw = make([]unix.Kevent_t, len(events))
	}
	raw := r.raw[:len(events)]
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	n, err := unix.Kevent(r.kq, nil, raw, ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("reactor: kevent wait: %w", err)
	}
	out := 0
	for i := 0; i < n; i++ {
		val, ok := r.tokens.Load(uint64(raw[i].Ident))
		if !ok {
			// Raced with a Deregister on another thread.
			continue
		}
		events[out] = Event{Token: val.(api.Token)}
		out++
	}
	return out, nil
}

func (r *bsdReactor) Close() error {
	return unix.Close(r.kq)
}
