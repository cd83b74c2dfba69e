// File: reactor/reactor_test.go
// Author: momentics <momentics@gmail.com>

package reactor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/reactor"
	"github.com/momentics/pollwake/wake"
)

func newReactor(t *testing.T) reactor.Reactor {
	t.Helper()
	r, err := reactor.New()
	if err != nil {
		if errors.Is(err, api.ErrNotSupported) {
			t.Skip("no reactor on this platform")
		}
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestWaitTimeout(t *testing.T) {
	r := newReactor(t)
	events := make([]reactor.Event, 4)
	start := time.Now()
	n, err := r.Wait(events, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Error("wait returned before the timeout elapsed")
	}
}

func TestWaitReportsRegisteredToken(t *testing.T) {
	r := newReactor(t)
	h, err := wake.New(wake.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const token api.Token = 7
	if err := r.Register(h.Fd(), token); err != nil {
		t.Fatal(err)
	}
	defer r.Deregister(h.Fd())

	h.Fire()

	events := make([]reactor.Event, 4)
	n, err := r.Wait(events, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || events[0].Token != token {
		t.Fatalf("expected token %d once, got %d events %+v", token, n, events[:n])
	}
}

func TestLevelTriggeredUntilDrained(t *testing.T) {
	r := newReactor(t)
	h, err := wake.New(wake.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := r.Register(h.Fd(), 1); err != nil {
		t.Fatal(err)
	}
	defer r.Deregister(h.Fd())

	h.Fire()
	events := make([]reactor.Event, 4)
	for i := 0; i < 2; i++ {
		n, err := r.Wait(events, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("undrained handle not reported on wait %d", i)
		}
	}

	h.Drain()
	n, err := r.Wait(events, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("drained handle still reported ready")
	}
}

func TestDeregisterStopsDelivery(t *testing.T) {
	r := newReactor(t)
	h, err := wake.New(wake.BackendAuto)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := r.Register(h.Fd(), 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Deregister(h.Fd()); err != nil {
		t.Fatal(err)
	}

	h.Fire()
	events := make([]reactor.Event, 4)
	n, err := r.Wait(events, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("deregistered source still delivered events")
	}
}
