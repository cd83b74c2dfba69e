// File: loop/loop_test.go
// Author: momentics <momentics@gmail.com>

package loop_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/channel"
	"github.com/momentics/pollwake/control"
	"github.com/momentics/pollwake/fake"
	"github.com/momentics/pollwake/loop"
	"github.com/momentics/pollwake/ping"
	"github.com/momentics/pollwake/reactor"
	"github.com/momentics/pollwake/timer"
)

func newEngine(t *testing.T) reactor.Reactor {
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

func awaitCounter(t *testing.T, m *control.MetricsRegistry, key string, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Get(key) >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("counter %s never reached %d (at %d)", key, want, m.Get(key))
}

func TestStopWakesBlockedLoop(t *testing.T) {
	r := newEngine(t)
	l, err := loop.New(r)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ret := make(chan error, 1)
	go func() { ret <- l.Run() }()
	time.Sleep(20 * time.Millisecond) // let Run enter the wait

	l.Stop()
	select {
	case err := <-ret:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not wake the blocked loop")
	}
}

// The full scenario: owner polls pending, a worker thread notifies, the
// engine wait reports the token, dispatch fires the notifier, the next poll
// is ready and the one after that is pending again.
func TestEndToEndWakeScenario(t *testing.T) {
	r := newEngine(t)
	metrics := control.NewMetricsRegistry()
	l, err := loop.New(r, loop.WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	n, err := ping.NewNotifier(r)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()
	l.AddSource(n)

	go l.Run()
	defer l.Stop()

	ready, err := n.Poll()
	if err != nil || ready {
		t.Fatalf("first poll: ready=%v err=%v, want pending", ready, err)
	}

	go n.Notify() // worker thread

	awaitCounter(t, metrics, "loop.dispatched_events", 1)

	ready, err = n.Poll()
	if err != nil || !ready {
		t.Fatalf("poll after dispatch: ready=%v err=%v, want ready", ready, err)
	}
	ready, err = n.Poll()
	if err != nil || ready {
		t.Fatalf("immediate re-poll: ready=%v err=%v, want pending", ready, err)
	}
}

func TestTimerFiresThroughLoop(t *testing.T) {
	r := newEngine(t)
	metrics := control.NewMetricsRegistry()
	timers := timer.NewSource()
	l, err := loop.New(r, loop.WithMetrics(metrics), loop.WithTimers(timers))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	n, err := ping.NewNotifier(r)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()
	l.AddSource(n)

	go l.Run()
	defer l.Stop()

	if _, err := n.Poll(); err != nil {
		t.Fatal(err)
	}
	timers.After(30*time.Millisecond, n)

	awaitCounter(t, metrics, "loop.timer_expiries", 1)
	awaitCounter(t, metrics, "loop.dispatched_events", 1)

	ready, err := n.Poll()
	if err != nil || !ready {
		t.Fatalf("poll after timer expiry: ready=%v err=%v, want ready", ready, err)
	}
}

func TestChannelBridgeThroughLoop(t *testing.T) {
	r := newEngine(t)
	metrics := control.NewMetricsRegistry()
	l, err := loop.New(r, loop.WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	tx, rx, err := channel.New[int](r)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()
	l.AddSource(rx)

	go l.Run()
	defer l.Stop()

	if _, err := rx.Poll(); err != nil {
		t.Fatal(err)
	}

	const values = 10
	for i := 0; i < values; i++ {
		go tx.Send(i)
	}

	awaitCounter(t, metrics, "loop.dispatched_events", 1)

	got := 0
	deadline := time.Now().Add(2 * time.Second)
	for got < values && time.Now().Before(deadline) {
		if _, ok := rx.TryRecv(); ok {
			got++
			continue
		}
		time.Sleep(time.Millisecond)
	}
	if got != values {
		t.Fatalf("received %d of %d values", got, values)
	}
}

func TestWaitFailureIsFatalToLoop(t *testing.T) {
	f := fake.NewFakeReactor()
	l, err := loop.New(f)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	f.WaitErr = fmt.Errorf("engine degraded")
	err = l.Run()
	if !errors.Is(err, api.ErrWait) {
		t.Fatalf("run returned %v, want wait error", err)
	}
}

func TestRemovedSourceEventsDropped(t *testing.T) {
	r := newEngine(t)
	metrics := control.NewMetricsRegistry()
	l, err := loop.New(r, loop.WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	n, err := ping.NewNotifier(r)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()
	l.AddSource(n)
	l.RemoveSource(n)

	go l.Run()
	defer l.Stop()

	n.Notify()
	awaitCounter(t, metrics, "loop.dropped_events", 1)
}
