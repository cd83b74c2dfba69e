// File: timer/timer_test.go
// Author: momentics <momentics@gmail.com>

package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/pollwake/timer"
)

type countTarget struct {
	fires atomic.Int64
}

func (c *countTarget) Notify() { c.fires.Add(1) }

func TestNextTimeoutEmpty(t *testing.T) {
	s := timer.NewSource()
	if _, ok := s.NextTimeout(); ok {
		t.Fatal("empty source reported a deadline")
	}
}

func TestAfterFiresOnce(t *testing.T) {
	s := timer.NewSource()
	target := &countTarget{}
	s.After(10*time.Millisecond, target)

	d, ok := s.NextTimeout()
	if !ok || d > 10*time.Millisecond {
		t.Fatalf("next timeout %v ok=%v", d, ok)
	}

	// Not due yet.
	if n := s.Advance(time.Now()); n != 0 {
		t.Fatalf("fired %d timers before the deadline", n)
	}

	if n := s.Advance(time.Now().Add(20 * time.Millisecond)); n != 1 {
		t.Fatalf("fired %d timers at the deadline, want 1", n)
	}
	if target.fires.Load() != 1 {
		t.Fatalf("target notified %d times", target.fires.Load())
	}

	// One-shot: gone afterwards.
	if s.Len() != 0 {
		t.Fatal("one-shot timer still scheduled after firing")
	}
}

func TestPassedDeadlineYieldsZeroTimeout(t *testing.T) {
	s := timer.NewSource()
	s.At(time.Now().Add(-time.Second), &countTarget{})
	d, ok := s.NextTimeout()
	if !ok || d != 0 {
		t.Fatalf("overdue deadline gave timeout %v ok=%v, want 0", d, ok)
	}
}

func TestIntervalReschedules(t *testing.T) {
	s := timer.NewSource()
	target := &countTarget{}
	s.Interval(10*time.Millisecond, target)

	now := time.Now()
	for i := 1; i <= 3; i++ {
		now = now.Add(11 * time.Millisecond)
		if n := s.Advance(now); n != 1 {
			t.Fatalf("tick %d fired %d timers", i, n)
		}
	}
	if target.fires.Load() != 3 {
		t.Fatalf("interval target notified %d times, want 3", target.fires.Load())
	}
	if s.Len() != 1 {
		t.Fatal("interval timer dropped from schedule")
	}
}

func TestCancel(t *testing.T) {
	s := timer.NewSource()
	target := &countTarget{}
	id := s.After(5*time.Millisecond, target)

	if !s.Cancel(id) {
		t.Fatal("cancel of a scheduled timer reported false")
	}
	if s.Cancel(id) {
		t.Fatal("second cancel reported true")
	}
	if n := s.Advance(time.Now().Add(time.Second)); n != 0 {
		t.Fatalf("cancelled timer fired (%d)", n)
	}
}

func TestEarliestDeadlineWakes(t *testing.T) {
	s := timer.NewSource()
	var woken atomic.Int64
	s.SetWaker(func() { woken.Add(1) })

	s.After(time.Hour, &countTarget{})
	if woken.Load() != 1 {
		t.Fatal("first timer did not wake the owner")
	}
	// A later deadline changes nothing for the current wait.
	s.After(2*time.Hour, &countTarget{})
	if woken.Load() != 1 {
		t.Fatal("non-earliest timer woke the owner")
	}
	// An earlier one must.
	s.After(time.Minute, &countTarget{})
	if woken.Load() != 2 {
		t.Fatal("new earliest timer did not wake the owner")
	}
}
