// File: timer/timer.go
// Author: momentics <momentics@gmail.com>
//
// Deadline source integrating timed wake-ups with the polling loop. The heap
// produces the next-deadline duration used as the engine's wait timeout; when
// a deadline passes, Advance fires the ping attached to the timer. Timeouts
// are a property of the wait call, never of the ping itself.

package timer

import (
	"container/heap"
	"sync"
	"time"
)

// ID names one scheduled timer within a Source.
type ID uint64

// Target is anything a timer can fire: a Ping, a Notifier, or any other
// cross-thread-safe notify endpoint.
type Target interface {
	Notify()
}

type entry struct {
	deadline time.Time
	interval time.Duration // zero for one-shot timers
	id       ID
	target   Target
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *entryHeap) Push(x any)        { e := x.(*entry); e.index = len(*h); *h = append(*h, e) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Source is a deadline-ordered collection of timers.
type Source struct {
	mu    sync.Mutex
	heap  entryHeap
	byID  map[ID]*entry
	seq   ID
	waker func()
}

// NewSource creates an empty deadline source.
func NewSource() *Source {
	return &Source{byID: make(map[ID]*entry)}
}

// SetWaker installs a hook invoked whenever a new earliest deadline appears,
// so an owner blocked in an open-ended wait recomputes its timeout. The loop
// wires its control ping here.
func (s *Source) SetWaker(fn func()) {
	s.mu.Lock()
	s.waker = fn
	s.mu.Unlock()
}

// After schedules target to be notified once, d from now.
func (s *Source) After(d time.Duration, target Target) ID {
	return s.schedule(time.Now().Add(d), 0, target)
}

// At schedules target to be notified once at the given instant.
func (s *Source) At(t time.Time, target Target) ID {
	return s.schedule(t, 0, target)
}

// Interval schedules target to be notified every d, starting d from now.
func (s *Source) Interval(d time.Duration, target Target) ID {
	return s.schedule(time.Now().Add(d), d, target)
}

func (s *Source) schedule(deadline time.Time, interval time.Duration, target Target) ID {
	s.mu.Lock()
	s.seq++
	e := &entry{deadline: deadline, interval: interval, id: s.seq, target: target}
	heap.Push(&s.heap, e)
	s.byID[e.id] = e
	wake := s.waker != nil && s.heap[0] == e
	fn := s.waker
	s.mu.Unlock()
	if wake {
		fn()
	}
	return e.id
}

// Cancel removes a pending timer. Reports whether it was still scheduled.
func (s *Source) Cancel(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.heap, e.index)
	delete(s.byID, id)
	return true
}

// NextTimeout returns how long the engine may sleep before the earliest
// deadline. ok is false when nothing is scheduled. An already-passed deadline
// yields zero, forcing an immediate wait return.
func (s *Source) NextTimeout() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heap) == 0 {
		return 0, false
	}
	d := time.Until(s.heap[0].deadline)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Advance fires every timer whose deadline is at or before now and returns
// how many fired. Interval timers are rescheduled; one-shot timers are
// removed. Called by the owner after each wait cycle.
func (s *Source) Advance(now time.Time) int {
	s.mu.Lock()
	var fired []Target
	for len(s.heap) > 0 && !s.heap[0].deadline.After(now) {
		e := s.heap[0]
		fired = append(fired, e.target)
		if e.interval > 0 {
			e.deadline = e.deadline.Add(e.interval)
			if !e.deadline.After(now) {
				// Missed intervals collapse into the next future tick.
				e.deadline = now.Add(e.interval)
			}
			heap.Fix(&s.heap, 0)
		} else {
			heap.Pop(&s.heap)
			delete(s.byID, e.id)
		}
	}
	s.mu.Unlock()

	// Notify outside the lock; fire paths never take user-space locks shared
	// with the owner.
	for _, p := range fired {
		p.Notify()
	}
	return len(fired)
}

// Len returns the number of scheduled timers.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}
