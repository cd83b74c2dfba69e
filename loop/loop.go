// File: loop/loop.go
// Author: momentics <momentics@gmail.com>
//
// Loop is the single-threaded owner side of the wake architecture: one
// goroutine drives the reactor's wait call and dispatches readiness to
// registered sources. The fire side (Ping.Notify) is unbounded-multithreaded
// and never takes the loop's locks; all cross-thread synchronization lives in
// the wake handles themselves. Stop wakes the loop through a dedicated
// control ping.

package loop

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/control"
	"github.com/momentics/pollwake/ping"
	"github.com/momentics/pollwake/reactor"
	"github.com/momentics/pollwake/timer"
)

// Loop drives a reactor and dispatches ready tokens to sources.
type Loop struct {
	engine  reactor.Reactor
	ctl     *ping.Ping
	timers  *timer.Source
	metrics *control.MetricsRegistry

	mu      sync.Mutex
	sources map[api.Token]api.Source

	batch    []reactor.Event
	quitCh   chan struct{}
	doneCh   chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
}

// Option configures a Loop.
type Option func(*Loop)

// WithTimers attaches a deadline source; its next deadline becomes the wait
// timeout and expired timers fire before the next wait.
func WithTimers(t *timer.Source) Option {
	return func(l *Loop) { l.timers = t }
}

// WithMetrics attaches a metrics registry for wake and dispatch counters.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(l *Loop) { l.metrics = m }
}

// WithBatchSize sets the maximum events handled per wait cycle.
func WithBatchSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.batch = make([]reactor.Event, n)
		}
	}
}

// New builds a loop over the given engine. The loop owns a control ping used
// for shutdown wake-ups; it is registered like any other source.
func New(engine reactor.Reactor, opts ...Option) (*Loop, error) {
	ctl, err := ping.New(engine)
	if err != nil {
		return nil, fmt.Errorf("loop: control ping: %w", err)
	}
	l := &Loop{
		engine:  engine,
		ctl:     ctl,
		sources: make(map[api.Token]api.Source),
		batch:   make([]reactor.Event, 128),
		quitCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timers != nil {
		// A timer scheduled while the loop is parked in an open-ended wait
		// must shorten that wait.
		l.timers.SetWaker(l.ctl.Notify)
	}
	return l, nil
}

// AddSource routes readiness for the source's token to it. Safe to call from
// any goroutine; registration with the engine itself already happened when
// the source's ping was constructed.
func (l *Loop) AddSource(s api.Source) {
	l.mu.Lock()
	l.sources[s.Token()] = s
	l.mu.Unlock()
}

// RemoveSource stops routing the token. The caller remains responsible for
// closing the source's ping.
func (l *Loop) RemoveSource(s api.Source) {
	l.mu.Lock()
	delete(l.sources, s.Token())
	l.mu.Unlock()
}

// Run blocks, waiting on the reactor and dispatching events, until Stop is
// called or the engine fails. Engine-level wait failures are fatal to the
// loop and returned to the caller.
func (l *Loop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return nil // already running
	}
	defer func() {
		close(l.doneCh)
		l.running.Store(false)
	}()

	for {
		timeout := time.Duration(-1)
		if l.timers != nil {
			if d, ok := l.timers.NextTimeout(); ok {
				timeout = d
			}
		}

		n, err := l.engine.Wait(l.batch, timeout)
		if err != nil {
			log.Printf("[loop] wait failed: %v", err)
			return api.NewError(api.ErrCodeWait, "loop: engine wait failed").
				WithContext("cause", err.Error())
		}

		for i := 0; i < n; i++ {
			tok := l.batch[i].Token
			if tok == l.ctl.Token() {
				l.ctl.Reset()
				continue
			}
			l.mu.Lock()
			s := l.sources[tok]
			l.mu.Unlock()
			if s == nil {
				// Token raced with RemoveSource; nothing to dispatch.
				l.count("loop.dropped_events")
				continue
			}
			s.OnReady()
			l.count("loop.dispatched_events")
		}

		if l.timers != nil {
			expired := l.timers.Advance(time.Now())
			if expired > 0 {
				l.countN("loop.timer_expiries", expired)
			}
		}

		select {
		case <-l.quitCh:
			return nil
		default:
		}
	}
}

// Stop signals Run to exit and waits for it to drain. Safe to call from any
// goroutine and idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quitCh) })
	l.ctl.Notify()
	if l.running.Load() {
		<-l.doneCh
	}
}

// Close releases the control ping. Call after Run has returned.
func (l *Loop) Close() error {
	return l.ctl.Close()
}

func (l *Loop) count(key string) {
	if l.metrics != nil {
		l.metrics.Inc(key, 1)
	}
}

func (l *Loop) countN(key string, n int) {
	if l.metrics != nil {
		l.metrics.Inc(key, int64(n))
	}
}
