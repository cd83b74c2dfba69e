// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/reactor"
)

// FakeReactor is an in-memory Reactor for tests. Fired tokens are recorded
// directly instead of going through a kernel object; RejectRegister makes the
// next Register call fail.
type FakeReactor struct {
	mu             sync.Mutex
	registered     map[uintptr]api.Token
	ready          []api.Token
	RejectRegister bool
	WaitErr        error
}

// NewFakeReactor returns an empty fake engine.
func NewFakeReactor() *FakeReactor {
	return &FakeReactor{registered: make(map[uintptr]api.Token)}
}

func (f *FakeReactor) Register(fd uintptr, token api.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RejectRegister {
		return fmt.Errorf("fake: registration limit reached")
	}
	f.registered[fd] = token
	return nil
}

func (f *FakeReactor) Deregister(fd uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registered, fd)
	return nil
}

// MarkReady queues a token for the next Wait call.
func (f *FakeReactor) MarkReady(token api.Token) {
	f.mu.Lock()
	f.ready = append(f.ready, token)
	f.mu.Unlock()
}

// Registered reports whether any source is registered under token.
func (f *FakeReactor) Registered(token api.Token) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.registered {
		if t == token {
			return true
		}
	}
	return false
}

func (f *FakeReactor) Wait(events []reactor.Event, timeout time.Duration) (int, error) {
	f.mu.Lock()
	if f.WaitErr != nil {
		err := f.WaitErr
		f.mu.Unlock()
		return 0, err
	}
	n := 0
	for n < len(events) && n < len(f.ready) {
		events[n] = reactor.Event{Token: f.ready[n]}
		n++
	}
	f.ready = f.ready[n:]
	f.mu.Unlock()
	return n, nil
}

func (f *FakeReactor) Close() error { return nil }
