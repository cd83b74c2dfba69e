// File: wake/handle_test.go
// Author: momentics <momentics@gmail.com>
//
// Contract tests run against every wake backend available on the host so the
// counter-style and byte-stream variants prove identical observable behavior.

package wake_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/momentics/pollwake/api"
	"github.com/momentics/pollwake/wake"
)

func availableBackends(t *testing.T) map[string]wake.Backend {
	t.Helper()
	out := make(map[string]wake.Backend)
	for name, b := range map[string]wake.Backend{
		"eventfd": wake.BackendEventFD,
		"pipe":    wake.BackendPipe,
	} {
		h, err := wake.New(b)
		if err != nil {
			if errors.Is(err, api.ErrNotSupported) {
				continue
			}
			t.Fatalf("backend %s: %v", name, err)
		}
		h.Close()
		out[name] = b
	}
	if len(out) == 0 {
		t.Skip("no wake backend on this platform")
	}
	return out
}

func TestDrainIdempotent(t *testing.T) {
	for name, b := range availableBackends(t) {
		t.Run(name, func(t *testing.T) {
			h, err := wake.New(b)
			if err != nil {
				t.Fatal(err)
			}
			defer h.Close()

			if h.Drain() {
				t.Error("fresh handle reported pending")
			}
			h.Fire()
			if !h.Drain() {
				t.Error("fired handle reported nothing pending")
			}
			if h.Drain() {
				t.Error("second drain with no intervening fire reported pending")
			}
		})
	}
}

func TestFireCoalescing(t *testing.T) {
	for name, b := range availableBackends(t) {
		t.Run(name, func(t *testing.T) {
			h, err := wake.New(b)
			if err != nil {
				t.Fatal(err)
			}
			defer h.Close()

			const fires = 64
			var wg sync.WaitGroup
			wg.Add(fires)
			for i := 0; i < fires; i++ {
				go func() {
					defer wg.Done()
					h.Fire()
				}()
			}
			wg.Wait()

			if !h.Drain() {
				t.Fatal("concurrent fires were not observed")
			}
			if h.Drain() {
				t.Error("fires reported more than once")
			}
		})
	}
}

func TestIsSetPeek(t *testing.T) {
	for name, b := range availableBackends(t) {
		t.Run(name, func(t *testing.T) {
			h, err := wake.New(b)
			if err != nil {
				t.Fatal(err)
			}
			defer h.Close()

			if h.IsSet() {
				t.Error("fresh handle reads as set")
			}
			h.Fire()
			if !h.IsSet() {
				t.Error("fired handle reads as clear")
			}
			// Peeking consumes nothing.
			if !h.IsSet() {
				t.Error("second peek reads as clear")
			}
			h.Drain()
			if h.IsSet() {
				t.Error("drained handle still reads as set")
			}
		})
	}
}

func TestFireAfterClose(t *testing.T) {
	for name, b := range availableBackends(t) {
		t.Run(name, func(t *testing.T) {
			h, err := wake.New(b)
			if err != nil {
				t.Fatal(err)
			}
			if err := h.Close(); err != nil {
				t.Fatal(err)
			}
			// Must neither panic nor block.
			h.Fire()
			if err := h.Close(); err != nil {
				t.Errorf("double close: %v", err)
			}
		})
	}
}

func TestFireCloseRace(t *testing.T) {
	for name, b := range availableBackends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				h, err := wake.New(b)
				if err != nil {
					t.Fatal(err)
				}
				var wg sync.WaitGroup
				wg.Add(2)
				go func() {
					defer wg.Done()
					h.Fire()
				}()
				go func() {
					defer wg.Done()
					h.Close()
				}()
				wg.Wait()
			}
		})
	}
}
