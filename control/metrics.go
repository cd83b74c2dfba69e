// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for wake and dispatch counters. Exposes counters
// in a thread-safe map with dynamic registration and JSON snapshot export.

package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// MetricsRegistry holds monotonically increasing counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
	}
}

// Inc adds delta to a counter, creating it on first use.
func (mr *MetricsRegistry) Inc(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns one counter's current value.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}

// SnapshotJSON serializes the current counters plus the last update time.
func (mr *MetricsRegistry) SnapshotJSON() ([]byte, error) {
	mr.mu.RLock()
	doc := struct {
		Updated  time.Time        `json:"updated"`
		Counters map[string]int64 `json:"counters"`
	}{
		Updated:  mr.updated,
		Counters: mr.counters,
	}
	data, err := sonnet.Marshal(doc)
	mr.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("control: metrics export: %w", err)
	}
	return data, nil
}
