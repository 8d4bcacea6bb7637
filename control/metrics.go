// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for handshake monitoring.
// Exposes counters and gauges in a thread-safe map with dynamic registration.

package control

import (
	"sync"
	"time"
)

// Well-known metric keys.
const (
	MetricHandshakeOK       = "handshake.ok"
	MetricHandshakeFailed   = "handshake.failed"
	MetricLeftoverBytes     = "handshake.leftover_bytes"
	MetricBytesFed          = "handshake.bytes_fed"
	MetricLastStatus        = "handshake.last_status"
	MetricHandshakeDuration = "handshake.last_duration"
)

// FailureKey returns the counter key for a failure of the given kind.
func FailureKey(kind string) string {
	return MetricHandshakeFailed + "." + kind
}

// MetricsRegistry holds counters and last-value gauges.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	metrics  map[string]any
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
		metrics:  make(map[string]any),
	}
}

// Set sets or updates a gauge.
func (mr *MetricsRegistry) Set(key string, value any) {
	if mr == nil {
		return
	}
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments a counter by delta and returns the new value.
func (mr *MetricsRegistry) Add(key string, delta int64) int64 {
	if mr == nil {
		return 0
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	return mr.counters[key]
}

// Counter returns the current value of a counter.
func (mr *MetricsRegistry) Counter(key string) int64 {
	if mr == nil {
		return 0
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// Updated returns the time of the last change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns counters and gauges in one map.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics)+len(mr.counters))
	for k, v := range mr.metrics {
		out[k] = v
	}
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}
