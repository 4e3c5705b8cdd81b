package observability

import (
	"sync"
	"time"
)

// RouteStats accumulates counters for one path/method pair.
type RouteStats struct {
	Requests     int64         `json:"requests"`
	Errors       int64         `json:"errors"`
	TotalLatency time.Duration `json:"total_latency_ns"`
}

// Metrics keeps in-memory request and error counters keyed by route.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*RouteStats
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{routes: make(map[string]*RouteStats)}
}

// RecordRequest accumulates a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.statsFor(path, method)
	stats.Requests++
	stats.TotalLatency += duration
}

// RecordError counts a request that ended in an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsFor(path, method).Errors++
}

// Snapshot returns a copy of the accumulated counters.
func (m *Metrics) Snapshot() map[string]RouteStats {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]RouteStats, len(m.routes))
	for key, stats := range m.routes {
		out[key] = *stats
	}
	return out
}

func (m *Metrics) statsFor(path, method string) *RouteStats {
	key := method + " " + path
	stats, ok := m.routes[key]
	if !ok {
		stats = &RouteStats{}
		m.routes[key] = stats
	}
	return stats
}
