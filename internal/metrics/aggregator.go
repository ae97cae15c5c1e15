package metrics

import (
	"sync"
	"time"
)

// Aggregator accumulates keyed counters and duration totals behind a
// single lock. Callers only get atomic Record operations and copied
// snapshots; the underlying maps never escape.
type Aggregator struct {
	mu        sync.Mutex
	counters  map[string]int64
	durations map[string]time.Duration
}

// Snapshot is a point-in-time copy of the aggregated values.
type Snapshot struct {
	Counters  map[string]int64
	Durations map[string]time.Duration
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		counters:  make(map[string]int64),
		durations: make(map[string]time.Duration),
	}
}

// Inc adds delta to the named counter.
func (a *Aggregator) Inc(key string, delta int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[key] += delta
}

// Observe adds a duration sample to the named total.
func (a *Aggregator) Observe(key string, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.durations[key] += d
}

// Snapshot returns a copy of all aggregated values.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Counters:  make(map[string]int64, len(a.counters)),
		Durations: make(map[string]time.Duration, len(a.durations)),
	}
	for k, v := range a.counters {
		snap.Counters[k] = v
	}
	for k, v := range a.durations {
		snap.Durations[k] = v
	}
	return snap
}
