package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestAggregatorRecordAndSnapshot(t *testing.T) {
	agg := NewAggregator()

	agg.Inc("tasks.completed", 2)
	agg.Inc("tasks.completed", 1)
	agg.Observe("tasks.completed", 3*time.Second)

	snap := agg.Snapshot()
	if snap.Counters["tasks.completed"] != 3 {
		t.Errorf("expected counter 3, got %d", snap.Counters["tasks.completed"])
	}
	if snap.Durations["tasks.completed"] != 3*time.Second {
		t.Errorf("expected duration 3s, got %s", snap.Durations["tasks.completed"])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := NewAggregator()
	agg.Inc("k", 1)

	snap := agg.Snapshot()
	snap.Counters["k"] = 100

	if got := agg.Snapshot().Counters["k"]; got != 1 {
		t.Errorf("mutating a snapshot leaked into the aggregator: %d", got)
	}
}

func TestAggregatorConcurrentWriters(t *testing.T) {
	agg := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				agg.Inc("hits", 1)
			}
		}()
	}
	wg.Wait()

	if got := agg.Snapshot().Counters["hits"]; got != 1000 {
		t.Errorf("expected 1000 hits, got %d", got)
	}
}
