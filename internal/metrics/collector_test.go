package metrics

import (
	"context"
	"testing"
	"time"
)

func TestCollectorFlushAppliesSamples(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, 16, 8, time.Minute) // Long interval: only Flush wakes it

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	c.Record(Sample{Key: "a", Count: 1})
	c.Record(Sample{Key: "a", Count: 2, Duration: time.Second})
	c.Flush()

	snap := agg.Snapshot()
	if snap.Counters["a"] != 3 {
		t.Errorf("expected counter 3 after flush, got %d", snap.Counters["a"])
	}
	if snap.Durations["a"] != time.Second {
		t.Errorf("expected duration 1s, got %s", snap.Durations["a"])
	}
}

func TestCollectorSizeThreshold(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, 64, 4, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	for i := 0; i < 8; i++ {
		c.Record(Sample{Key: "batch", Count: 1})
	}

	// The size threshold should apply samples without an explicit Flush
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if agg.Snapshot().Counters["batch"] >= 4 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("size threshold never triggered, counter=%d", agg.Snapshot().Counters["batch"])
}

func TestCollectorDropsOldestWhenSaturated(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, 4, 64, time.Minute)

	// Not started: the queue fills up
	for i := 0; i < 10; i++ {
		c.Record(Sample{Key: "s", Count: 1})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	c.Flush()

	// Queue held at most 4 samples; the oldest were evicted
	if got := agg.Snapshot().Counters["s"]; got > 4 {
		t.Errorf("expected at most 4 surviving samples, got %d", got)
	}
}

func TestCollectorDrainsOnShutdown(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, 16, 64, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	c.Record(Sample{Key: "x", Count: 1})
	cancel()
	c.Wait()

	if got := agg.Snapshot().Counters["x"]; got != 1 {
		t.Errorf("expected pending sample applied on shutdown, got %d", got)
	}
}
