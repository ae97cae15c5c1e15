package metrics

import (
	"context"

	"github.com/planrun/planrun/internal/events"
)

// Metric keys recorded by the event observer.
const (
	KeyTasksStarted   = "tasks.started"
	KeyTasksCompleted = "tasks.completed"
	KeyTasksFailed    = "tasks.failed"
	KeyTasksCancelled = "tasks.cancelled"
	KeyLevels         = "levels.completed"
)

// ObserveBus subscribes the collector to every topic on the bus and
// translates lifecycle events into samples. It returns once the context
// is cancelled or the bus closes. Run it in its own goroutine; the bus
// publishes without blocking, so a slow collector only costs dropped
// events, never a stalled scheduler.
func ObserveBus(ctx context.Context, bus *events.Bus, c *Collector) {
	ch := bus.SubscribeAll(0)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.Record(toSample(ev))
		}
	}
}

func toSample(ev events.Event) Sample {
	switch e := ev.(type) {
	case events.TaskStartedEvent:
		return Sample{Key: KeyTasksStarted, Count: 1}
	case events.TaskCompletedEvent:
		return Sample{Key: KeyTasksCompleted, Count: 1, Duration: e.Duration}
	case events.TaskFailedEvent:
		return Sample{Key: KeyTasksFailed, Count: 1, Duration: e.Duration}
	case events.TaskCancelledEvent:
		return Sample{Key: KeyTasksCancelled, Count: 1}
	case events.LevelCompletedEvent:
		return Sample{Key: KeyLevels, Count: 1}
	}
	return Sample{}
}
