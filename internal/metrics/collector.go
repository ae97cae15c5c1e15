package metrics

import (
	"context"
	"time"
)

// Sample is one metrics observation queued for aggregation.
type Sample struct {
	Key      string
	Count    int64
	Duration time.Duration
}

// Collector batches samples through a bounded queue and applies them to an
// Aggregator from a dedicated goroutine. The consumer wakes on a size
// threshold, a periodic tick, or an explicit Flush. When the queue is
// saturated the oldest sample is evicted so recent data wins.
type Collector struct {
	agg       *Aggregator
	queue     chan Sample
	flushReq  chan chan struct{}
	done      chan struct{}
	batchSize int
	interval  time.Duration
}

// NewCollector creates a collector feeding the given aggregator.
// queueSize bounds the pending-sample queue (default 1024), batchSize is
// the flush threshold (default 64), interval the periodic flush (default
// 1s).
func NewCollector(agg *Aggregator, queueSize, batchSize int, interval time.Duration) *Collector {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Collector{
		agg:       agg,
		queue:     make(chan Sample, queueSize),
		flushReq:  make(chan chan struct{}),
		done:      make(chan struct{}),
		batchSize: batchSize,
		interval:  interval,
	}
}

// Record queues a sample without blocking. If the queue is full the
// oldest pending sample is dropped to make room.
func (c *Collector) Record(s Sample) {
	select {
	case c.queue <- s:
		return
	default:
	}

	// Queue saturated: evict oldest, then retry once. If another
	// producer wins the freed slot the sample is dropped.
	select {
	case <-c.queue:
	default:
	}
	select {
	case c.queue <- s:
	default:
	}
}

// Start launches the consumer goroutine. It runs until the context is
// cancelled, draining and applying whatever is pending on shutdown.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Flush applies all pending samples and blocks until done.
func (c *Collector) Flush() {
	ack := make(chan struct{})
	select {
	case c.flushReq <- ack:
		<-ack
	case <-c.done:
	}
}

// Wait blocks until the consumer goroutine has exited.
func (c *Collector) Wait() {
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	pending := 0

	for {
		select {
		case <-ctx.Done():
			c.drain()
			return
		case s := <-c.queue:
			c.apply(s)
			pending++
			if pending >= c.batchSize {
				c.drain()
				pending = 0
			}
		case <-ticker.C:
			c.drain()
			pending = 0
		case ack := <-c.flushReq:
			c.drain()
			pending = 0
			close(ack)
		}
	}
}

// drain applies every sample currently queued.
func (c *Collector) drain() {
	for {
		select {
		case s := <-c.queue:
			c.apply(s)
		default:
			return
		}
	}
}

func (c *Collector) apply(s Sample) {
	if s.Count != 0 {
		c.agg.Inc(s.Key, s.Count)
	}
	if s.Duration != 0 {
		c.agg.Observe(s.Key, s.Duration)
	}
}
