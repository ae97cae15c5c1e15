package events

import (
	"sync"
)

// defaultBufSize is used when a subscriber does not specify a buffer.
const defaultBufSize = 256

// Bus is a channel-based pub-sub event bus. Publishing never blocks: a
// subscriber whose buffer is full simply misses the event. Observers
// (metrics collectors, progress printers) attach as side-listeners and
// cannot stall the scheduler.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event // topic -> subscriber channels
	allSubs []chan Event            // channels subscribed to every topic
	closed  bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe registers a subscriber for one topic and returns its receive
// channel. bufSize <= 0 selects the default buffer.
func (b *Bus) Subscribe(topic string, bufSize int) <-chan Event {
	ch := b.newSub(bufSize)
	if ch == nil {
		closed := make(chan Event)
		close(closed)
		return closed
	}

	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch
}

// SubscribeAll registers a subscriber that receives events from every
// topic on a single channel.
func (b *Bus) SubscribeAll(bufSize int) <-chan Event {
	ch := b.newSub(bufSize)
	if ch == nil {
		closed := make(chan Event)
		close(closed)
		return closed
	}

	b.allSubs = append(b.allSubs, ch)
	b.mu.Unlock()
	return ch
}

// newSub allocates a subscriber channel. On success the bus mutex is held
// and the caller must register the channel and unlock; nil means the bus
// is already closed.
func (b *Bus) newSub(bufSize int) chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	return make(chan Event, bufSize)
}

// Publish delivers an event to the topic's subscribers and to every
// SubscribeAll channel. Full channels are skipped.
func (b *Bus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range b.allSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes every subscriber channel. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
}
