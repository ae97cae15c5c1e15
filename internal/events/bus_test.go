package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe(TopicTask, 10)

	bus.Publish(TopicTask, TaskStartedEvent{ID: "task-1", Level: 0, Timestamp: time.Now()})

	select {
	case received := <-ch:
		if received.TaskID() != "task-1" {
			t.Errorf("expected task ID 'task-1', got %q", received.TaskID())
		}
		if received.EventType() != EventTypeTaskStarted {
			t.Errorf("expected event type %q, got %q", EventTypeTaskStarted, received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

func TestTopicIsolation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	taskCh := bus.Subscribe(TopicTask, 10)
	levelCh := bus.Subscribe(TopicLevel, 10)

	bus.Publish(TopicLevel, LevelStartedEvent{Level: 0, TaskCount: 3, Timestamp: time.Now()})

	select {
	case <-levelCh:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("level subscriber did not receive its event")
	}

	select {
	case ev := <-taskCh:
		t.Fatalf("task subscriber received an event from another topic: %v", ev.EventType())
	case <-time.After(20 * time.Millisecond):
		// Expected: nothing delivered
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.SubscribeAll(10)

	bus.Publish(TopicTask, TaskCompletedEvent{ID: "t1", Timestamp: time.Now()})
	bus.Publish(TopicRun, RunCompletedEvent{RunID: "r1", Timestamp: time.Now()})

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			got[ev.EventType()] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for events")
		}
	}

	if !got[EventTypeTaskCompleted] || !got[EventTypeRunCompleted] {
		t.Errorf("expected events from both topics, got %v", got)
	}
}

func TestNonBlockingPublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.Subscribe(TopicTask, 1) // Tiny buffer, never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(TopicTask, TaskStartedEvent{ID: "flood", Timestamp: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
		// Publisher never blocked
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(TopicTask, 1)

	bus.Close()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("expected subscriber channel to be closed")
	}

	// Publishing after close must not panic
	bus.Publish(TopicTask, TaskStartedEvent{ID: "late"})

	late := bus.Subscribe(TopicTask, 1)
	if _, ok := <-late; ok {
		t.Error("expected post-close subscription to be closed immediately")
	}
}
