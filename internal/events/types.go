package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	TaskID() string
}

// Topic constants
const (
	TopicTask  = "task"
	TopicLevel = "level"
	TopicRun   = "run"
)

// Event type constants
const (
	EventTypeTaskStarted    = "task.started"
	EventTypeTaskCompleted  = "task.completed"
	EventTypeTaskFailed     = "task.failed"
	EventTypeTaskCancelled  = "task.cancelled"
	EventTypeLevelStarted   = "level.started"
	EventTypeLevelCompleted = "level.completed"
	EventTypeRunCompleted   = "run.completed"
)

// TaskStartedEvent is published when a task begins execution.
type TaskStartedEvent struct {
	ID        string
	Level     int
	Timestamp time.Time
}

func (e TaskStartedEvent) EventType() string { return EventTypeTaskStarted }
func (e TaskStartedEvent) TaskID() string    { return e.ID }

// TaskCompletedEvent is published when a task completes successfully.
type TaskCompletedEvent struct {
	ID        string
	Result    string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskCompletedEvent) EventType() string { return EventTypeTaskCompleted }
func (e TaskCompletedEvent) TaskID() string    { return e.ID }

// TaskFailedEvent is published when a task's executor returns an error.
type TaskFailedEvent struct {
	ID        string
	Message   string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskFailedEvent) EventType() string { return EventTypeTaskFailed }
func (e TaskFailedEvent) TaskID() string    { return e.ID }

// TaskCancelledEvent is published when a pending task is cancelled because
// an upstream dependency failed.
type TaskCancelledEvent struct {
	ID         string
	UpstreamID string // The failed ancestor that triggered cancellation
	Timestamp  time.Time
}

func (e TaskCancelledEvent) EventType() string { return EventTypeTaskCancelled }
func (e TaskCancelledEvent) TaskID() string    { return e.ID }

// LevelStartedEvent is published when a level's batch is dispatched.
type LevelStartedEvent struct {
	Level     int
	TaskCount int
	Timestamp time.Time
}

func (e LevelStartedEvent) EventType() string { return EventTypeLevelStarted }
func (e LevelStartedEvent) TaskID() string    { return "" }

// LevelCompletedEvent is published when a level's batch has fully joined.
type LevelCompletedEvent struct {
	Level     int
	Completed int
	Failed    int
	Timestamp time.Time
}

func (e LevelCompletedEvent) EventType() string { return EventTypeLevelCompleted }
func (e LevelCompletedEvent) TaskID() string    { return "" }

// RunCompletedEvent is published once per run, after aggregation.
type RunCompletedEvent struct {
	RunID         string
	Completed     int
	Failed        int
	TotalDuration time.Duration
	SpeedupFactor float64
	Timestamp     time.Time
}

func (e RunCompletedEvent) EventType() string { return EventTypeRunCompleted }
func (e RunCompletedEvent) TaskID() string    { return "" }
