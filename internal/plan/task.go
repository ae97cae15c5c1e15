package plan

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus int

const (
	TaskPending    TaskStatus = iota // Waiting for dependencies
	TaskInProgress                   // Currently executing
	TaskCompleted                    // Finished successfully
	TaskFailed                       // Finished with error, or skipped by stop-on-error
	TaskCancelled                    // Never started because an ancestor failed
)

// String returns the lowercase wire name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskInProgress:
		return "in_progress"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the status is final. No transition leaves a
// terminal state.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// TaskKind is an explicit discriminator for how a task should be presented
// and executed. It is assigned once when the task enters a plan, never
// re-derived from id patterns downstream.
type TaskKind string

const (
	KindGeneric TaskKind = "generic" // No command attached, simulated by executors
	KindCommand TaskKind = "command" // Carries a shell command payload
)

// DefaultEstimate is assumed for tasks that declare no estimated duration.
const DefaultEstimate = 300 * time.Second

// Task represents one unit of work in a plan.
//
// Scheduling only reads ID and DependsOn; everything else is either
// advisory metadata (TargetFiles, Priority, Command) or mutable execution
// state written in place as the task runs (Status, Result, Error,
// StartedAt, CompletedAt).
type Task struct {
	ID          string        // Unique within the owning plan
	Description string        // Human-readable summary
	TargetFiles []string      // Artifacts the task intends to write (advisory)
	DependsOn   []string      // Task IDs this task depends on
	Status      TaskStatus
	Result      string        // Output payload (populated on completion)
	Error       string        // Failure or cancellation message
	StartedAt   *time.Time
	CompletedAt *time.Time
	Estimate    time.Duration // Estimated duration, DefaultEstimate if unset
	Priority    int           // Advisory, lower = earlier; not a scheduling input
	Kind        TaskKind
	Command     string        // Optional shell command for command executors
}

// Duration returns the measured wall time of the task if both timestamps
// were stamped, falling back to the estimate otherwise.
func (t *Task) Duration() time.Duration {
	if t.StartedAt != nil && t.CompletedAt != nil {
		return t.CompletedAt.Sub(*t.StartedAt)
	}
	return t.Estimate
}
