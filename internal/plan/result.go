package plan

import "time"

// Result aggregates the outcome of one plan execution.
//
// Failed holds every task with a non-success terminal status: tasks that
// failed in the executor, tasks skipped by the stop-on-error policy, and
// tasks cancelled because an ancestor failed. The Status field on each
// task preserves the distinction.
type Result struct {
	RunID         string
	Plan          *Plan
	Completed     []*Task
	Failed        []*Task
	TotalDuration time.Duration
	SpeedupFactor float64 // Sequential-time estimate divided by wall clock; 1.0 when wall clock is zero
}

// SuccessRate returns completed/(completed+failed), or 0 when no task was
// accounted for.
func (r *Result) SuccessRate() float64 {
	total := len(r.Completed) + len(r.Failed)
	if total == 0 {
		return 0
	}
	return float64(len(r.Completed)) / float64(total)
}

// AllSucceeded reports whether no task failed or was cancelled.
func (r *Result) AllSucceeded() bool {
	return len(r.Failed) == 0
}
