package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planrun/planrun/internal/plan"
)

// TaskExecutor turns one task into a string result or an error. It is
// caller-supplied and invoked exactly once per task per run; side effects
// are entirely its responsibility.
type TaskExecutor func(ctx context.Context, task *plan.Task) (string, error)

// LevelOutcome partitions one level's tasks by how their execution ended.
type LevelOutcome struct {
	Completed []*plan.Task
	Failed    []*plan.Task
}

// LevelExecutor runs the tasks of a single level concurrently under a
// concurrency cap.
type LevelExecutor struct {
	execute       TaskExecutor
	maxConcurrent int
}

// NewLevelExecutor creates a level executor. A non-positive limit falls
// back to 5.
func NewLevelExecutor(execute TaskExecutor, maxConcurrent int) *LevelExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &LevelExecutor{execute: execute, maxConcurrent: maxConcurrent}
}

// Run executes every task in the level with at most maxConcurrent in
// flight, mutating each task in place (status, result or error,
// timestamps) as the durable record of what happened. Every task in the
// level is attempted even when siblings fail; failures only matter to
// later levels. Run returns once the whole batch has joined.
func (e *LevelExecutor) Run(ctx context.Context, level Level) LevelOutcome {
	var (
		mu      sync.Mutex
		outcome LevelOutcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for _, task := range level {
		t := task
		g.Go(func() error {
			e.runTask(gctx, t)

			mu.Lock()
			if t.Status == plan.TaskCompleted {
				outcome.Completed = append(outcome.Completed, t)
			} else {
				outcome.Failed = append(outcome.Failed, t)
			}
			mu.Unlock()

			return nil // Outcomes live on the tasks, never abort the group
		})
	}

	_ = g.Wait()
	return outcome
}

// runTask drives one task through its lifecycle. Each task is written by
// exactly one goroutine, so no lock is needed on the task itself.
func (e *LevelExecutor) runTask(ctx context.Context, t *plan.Task) {
	started := time.Now()
	t.Status = plan.TaskInProgress
	t.StartedAt = &started

	result, err := e.execute(ctx, t)

	finished := time.Now()
	t.CompletedAt = &finished

	if err != nil {
		t.Status = plan.TaskFailed
		t.Error = err.Error()
		return
	}

	t.Status = plan.TaskCompleted
	t.Result = result
}
