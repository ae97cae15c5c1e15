package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/planrun/planrun/internal/events"
	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/scheduler"
)

// Config controls one runner.
type Config struct {
	MaxConcurrentTasks int  // Max tasks in flight within a level (default 5)
	ContinueOnError    bool // Keep processing later levels after a failure
}

// Runner drives a plan through validation, layering, and level-by-level
// execution, and assembles the final Result.
type Runner struct {
	cfg     Config
	execute scheduler.TaskExecutor
	bus     *events.Bus // Optional; nil disables event publishing
}

// NewRunner creates a runner around a caller-supplied task executor.
func NewRunner(cfg Config, execute scheduler.TaskExecutor) *Runner {
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = 5
	}
	return &Runner{cfg: cfg, execute: execute}
}

// SetBus attaches an event bus for lifecycle events. Must be called
// before Run.
func (r *Runner) SetBus(bus *events.Bus) {
	r.bus = bus
}

// Run executes the plan and returns its Result.
//
// Dependency-validation and cycle errors are fatal: they are returned
// before any task runs and there is no partial Result. Per-task executor
// errors never escape; they are captured on the task and reflected in the
// Result's failed list.
func (r *Runner) Run(ctx context.Context, p *plan.Plan) (*plan.Result, error) {
	graph, err := scheduler.BuildGraph(p)
	if err != nil {
		return nil, err
	}
	if cycle := scheduler.DetectCycle(graph); cycle != nil {
		return nil, &scheduler.CircularDependencyError{Path: cycle}
	}

	levels, err := scheduler.ComputeLevels(graph)
	if err != nil {
		return nil, err
	}

	result := &plan.Result{
		RunID: uuid.NewString(),
		Plan:  p,
	}

	started := time.Now()

	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.publishLevelStarted(i, len(level))

		exec := scheduler.NewLevelExecutor(r.instrumented(i), r.cfg.MaxConcurrentTasks)
		outcome := exec.Run(ctx, level)

		result.Completed = append(result.Completed, outcome.Completed...)
		result.Failed = append(result.Failed, outcome.Failed...)

		r.publishLevelCompleted(i, outcome)

		// Targeted propagation: cancel every pending descendant of each
		// failure. Bookkeeping only runs here, after the batch has fully
		// joined, so no extra locking is needed.
		for _, failed := range outcome.Failed {
			result.Failed = append(result.Failed, r.cancelDependents(graph, failed)...)
		}

		if len(outcome.Failed) > 0 && !r.cfg.ContinueOnError {
			// Coarse short-circuit: everything in strictly later levels
			// that is still pending is marked failed, and we stop.
			result.Failed = append(result.Failed, r.skipRemaining(levels[i+1:])...)
			log.Printf("WARNING: stopping after level %d: %d task(s) failed", i, len(outcome.Failed))
			break
		}
	}

	result.TotalDuration = time.Since(started)
	result.SpeedupFactor = speedupFactor(p, result.TotalDuration)

	r.publishRunCompleted(result)

	return result, nil
}

// Rollback is a placeholder for compensating partially-applied side
// effects of a failed run. Side effects belong to the task executor, so
// there is nothing generic to undo here; it exists so callers have a
// stable hook.
func (r *Runner) Rollback(ctx context.Context, result *plan.Result) error {
	return nil
}

// instrumented wraps the configured executor so a started event fires at
// the moment a task is actually dispatched within the level.
func (r *Runner) instrumented(level int) scheduler.TaskExecutor {
	if r.bus == nil {
		return r.execute
	}
	return func(ctx context.Context, t *plan.Task) (string, error) {
		r.bus.Publish(events.TopicTask, events.TaskStartedEvent{
			ID:        t.ID,
			Level:     level,
			Timestamp: time.Now(),
		})
		return r.execute(ctx, t)
	}
}

// cancelDependents walks the dependency-inverse relation from a failed
// task and cancels every descendant that has not started yet. Terminal
// statuses are never overwritten, which also makes cancellation
// idempotent when a task is reachable from several failed ancestors.
func (r *Runner) cancelDependents(graph *scheduler.Graph, failed *plan.Task) []*plan.Task {
	var cancelled []*plan.Task

	for _, id := range graph.TransitiveDependents(failed.ID) {
		t := graph.Task(id)
		if t.Status != plan.TaskPending {
			continue
		}

		t.Status = plan.TaskCancelled
		t.Error = fmt.Sprintf("cancelled due to failure of dependency %q", failed.ID)
		cancelled = append(cancelled, t)

		if r.bus != nil {
			r.bus.Publish(events.TopicTask, events.TaskCancelledEvent{
				ID:         t.ID,
				UpstreamID: failed.ID,
				Timestamp:  time.Now(),
			})
		}
	}

	return cancelled
}

// skipRemaining marks every still-pending task in the given levels as
// failed. Used by the stop-on-error policy; coarser than dependent
// cancellation, which has already claimed the descendants of the actual
// failures.
func (r *Runner) skipRemaining(levels []scheduler.Level) []*plan.Task {
	var skipped []*plan.Task

	for _, level := range levels {
		for _, t := range level {
			if t.Status != plan.TaskPending {
				continue
			}
			t.Status = plan.TaskFailed
			t.Error = "skipped due to previous failures"
			skipped = append(skipped, t)
		}
	}

	return skipped
}

// speedupFactor estimates how much the run benefited from concurrency:
// the time a sequential run would have taken divided by the observed wall
// clock. Each attempted task contributes its measured duration when both
// timestamps were stamped, its estimate otherwise; tasks that never
// started contribute nothing. Returns 1.0 when the wall clock measures as
// zero or negative.
func speedupFactor(p *plan.Plan, wallClock time.Duration) float64 {
	if wallClock <= 0 {
		return 1.0
	}

	var sequential time.Duration
	for _, t := range p.Tasks {
		if t.StartedAt == nil {
			continue
		}
		sequential += t.Duration()
	}

	return float64(sequential) / float64(wallClock)
}

func (r *Runner) publishLevelStarted(level, taskCount int) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.TopicLevel, events.LevelStartedEvent{
		Level:     level,
		TaskCount: taskCount,
		Timestamp: time.Now(),
	})
}

func (r *Runner) publishLevelCompleted(level int, outcome scheduler.LevelOutcome) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.TopicLevel, events.LevelCompletedEvent{
		Level:     level,
		Completed: len(outcome.Completed),
		Failed:    len(outcome.Failed),
		Timestamp: time.Now(),
	})
	for _, t := range outcome.Completed {
		r.bus.Publish(events.TopicTask, events.TaskCompletedEvent{
			ID:        t.ID,
			Result:    t.Result,
			Duration:  t.Duration(),
			Timestamp: time.Now(),
		})
	}
	for _, t := range outcome.Failed {
		r.bus.Publish(events.TopicTask, events.TaskFailedEvent{
			ID:        t.ID,
			Message:   t.Error,
			Duration:  t.Duration(),
			Timestamp: time.Now(),
		})
	}
}

func (r *Runner) publishRunCompleted(result *plan.Result) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.TopicRun, events.RunCompletedEvent{
		RunID:         result.RunID,
		Completed:     len(result.Completed),
		Failed:        len(result.Failed),
		TotalDuration: result.TotalDuration,
		SpeedupFactor: result.SpeedupFactor,
		Timestamp:     time.Now(),
	})
}
