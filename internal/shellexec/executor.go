// Package shellexec provides a task executor that runs each task's shell
// command in a process-group-isolated subprocess. Tasks without a command
// are simulated with a short sleep so plans can be dry-run end to end.
package shellexec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/planrun/planrun/internal/plan"
)

// Executor turns tasks into subprocess invocations.
type Executor struct {
	pm       *ProcessManager
	locks    *PathLocks
	shell    string        // Shell binary used to run commands (default "/bin/sh")
	simDelay time.Duration // Sleep per simulated task (default 10ms)
}

// New creates an executor backed by the given process manager.
func New(pm *ProcessManager) *Executor {
	return &Executor{
		pm:       pm,
		locks:    NewPathLocks(),
		shell:    "/bin/sh",
		simDelay: 10 * time.Millisecond,
	}
}

// Execute implements scheduler.TaskExecutor. Command tasks run under the
// shell with their declared target files locked for the duration, so two
// concurrent tasks never write the same path at once. Generic tasks are
// simulated.
func (e *Executor) Execute(ctx context.Context, t *plan.Task) (string, error) {
	if t.Kind != plan.KindCommand || t.Command == "" {
		return e.simulate(ctx, t)
	}

	e.locks.LockAll(t.TargetFiles)
	defer e.locks.UnlockAll(t.TargetFiles)

	cmd := newCommand(ctx, e.shell, "-c", t.Command)

	stdout, _, err := runCommand(e.pm, cmd)
	if err != nil {
		return "", fmt.Errorf("task %q: %w", t.ID, err)
	}

	return strings.TrimRight(string(stdout), "\n"), nil
}

// simulate stands in for tasks that carry no command payload.
func (e *Executor) simulate(ctx context.Context, t *plan.Task) (string, error) {
	select {
	case <-time.After(e.simDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("simulated: %s", t.ID), nil
}
