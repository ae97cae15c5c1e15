package scheduler

import (
	"fmt"
	"strings"
)

// DependencyNotFoundError reports a task referencing a dependency id that
// does not exist in the plan. Fatal: raised during graph validation,
// before any task runs.
type DependencyNotFoundError struct {
	TaskID       string
	DependencyID string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("task %q depends on non-existent task %q", e.TaskID, e.DependencyID)
}

// DuplicateTaskError reports two tasks sharing one id. Fatal: graph
// construction would silently double-count otherwise.
type DuplicateTaskError struct {
	TaskID string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("plan contains duplicate task id %q", e.TaskID)
}

// CircularDependencyError reports a dependency cycle. Path, when known,
// demonstrates the loop with the entry node repeated at the end
// (e.g. [A B A]).
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "plan contains a dependency cycle"
	}
	return fmt.Sprintf("plan contains a dependency cycle: %s", strings.Join(e.Path, " -> "))
}
