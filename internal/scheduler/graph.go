package scheduler

import (
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/planrun/planrun/internal/plan"
)

// Graph is the dependency view of a plan: tasks indexed by id plus the
// forward adjacency map (task id -> ids of tasks that depend on it).
// It is built once per execution and read-only afterwards; all task
// mutation goes through the plan's task pointers.
type Graph struct {
	tasks      map[string]*plan.Task
	dependents map[string][]string
	order      []string // ids in plan order, for deterministic iteration
}

// BuildGraph validates a plan's dependency structure and returns its graph.
// It rejects duplicate task ids and references to unknown dependencies;
// both are fatal before any task runs.
func BuildGraph(p *plan.Plan) (*Graph, error) {
	g := &Graph{
		tasks:      make(map[string]*plan.Task, len(p.Tasks)),
		dependents: make(map[string][]string),
		order:      make([]string, 0, len(p.Tasks)),
	}

	for _, t := range p.Tasks {
		if _, exists := g.tasks[t.ID]; exists {
			return nil, &DuplicateTaskError{TaskID: t.ID}
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}

	for _, t := range p.Tasks {
		for _, depID := range t.DependsOn {
			if _, exists := g.tasks[depID]; !exists {
				return nil, &DependencyNotFoundError{TaskID: t.ID, DependencyID: depID}
			}
			g.dependents[depID] = append(g.dependents[depID], t.ID)
		}
	}

	return g, nil
}

// Task returns the task with the given id, or nil if absent.
func (g *Graph) Task(id string) *plan.Task {
	return g.tasks[id]
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Dependents returns the ids of tasks that directly depend on the given id.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// TransitiveDependents walks the forward adjacency map breadth-first and
// returns every task id reachable from the given id. Each id appears once
// regardless of how many paths lead to it.
func (g *Graph) TransitiveDependents(id string) []string {
	seen := make(map[string]bool)
	queue := append([]string(nil), g.dependents[id]...)
	var out []string

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, g.dependents[next]...)
	}

	return out
}

// Order returns a topologically sorted list of task ids using
// gammazero/toposort. Used for deterministic, dependency-respecting
// listings (reports, sequential fallbacks); level computation has its own
// layering pass.
func (g *Graph) Order() ([]string, error) {
	var edges []toposort.Edge
	for _, id := range g.order {
		t := g.tasks[id]
		if len(t.DependsOn) == 0 {
			// Roots need a synthetic edge so the sort includes them
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, depID := range t.DependsOn {
			edges = append(edges, toposort.Edge{depID, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("topological sort: %w", err)
	}

	order := make([]string, 0, len(g.tasks))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	if len(order) != len(g.tasks) {
		return nil, &CircularDependencyError{}
	}

	return order, nil
}
