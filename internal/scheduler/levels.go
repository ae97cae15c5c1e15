package scheduler

import (
	"github.com/planrun/planrun/internal/plan"
)

// Level is a set of mutually independent tasks whose dependencies all live
// in strictly earlier levels. Membership order within a level carries no
// meaning; callers must not rely on slice position.
type Level []*plan.Task

// ComputeLevels partitions the graph into execution levels by iterative
// in-degree reduction: level 0 holds every task with no dependencies, and
// each subsequent level holds the tasks whose in-degree reaches zero once
// the previous level is accounted for.
//
// The graph is expected to have passed DetectCycle already; as a safety
// net against inconsistent state, a CircularDependencyError is still
// returned when the layering cannot place every task.
func ComputeLevels(g *Graph) ([]Level, error) {
	inDegree := make(map[string]int, g.Len())
	for _, id := range g.order {
		inDegree[id] = len(g.tasks[id].DependsOn)
	}

	var current []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	var levels []Level
	placed := 0

	for len(current) > 0 {
		level := make(Level, 0, len(current))
		var next []string

		for _, id := range current {
			level = append(level, g.tasks[id])
			placed++

			for _, depID := range g.dependents[id] {
				inDegree[depID]--
				if inDegree[depID] == 0 {
					next = append(next, depID)
				}
			}
		}

		levels = append(levels, level)
		current = next
	}

	if placed != g.Len() {
		// Undetected cycle or dangling dependency
		return nil, &CircularDependencyError{}
	}

	return levels, nil
}
