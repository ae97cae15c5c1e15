package scheduler

// DetectCycle searches the dependency relation depth-first and returns a
// path demonstrating a cycle, or nil when the graph is acyclic.
//
// The path starts at the first occurrence of the revisited task and closes
// the loop by repeating it, so A depending on B depending on A reports
// [A B A]. The walk uses an explicit frame stack rather than recursion so
// pathological dependency chains cannot exhaust the goroutine stack.
func DetectCycle(g *Graph) []string {
	visited := make(map[string]bool, len(g.tasks))
	onStack := make(map[string]bool)

	type frame struct {
		id   string
		next int // index of the next dependency to explore
	}

	for _, start := range g.order {
		if visited[start] {
			continue
		}

		stack := []frame{{id: start}}
		path := []string{start}
		onStack[start] = true
		visited[start] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.tasks[top.id].DependsOn

			if top.next >= len(deps) {
				// All dependencies explored, pop
				onStack[top.id] = false
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			depID := deps[top.next]
			top.next++

			if onStack[depID] {
				// Found the loop: slice from the dependency's first
				// occurrence, then close it
				for i, id := range path {
					if id == depID {
						cycle := append([]string(nil), path[i:]...)
						return append(cycle, depID)
					}
				}
			}
			if visited[depID] {
				continue
			}

			visited[depID] = true
			onStack[depID] = true
			stack = append(stack, frame{id: depID})
			path = append(path, depID)
		}
	}

	return nil
}
