package plan

// Plan is an ordered collection of tasks submitted as one unit for
// scheduled execution. It is the single mutable ledger of progress: the
// scheduler writes status, result, error, and timestamps into its tasks
// in place.
type Plan struct {
	Tasks            []*Task
	IntegrationNotes string
	Metadata         map[string]string
}

// Get returns the task with the given id, or nil if absent.
func (p *Plan) Get(id string) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TaskIDs returns the ids of all tasks in plan order.
func (p *Plan) TaskIDs() []string {
	ids := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// Ready reports whether every dependency of the task has completed within
// this plan. Pure query; does not consider failure propagation policy.
func (p *Plan) Ready(t *Task) bool {
	for _, depID := range t.DependsOn {
		dep := p.Get(depID)
		if dep == nil || dep.Status != TaskCompleted {
			return false
		}
	}
	return true
}
