// Package report renders execution results for humans and machines.
// Rendering is pure: a Result goes in, a string comes out.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/scheduler"
)

// Format selects the output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// taskRow is the per-task record used by the JSON encoding.
type taskRow struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Result      string  `json:"result,omitempty"`
	Error       string  `json:"error,omitempty"`
	DurationSec float64 `json:"duration_seconds"`
}

type jsonReport struct {
	RunID           string    `json:"run_id"`
	Tasks           []taskRow `json:"tasks"`
	Completed       int       `json:"completed"`
	Failed          int       `json:"failed"`
	SuccessRate     float64   `json:"success_rate"`
	TotalDurationMS int64     `json:"total_duration_ms"`
	SpeedupFactor   float64   `json:"speedup_factor"`
}

// Render serializes a result in the given format. Tasks are listed in
// topological order so dependents always appear after their dependencies.
func Render(result *plan.Result, format Format) (string, error) {
	ordered, err := orderedTasks(result.Plan)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatJSON:
		return renderJSON(result, ordered)
	case FormatMarkdown:
		return renderMarkdown(result, ordered), nil
	case FormatText, "":
		return renderText(result, ordered), nil
	}
	return "", fmt.Errorf("unknown report format %q", format)
}

// orderedTasks returns the plan's tasks topologically sorted.
func orderedTasks(p *plan.Plan) ([]*plan.Task, error) {
	graph, err := scheduler.BuildGraph(p)
	if err != nil {
		return nil, err
	}
	ids, err := graph.Order()
	if err != nil {
		return nil, err
	}

	tasks := make([]*plan.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, graph.Task(id))
	}
	return tasks, nil
}

func renderText(result *plan.Result, tasks []*plan.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", result.RunID)
	fmt.Fprintf(&b, "Completed %d, failed %d (success rate %.0f%%)\n",
		len(result.Completed), len(result.Failed), result.SuccessRate()*100)
	fmt.Fprintf(&b, "Wall clock %s, speedup %.2fx\n\n", roundDuration(result.TotalDuration), result.SpeedupFactor)

	for _, t := range tasks {
		fmt.Fprintf(&b, "  [%s] %s", t.Status, t.ID)
		if t.Error != "" {
			fmt.Fprintf(&b, " (%s)", t.Error)
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func renderMarkdown(result *plan.Result, tasks []*plan.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Execution report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Completed: %d\n", len(result.Completed))
	fmt.Fprintf(&b, "- Failed: %d\n", len(result.Failed))
	fmt.Fprintf(&b, "- Success rate: %.0f%%\n", result.SuccessRate()*100)
	fmt.Fprintf(&b, "- Wall clock: %s\n", roundDuration(result.TotalDuration))
	fmt.Fprintf(&b, "- Speedup: %.2fx\n\n", result.SpeedupFactor)

	b.WriteString("| Task | Status | Duration | Notes |\n")
	b.WriteString("|------|--------|----------|-------|\n")
	for _, t := range tasks {
		notes := t.Error
		if notes == "" {
			notes = t.Result
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			t.ID, t.Status, roundDuration(measured(t)), strings.ReplaceAll(notes, "|", "\\|"))
	}

	return b.String()
}

func renderJSON(result *plan.Result, tasks []*plan.Task) (string, error) {
	out := jsonReport{
		RunID:           result.RunID,
		Tasks:           make([]taskRow, 0, len(tasks)),
		Completed:       len(result.Completed),
		Failed:          len(result.Failed),
		SuccessRate:     result.SuccessRate(),
		TotalDurationMS: result.TotalDuration.Milliseconds(),
		SpeedupFactor:   result.SpeedupFactor,
	}

	for _, t := range tasks {
		out.Tasks = append(out.Tasks, taskRow{
			ID:          t.ID,
			Description: t.Description,
			Status:      t.Status.String(),
			Result:      t.Result,
			Error:       t.Error,
			DurationSec: measured(t).Seconds(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	return string(data), nil
}

// measured returns the observed wall time of a task, or zero for tasks
// that never ran. Estimates are deliberately not substituted here; a
// report shows what happened.
func measured(t *plan.Task) time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

func roundDuration(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
