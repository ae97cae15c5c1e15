package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/planrun/planrun/internal/plan"
)

func sampleResult() *plan.Result {
	start := time.Now()
	end := start.Add(2 * time.Second)

	a := &plan.Task{ID: "a", Description: "build", Status: plan.TaskCompleted,
		Result: "built", StartedAt: &start, CompletedAt: &end}
	b := &plan.Task{ID: "b", DependsOn: []string{"a"}, Status: plan.TaskFailed,
		Error: "compile error", StartedAt: &start, CompletedAt: &end}
	c := &plan.Task{ID: "c", DependsOn: []string{"b"}, Status: plan.TaskCancelled,
		Error: `cancelled due to failure of dependency "b"`}

	return &plan.Result{
		RunID:         "run-123",
		Plan:          &plan.Plan{Tasks: []*plan.Task{c, b, a}}, // Deliberately unsorted
		Completed:     []*plan.Task{a},
		Failed:        []*plan.Task{b, c},
		TotalDuration: 2 * time.Second,
		SpeedupFactor: 2.0,
	}
}

func TestRenderText(t *testing.T) {
	out, err := Render(sampleResult(), FormatText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"run-123", "Completed 1", "failed 2", "compile error"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}

	// Topological order: a must be listed before b, b before c
	if strings.Index(out, "] a") > strings.Index(out, "] b") {
		t.Errorf("expected a before b in report:\n%s", out)
	}
	if strings.Index(out, "] b") > strings.Index(out, "] c") {
		t.Errorf("expected b before c in report:\n%s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleResult(), FormatMarkdown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out, "# Execution report") {
		t.Errorf("expected markdown heading, got:\n%s", out)
	}
	if !strings.Contains(out, "| a | completed |") {
		t.Errorf("expected task table row for a:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleResult(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		RunID       string  `json:"run_id"`
		Completed   int     `json:"completed"`
		Failed      int     `json:"failed"`
		SuccessRate float64 `json:"success_rate"`
		Tasks       []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if decoded.RunID != "run-123" {
		t.Errorf("unexpected run id %q", decoded.RunID)
	}
	if decoded.Completed != 1 || decoded.Failed != 2 {
		t.Errorf("unexpected counts: %d / %d", decoded.Completed, decoded.Failed)
	}
	if len(decoded.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(decoded.Tasks))
	}
	if decoded.Tasks[0].ID != "a" {
		t.Errorf("expected topological order starting with a, got %q", decoded.Tasks[0].ID)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleResult(), Format("yaml"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("expected format name in error, got %q", err.Error())
	}
}

func TestRenderDefaultsToText(t *testing.T) {
	out, err := Render(sampleResult(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Run run-123") {
		t.Errorf("expected text rendering for empty format:\n%s", out)
	}
}
