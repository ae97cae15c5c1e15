package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// taskPayload mirrors the loosely-structured JSON emitted by the planning
// step. Durations arrive as seconds.
type taskPayload struct {
	ID               string            `json:"id"`
	Description      string            `json:"description"`
	TargetFiles      []string          `json:"target_files,omitempty"`
	Dependencies     []string          `json:"dependencies,omitempty"`
	EstimatedSeconds float64           `json:"estimated_duration,omitempty"`
	Priority         *int              `json:"priority,omitempty"`
	Command          string            `json:"command,omitempty"`
}

type planPayload struct {
	Tasks            []taskPayload     `json:"tasks"`
	IntegrationNotes string            `json:"integration_notes,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Parse converts a planning-step JSON payload into a Plan.
// The payload may be wrapped in a fenced code block (```json ... ```);
// the fence is stripped before decoding. Defaults are applied per task:
// estimate 300s, priority 1, and a Kind derived from whether a command
// payload is attached.
func Parse(data []byte) (*Plan, error) {
	text := stripFence(string(data))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty plan payload")
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("parsing plan JSON: %w", err)
	}
	if len(payload.Tasks) == 0 {
		return nil, fmt.Errorf("plan contains no tasks")
	}

	p := &Plan{
		IntegrationNotes: payload.IntegrationNotes,
		Metadata:         payload.Metadata,
		Tasks:            make([]*Task, 0, len(payload.Tasks)),
	}

	for i, tp := range payload.Tasks {
		if tp.ID == "" {
			return nil, fmt.Errorf("task at index %d has no id", i)
		}

		task := &Task{
			ID:          tp.ID,
			Description: tp.Description,
			TargetFiles: tp.TargetFiles,
			DependsOn:   tp.Dependencies,
			Status:      TaskPending,
			Estimate:    DefaultEstimate,
			Priority:    1,
			Kind:        KindGeneric,
			Command:     tp.Command,
		}
		if tp.EstimatedSeconds > 0 {
			task.Estimate = time.Duration(tp.EstimatedSeconds * float64(time.Second))
		}
		if tp.Priority != nil {
			task.Priority = *tp.Priority
		}
		if tp.Command != "" {
			task.Kind = KindCommand
		}

		p.Tasks = append(p.Tasks, task)
	}

	return p, nil
}

// stripFence removes a surrounding markdown code fence, if present.
// Handles both ```json and bare ``` openers.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence line (``` or ```json)
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return ""
	}

	// Drop everything from the closing fence on
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}
