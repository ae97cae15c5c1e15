package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/planrun/planrun/internal/plan"
)

// RunSummary is the archived header of one run.
type RunSummary struct {
	RunID          string
	CompletedCount int
	FailedCount    int
	TotalDuration  time.Duration
	SpeedupFactor  float64
	CreatedAt      time.Time
}

// TaskRecord is the archived outcome of one task within a run.
type TaskRecord struct {
	TaskID      string
	Description string
	Status      string
	Result      string
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// SaveRun archives a run result and the terminal state of every task in
// its plan. One transaction per run; saving the same run id twice is an
// error.
func (s *Store) SaveRun(ctx context.Context, result *plan.Result) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, completed_count, failed_count, total_duration_ms, speedup_factor, integration_notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.RunID, len(result.Completed), len(result.Failed),
		result.TotalDuration.Milliseconds(), result.SpeedupFactor, result.Plan.IntegrationNotes)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, t := range result.Plan.Tasks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_tasks (run_id, task_id, description, status, result, error, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, result.RunID, t.ID, t.Description, t.Status.String(), t.Result, t.Error, t.StartedAt, t.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun retrieves one archived run and its task records.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunSummary, []TaskRecord, error) {
	summary := &RunSummary{}
	var durationMS int64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, completed_count, failed_count, total_duration_ms, speedup_factor, created_at
		FROM runs
		WHERE id = ?
	`, runID).Scan(&summary.RunID, &summary.CompletedCount, &summary.FailedCount,
		&durationMS, &summary.SpeedupFactor, &summary.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run: %w", err)
	}
	summary.TotalDuration = time.Duration(durationMS) * time.Millisecond

	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, description, status, result, error, started_at, completed_at
		FROM run_tasks
		WHERE run_id = ?
		ORDER BY task_id
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var rec TaskRecord
		if err := rows.Scan(&rec.TaskID, &rec.Description, &rec.Status, &rec.Result,
			&rec.Error, &rec.StartedAt, &rec.CompletedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return summary, tasks, nil
}

// ListRuns returns archived run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, completed_count, failed_count, total_duration_ms, speedup_factor, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var summary RunSummary
		var durationMS int64
		if err := rows.Scan(&summary.RunID, &summary.CompletedCount, &summary.FailedCount,
			&durationMS, &summary.SpeedupFactor, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		summary.TotalDuration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}

	return runs, nil
}
