package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// CreateRun creates a pipeline run in the running state.
func (s *Store) CreateRun(ctx context.Context, candidateID, jobID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, candidate_id, job_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, candidateID, jobID, types.RunStatusRunning, s.timestamp(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string, errMsg *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		status, errMsg, s.timestamp(), runID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: complete run: %w", err)
	}
	return nil
}

// GetRun returns nil, nil when no row exists.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*types.PipelineRun, error) {
	var r types.PipelineRun
	var errMsg, completedAt sql.NullString
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, candidate_id, job_id, status, error_message, created_at, completed_at
		 FROM pipeline_runs WHERE id = ?`, runID,
	).Scan(&r.ID, &r.CandidateID, &r.JobID, &r.Status, &errMsg, &createdAt, &completedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get run: %w", err)
	}
	r.ErrorMessage = nullString(errMsg)
	r.CreatedAt = parseTime(createdAt)
	r.CompletedAt = parseNullTime(completedAt)
	return &r, nil
}

// RecordStep upserts the outcome of one stage.
func (s *Store) RecordStep(ctx context.Context, runID uuid.UUID, step *types.RunStep) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step, category, status, duration_ms, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, step) DO UPDATE SET
		   category = excluded.category,
		   status = excluded.status,
		   duration_ms = excluded.duration_ms,
		   error_message = excluded.error_message`,
		runID, step.Step, step.Category, step.Status, step.DurationMs, step.ErrorMessage, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record step %s: %w", step.Step, err)
	}
	return nil
}

// GetRunStep returns nil, nil when the step was never recorded.
func (s *Store) GetRunStep(ctx context.Context, runID uuid.UUID, step string) (*types.RunStep, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, step, category, status, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = ? AND step = ?`, runID, step)
	rs, err := scanRunStep(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get run step: %w", err)
	}
	return rs, nil
}

// ListRunSteps returns the steps of a run in the order they were first recorded.
func (s *Store) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]types.RunStep, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, step, category, status, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list run steps: %w", err)
	}
	defer rows.Close()

	steps := []types.RunStep{}
	for rows.Next() {
		rs, err := scanRunStep(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan run step: %w", err)
		}
		steps = append(steps, *rs)
	}
	return steps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunStep(row rowScanner) (*types.RunStep, error) {
	var rs types.RunStep
	var errMsg sql.NullString
	var createdAt string
	if err := row.Scan(&rs.RunID, &rs.Step, &rs.Category, &rs.Status, &rs.DurationMs, &errMsg, &createdAt); err != nil {
		return nil, err
	}
	rs.ErrorMessage = nullString(errMsg)
	rs.CreatedAt = parseTime(createdAt)
	return &rs, nil
}
