package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// -----------------------------------------------------------------------------
// Pipeline Run Methods
// -----------------------------------------------------------------------------

// CreateRun creates a new pipeline run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, candidateID, jobID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (candidate_id, job_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		candidateID, jobID, types.RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a pipeline run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, errMsg *string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		status, errMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a pipeline run by ID. It returns nil, nil when no row exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.PipelineRun, error) {
	var r types.PipelineRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_id, status, error_message, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.CandidateID, &r.JobID, &r.Status, &r.ErrorMessage, &r.CreatedAt, &r.CompletedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// RecordStep upserts the outcome of one stage in a run
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, step *types.RunStep) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_steps (run_id, step, category, status, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET category = $3, status = $4, duration_ms = $5, error_message = $6`,
		runID, step.Step, step.Category, step.Status, step.DurationMs, step.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", step.Step, err)
	}
	return nil
}

// GetRunStep retrieves a run step by run_id and step name
func (db *DB) GetRunStep(ctx context.Context, runID uuid.UUID, stepName string) (*types.RunStep, error) {
	var s types.RunStep
	err := db.pool.QueryRow(ctx,
		`SELECT run_id, step, category, status, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = $1 AND step = $2`,
		runID, stepName,
	).Scan(&s.RunID, &s.Step, &s.Category, &s.Status, &s.DurationMs, &s.ErrorMessage, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run step: %w", err)
	}
	return &s, nil
}

// ListRunSteps retrieves all steps for a run in the order they were recorded
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]types.RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, step, category, status, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = $1
		 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	steps := []types.RunStep{}
	for rows.Next() {
		var s types.RunStep
		if err := rows.Scan(&s.RunID, &s.Step, &s.Category, &s.Status, &s.DurationMs, &s.ErrorMessage, &s.CreatedAt); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
