package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// -----------------------------------------------------------------------------
// Analysis Result Methods
// -----------------------------------------------------------------------------

// SaveGapAnalysis stores a gap analysis and returns its ID
func (db *DB) SaveGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID, gap skills.GapResult) (uuid.UUID, error) {
	analysisJSON, err := json.Marshal(gap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal gap analysis: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO gap_analyses (candidate_id, job_id, analysis_json)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		candidateID, jobID, analysisJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save gap analysis: %w", err)
	}
	return id, nil
}

// GetGapAnalysis retrieves a gap analysis by ID. It returns nil, nil when no row exists.
func (db *DB) GetGapAnalysis(ctx context.Context, id uuid.UUID) (*types.GapAnalysisRecord, error) {
	return db.scanGapAnalysis(ctx,
		`SELECT id, candidate_id, job_id, analysis_json, created_at
		 FROM gap_analyses WHERE id = $1`,
		id,
	)
}

// GetLatestGapAnalysis retrieves the most recent analysis for a candidate and job pair.
func (db *DB) GetLatestGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID) (*types.GapAnalysisRecord, error) {
	return db.scanGapAnalysis(ctx,
		`SELECT id, candidate_id, job_id, analysis_json, created_at
		 FROM gap_analyses WHERE candidate_id = $1 AND job_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		candidateID, jobID,
	)
}

func (db *DB) scanGapAnalysis(ctx context.Context, query string, args ...any) (*types.GapAnalysisRecord, error) {
	var r types.GapAnalysisRecord
	var analysisJSON []byte

	err := db.pool.QueryRow(ctx, query, args...).
		Scan(&r.ID, &r.CandidateID, &r.JobID, &analysisJSON, &r.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gap analysis: %w", err)
	}

	if err := json.Unmarshal(analysisJSON, &r.Analysis); err != nil {
		return nil, fmt.Errorf("failed to decode gap analysis %s: %w", r.ID, err)
	}
	return &r, nil
}

// SaveProjectPlan stores generated project ideas for an analysis
func (db *DB) SaveProjectPlan(ctx context.Context, analysisID, candidateID, jobID uuid.UUID, plan *types.ProjectPlan) (uuid.UUID, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal project plan: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO project_plans (analysis_id, candidate_id, job_id, plan_json)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		analysisID, candidateID, jobID, planJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save project plan: %w", err)
	}
	return id, nil
}

// GetLatestProjectPlan retrieves the newest plan generated from an analysis. It returns nil, nil when none exists.
func (db *DB) GetLatestProjectPlan(ctx context.Context, analysisID uuid.UUID) (*types.ProjectPlanRecord, error) {
	var r types.ProjectPlanRecord
	var planJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, analysis_id, candidate_id, job_id, plan_json, created_at
		 FROM project_plans WHERE analysis_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		analysisID,
	).Scan(&r.ID, &r.AnalysisID, &r.CandidateID, &r.JobID, &planJSON, &r.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project plan: %w", err)
	}

	if err := json.Unmarshal(planJSON, &r.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode project plan %s: %w", r.ID, err)
	}
	return &r, nil
}

// SaveRewrittenProfile stores a job-targeted resume
func (db *DB) SaveRewrittenProfile(ctx context.Context, candidateID, jobID uuid.UUID, profile *types.RewrittenProfile) (uuid.UUID, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal rewritten profile: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO rewritten_profiles (candidate_id, job_id, profile_json)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		candidateID, jobID, profileJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save rewritten profile: %w", err)
	}
	return id, nil
}

// GetRewrittenProfile retrieves a rewritten profile by ID. It returns nil, nil when no row exists.
func (db *DB) GetRewrittenProfile(ctx context.Context, id uuid.UUID) (*types.RewrittenProfileRecord, error) {
	var r types.RewrittenProfileRecord
	var profileJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_id, profile_json, created_at
		 FROM rewritten_profiles WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.CandidateID, &r.JobID, &profileJSON, &r.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rewritten profile: %w", err)
	}

	if err := json.Unmarshal(profileJSON, &r.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode rewritten profile %s: %w", r.ID, err)
	}
	return &r, nil
}
