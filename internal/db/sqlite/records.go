package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// CreateCandidate stores uploaded resume text.
func (s *Store) CreateCandidate(ctx context.Context, filename, rawText string, objectKey *string) (*types.CandidateRecord, error) {
	now := s.timestamp()
	c := &types.CandidateRecord{
		ID:               uuid.New(),
		OriginalFilename: filename,
		RawText:          rawText,
		ObjectKey:        objectKey,
		CreatedAt:        parseTime(now),
		UpdatedAt:        parseTime(now),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (id, original_filename, raw_text, object_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, filename, rawText, objectKey, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: create candidate: %w", err)
	}
	return c, nil
}

// GetCandidate returns nil, nil when no row exists.
func (s *Store) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateRecord, error) {
	var c types.CandidateRecord
	var parsed, objectKey sql.NullString
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, original_filename, raw_text, parsed_json, object_key, created_at, updated_at
		 FROM candidates WHERE id = ?`, id,
	).Scan(&c.ID, &c.OriginalFilename, &c.RawText, &parsed, &objectKey, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get candidate: %w", err)
	}
	if parsed.Valid {
		c.Parsed = json.RawMessage(parsed.String)
	}
	c.ObjectKey = nullString(objectKey)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// SaveParsedCandidate caches the structured form of a resume.
func (s *Store) SaveParsedCandidate(ctx context.Context, id uuid.UUID, parsed *types.ParsedCandidate) error {
	return s.saveParsed(ctx, "candidates", id, parsed)
}

// CreateJob stores a job description. url and rawHTML are nil for pasted text.
func (s *Store) CreateJob(ctx context.Context, url, rawHTML *string, extractedText string) (*types.JobRecord, error) {
	now := s.timestamp()
	j := &types.JobRecord{
		ID:            uuid.New(),
		URL:           url,
		RawHTML:       rawHTML,
		ExtractedText: extractedText,
		CreatedAt:     parseTime(now),
		UpdatedAt:     parseTime(now),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_descriptions (id, url, raw_html, extracted_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID, url, rawHTML, extractedText, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: create job: %w", err)
	}
	return j, nil
}

// GetJob returns nil, nil when no row exists.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	var j types.JobRecord
	var url, rawHTML, parsed sql.NullString
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, raw_html, extracted_text, parsed_json, created_at, updated_at
		 FROM job_descriptions WHERE id = ?`, id,
	).Scan(&j.ID, &url, &rawHTML, &j.ExtractedText, &parsed, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get job: %w", err)
	}
	if parsed.Valid {
		j.Parsed = json.RawMessage(parsed.String)
	}
	j.URL = nullString(url)
	j.RawHTML = nullString(rawHTML)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

// SaveParsedJob caches the structured form of a job description.
func (s *Store) SaveParsedJob(ctx context.Context, id uuid.UUID, parsed *types.ParsedJob) error {
	return s.saveParsed(ctx, "job_descriptions", id, parsed)
}

// saveParsed stores a nil payload as NULL so the row reads back as unparsed.
func (s *Store) saveParsed(ctx context.Context, table string, id uuid.UUID, parsed any) error {
	b, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("sqlite: marshal parsed %s: %w", table, err)
	}
	var value any
	if string(b) != "null" {
		value = string(b)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET parsed_json = ?, updated_at = ? WHERE id = ?`,
		value, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save parsed %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: %s row not found: %s", table, id)
	}
	return nil
}

// SaveGapAnalysis stores a gap analysis and returns its ID.
func (s *Store) SaveGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID, gap skills.GapResult) (uuid.UUID, error) {
	b, err := json.Marshal(gap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: marshal gap analysis: %w", err)
	}
	id := uuid.New()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO gap_analyses (id, candidate_id, job_id, analysis_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, candidateID, jobID, string(b), s.timestamp(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: save gap analysis: %w", err)
	}
	return id, nil
}

// GetGapAnalysis returns nil, nil when no row exists.
func (s *Store) GetGapAnalysis(ctx context.Context, id uuid.UUID) (*types.GapAnalysisRecord, error) {
	return s.scanGapAnalysis(ctx,
		`SELECT id, candidate_id, job_id, analysis_json, created_at
		 FROM gap_analyses WHERE id = ?`, id)
}

// GetLatestGapAnalysis returns the most recent analysis for a candidate and job pair.
func (s *Store) GetLatestGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID) (*types.GapAnalysisRecord, error) {
	return s.scanGapAnalysis(ctx,
		`SELECT id, candidate_id, job_id, analysis_json, created_at
		 FROM gap_analyses WHERE candidate_id = ? AND job_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, candidateID, jobID)
}

func (s *Store) scanGapAnalysis(ctx context.Context, query string, args ...any) (*types.GapAnalysisRecord, error) {
	var r types.GapAnalysisRecord
	var analysis, createdAt string
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&r.ID, &r.CandidateID, &r.JobID, &analysis, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get gap analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
		return nil, fmt.Errorf("sqlite: decode gap analysis %s: %w", r.ID, err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// SaveProjectPlan stores generated project ideas for an analysis.
func (s *Store) SaveProjectPlan(ctx context.Context, analysisID, candidateID, jobID uuid.UUID, plan *types.ProjectPlan) (uuid.UUID, error) {
	b, err := json.Marshal(plan)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: marshal project plan: %w", err)
	}
	id := uuid.New()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO project_plans (id, analysis_id, candidate_id, job_id, plan_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, analysisID, candidateID, jobID, string(b), s.timestamp(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: save project plan: %w", err)
	}
	return id, nil
}

// GetLatestProjectPlan returns the newest plan generated from an analysis, or nil, nil.
func (s *Store) GetLatestProjectPlan(ctx context.Context, analysisID uuid.UUID) (*types.ProjectPlanRecord, error) {
	var r types.ProjectPlanRecord
	var plan, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, analysis_id, candidate_id, job_id, plan_json, created_at
		 FROM project_plans WHERE analysis_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, analysisID,
	).Scan(&r.ID, &r.AnalysisID, &r.CandidateID, &r.JobID, &plan, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get project plan: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &r.Plan); err != nil {
		return nil, fmt.Errorf("sqlite: decode project plan %s: %w", r.ID, err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// SaveRewrittenProfile stores a job-targeted resume.
func (s *Store) SaveRewrittenProfile(ctx context.Context, candidateID, jobID uuid.UUID, profile *types.RewrittenProfile) (uuid.UUID, error) {
	b, err := json.Marshal(profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: marshal rewritten profile: %w", err)
	}
	id := uuid.New()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rewritten_profiles (id, candidate_id, job_id, profile_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, candidateID, jobID, string(b), s.timestamp(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: save rewritten profile: %w", err)
	}
	return id, nil
}

// GetRewrittenProfile returns nil, nil when no row exists.
func (s *Store) GetRewrittenProfile(ctx context.Context, id uuid.UUID) (*types.RewrittenProfileRecord, error) {
	var r types.RewrittenProfileRecord
	var profile, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, candidate_id, job_id, profile_json, created_at
		 FROM rewritten_profiles WHERE id = ?`, id,
	).Scan(&r.ID, &r.CandidateID, &r.JobID, &profile, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get rewritten profile: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &r.Profile); err != nil {
		return nil, fmt.Errorf("sqlite: decode rewritten profile %s: %w", r.ID, err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}
