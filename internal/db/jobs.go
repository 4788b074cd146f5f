package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// -----------------------------------------------------------------------------
// Job Description Methods
// -----------------------------------------------------------------------------

// CreateJob stores a job description. url and rawHTML are nil for pasted text.
func (db *DB) CreateJob(ctx context.Context, url, rawHTML *string, extractedText string) (*types.JobRecord, error) {
	var j types.JobRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_descriptions (url, raw_html, extracted_text)
		 VALUES ($1, $2, $3)
		 RETURNING id, url, raw_html, extracted_text, created_at, updated_at`,
		url, rawHTML, extractedText,
	).Scan(&j.ID, &j.URL, &j.RawHTML, &j.ExtractedText, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job description: %w", err)
	}
	return &j, nil
}

// GetJob retrieves a job description by ID. It returns nil, nil when no row exists.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	var j types.JobRecord
	var parsedJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, extracted_text, parsed_json, created_at, updated_at
		 FROM job_descriptions WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.URL, &j.RawHTML, &j.ExtractedText, &parsedJSON, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job description: %w", err)
	}

	if parsedJSON != nil {
		j.Parsed = parsedJSON
	}
	return &j, nil
}

// SaveParsedJob caches the structured form of a job description.
func (db *DB) SaveParsedJob(ctx context.Context, id uuid.UUID, parsed *types.ParsedJob) error {
	parsedJSON, err := marshalJSONB(parsed)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed job: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE job_descriptions SET parsed_json = $1, updated_at = NOW() WHERE id = $2`,
		parsedJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to save parsed job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job description not found: %s", id)
	}
	return nil
}
