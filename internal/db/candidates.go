package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

// CreateCandidate stores uploaded resume text. objectKey points at the original file in blob storage, if any.
func (db *DB) CreateCandidate(ctx context.Context, filename, rawText string, objectKey *string) (*types.CandidateRecord, error) {
	var c types.CandidateRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (original_filename, raw_text, object_key)
		 VALUES ($1, $2, $3)
		 RETURNING id, original_filename, raw_text, object_key, created_at, updated_at`,
		filename, rawText, objectKey,
	).Scan(&c.ID, &c.OriginalFilename, &c.RawText, &c.ObjectKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return &c, nil
}

// GetCandidate retrieves a candidate by ID. It returns nil, nil when no row exists.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateRecord, error) {
	var c types.CandidateRecord
	var parsedJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, original_filename, raw_text, parsed_json, object_key, created_at, updated_at
		 FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.OriginalFilename, &c.RawText, &parsedJSON, &c.ObjectKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if parsedJSON != nil {
		c.Parsed = parsedJSON
	}
	return &c, nil
}

// SaveParsedCandidate caches the structured form of a resume.
func (db *DB) SaveParsedCandidate(ctx context.Context, id uuid.UUID, parsed *types.ParsedCandidate) error {
	parsedJSON, err := marshalJSONB(parsed)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed candidate: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET parsed_json = $1, updated_at = NOW() WHERE id = $2`,
		parsedJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to save parsed candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate not found: %s", id)
	}
	return nil
}
