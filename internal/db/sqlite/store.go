// Package sqlite is a single-file storage backend for local use and tests.
// It implements the same store methods as the PostgreSQL backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id                TEXT PRIMARY KEY,
	original_filename TEXT NOT NULL DEFAULT '',
	raw_text          TEXT NOT NULL,
	parsed_json       TEXT,
	object_key        TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS job_descriptions (
	id             TEXT PRIMARY KEY,
	url            TEXT,
	raw_html       TEXT,
	extracted_text TEXT NOT NULL,
	parsed_json    TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS gap_analyses (
	id            TEXT PRIMARY KEY,
	candidate_id  TEXT NOT NULL,
	job_id        TEXT NOT NULL,
	analysis_json TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gap_analyses_pair ON gap_analyses (candidate_id, job_id);
CREATE TABLE IF NOT EXISTS project_plans (
	id           TEXT PRIMARY KEY,
	analysis_id  TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	job_id       TEXT NOT NULL,
	plan_json    TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rewritten_profiles (
	id           TEXT PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	job_id       TEXT NOT NULL,
	profile_json TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id            TEXT PRIMARY KEY,
	candidate_id  TEXT NOT NULL,
	job_id        TEXT NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT,
	created_at    TEXT NOT NULL,
	completed_at  TEXT
);
CREATE TABLE IF NOT EXISTS run_steps (
	run_id        TEXT NOT NULL,
	step          TEXT NOT NULL,
	category      TEXT NOT NULL,
	status        TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// Store is a SQLite-backed store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t := parseTime(v.String)
	return &t
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
