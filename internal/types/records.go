//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
)

// Run status values for PipelineRun.Status.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Step status values for RunStep.Status.
const (
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusFailed     = "failed"
	StepStatusSkipped    = "skipped"
)

// CandidateRecord is a stored resume. Parsed is nil until the resume has been parsed.
type CandidateRecord struct {
	ID               uuid.UUID       `json:"id"`
	OriginalFilename string          `json:"original_filename"`
	RawText          string          `json:"raw_text"`
	Parsed           json.RawMessage `json:"parsed_json,omitempty"`
	ObjectKey        *string         `json:"object_key,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// JobRecord is a stored job description. Parsed is nil until the job has been parsed.
type JobRecord struct {
	ID            uuid.UUID       `json:"id"`
	URL           *string         `json:"url,omitempty"`
	RawHTML       *string         `json:"-"`
	ExtractedText string          `json:"extracted_text"`
	Parsed        json.RawMessage `json:"parsed_json,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GapAnalysisRecord is a stored gap analysis.
type GapAnalysisRecord struct {
	ID          uuid.UUID        `json:"id"`
	CandidateID uuid.UUID        `json:"resume_id"`
	JobID       uuid.UUID        `json:"job_id"`
	Analysis    skills.GapResult `json:"analysis"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ProjectPlanRecord is a stored set of project ideas derived from one gap analysis.
type ProjectPlanRecord struct {
	ID          uuid.UUID   `json:"id"`
	AnalysisID  uuid.UUID   `json:"analysis_id"`
	CandidateID uuid.UUID   `json:"resume_id"`
	JobID       uuid.UUID   `json:"job_id"`
	Plan        ProjectPlan `json:"plan"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RewrittenProfileRecord is a stored job-targeted resume.
type RewrittenProfileRecord struct {
	ID          uuid.UUID        `json:"id"`
	CandidateID uuid.UUID        `json:"resume_id"`
	JobID       uuid.UUID        `json:"job_id"`
	Profile     RewrittenProfile `json:"profile"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PipelineRun tracks one orchestrated run.
type PipelineRun struct {
	ID           uuid.UUID  `json:"id"`
	CandidateID  uuid.UUID  `json:"resume_id"`
	JobID        uuid.UUID  `json:"job_id"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunStep is the recorded outcome of one stage within a run.
type RunStep struct {
	RunID        uuid.UUID `json:"run_id"`
	Step         string    `json:"step"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
