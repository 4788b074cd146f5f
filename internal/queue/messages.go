// Package queue runs pipeline jobs asynchronously over AMQP and broadcasts their status.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Default names used when configuration leaves them empty.
const (
	DefaultQueue    = "pipeline_runs"
	DefaultExchange = "pipeline_updates"
)

// Run status values published on the updates exchange.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// RunMessage asks a worker to execute one pipeline run.
type RunMessage struct {
	RunID       uuid.UUID `json:"run_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	JobID       uuid.UUID `json:"job_id"`
}

// StatusUpdate reports progress of a queued run. Stage is set for per-stage events.
type StatusUpdate struct {
	RunID     uuid.UUID `json:"run_id"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoutingKey is the topic key status updates for a run are published under.
func RoutingKey(runID uuid.UUID) string {
	return "run." + runID.String()
}
