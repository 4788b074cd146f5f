package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// CandidateStore loads resumes and caches their parsed form.
// GetCandidate returns nil, nil when the record does not exist.
type CandidateStore interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateRecord, error)
	SaveParsedCandidate(ctx context.Context, id uuid.UUID, parsed *types.ParsedCandidate) error
}

// JobStore loads job descriptions and caches their parsed form.
// GetJob returns nil, nil when the record does not exist.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*types.JobRecord, error)
	SaveParsedJob(ctx context.Context, id uuid.UUID, parsed *types.ParsedJob) error
}

// CandidateParser turns resume text into a ParsedCandidate.
type CandidateParser interface {
	ParseCandidate(ctx context.Context, rawText string) (*types.ParsedCandidate, error)
}

// JobParser turns job description text into a ParsedJob.
type JobParser interface {
	ParseJob(ctx context.Context, rawText string) (*types.ParsedJob, error)
}

// ProjectGenerator proposes projects that close a skill gap.
type ProjectGenerator interface {
	GenerateProjects(ctx context.Context, gap skills.GapResult) ([]types.ProjectIdea, error)
}

// ProfileRewriter rewrites a candidate profile for a job.
type ProfileRewriter interface {
	RewriteProfile(ctx context.Context, candidate *types.ParsedCandidate, job *types.ParsedJob, gap skills.GapResult) (*types.RewrittenProfile, error)
}

// ResultStore persists stage outputs. Each save returns the new record id.
type ResultStore interface {
	SaveGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID, gap skills.GapResult) (uuid.UUID, error)
	SaveProjectPlan(ctx context.Context, analysisID, candidateID, jobID uuid.UUID, plan *types.ProjectPlan) (uuid.UUID, error)
	SaveRewrittenProfile(ctx context.Context, candidateID, jobID uuid.UUID, profile *types.RewrittenProfile) (uuid.UUID, error)
}

// RunRecorder tracks run and stage outcomes. It is optional; recording failures
// are logged and never fail a run.
type RunRecorder interface {
	CreateRun(ctx context.Context, candidateID, jobID uuid.UUID) (uuid.UUID, error)
	RecordStep(ctx context.Context, runID uuid.UUID, step *types.RunStep) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, errMsg *string) error
}

// Deps are the collaborators an Orchestrator calls.
type Deps struct {
	Candidates CandidateStore
	Jobs       JobStore
	Results    ResultStore

	CandidateParser CandidateParser
	JobParser       JobParser
	Projects        ProjectGenerator
	Rewriter        ProfileRewriter

	// Runs is optional.
	Runs RunRecorder
}
