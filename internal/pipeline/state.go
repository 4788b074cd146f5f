package pipeline

import (
	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// State is the record threaded through the stages of one run.
// Each run owns its State; it must not be shared between concurrent runs.
type State struct {
	RunID       uuid.UUID `json:"run_id,omitempty"`
	CandidateID uuid.UUID `json:"resume_id"`
	JobID       uuid.UUID `json:"job_id"`

	Candidate *types.ParsedCandidate `json:"parsed_resume,omitempty"`
	Job       *types.ParsedJob       `json:"parsed_job,omitempty"`
	Gap       *skills.GapResult      `json:"gap_analysis,omitempty"`
	// Projects is nil until the generate_projects stage succeeds.
	Projects []types.ProjectIdea     `json:"projects,omitempty"`
	Profile  *types.RewrittenProfile `json:"improved_resume,omitempty"`

	AnalysisID    *uuid.UUID `json:"analysis_id,omitempty"`
	ProjectPlanID *uuid.UUID `json:"project_plan_id,omitempty"`
	ProfileID     *uuid.UUID `json:"improved_resume_id,omitempty"`

	// Err holds the first stage failure as a *StageError.
	Err error `json:"-"`

	completed map[steps.Stage]bool
}

// NewState returns the initial state for a run.
func NewState(candidateID, jobID uuid.UUID) *State {
	return &State{
		CandidateID: candidateID,
		JobID:       jobID,
		completed:   make(map[steps.Stage]bool, len(steps.Sequence)),
	}
}

// Completed reports whether stage finished successfully in this run.
func (s *State) Completed(stage steps.Stage) bool {
	return s.completed[stage]
}

// ErrorMessage returns the recorded failure message, or "" when the run succeeded.
func (s *State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func (s *State) fail(stage steps.Stage, err error) {
	if s.Err != nil {
		return
	}
	s.Err = &StageError{Stage: stage, Err: err}
}
