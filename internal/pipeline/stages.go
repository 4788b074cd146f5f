package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// parseCandidate loads the candidate record and parses it unless a parsed payload is cached.
func (o *Orchestrator) parseCandidate(ctx context.Context, st *State) error {
	record, err := o.deps.Candidates.GetCandidate(ctx, st.CandidateID)
	if err != nil {
		return upstream("candidate store", err)
	}
	if record == nil {
		return &NotFoundError{Kind: "candidate", ID: st.CandidateID}
	}

	if len(record.Parsed) > 0 {
		var cached types.ParsedCandidate
		if err := json.Unmarshal(record.Parsed, &cached); err != nil {
			return upstream("candidate store", fmt.Errorf("decode cached parse: %w", err))
		}
		st.Candidate = &cached
		return nil
	}

	parsed, err := o.deps.CandidateParser.ParseCandidate(ctx, record.RawText)
	if err != nil {
		return upstream("candidate parser", err)
	}
	if parsed == nil {
		return emptyResult("candidate parser")
	}
	if err := o.deps.Candidates.SaveParsedCandidate(ctx, st.CandidateID, parsed); err != nil {
		return upstream("candidate store", err)
	}

	st.Candidate = parsed
	return nil
}

// parseJob loads the job record and parses it unless a parsed payload is cached.
func (o *Orchestrator) parseJob(ctx context.Context, st *State) error {
	record, err := o.deps.Jobs.GetJob(ctx, st.JobID)
	if err != nil {
		return upstream("job store", err)
	}
	if record == nil {
		return &NotFoundError{Kind: "job", ID: st.JobID}
	}

	if len(record.Parsed) > 0 {
		var cached types.ParsedJob
		if err := json.Unmarshal(record.Parsed, &cached); err != nil {
			return upstream("job store", fmt.Errorf("decode cached parse: %w", err))
		}
		st.Job = &cached
		return nil
	}

	parsed, err := o.deps.JobParser.ParseJob(ctx, record.ExtractedText)
	if err != nil {
		return upstream("job parser", err)
	}
	if parsed == nil {
		return emptyResult("job parser")
	}
	if err := o.deps.Jobs.SaveParsedJob(ctx, st.JobID, parsed); err != nil {
		return upstream("job store", err)
	}

	st.Job = parsed
	return nil
}

// analyzeGap compares the parsed skills and persists the result.
func (o *Orchestrator) analyzeGap(ctx context.Context, st *State) error {
	if err := require(steps.AnalyzeGap,
		precondition{"parsed candidate", st.Candidate != nil},
		precondition{"parsed job", st.Job != nil},
	); err != nil {
		return err
	}

	gap := types.ComputeGapFromProfiles(st.Candidate, st.Job)

	id, err := o.deps.Results.SaveGapAnalysis(ctx, st.CandidateID, st.JobID, gap)
	if err != nil {
		return upstream("result store", err)
	}

	st.Gap = &gap
	st.AnalysisID = &id
	return nil
}

// generateProjects turns the gap into project ideas and persists them.
func (o *Orchestrator) generateProjects(ctx context.Context, st *State) error {
	if err := require(steps.GenerateProjects,
		precondition{"gap analysis", st.Gap != nil},
		precondition{"analysis id", st.AnalysisID != nil},
	); err != nil {
		return err
	}

	ideas, err := o.deps.Projects.GenerateProjects(ctx, *st.Gap)
	if err != nil {
		return upstream("project generator", err)
	}
	if ideas == nil {
		ideas = []types.ProjectIdea{}
	}

	id, err := o.deps.Results.SaveProjectPlan(ctx, *st.AnalysisID, st.CandidateID, st.JobID, &types.ProjectPlan{Projects: ideas})
	if err != nil {
		return upstream("result store", err)
	}

	st.Projects = ideas
	st.ProjectPlanID = &id
	return nil
}

// rewriteProfile rewrites the candidate profile against the job and persists it.
func (o *Orchestrator) rewriteProfile(ctx context.Context, st *State) error {
	if err := require(steps.RewriteProfile,
		precondition{"parsed candidate", st.Candidate != nil},
		precondition{"parsed job", st.Job != nil},
		precondition{"gap analysis", st.Gap != nil},
	); err != nil {
		return err
	}

	profile, err := o.deps.Rewriter.RewriteProfile(ctx, st.Candidate, st.Job, *st.Gap)
	if err != nil {
		return upstream("profile rewriter", err)
	}
	if profile == nil {
		return emptyResult("profile rewriter")
	}

	id, err := o.deps.Results.SaveRewrittenProfile(ctx, st.CandidateID, st.JobID, profile)
	if err != nil {
		return upstream("result store", err)
	}

	st.Profile = profile
	st.ProfileID = &id
	return nil
}

type precondition struct {
	name    string
	present bool
}

// require returns a PreconditionError naming every absent field.
func require(stage steps.Stage, fields ...precondition) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &PreconditionError{Stage: stage, Missing: missing}
	}
	return nil
}
