// Package service implements the single-step coaching operations behind the API
// and delegates full runs to the pipeline orchestrator.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/blob"
	"github.com/victorzhu443/firstplay-backend/internal/export"
	"github.com/victorzhu443/firstplay-backend/internal/ingestion"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/queue"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Store is the persistence surface used by Coach. Both database backends implement it.
// Getters return nil, nil for missing records.
type Store interface {
	pipeline.CandidateStore
	pipeline.JobStore
	pipeline.ResultStore
	pipeline.RunRecorder
	steps.StepLookup

	CreateCandidate(ctx context.Context, filename, rawText string, objectKey *string) (*types.CandidateRecord, error)
	CreateJob(ctx context.Context, url, rawHTML *string, extractedText string) (*types.JobRecord, error)
	GetGapAnalysis(ctx context.Context, id uuid.UUID) (*types.GapAnalysisRecord, error)
	GetLatestGapAnalysis(ctx context.Context, candidateID, jobID uuid.UUID) (*types.GapAnalysisRecord, error)
	GetLatestProjectPlan(ctx context.Context, analysisID uuid.UUID) (*types.ProjectPlanRecord, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*types.PipelineRun, error)
	ListRunSteps(ctx context.Context, runID uuid.UUID) ([]types.RunStep, error)
}

// BlobStore keeps original resume files.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// JobFetcher downloads a job posting and extracts its text.
type JobFetcher interface {
	Fetch(ctx context.Context, url string) (*ingestion.JobPage, error)
}

// RunQueue hands runs to background workers.
type RunQueue interface {
	Enqueue(msg queue.RunMessage) error
	PublishStatus(update queue.StatusUpdate) error
}

// Deps are the collaborators of a Coach. Blobs and Queue are optional.
type Deps struct {
	Store   Store
	Blobs   BlobStore
	Fetcher JobFetcher
	Queue   RunQueue

	CandidateParser pipeline.CandidateParser
	JobParser       pipeline.JobParser
	Projects        pipeline.ProjectGenerator
	Rewriter        pipeline.ProfileRewriter
}

// Coach runs individual coaching steps and full pipeline runs.
type Coach struct {
	deps         Deps
	orchestrator *pipeline.Orchestrator
	logger       *zap.Logger
}

// New creates a Coach and its orchestrator.
func New(deps Deps, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{
		deps: deps,
		orchestrator: pipeline.New(pipeline.Deps{
			Candidates:      deps.Store,
			Jobs:            deps.Store,
			Results:         deps.Store,
			CandidateParser: deps.CandidateParser,
			JobParser:       deps.JobParser,
			Projects:        deps.Projects,
			Rewriter:        deps.Rewriter,
			Runs:            deps.Store,
		}, logger),
		logger: logger,
	}
}

// Submission identifies a newly stored resume or job description.
type Submission struct {
	ID      uuid.UUID
	Preview string
}

// UploadCandidate extracts the text of an uploaded resume and stores it.
// The original file is kept in the blob store when one is configured; a storage
// failure is logged and the upload proceeds without it.
func (c *Coach) UploadCandidate(ctx context.Context, filename, contentType string, data []byte) (*Submission, error) {
	text, err := ingestion.ExtractResumeText(filename, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrUnsupportedFormat), errors.Is(err, ingestion.ErrEmptyDocument):
			return nil, &InputError{Message: err.Error()}
		default:
			return nil, &InputError{Message: "Error processing file", Err: err}
		}
	}

	var objectKey *string
	if c.deps.Blobs != nil {
		key := blob.ResumeKey(filename)
		if err := c.deps.Blobs.Put(ctx, key, contentType, data); err != nil {
			c.logger.Warn("failed to store resume file", zap.String("filename", filename), zap.Error(err))
		} else {
			objectKey = &key
		}
	}

	record, err := c.deps.Store.CreateCandidate(ctx, filename, text, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	c.logger.Info("resume uploaded", zap.String("resume_id", record.ID.String()), zap.Int("chars", len(text)))
	return &Submission{ID: record.ID, Preview: ingestion.Preview(text)}, nil
}

// SubmitJobURL fetches a job posting and stores its extracted text.
func (c *Coach) SubmitJobURL(ctx context.Context, url string) (*Submission, error) {
	req := types.JobURLRequest{URL: url}
	if err := req.Validate(); err != nil {
		return nil, &InputError{Message: "invalid url", Err: err}
	}

	page, err := c.deps.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoJobText) {
			return nil, &InputError{Message: err.Error()}
		}
		return nil, err
	}

	record, err := c.deps.Store.CreateJob(ctx, &req.URL, &page.HTML, page.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to save job description: %w", err)
	}
	c.logger.Info("job posting fetched",
		zap.String("job_id", record.ID.String()),
		zap.String("platform", string(page.Platform)),
		zap.Bool("rendered", page.Rendered))
	return &Submission{ID: record.ID, Preview: ingestion.Preview(page.Text)}, nil
}

// SubmitJobText stores a pasted job description.
func (c *Coach) SubmitJobText(ctx context.Context, text string) (*Submission, error) {
	req := types.JobTextRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, &InputError{Message: "invalid job description", Err: err}
	}

	record, err := c.deps.Store.CreateJob(ctx, nil, nil, req.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to save job description: %w", err)
	}
	return &Submission{ID: record.ID, Preview: ingestion.Preview(req.Text)}, nil
}

// ParseCandidate parses the stored resume text and overwrites any earlier parse.
func (c *Coach) ParseCandidate(ctx context.Context, id uuid.UUID) (*types.ParsedCandidate, error) {
	record, err := c.candidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.RawText == "" {
		return nil, &InputError{Message: "Resume has no text to parse"}
	}

	parsed, err := c.deps.CandidateParser.ParseCandidate(ctx, record.RawText)
	if err != nil {
		return nil, fmt.Errorf("error parsing resume: %w", err)
	}
	if parsed == nil {
		return nil, errEmptyParse
	}
	if err := c.deps.Store.SaveParsedCandidate(ctx, id, parsed); err != nil {
		return nil, fmt.Errorf("failed to save parsed resume: %w", err)
	}
	return parsed, nil
}

// ParseJob parses the stored job text and overwrites any earlier parse.
func (c *Coach) ParseJob(ctx context.Context, id uuid.UUID) (*types.ParsedJob, error) {
	record, err := c.job(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.ExtractedText == "" {
		return nil, &InputError{Message: "Job description has no text to parse"}
	}

	parsed, err := c.deps.JobParser.ParseJob(ctx, record.ExtractedText)
	if err != nil {
		return nil, fmt.Errorf("error parsing job description: %w", err)
	}
	if parsed == nil {
		return nil, errEmptyParse
	}
	if err := c.deps.Store.SaveParsedJob(ctx, id, parsed); err != nil {
		return nil, fmt.Errorf("failed to save parsed job description: %w", err)
	}
	return parsed, nil
}

// Analyze computes and stores the gap between a parsed resume and a parsed job.
func (c *Coach) Analyze(ctx context.Context, candidateID, jobID uuid.UUID) (*types.GapAnalysisRecord, error) {
	candidate, job, err := c.parsedPair(ctx, candidateID, jobID)
	if err != nil {
		return nil, err
	}

	gap := types.ComputeGapFromProfiles(candidate, job)
	id, err := c.deps.Store.SaveGapAnalysis(ctx, candidateID, jobID, gap)
	if err != nil {
		return nil, fmt.Errorf("failed to save gap analysis: %w", err)
	}
	return &types.GapAnalysisRecord{ID: id, CandidateID: candidateID, JobID: jobID, Analysis: gap}, nil
}

// GenerateProjects proposes projects for a stored gap analysis.
func (c *Coach) GenerateProjects(ctx context.Context, analysisID uuid.UUID) (*types.ProjectPlanRecord, error) {
	analysis, err := c.analysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	ideas, err := c.deps.Projects.GenerateProjects(ctx, analysis.Analysis)
	if err != nil {
		return nil, fmt.Errorf("error generating projects: %w", err)
	}
	if ideas == nil {
		ideas = []types.ProjectIdea{}
	}

	plan := types.ProjectPlan{Projects: ideas}
	id, err := c.deps.Store.SaveProjectPlan(ctx, analysisID, analysis.CandidateID, analysis.JobID, &plan)
	if err != nil {
		return nil, fmt.Errorf("failed to save project plan: %w", err)
	}
	return &types.ProjectPlanRecord{
		ID:          id,
		AnalysisID:  analysisID,
		CandidateID: analysis.CandidateID,
		JobID:       analysis.JobID,
		Plan:        plan,
	}, nil
}

// Rewrite tailors the resume to the job using the latest gap analysis for the pair.
func (c *Coach) Rewrite(ctx context.Context, candidateID, jobID uuid.UUID) (*types.RewrittenProfileRecord, error) {
	candidate, job, err := c.parsedPair(ctx, candidateID, jobID)
	if err != nil {
		return nil, err
	}

	analysis, err := c.deps.Store.GetLatestGapAnalysis(ctx, candidateID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gap analysis: %w", err)
	}
	if analysis == nil {
		return nil, errNoAnalysis
	}

	profile, err := c.deps.Rewriter.RewriteProfile(ctx, candidate, job, analysis.Analysis)
	if err != nil {
		return nil, fmt.Errorf("error improving resume: %w", err)
	}
	if profile == nil {
		return nil, errors.New("error improving resume: rewriter returned no result")
	}

	id, err := c.deps.Store.SaveRewrittenProfile(ctx, candidateID, jobID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to save improved resume: %w", err)
	}
	return &types.RewrittenProfileRecord{ID: id, CandidateID: candidateID, JobID: jobID, Profile: *profile}, nil
}

// RunPipeline runs every stage for the pair. onProgress may be nil.
func (c *Coach) RunPipeline(ctx context.Context, candidateID, jobID uuid.UUID, onProgress pipeline.ProgressCallback) (*pipeline.State, error) {
	return c.orchestrator.RunWithOptions(ctx, pipeline.RunOptions{
		CandidateID: candidateID,
		JobID:       jobID,
		OnProgress:  onProgress,
	})
}

// ExportGapReport writes the analysis and its latest project plan as an .xlsx workbook.
func (c *Coach) ExportGapReport(ctx context.Context, analysisID uuid.UUID, w io.Writer) error {
	analysis, err := c.analysis(ctx, analysisID)
	if err != nil {
		return err
	}
	plan, err := c.deps.Store.GetLatestProjectPlan(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load project plan: %w", err)
	}

	var p *types.ProjectPlan
	if plan != nil {
		p = &plan.Plan
	}
	return export.WriteGapReport(w, analysis.Analysis, p)
}

func (c *Coach) candidate(ctx context.Context, id uuid.UUID) (*types.CandidateRecord, error) {
	record, err := c.deps.Store.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	if record == nil {
		return nil, &pipeline.NotFoundError{Kind: "resume", ID: id}
	}
	return record, nil
}

func (c *Coach) job(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	record, err := c.deps.Store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load job description: %w", err)
	}
	if record == nil {
		return nil, &pipeline.NotFoundError{Kind: "job description", ID: id}
	}
	return record, nil
}

func (c *Coach) analysis(ctx context.Context, id uuid.UUID) (*types.GapAnalysisRecord, error) {
	analysis, err := c.deps.Store.GetGapAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load gap analysis: %w", err)
	}
	if analysis == nil {
		return nil, &pipeline.NotFoundError{Kind: "gap analysis", ID: id}
	}
	return analysis, nil
}

// parsedPair loads both records and decodes their parsed payloads.
func (c *Coach) parsedPair(ctx context.Context, candidateID, jobID uuid.UUID) (*types.ParsedCandidate, *types.ParsedJob, error) {
	candidateRecord, err := c.candidate(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}
	if len(candidateRecord.Parsed) == 0 {
		return nil, nil, errCandidateNotParsed
	}
	jobRecord, err := c.job(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if len(jobRecord.Parsed) == 0 {
		return nil, nil, errJobNotParsed
	}

	var candidate types.ParsedCandidate
	if err := json.Unmarshal(candidateRecord.Parsed, &candidate); err != nil {
		return nil, nil, fmt.Errorf("error parsing stored resume JSON: %w", err)
	}
	var job types.ParsedJob
	if err := json.Unmarshal(jobRecord.Parsed, &job); err != nil {
		return nil, nil, fmt.Errorf("error parsing stored job JSON: %w", err)
	}
	return &candidate, &job, nil
}
