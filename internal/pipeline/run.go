// Package pipeline sequences candidate parsing, job parsing, gap analysis, and the
// two generation stages, threading a State through each and recording the first failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Progress statuses reported through ProgressCallback.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    steps.Stage `json:"step"`
	Category string      `json:"category"`
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	RunID    string      `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds the inputs of one run.
type RunOptions struct {
	CandidateID uuid.UUID
	JobID       uuid.UUID
	// RunID attaches the run to a record created earlier, e.g. when it was queued.
	// When zero and a RunRecorder is configured, a new record is created.
	RunID      uuid.UUID
	OnProgress ProgressCallback
}

type stageFunc func(ctx context.Context, st *State) error

// Orchestrator runs the pipeline stages against injected collaborators.
// It is safe for concurrent use; every run builds its own State.
type Orchestrator struct {
	deps     Deps
	logger   *zap.Logger
	handlers map[steps.Stage]stageFunc
}

// New creates an Orchestrator.
func New(deps Deps, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{deps: deps, logger: logger}
	o.handlers = map[steps.Stage]stageFunc{
		steps.ParseCandidate:   o.parseCandidate,
		steps.ParseJob:         o.parseJob,
		steps.AnalyzeGap:       o.analyzeGap,
		steps.GenerateProjects: o.generateProjects,
		steps.RewriteProfile:   o.rewriteProfile,
	}
	return o
}

// Run executes every stage for the candidate/job pair and returns the final state.
// When a stage failed, the state is still returned along with a *RunError.
func (o *Orchestrator) Run(ctx context.Context, candidateID, jobID uuid.UUID) (*State, error) {
	return o.RunWithOptions(ctx, RunOptions{CandidateID: candidateID, JobID: jobID})
}

// RunWithOptions is Run with a progress callback.
func (o *Orchestrator) RunWithOptions(ctx context.Context, opts RunOptions) (*State, error) {
	st := NewState(opts.CandidateID, opts.JobID)
	log := o.logger.With(
		zap.String("candidate_id", opts.CandidateID.String()),
		zap.String("job_id", opts.JobID.String()),
	)

	if opts.RunID != uuid.Nil {
		st.RunID = opts.RunID
	} else {
		o.startRun(ctx, st, log)
	}

	for _, stage := range steps.Sequence {
		o.runStage(ctx, st, stage, opts.OnProgress, log)
	}

	o.completeRun(ctx, st, log)

	if st.Err != nil {
		return st, &RunError{Err: st.Err}
	}
	return st, nil
}

func (o *Orchestrator) runStage(ctx context.Context, st *State, stage steps.Stage, onProgress ProgressCallback, log *zap.Logger) {
	log = log.With(zap.String("stage", string(stage)))

	if st.Err != nil {
		log.Debug("stage skipped after earlier failure")
		o.emit(onProgress, st, stage, StatusSkipped, "skipped after earlier failure")
		o.recordStep(ctx, st, stage, types.StepStatusSkipped, 0, nil, log)
		return
	}

	missing, err := steps.MissingDependencies(stage, st.completed)
	if err == nil && len(missing) > 0 {
		err = &steps.DependencyError{Step: stage, MissingDependencies: missing}
	}
	if err != nil {
		st.fail(stage, err)
		o.emit(onProgress, st, stage, StatusFailed, err.Error())
		o.recordStep(ctx, st, stage, types.StepStatusFailed, 0, err, log)
		return
	}

	o.emit(onProgress, st, stage, StatusStarted, "")
	start := time.Now()
	err = o.handlers[stage](ctx, st)
	duration := time.Since(start)

	if err != nil {
		st.fail(stage, err)
		log.Warn("stage failed", zap.Duration("duration", duration), zap.Error(err))
		o.emit(onProgress, st, stage, StatusFailed, err.Error())
		o.recordStep(ctx, st, stage, types.StepStatusFailed, duration, err, log)
		return
	}

	st.completed[stage] = true
	log.Info("stage completed", zap.Duration("duration", duration))
	o.emit(onProgress, st, stage, StatusCompleted, "")
	o.recordStep(ctx, st, stage, types.StepStatusCompleted, duration, nil, log)
}

func (o *Orchestrator) emit(cb ProgressCallback, st *State, stage steps.Stage, status, message string) {
	if cb == nil {
		return
	}
	event := ProgressEvent{
		Stage:    stage,
		Category: steps.StepRegistry[stage].Category,
		Status:   status,
		Message:  message,
	}
	if st.RunID != uuid.Nil {
		event.RunID = st.RunID.String()
	}
	cb(event)
}

func (o *Orchestrator) startRun(ctx context.Context, st *State, log *zap.Logger) {
	if o.deps.Runs == nil {
		return
	}
	runID, err := o.deps.Runs.CreateRun(ctx, st.CandidateID, st.JobID)
	if err != nil {
		log.Warn("failed to record run start", zap.Error(err))
		return
	}
	st.RunID = runID
}

func (o *Orchestrator) recordStep(ctx context.Context, st *State, stage steps.Stage, status string, duration time.Duration, stepErr error, log *zap.Logger) {
	if o.deps.Runs == nil || st.RunID == uuid.Nil {
		return
	}
	step := &types.RunStep{
		RunID:      st.RunID,
		Step:       string(stage),
		Category:   steps.StepRegistry[stage].Category,
		Status:     status,
		DurationMs: duration.Milliseconds(),
	}
	if stepErr != nil {
		msg := stepErr.Error()
		step.ErrorMessage = &msg
	}
	if err := o.deps.Runs.RecordStep(ctx, st.RunID, step); err != nil {
		log.Warn("failed to record step", zap.Error(err))
	}
}

func (o *Orchestrator) completeRun(ctx context.Context, st *State, log *zap.Logger) {
	if st.Err != nil {
		log.Error("pipeline run failed", zap.Error(st.Err))
	} else {
		log.Info("pipeline run completed")
	}

	if o.deps.Runs == nil || st.RunID == uuid.Nil {
		return
	}
	status := types.RunStatusCompleted
	var errMsg *string
	if st.Err != nil {
		status = types.RunStatusFailed
		msg := st.Err.Error()
		errMsg = &msg
	}
	if err := o.deps.Runs.CompleteRun(ctx, st.RunID, status, errMsg); err != nil {
		log.Warn("failed to record run completion", zap.Error(err))
	}
}

// IsNotFound reports whether err stems from a missing candidate or job record.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPrecondition reports whether err stems from a stage running without its inputs.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	var de *steps.DependencyError
	return errors.As(err, &pe) || errors.As(err, &de)
}

func upstream(collaborator string, err error) error {
	return &UpstreamError{Collaborator: collaborator, Cause: err}
}

func emptyResult(collaborator string) error {
	return upstream(collaborator, fmt.Errorf("returned no result"))
}
