package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/queue"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// RunStatus is a stored run with its recorded stages. Blocked lists the stages
// of a failed run that could not start because a dependency did not complete.
type RunStatus struct {
	Run     *types.PipelineRun `json:"run"`
	Steps   []types.RunStep    `json:"steps"`
	Blocked []steps.Stage      `json:"blocked"`
}

// Enqueue records a run and hands it to the background workers.
func (c *Coach) Enqueue(ctx context.Context, candidateID, jobID uuid.UUID) (uuid.UUID, error) {
	if c.deps.Queue == nil {
		return uuid.Nil, ErrQueueDisabled
	}
	if _, err := c.candidate(ctx, candidateID); err != nil {
		return uuid.Nil, err
	}
	if _, err := c.job(ctx, jobID); err != nil {
		return uuid.Nil, err
	}

	runID, err := c.deps.Store.CreateRun(ctx, candidateID, jobID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	if err := c.deps.Queue.Enqueue(queue.RunMessage{RunID: runID, CandidateID: candidateID, JobID: jobID}); err != nil {
		msg := "failed to enqueue run"
		if cerr := c.deps.Store.CompleteRun(ctx, runID, types.RunStatusFailed, &msg); cerr != nil {
			c.logger.Warn("failed to mark run failed", zap.Error(cerr))
		}
		return uuid.Nil, fmt.Errorf("%s: %w", msg, err)
	}

	if err := c.deps.Queue.PublishStatus(queue.StatusUpdate{RunID: runID, Status: queue.StatusQueued, Message: "run queued"}); err != nil {
		c.logger.Warn("failed to publish queued status", zap.String("run_id", runID.String()), zap.Error(err))
	}
	return runID, nil
}

// GetRun returns a stored run and its steps.
func (c *Coach) GetRun(ctx context.Context, runID uuid.UUID) (*RunStatus, error) {
	run, err := c.deps.Store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return nil, &pipeline.NotFoundError{Kind: "run", ID: runID}
	}
	recorded, err := c.deps.Store.ListRunSteps(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run steps: %w", err)
	}

	status := &RunStatus{Run: run, Steps: recorded, Blocked: []steps.Stage{}}
	if run.Status == types.RunStatusFailed {
		blocked, err := steps.GetBlockedSteps(ctx, c.deps.Store, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve blocked steps: %w", err)
		}
		if blocked != nil {
			status.Blocked = blocked
		}
	}
	return status, nil
}

// HandleRunMessage executes a queued run. It is the queue.Handler used by workers;
// each stage event is forwarded through notify.
func (c *Coach) HandleRunMessage(ctx context.Context, msg queue.RunMessage, notify func(queue.StatusUpdate)) error {
	_, err := c.orchestrator.RunWithOptions(ctx, pipeline.RunOptions{
		CandidateID: msg.CandidateID,
		JobID:       msg.JobID,
		RunID:       msg.RunID,
		OnProgress: func(event pipeline.ProgressEvent) {
			message := event.Message
			if message == "" {
				message = string(event.Stage) + " " + event.Status
			}
			notify(queue.StatusUpdate{
				Status:  queue.StatusProcessing,
				Stage:   string(event.Stage),
				Message: message,
			})
		},
	})
	return err
}
