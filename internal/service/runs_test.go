package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/queue"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

func TestEnqueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidateID, jobID := f.submitPair(t)

	runID, err := f.coach.Enqueue(ctx, candidateID, jobID)
	require.NoError(t, err)

	require.Len(t, f.queue.messages, 1)
	assert.Equal(t, queue.RunMessage{RunID: runID, CandidateID: candidateID, JobID: jobID}, f.queue.messages[0])
	require.Len(t, f.queue.updates, 1)
	assert.Equal(t, queue.StatusQueued, f.queue.updates[0].Status)

	status, err := f.coach.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusRunning, status.Run.Status)
	assert.Empty(t, status.Steps)
	assert.Empty(t, status.Blocked)
}

func TestEnqueue_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidateID, jobID := f.submitPair(t)

	_, err := f.coach.Enqueue(ctx, uuid.New(), jobID)
	assert.True(t, pipeline.IsNotFound(err))

	f.queue.err = errors.New("connection reset")
	_, err = f.coach.Enqueue(ctx, candidateID, jobID)
	assert.ErrorContains(t, err, "connection reset")

	f.coach.deps.Queue = nil
	_, err = f.coach.Enqueue(ctx, candidateID, jobID)
	assert.ErrorIs(t, err, ErrQueueDisabled)
}

func TestGetRun_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.coach.GetRun(context.Background(), uuid.New())
	assert.True(t, pipeline.IsNotFound(err))
}

func TestHandleRunMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidateID, jobID := f.submitPair(t)

	runID, err := f.coach.Enqueue(ctx, candidateID, jobID)
	require.NoError(t, err)

	var updates []queue.StatusUpdate
	err = f.coach.HandleRunMessage(ctx, f.queue.messages[0], func(u queue.StatusUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)

	require.Len(t, updates, 10)
	assert.Equal(t, "parse_candidate", updates[0].Stage)
	assert.Equal(t, "parse_candidate started", updates[0].Message)
	for _, u := range updates {
		assert.Equal(t, queue.StatusProcessing, u.Status)
	}

	status, err := f.coach.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, status.Run.Status)
	assert.Len(t, status.Steps, 5)
	assert.NotNil(t, status.Blocked)
	assert.Empty(t, status.Blocked)
}

func TestHandleRunMessage_MissingJobFailsRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidateID, _ := f.submitPair(t)

	runID, err := f.store.CreateRun(ctx, candidateID, uuid.New())
	require.NoError(t, err)

	err = f.coach.HandleRunMessage(ctx, queue.RunMessage{RunID: runID, CandidateID: candidateID, JobID: uuid.New()}, func(queue.StatusUpdate) {})
	require.Error(t, err)
	assert.True(t, pipeline.IsNotFound(err))

	status, err := f.coach.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusFailed, status.Run.Status)
	assert.Equal(t, []steps.Stage{steps.AnalyzeGap, steps.GenerateProjects, steps.RewriteProfile}, status.Blocked)
}

func TestGetRun_SkippedSiblingIsNotBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	candidateID, jobID := f.submitPair(t)
	f.collab.projectsErr = errors.New("model overloaded")

	runID, err := f.coach.Enqueue(ctx, candidateID, jobID)
	require.NoError(t, err)
	err = f.coach.HandleRunMessage(ctx, f.queue.messages[0], func(queue.StatusUpdate) {})
	require.Error(t, err)

	status, err := f.coach.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusFailed, status.Run.Status)
	require.Len(t, status.Steps, 5)
	assert.Equal(t, types.StepStatusSkipped, status.Steps[4].Status)
	assert.Empty(t, status.Blocked, "rewrite_profile had every dependency and was skipped, not blocked")
}
