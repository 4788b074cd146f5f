package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

func TestStepRegistry(t *testing.T) {
	for _, stage := range Sequence {
		def, ok := StepRegistry[stage]
		require.True(t, ok, "Step %s should be in registry", stage)
		assert.Equal(t, stage, def.Name)
		assert.NotEmpty(t, def.Category)
	}
	assert.Len(t, StepRegistry, len(Sequence))
}

func TestSequence_FollowsTransitions(t *testing.T) {
	assert.Equal(t, []Stage{ParseCandidate, ParseJob, AnalyzeGap, GenerateProjects, RewriteProfile}, Sequence)
	assert.Equal(t, Start, Sequence[0])
	assert.Len(t, Transitions, len(StepRegistry))
}

func TestWalkTransitions(t *testing.T) {
	orig := Transitions
	t.Cleanup(func() { Transitions = orig })

	swapped := map[Stage][]Stage{
		ParseCandidate:   {ParseJob},
		ParseJob:         {AnalyzeGap},
		AnalyzeGap:       {RewriteProfile, GenerateProjects},
		GenerateProjects: {},
		RewriteProfile:   {},
	}
	join := map[Stage][]Stage{
		ParseCandidate:   {ParseJob, AnalyzeGap},
		ParseJob:         {AnalyzeGap},
		AnalyzeGap:       {GenerateProjects},
		GenerateProjects: {},
	}

	tests := []struct {
		name        string
		transitions map[Stage][]Stage
		want        []Stage
	}{
		{"sibling order follows the table", swapped, []Stage{ParseCandidate, ParseJob, AnalyzeGap, RewriteProfile, GenerateProjects}},
		{"join waits for every predecessor", join, []Stage{ParseCandidate, ParseJob, AnalyzeGap, GenerateProjects}},
		{"single stage", map[Stage][]Stage{ParseCandidate: {}}, []Stage{ParseCandidate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Transitions = tt.transitions
			assert.Equal(t, tt.want, walkTransitions(ParseCandidate))
		})
	}
}

func TestSequence_RespectsDependencies(t *testing.T) {
	position := make(map[Stage]int, len(Sequence))
	for i, stage := range Sequence {
		position[stage] = i
	}

	for _, stage := range Sequence {
		for _, dep := range StepRegistry[stage].Dependencies {
			assert.Less(t, position[dep], position[stage], "%s must run before %s", dep, stage)
		}
	}
}

func TestTransitions_FanOutAfterGap(t *testing.T) {
	assert.ElementsMatch(t, []Stage{GenerateProjects, RewriteProfile}, Transitions[AnalyzeGap])
	assert.True(t, IsTerminal(GenerateProjects))
	assert.True(t, IsTerminal(RewriteProfile))
	assert.False(t, IsTerminal(ParseCandidate))

	// Neither generation stage depends on the other.
	assert.NotContains(t, StepRegistry[GenerateProjects].Dependencies, RewriteProfile)
	assert.NotContains(t, StepRegistry[RewriteProfile].Dependencies, GenerateProjects)
}

func TestMissingDependencies(t *testing.T) {
	missing, err := MissingDependencies(AnalyzeGap, map[Stage]bool{ParseCandidate: true})
	require.NoError(t, err)
	assert.Equal(t, []Stage{ParseJob}, missing)

	missing, err = MissingDependencies(ParseCandidate, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = MissingDependencies("unknown", nil)
	assert.Error(t, err)
}

func TestDependencyError(t *testing.T) {
	err := &DependencyError{
		Step:                AnalyzeGap,
		MissingDependencies: []Stage{ParseJob},
	}

	assert.Contains(t, err.Error(), "missing dependencies")
	assert.Contains(t, err.Error(), "parse_job")
}

type fakeLookup struct {
	steps map[string]*types.RunStep
	err   error
}

func (f *fakeLookup) GetRunStep(_ context.Context, _ uuid.UUID, step string) (*types.RunStep, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.steps[step], nil
}

func TestValidateDependencies(t *testing.T) {
	runID := uuid.New()
	lookup := &fakeLookup{steps: map[string]*types.RunStep{
		string(ParseCandidate): {Step: string(ParseCandidate), Status: types.StepStatusCompleted},
		string(ParseJob):       {Step: string(ParseJob), Status: types.StepStatusFailed},
	}}

	err := ValidateDependencies(context.Background(), lookup, runID, AnalyzeGap)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, []Stage{ParseJob}, depErr.MissingDependencies)

	assert.NoError(t, ValidateDependencies(context.Background(), lookup, runID, ParseJob))
}

func TestValidateDependencies_LookupError(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection reset")}

	err := ValidateDependencies(context.Background(), lookup, uuid.New(), AnalyzeGap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetBlockedSteps(t *testing.T) {
	lookup := &fakeLookup{steps: map[string]*types.RunStep{
		string(ParseCandidate): {Status: types.StepStatusCompleted},
		string(ParseJob):       {Status: types.StepStatusFailed},
	}}

	blocked, err := GetBlockedSteps(context.Background(), lookup, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []Stage{AnalyzeGap, GenerateProjects, RewriteProfile}, blocked)
}
