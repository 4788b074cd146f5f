package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

var (
	_ pipeline.CandidateStore = (*Store)(nil)
	_ pipeline.JobStore       = (*Store)(nil)
	_ pipeline.ResultStore    = (*Store)(nil)
	_ pipeline.RunRecorder    = (*Store)(nil)
	_ steps.StepLookup        = (*Store)(nil)
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "coach.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestOpen_MigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestCandidate_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	key := "resumes/abc.pdf"
	c, err := s.CreateCandidate(ctx, "abc.pdf", "Jane Doe\nGo, SQL", &key)
	require.NoError(t, err)

	got, err := s.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc.pdf", got.OriginalFilename)
	assert.Equal(t, "Jane Doe\nGo, SQL", got.RawText)
	require.NotNil(t, got.ObjectKey)
	assert.Equal(t, key, *got.ObjectKey)
	assert.Nil(t, got.Parsed)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, s.SaveParsedCandidate(ctx, c.ID, &types.ParsedCandidate{Name: "Jane Doe", Skills: []string{"Go"}}))

	got, err = s.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane Doe","skills":["Go"],"experience":null,"projects":null,"education":null}`, string(got.Parsed))
}

func TestGetCandidate_MissingReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetCandidate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveParsed_UnknownIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.SaveParsedCandidate(ctx, uuid.New(), &types.ParsedCandidate{}))
	assert.Error(t, s.SaveParsedJob(ctx, uuid.New(), &types.ParsedJob{}))
}

func TestSaveParsed_NilClearsCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCandidate(ctx, "cv.txt", "Jane Doe", nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveParsedCandidate(ctx, c.ID, &types.ParsedCandidate{Name: "Jane Doe"}))
	require.NoError(t, s.SaveParsedCandidate(ctx, c.ID, nil))

	got, err := s.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Parsed)

	j, err := s.CreateJob(ctx, nil, nil, "Go engineer")
	require.NoError(t, err)
	require.NoError(t, s.SaveParsedJob(ctx, j.ID, nil))

	job, err := s.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Nil(t, job.Parsed)
}

func TestJob_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t.Run("pasted text has no url", func(t *testing.T) {
		j, err := s.CreateJob(ctx, nil, nil, "We need Go and AWS")
		require.NoError(t, err)

		got, err := s.GetJob(ctx, j.ID)
		require.NoError(t, err)
		assert.Nil(t, got.URL)
		assert.Nil(t, got.RawHTML)
		assert.Equal(t, "We need Go and AWS", got.ExtractedText)
	})

	t.Run("fetched posting keeps url and html", func(t *testing.T) {
		url := "https://jobs.example.com/42"
		html := "<p>We need Go</p>"
		j, err := s.CreateJob(ctx, &url, &html, "We need Go")
		require.NoError(t, err)

		require.NoError(t, s.SaveParsedJob(ctx, j.ID, &types.ParsedJob{JobTitle: "Engineer", RequiredSkills: []string{"Go"}}))

		got, err := s.GetJob(ctx, j.ID)
		require.NoError(t, err)
		require.NotNil(t, got.URL)
		assert.Equal(t, url, *got.URL)
		assert.Contains(t, string(got.Parsed), `"Engineer"`)
	})
}

func TestGapAnalysis_Latest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	candidateID, jobID := uuid.New(), uuid.New()

	_, err := s.SaveGapAnalysis(ctx, candidateID, jobID, skills.ComputeGap(nil, []string{"go"}, nil))
	require.NoError(t, err)
	secondID, err := s.SaveGapAnalysis(ctx, candidateID, jobID, skills.ComputeGap([]string{"go"}, []string{"go"}, nil))
	require.NoError(t, err)

	latest, err := s.GetLatestGapAnalysis(ctx, candidateID, jobID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, secondID, latest.ID)
	assert.Equal(t, []string{"go"}, latest.Analysis.Overlapping)
	assert.Equal(t, []string{}, latest.Analysis.WeakSkills)

	byID, err := s.GetGapAnalysis(ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, latest.Analysis, byID.Analysis)

	none, err := s.GetLatestGapAnalysis(ctx, uuid.New(), jobID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestProjectPlanAndProfile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	candidateID, jobID, analysisID := uuid.New(), uuid.New(), uuid.New()

	plan := &types.ProjectPlan{Projects: []types.ProjectIdea{{
		Title:        "Serverless uploader",
		SkillTargets: []string{"aws"},
		Difficulty:   types.DifficultyBeginner,
		Description:  "Upload files to S3",
	}}}
	planID, err := s.SaveProjectPlan(ctx, analysisID, candidateID, jobID, plan)
	require.NoError(t, err)

	gotPlan, err := s.GetLatestProjectPlan(ctx, analysisID)
	require.NoError(t, err)
	require.NotNil(t, gotPlan)
	assert.Equal(t, planID, gotPlan.ID)
	assert.Equal(t, *plan, gotPlan.Plan)

	profile := &types.RewrittenProfile{Name: "Jane", Skills: []string{"go"}}
	profileID, err := s.SaveRewrittenProfile(ctx, candidateID, jobID, profile)
	require.NoError(t, err)

	gotProfile, err := s.GetRewrittenProfile(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", gotProfile.Profile.Name)
}

func TestRunsAndSteps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, s.RecordStep(ctx, runID, &types.RunStep{Step: string(steps.ParseCandidate), Category: steps.CategoryParsing, Status: types.StepStatusCompleted}))
	msg := "boom"
	require.NoError(t, s.RecordStep(ctx, runID, &types.RunStep{Step: string(steps.ParseJob), Category: steps.CategoryParsing, Status: types.StepStatusInProgress}))
	require.NoError(t, s.RecordStep(ctx, runID, &types.RunStep{Step: string(steps.ParseJob), Category: steps.CategoryParsing, Status: types.StepStatusFailed, ErrorMessage: &msg}))

	list, err := s.ListRunSteps(ctx, runID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "parse_candidate", list[0].Step)
	assert.Equal(t, types.StepStatusFailed, list[1].Status)
	require.NotNil(t, list[1].ErrorMessage)
	assert.Equal(t, "boom", *list[1].ErrorMessage)

	blocked, err := steps.GetBlockedSteps(ctx, s, runID)
	require.NoError(t, err)
	assert.Contains(t, blocked, steps.AnalyzeGap)

	require.NoError(t, s.CompleteRun(ctx, runID, types.RunStatusFailed, &msg))
	run, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusFailed, run.Status)
	assert.NotNil(t, run.CompletedAt)
}

type stubParsers struct{}

func (stubParsers) ParseCandidate(context.Context, string) (*types.ParsedCandidate, error) {
	return &types.ParsedCandidate{Name: "Jane", Skills: []string{"JavaScript", "Go"}}, nil
}

func (stubParsers) ParseJob(context.Context, string) (*types.ParsedJob, error) {
	return &types.ParsedJob{JobTitle: "Engineer", RequiredSkills: []string{"js", "AWS"}}, nil
}

func (stubParsers) GenerateProjects(context.Context, skills.GapResult) ([]types.ProjectIdea, error) {
	return []types.ProjectIdea{{Title: "Lambda API", SkillTargets: []string{"AWS"}, Difficulty: types.DifficultyBeginner, Description: "x"}}, nil
}

func (stubParsers) RewriteProfile(_ context.Context, c *types.ParsedCandidate, _ *types.ParsedJob, _ skills.GapResult) (*types.RewrittenProfile, error) {
	return &types.RewrittenProfile{Name: c.Name, Skills: c.Skills}, nil
}

func TestOrchestratorAgainstStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCandidate(ctx, "r.txt", "Jane\nJavaScript, Go", nil)
	require.NoError(t, err)
	j, err := s.CreateJob(ctx, nil, nil, "Engineer needing js and AWS")
	require.NoError(t, err)

	o := pipeline.New(pipeline.Deps{
		Candidates:      s,
		Jobs:            s,
		Results:         s,
		CandidateParser: stubParsers{},
		JobParser:       stubParsers{},
		Projects:        stubParsers{},
		Rewriter:        stubParsers{},
		Runs:            s,
	}, zap.NewNop())

	state, err := o.Run(ctx, c.ID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"js"}, state.Gap.Overlapping)
	assert.Equal(t, []string{"AWS"}, state.Gap.MissingRequired)

	stored, err := s.GetLatestGapAnalysis(ctx, c.ID, j.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *state.AnalysisID, stored.ID)

	cached, err := s.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, cached.Parsed)

	run, err := s.GetRun(ctx, state.RunID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)

	recorded, err := s.ListRunSteps(ctx, state.RunID)
	require.NoError(t, err)
	assert.NotEmpty(t, recorded)
}
