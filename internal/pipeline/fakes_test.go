package pipeline

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

type memoryStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*types.CandidateRecord
	jobs       map[uuid.UUID]*types.JobRecord
	gaps       map[uuid.UUID]skills.GapResult
	plans      map[uuid.UUID]*types.ProjectPlan
	profiles   map[uuid.UUID]*types.RewrittenProfile

	getErr  error
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		candidates: map[uuid.UUID]*types.CandidateRecord{},
		jobs:       map[uuid.UUID]*types.JobRecord{},
		gaps:       map[uuid.UUID]skills.GapResult{},
		plans:      map[uuid.UUID]*types.ProjectPlan{},
		profiles:   map[uuid.UUID]*types.RewrittenProfile{},
	}
}

func (m *memoryStore) addCandidate(text string) uuid.UUID {
	id := uuid.New()
	m.candidates[id] = &types.CandidateRecord{ID: id, RawText: text}
	return id
}

func (m *memoryStore) addJob(text string) uuid.UUID {
	id := uuid.New()
	m.jobs[id] = &types.JobRecord{ID: id, ExtractedText: text}
	return id
}

func (m *memoryStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.CandidateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.candidates[id], nil
}

func (m *memoryStore) SaveParsedCandidate(_ context.Context, id uuid.UUID, parsed *types.ParsedCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(parsed)
	if err != nil {
		return err
	}
	m.candidates[id].Parsed = data
	return nil
}

func (m *memoryStore) GetJob(_ context.Context, id uuid.UUID) (*types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id], nil
}

func (m *memoryStore) SaveParsedJob(_ context.Context, id uuid.UUID, parsed *types.ParsedJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(parsed)
	if err != nil {
		return err
	}
	m.jobs[id].Parsed = data
	return nil
}

func (m *memoryStore) SaveGapAnalysis(_ context.Context, _, _ uuid.UUID, gap skills.GapResult) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return uuid.Nil, m.saveErr
	}
	id := uuid.New()
	m.gaps[id] = gap
	return id, nil
}

func (m *memoryStore) SaveProjectPlan(_ context.Context, _, _, _ uuid.UUID, plan *types.ProjectPlan) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.plans[id] = plan
	return id, nil
}

func (m *memoryStore) SaveRewrittenProfile(_ context.Context, _, _ uuid.UUID, profile *types.RewrittenProfile) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.profiles[id] = profile
	return id, nil
}

type fakeCandidateParser struct {
	calls  int
	result *types.ParsedCandidate
	err    error
}

func (f *fakeCandidateParser) ParseCandidate(_ context.Context, _ string) (*types.ParsedCandidate, error) {
	f.calls++
	return f.result, f.err
}

type fakeJobParser struct {
	calls  int
	result *types.ParsedJob
	err    error
}

func (f *fakeJobParser) ParseJob(_ context.Context, _ string) (*types.ParsedJob, error) {
	f.calls++
	return f.result, f.err
}

type fakeGenerator struct {
	calls int
	gap   skills.GapResult
	ideas []types.ProjectIdea
	err   error
}

func (f *fakeGenerator) GenerateProjects(_ context.Context, gap skills.GapResult) ([]types.ProjectIdea, error) {
	f.calls++
	f.gap = gap
	return f.ideas, f.err
}

type fakeRewriter struct {
	calls   int
	profile *types.RewrittenProfile
	err     error
}

func (f *fakeRewriter) RewriteProfile(_ context.Context, c *types.ParsedCandidate, _ *types.ParsedJob, _ skills.GapResult) (*types.RewrittenProfile, error) {
	f.calls++
	if f.profile == nil && f.err == nil {
		return &types.RewrittenProfile{Name: c.Name, Skills: c.Skills}, nil
	}
	return f.profile, f.err
}

type fakeRecorder struct {
	runID    uuid.UUID
	steps    []*types.RunStep
	status   string
	errMsg   *string
	startErr error
}

func (f *fakeRecorder) CreateRun(_ context.Context, _, _ uuid.UUID) (uuid.UUID, error) {
	if f.startErr != nil {
		return uuid.Nil, f.startErr
	}
	f.runID = uuid.New()
	return f.runID, nil
}

func (f *fakeRecorder) RecordStep(_ context.Context, _ uuid.UUID, step *types.RunStep) error {
	f.steps = append(f.steps, step)
	return nil
}

func (f *fakeRecorder) CompleteRun(_ context.Context, _ uuid.UUID, status string, errMsg *string) error {
	f.status = status
	f.errMsg = errMsg
	return nil
}
