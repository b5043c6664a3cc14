package evaluatematchbatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/matching"
	"match-workers/internal/models"
	"match-workers/internal/repository"
	"match-workers/internal/search"
)

// ==========================
// Test Helper Functions
// ==========================

var asOf = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, MaxCounterparts: 10}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type fakeProfiles struct {
	candidates map[string]models.CandidateProfile
	jobs       map[string]models.JobProfile
	err        error
}

func (f *fakeProfiles) Candidate(_ context.Context, id string) (models.CandidateProfile, error) {
	if f.err != nil {
		return models.CandidateProfile{}, f.err
	}
	c, ok := f.candidates[id]
	if !ok {
		return c, fmt.Errorf("candidate %s: %w", id, repository.ErrNotFound)
	}
	return c, nil
}

func (f *fakeProfiles) Candidates(_ context.Context, ids []string) ([]models.CandidateProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CandidateProfile
	for _, id := range ids {
		if c, ok := f.candidates[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeProfiles) Job(_ context.Context, id string) (models.JobProfile, error) {
	if f.err != nil {
		return models.JobProfile{}, f.err
	}
	j, ok := f.jobs[id]
	if !ok {
		return j, fmt.Errorf("job %s: %w", id, repository.ErrNotFound)
	}
	return j, nil
}

func (f *fakeProfiles) Jobs(_ context.Context, ids []string) ([]models.JobProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.JobProfile
	for _, id := range ids {
		if j, ok := f.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeIndex struct {
	batchID  string
	registry string
	results  []models.MatchResult
	err      error
}

func (f *fakeIndex) IndexResults(_ context.Context, batchID, registryVersion string, results []models.MatchResult) (search.IndexStats, error) {
	f.batchID, f.registry, f.results = batchID, registryVersion, results
	if f.err != nil {
		return search.IndexStats{}, f.err
	}
	return search.IndexStats{Indexed: len(results)}, nil
}

type failingRegistry struct{}

func (failingRegistry) Registry(context.Context) (*matching.Registry, error) {
	return nil, errors.New("relation \"tech_domains\" does not exist")
}

// publishingRegistry serves a new registry version on every load.
type publishingRegistry struct {
	loads int
}

func (r *publishingRegistry) Registry(context.Context) (*matching.Registry, error) {
	r.loads++
	return matching.NewRegistry(models.DomainRegistrySnapshot{
		Version: fmt.Sprintf("reg-%d", r.loads),
		Domains: []models.TechDomain{
			{Key: "backend_java", PrimarySkills: []string{"Java", "Spring"}, Weight: 1, Active: true},
		},
	}), nil
}

type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ models.CandidateProfile, _ models.JobProfile) (matching.PairData, error) {
	<-ctx.Done()
	return matching.PairData{}, ctx.Err()
}

type fakeResolver struct {
	fail map[string]error
}

func (f fakeResolver) Resolve(_ context.Context, _ models.CandidateProfile, j models.JobProfile) (matching.PairData, error) {
	if err, ok := f.fail[j.ID]; ok {
		return matching.PairData{}, err
	}
	return matching.PairData{}, nil
}

func fp(v float64) *float64 { return &v }

func testRegistry() matching.StaticRegistry {
	return matching.StaticRegistry{R: matching.NewRegistry(models.DomainRegistrySnapshot{
		Version: "reg-1",
		Domains: []models.TechDomain{
			{Key: "backend_java", PrimarySkills: []string{"Java", "Spring"}, Weight: 1, Active: true},
			{Key: "cloud_devops", PrimarySkills: []string{"AWS", "Kubernetes"}, Weight: 0.8, Active: true},
			{Key: "embedded_hardware", PrimarySkills: []string{"C", "RTOS"}, IncompatibleWith: []string{"design"},
				Weight: 1, Active: true},
			{Key: "design", PrimarySkills: []string{"Figma"}, Weight: 1, Active: true},
		},
	})}
}

func javaCandidate(id string) models.CandidateProfile {
	return models.CandidateProfile{
		ID:              id,
		Title:           "Senior Java Developer",
		Skills:          []string{"Java", "Spring", "AWS"},
		YearsExperience: fp(6),
		Seniority:       models.SenioritySenior,
		Salary:          models.SalaryExpectation{Point: fp(70000)},
	}
}

func designCandidate(id string) models.CandidateProfile {
	return models.CandidateProfile{ID: id, DomainKey: "design", Skills: []string{"Figma"}}
}

func javaJob(id string) models.JobProfile {
	return models.JobProfile{
		ID:             id,
		Title:          "Backend Java Engineer",
		MustHaveSkills: []string{"Java", "Spring", "Kubernetes"},
		Experience:     models.YearsRange{Min: fp(5), Max: fp(8)},
		Seniority:      models.SenioritySenior,
		Salary:         models.SalaryRange{Min: fp(65000), Max: fp(85000)},
	}
}

func embeddedJob(id string) models.JobProfile {
	return models.JobProfile{ID: id, DomainKey: "embedded_hardware", MustHaveSkills: []string{"C", "RTOS"}}
}

func testProfiles() *fakeProfiles {
	return &fakeProfiles{
		candidates: map[string]models.CandidateProfile{
			"cand-1": javaCandidate("cand-1"),
			"cand-2": javaCandidate("cand-2"),
			"cand-3": designCandidate("cand-3"),
		},
		jobs: map[string]models.JobProfile{
			"job-1": javaJob("job-1"),
			"job-2": embeddedJob("job-2"),
		},
	}
}

func newHandler(t *testing.T, cfg *Config, resolver matching.PairResolver, deps Dependencies) *Handler {
	t.Helper()
	return newHandlerWithRegistry(t, cfg, testRegistry(), resolver, deps)
}

func newHandlerWithRegistry(t *testing.T, cfg *Config, registry matching.RegistrySource, resolver matching.PairResolver, deps Dependencies) *Handler {
	t.Helper()
	engine, err := matching.NewEngine(matching.DefaultConfig())
	require.NoError(t, err)
	if deps.Profiles == nil {
		deps.Profiles = testProfiles()
	}
	deps.Batch = matching.NewBatch(engine, registry, resolver, matching.BatchOptions{
		Concurrency: 2,
		Now:         func() time.Time { return asOf },
	}, createTestLogger(t))
	deps.NewID = func() string { return "batch-1" }
	if cfg == nil {
		cfg = createTestConfig()
	}
	return NewHandler(cfg, deps, createTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ForJob(t *testing.T) {
	h := newHandler(t, nil, nil, Dependencies{})

	out, err := h.Execute(context.Background(), &Input{
		SubjectType:    SubjectJob,
		SubjectID:      "job-1",
		CounterpartIDs: []string{"cand-3", "cand-2", "cand-1", "cand-1", "ghost"},
	})

	require.NoError(t, err)
	assert.Equal(t, "batch-1", out.BatchID)
	assert.Equal(t, "job-1", out.SubjectID)
	assert.Equal(t, "reg-1", out.RegistryVersion)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, []string{"ghost"}, out.MissingIDs)
	assert.Nil(t, out.Indexed)

	require.Len(t, out.Results, 3)
	// Equal java candidates tie on tier and score, so the id breaks the tie.
	assert.Equal(t, "cand-1", out.Results[0].CandidateID)
	assert.Equal(t, "cand-2", out.Results[1].CandidateID)
	assert.Equal(t, "cand-3", out.Results[2].CandidateID)
	for _, r := range out.Results {
		assert.Equal(t, "job-1", r.JobID)
		assert.Equal(t, models.ModeExact, r.Mode)
	}
}

func TestHandler_Execute_ForCandidateInline(t *testing.T) {
	h := newHandler(t, nil, nil, Dependencies{})

	out, err := h.Execute(context.Background(), &Input{
		SubjectType:    SubjectCandidate,
		Subject:        []byte(`{"id":"cand-9","domainKey":"design","skills":["Figma"]}`),
		Counterparts:   []byte(`[{"id":"job-9","domainKey":"embedded_hardware","mustHaveSkills":["C","RTOS"]}]`),
		CounterpartIDs: []string{"job-1"},
		Mode:           models.ModePreview,
	})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "cand-9", out.SubjectID)

	byJob := map[string]models.MatchResult{}
	for _, r := range out.Results {
		assert.Equal(t, "cand-9", r.CandidateID)
		assert.Equal(t, models.ModePreview, r.Mode)
		byJob[r.JobID] = r
	}
	require.Contains(t, byJob, "job-9")
	require.Contains(t, byJob, "job-1")
	assert.True(t, byJob["job-9"].Gates.Incompatible())
	assert.Equal(t, models.PolicyHidden, byJob["job-9"].Policy)
	assert.False(t, byJob["job-1"].Gates.Incompatible())
}

func TestHandler_Execute_PartialResults(t *testing.T) {
	resolver := fakeResolver{fail: map[string]error{"job-2": errors.New("statement timeout")}}
	h := newHandler(t, nil, resolver, Dependencies{})

	out, err := h.Execute(context.Background(), &Input{
		SubjectType:    SubjectCandidate,
		SubjectID:      "cand-1",
		CounterpartIDs: []string{"job-1", "job-2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 1, out.PartialCount)
	for _, r := range out.Results {
		assert.Equal(t, r.JobID == "job-2", r.Partial, r.JobID)
	}
}

func TestHandler_Execute_Indexing(t *testing.T) {
	no := false

	t.Run("indexes when enabled", func(t *testing.T) {
		idx := &fakeIndex{}
		cfg := createTestConfig()
		cfg.IndexEnabled = true
		h := newHandler(t, cfg, nil, Dependencies{Index: idx})

		out, err := h.Execute(context.Background(), &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}})

		require.NoError(t, err)
		require.NotNil(t, out.Indexed)
		assert.Equal(t, 1, out.Indexed.Indexed)
		assert.Equal(t, "batch-1", idx.batchID)
		assert.Equal(t, "reg-1", idx.registry)
		assert.Len(t, idx.results, 1)
	})

	t.Run("input can opt out", func(t *testing.T) {
		idx := &fakeIndex{}
		cfg := createTestConfig()
		cfg.IndexEnabled = true
		h := newHandler(t, cfg, nil, Dependencies{Index: idx})

		out, err := h.Execute(context.Background(), &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}, Index: &no})

		require.NoError(t, err)
		assert.Nil(t, out.Indexed)
		assert.Empty(t, idx.batchID)
	})

	t.Run("index failure fails the job", func(t *testing.T) {
		idx := &fakeIndex{err: errors.New("bulk request: 503")}
		cfg := createTestConfig()
		cfg.IndexEnabled = true
		h := newHandler(t, cfg, nil, Dependencies{Index: idx})

		_, err := h.Execute(context.Background(), &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMatchIndexFailed, apperrors.Normalize(err).Code)
	})
}

func TestHandler_Execute_ReportsRegistryVersionUsed(t *testing.T) {
	idx := &fakeIndex{}
	cfg := createTestConfig()
	cfg.IndexEnabled = true
	registry := &publishingRegistry{}
	h := newHandlerWithRegistry(t, cfg, registry, nil, Dependencies{Index: idx})

	out, err := h.Execute(context.Background(), &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}})

	require.NoError(t, err)
	assert.Equal(t, 1, registry.loads)
	assert.Equal(t, "reg-1", out.RegistryVersion)
	assert.Equal(t, "reg-1", idx.registry)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		deps     Dependencies
		registry matching.RegistrySource
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "nil input",
			wantCode: apperrors.ErrCodeInvalidMatchRequest,
		},
		{
			name:     "unknown subject type",
			input:    &Input{SubjectType: "recruiter", SubjectID: "r-1", CounterpartIDs: []string{"job-1"}},
			wantCode: apperrors.ErrCodeInvalidMatchRequest,
		},
		{
			name:     "subject not found",
			input:    &Input{SubjectType: SubjectCandidate, SubjectID: "ghost", CounterpartIDs: []string{"job-1"}},
			wantCode: apperrors.ErrCodeProfileNotFound,
		},
		{
			name:     "profile store down",
			deps:     Dependencies{Profiles: &fakeProfiles{err: errors.New("connection refused")}},
			input:    &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}},
			wantCode: apperrors.ErrCodeProfileLoadFailed,
		},
		{
			name:     "malformed inline counterparts",
			input:    &Input{SubjectType: SubjectJob, SubjectID: "job-1", Counterparts: []byte(`{"id":"cand-1"}`)},
			wantCode: apperrors.ErrCodeInvalidMatchRequest,
		},
		{
			name:     "inline counterpart without id",
			input:    &Input{SubjectType: SubjectCandidate, SubjectID: "cand-1", Counterparts: []byte(`[{"mustHaveSkills":["Go"]}]`)},
			wantCode: apperrors.ErrCodeInvalidMatchRequest,
		},
		{
			name: "too many counterparts",
			input: &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{
				"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10", "c11",
			}},
			wantCode: apperrors.ErrCodeInvalidMatchRequest,
		},
		{
			name:     "registry unavailable",
			registry: failingRegistry{},
			input:    &Input{SubjectType: SubjectJob, SubjectID: "job-1", CounterpartIDs: []string{"cand-1"}},
			wantCode: apperrors.ErrCodeDomainRegistryUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := tt.registry
			if registry == nil {
				registry = testRegistry()
			}
			h := newHandlerWithRegistry(t, nil, registry, nil, tt.deps)

			_, err := h.Execute(context.Background(), tt.input)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.Normalize(err).Code)
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	h := newHandler(t, nil, blockingResolver{}, Dependencies{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{SubjectType: SubjectCandidate, SubjectID: "cand-1", CounterpartIDs: []string{"job-1", "job-2"}})

	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeBatchTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInputSchema(t *testing.T) {
	var input Input
	require.NoError(t, inputSchema.Decode([]byte(`{"subjectType":"job","subjectId":"job-1","counterpartIds":["cand-1"],"index":true}`), &input))
	require.NotNil(t, input.Index)
	assert.True(t, *input.Index)

	assert.Error(t, inputSchema.Decode([]byte(`{"subjectType":"job","subjectId":"job-1"}`), &input))
	assert.Error(t, inputSchema.Decode([]byte(`{"subjectType":"recruiter","subjectId":"r","counterpartIds":["c"]}`), &input))
	assert.Error(t, inputSchema.Decode([]byte(`{"subjectType":"job","subject":{},"counterparts":"cand-1"}`), &input))
	assert.Error(t, inputSchema.Decode([]byte(`{"subjectType":"job","subjectId":"job-1","counterparts":[{"skills":["Go"]}]}`), &input))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(nil)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 500, cfg.MaxCounterparts)
	assert.False(t, cfg.IndexEnabled)
}
