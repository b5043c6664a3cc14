package evaluatematchbatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/common/observability"
	"match-workers/internal/matching"
	"match-workers/internal/models"
	"match-workers/internal/repository"
	"match-workers/internal/search"
)

const (
	TaskType = "evaluate-match-batch"
)

// ProfileStore loads subjects and counterparts. Bulk lookups return only the rows found.
type ProfileStore interface {
	Candidate(ctx context.Context, id string) (models.CandidateProfile, error)
	Candidates(ctx context.Context, ids []string) ([]models.CandidateProfile, error)
	Job(ctx context.Context, id string) (models.JobProfile, error)
	Jobs(ctx context.Context, ids []string) ([]models.JobProfile, error)
}

// Indexer writes batch results to the match index.
type Indexer interface {
	IndexResults(ctx context.Context, batchID, registryVersion string, results []models.MatchResult) (search.IndexStats, error)
}

// Dependencies groups the collaborators of the handler. Index and
// Observability are optional.
type Dependencies struct {
	Batch         *matching.Batch
	Profiles      ProfileStore
	Index         Indexer
	Observability *observability.Observability
	NewID         func() string
}

type Handler struct {
	config       *Config
	deps         Dependencies
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	start := time.Now()

	var input Input
	if err := inputSchema.Decode([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidMatchRequestError(fmt.Sprintf("parse input: %v", err)))
		h.record(ctx, start, "invalid")
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		h.record(ctx, start, "failed")
		return
	}

	h.completeJob(ctx, client, job, output)
	h.record(ctx, start, "completed")
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, status)
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidMatchRequestError("input cannot be nil")
	}

	batchID := h.deps.NewID()
	ctx, span := h.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("batch.id", batchID),
		attribute.String("batch.subject_type", input.SubjectType),
	)
	defer span.End()

	out, err := h.run(ctx, batchID, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("batch.total", out.Total),
		attribute.Int("batch.partial", out.PartialCount),
	)
	return out, nil
}

func (h *Handler) run(ctx context.Context, batchID string, input *Input) (*Output, error) {
	req := matching.BatchRequest{Mode: input.Mode, Variant: input.Variant}
	if req.Mode == "" {
		req.Mode = models.ModeExact
	}
	if req.Variant == "" {
		req.Variant = models.ExplainBasic
	}
	log := h.logger.WithFields(map[string]interface{}{"batchId": batchID})

	var (
		subjectID string
		batch     matching.BatchResult
		missing   []string
		err       error
	)
	start := time.Now()

	switch input.SubjectType {
	case SubjectCandidate:
		var candidate models.CandidateProfile
		var jobs []models.JobProfile
		candidate, jobs, missing, err = h.loadForCandidate(ctx, input)
		if err != nil {
			return nil, err
		}
		subjectID = candidate.ID
		batch, err = h.deps.Batch.ForCandidate(ctx, candidate, jobs, req)
	case SubjectJob:
		var job models.JobProfile
		var candidates []models.CandidateProfile
		job, candidates, missing, err = h.loadForJob(ctx, input)
		if err != nil {
			return nil, err
		}
		subjectID = job.ID
		batch, err = h.deps.Batch.ForJob(ctx, job, candidates, req)
	default:
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("unknown subjectType %q", input.SubjectType))
	}
	elapsed := time.Since(start)
	results := batch.Results

	if err != nil {
		switch {
		case stderrors.Is(err, matching.ErrRegistryUnavailable):
			return nil, errors.NewDomainRegistryUnavailableError(err)
		case stderrors.Is(err, matching.ErrCounterpartWithoutID):
			return nil, errors.NewInvalidMatchRequestError(err.Error())
		case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
			log.Warn("Batch cut short, results are best effort", map[string]interface{}{
				"pairs":      len(results),
				"durationMs": elapsed.Milliseconds(),
			})
			return nil, errors.NewBatchTimeoutError(len(results), err)
		default:
			return nil, errors.NewInternalError(err)
		}
	}

	metrics.ObserveMatches(results...)
	metrics.ObserveBatch(input.SubjectType, len(results), elapsed)
	h.deps.Observability.RecordPairs(ctx, string(req.Mode), len(results))

	out := &Output{
		BatchID:         batchID,
		SubjectType:     input.SubjectType,
		SubjectID:       subjectID,
		RegistryVersion: batch.RegistryVersion,
		Results:         results,
		Total:           len(results),
		MissingIDs:      missing,
	}
	for _, r := range results {
		if r.Partial {
			out.PartialCount++
		}
	}

	if h.shouldIndex(input) {
		stats, err := h.deps.Index.IndexResults(ctx, batchID, out.RegistryVersion, results)
		if err != nil {
			return nil, errors.NewMatchIndexFailedError(err)
		}
		out.Indexed = &stats
	}

	log.Info("batch evaluated", map[string]interface{}{
		"subjectType":  input.SubjectType,
		"subjectId":    subjectID,
		"total":        out.Total,
		"partialCount": out.PartialCount,
		"missing":      len(missing),
		"durationMs":   elapsed.Milliseconds(),
	})

	return out, nil
}

func (h *Handler) shouldIndex(input *Input) bool {
	if h.deps.Index == nil {
		return false
	}
	if input.Index != nil {
		return *input.Index
	}
	return h.config.IndexEnabled
}

func (h *Handler) loadForCandidate(ctx context.Context, input *Input) (models.CandidateProfile, []models.JobProfile, []string, error) {
	var candidate models.CandidateProfile
	switch {
	case len(input.Subject) > 0:
		if err := json.Unmarshal(input.Subject, &candidate); err != nil {
			return candidate, nil, nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode candidate subject: %v", err))
		}
	case input.SubjectID != "":
		var err error
		candidate, err = h.deps.Profiles.Candidate(ctx, input.SubjectID)
		if err != nil {
			return candidate, nil, nil, profileError(SubjectCandidate, input.SubjectID, err)
		}
	default:
		return candidate, nil, nil, errors.NewInvalidMatchRequestError("subjectId or subject is required")
	}

	var jobs []models.JobProfile
	if len(input.Counterparts) > 0 {
		if err := json.Unmarshal(input.Counterparts, &jobs); err != nil {
			return candidate, nil, nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode job counterparts: %v", err))
		}
	}
	if err := h.checkSize(len(jobs) + len(input.CounterpartIDs)); err != nil {
		return candidate, nil, nil, err
	}

	var missing []string
	if len(input.CounterpartIDs) > 0 {
		loaded, err := h.deps.Profiles.Jobs(ctx, input.CounterpartIDs)
		if err != nil {
			return candidate, nil, nil, errors.NewProfileLoadFailedError(SubjectJob, err)
		}
		found := make(map[string]struct{}, len(loaded))
		for _, j := range loaded {
			found[j.ID] = struct{}{}
		}
		missing = missingIDs(input.CounterpartIDs, found)
		jobs = append(jobs, loaded...)
	}
	return candidate, jobs, missing, nil
}

func (h *Handler) loadForJob(ctx context.Context, input *Input) (models.JobProfile, []models.CandidateProfile, []string, error) {
	var job models.JobProfile
	switch {
	case len(input.Subject) > 0:
		if err := json.Unmarshal(input.Subject, &job); err != nil {
			return job, nil, nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode job subject: %v", err))
		}
	case input.SubjectID != "":
		var err error
		job, err = h.deps.Profiles.Job(ctx, input.SubjectID)
		if err != nil {
			return job, nil, nil, profileError(SubjectJob, input.SubjectID, err)
		}
	default:
		return job, nil, nil, errors.NewInvalidMatchRequestError("subjectId or subject is required")
	}

	var candidates []models.CandidateProfile
	if len(input.Counterparts) > 0 {
		if err := json.Unmarshal(input.Counterparts, &candidates); err != nil {
			return job, nil, nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode candidate counterparts: %v", err))
		}
	}
	if err := h.checkSize(len(candidates) + len(input.CounterpartIDs)); err != nil {
		return job, nil, nil, err
	}

	var missing []string
	if len(input.CounterpartIDs) > 0 {
		loaded, err := h.deps.Profiles.Candidates(ctx, input.CounterpartIDs)
		if err != nil {
			return job, nil, nil, errors.NewProfileLoadFailedError(SubjectCandidate, err)
		}
		found := make(map[string]struct{}, len(loaded))
		for _, c := range loaded {
			found[c.ID] = struct{}{}
		}
		missing = missingIDs(input.CounterpartIDs, found)
		candidates = append(candidates, loaded...)
	}
	return job, candidates, missing, nil
}

func (h *Handler) checkSize(n int) error {
	if h.config.MaxCounterparts > 0 && n > h.config.MaxCounterparts {
		return errors.NewInvalidMatchRequestError(
			fmt.Sprintf("%d counterparts exceed the batch limit of %d", n, h.config.MaxCounterparts))
	}
	return nil
}

func missingIDs(requested []string, found map[string]struct{}) []string {
	var missing []string
	seen := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		if _, ok := found[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

func profileError(kind, id string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewProfileNotFoundError(kind, id)
	}
	return errors.NewProfileLoadFailedError(kind, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
