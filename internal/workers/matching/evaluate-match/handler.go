package evaluatematch

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"match-workers/internal/cache"
	"match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/common/observability"
	"match-workers/internal/matching"
	"match-workers/internal/models"
	"match-workers/internal/repository"
)

const (
	TaskType = "evaluate-match"
)

// ProfileLoader is the single-row side of repository.ProfileStore.
type ProfileLoader interface {
	Candidate(ctx context.Context, id string) (models.CandidateProfile, error)
	Job(ctx context.Context, id string) (models.JobProfile, error)
}

// Dependencies groups the collaborators of the handler. Resolver, Cache and
// Observability are optional.
type Dependencies struct {
	Engine        *matching.Engine
	Profiles      ProfileLoader
	Registry      matching.RegistrySource
	Resolver      matching.PairResolver
	Cache         *cache.MatchCache
	Observability *observability.Observability
	Now           func() time.Time
}

type Handler struct {
	config       *Config
	deps         Dependencies
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if !config.CacheEnabled {
		deps.Cache = nil
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
	ctx, span := h.deps.Observability.StartSpan(ctx, TaskType,
		attribute.String("match.mode", string(input.Mode)),
		attribute.String("match.variant", string(input.Variant)),
	)
	defer span.End()

	out, err := h.evaluate(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("match.candidate_id", out.Match.CandidateID),
		attribute.String("match.job_id", out.Match.JobID),
		attribute.Int("match.overall", out.Match.Overall),
		attribute.String("match.policy", string(out.Match.Policy)),
		attribute.Bool("match.cached", out.Cached),
	)
	return out, nil
}

func (h *Handler) evaluate(ctx context.Context, input *Input) (*Output, error) {
	candidate, job, err := h.loadProfiles(ctx, input)
	if err != nil {
		return nil, err
	}

	reg, err := h.deps.Registry.Registry(ctx)
	if err != nil {
		return nil, errors.NewDomainRegistryUnavailableError(err)
	}

	mode, variant := input.Mode, input.Variant
	if mode == "" {
		mode = models.ModeExact
	}
	if variant == "" {
		variant = models.ExplainBasic
	}

	in := matching.PairInput{AsOf: h.deps.Now(), Mode: mode, Variant: variant}
	if input.AsOf != nil {
		in.AsOf = *input.AsOf
	}
	var pair matching.PairData
	if h.deps.Resolver != nil {
		data, err := h.deps.Resolver.Resolve(ctx, candidate, job)
		if err != nil {
			in.Issues = append(in.Issues, "commute lookup failed: "+err.Error())
			h.logger.Warn("Pair lookup failed, scoring without commute data", map[string]interface{}{
				"candidateId": candidate.ID,
				"jobId":       job.ID,
				"error":       err.Error(),
			})
		} else {
			pair = data
			in.TravelMinutes = data.TravelMinutes
			in.Override = data.Override
		}
	}

	// Only stored profiles carry a trustworthy version. An explicit asOf is a
	// what-if evaluation, and a failed lookup yields a partial result.
	cacheable := h.deps.Cache != nil && input.AsOf == nil && len(in.Issues) == 0 &&
		input.Candidate == nil && input.Job == nil
	var key string
	if cacheable {
		key = h.deps.Cache.Key(candidate, job, pair, reg.Version(), mode, variant)
		if cached, ok := h.deps.Cache.Get(ctx, key); ok {
			return &Output{Match: cached, RegistryVersion: reg.Version(), Cached: true}, nil
		}
	}

	result := h.deps.Engine.Evaluate(candidate, job, reg, in)
	metrics.ObserveMatches(result)
	h.deps.Observability.RecordPairs(ctx, string(mode), 1)

	if cacheable {
		h.deps.Cache.Set(ctx, key, result)
	}

	logger.ForPair(h.logger, candidate.ID, job.ID).Info("match evaluated", map[string]interface{}{
		"overall":  result.Overall,
		"policy":   result.Policy,
		"partial":  result.Partial,
		"registry": reg.Version(),
	})

	return &Output{Match: result, RegistryVersion: reg.Version()}, nil
}

func (h *Handler) loadProfiles(ctx context.Context, input *Input) (models.CandidateProfile, models.JobProfile, error) {
	var (
		candidate models.CandidateProfile
		job       models.JobProfile
		err       error
	)

	switch {
	case input.Candidate != nil:
		candidate = *input.Candidate
	case input.CandidateID != "":
		candidate, err = h.deps.Profiles.Candidate(ctx, input.CandidateID)
		if err != nil {
			return candidate, job, profileError("candidate", input.CandidateID, err)
		}
	default:
		return candidate, job, errors.NewInvalidMatchRequestError("candidateId or candidate is required")
	}

	switch {
	case input.Job != nil:
		job = *input.Job
	case input.JobID != "":
		job, err = h.deps.Profiles.Job(ctx, input.JobID)
		if err != nil {
			return candidate, job, profileError("job", input.JobID, err)
		}
	default:
		return candidate, job, errors.NewInvalidMatchRequestError("jobId or job is required")
	}

	return candidate, job, nil
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
