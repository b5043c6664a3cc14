package queryelasticsearch

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/models"
	"match-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
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

	input, err := parseInput(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func parseInput(variables string) (*Input, error) {
	var input Input
	if err := inputSchema.Decode([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidMatchRequestError("input cannot be nil")
	}

	mq := queries.MatchQuery{
		Index:     h.config.Index,
		QueryType: models.SearchQueryType(input.QueryType),
		Filters: queries.Filters{
			Policies:            input.Filters.Policies,
			MinOverall:          input.Filters.MinOverall,
			Mode:                input.Filters.Mode,
			IncludePartial:      input.Filters.IncludePartial,
			ExcludeIncompatible: input.Filters.ExcludeIncompatible,
		},
	}
	mq.SubjectID = input.JobID
	if mq.QueryType == models.SearchMatchesForCandidate {
		mq.SubjectID = input.CandidateID
	}
	mq.Pagination.From = input.Pagination.From
	mq.Pagination.Size = input.Pagination.Size

	result, err := queries.Execute(ctx, h.client, mq)
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, errors.NewSearchTimeoutError(input.QueryType)
		case stderrors.Is(err, queries.ErrUnknownQueryType),
			stderrors.Is(err, queries.ErrMissingSubject):
			return nil, errors.NewInvalidMatchRequestError(err.Error())
		case stderrors.Is(err, queries.ErrIndexNotFound), stderrors.Is(err, queries.ErrMissingIndex):
			return nil, errors.NewIndexNotFoundError(h.config.Index)
		}
		return nil, errors.NewSearchQueryFailedError(input.QueryType, err)
	}

	h.logger.Debug("match listing served", map[string]interface{}{
		"queryType": input.QueryType,
		"subjectId": mq.SubjectID,
		"hits":      len(result.Data),
		"totalHits": result.TotalHits,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		Took:      result.Took,
	}, nil
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
