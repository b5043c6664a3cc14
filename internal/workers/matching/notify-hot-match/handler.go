package notifyhotmatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"match-workers/internal/common/aws"
	"match-workers/internal/common/errors"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/matching"
	"match-workers/internal/models"
	"match-workers/internal/repository"
)

const (
	TaskType = "notify-hot-match"
)

type Mailer interface {
	Send(ctx context.Context, e aws.Email) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type RecipientLoader interface {
	Recipient(ctx context.Context, id string) (models.Recipient, error)
}

type Handler struct {
	config       *Config
	recipients   RecipientLoader
	mailer       Mailer
	sms          SMSSender
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

// NewHandler wires the notifier. mailer and sms may be nil when their channel is disabled.
func NewHandler(config *Config, recipients RecipientLoader, mailer Mailer, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		recipients:   recipients,
		mailer:       mailer,
		sms:          sms,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := inputSchema.Decode([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidMatchRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.RecruiterID == "" {
		return nil, errors.NewInvalidMatchRequestError("recruiterId is required")
	}

	out := &Output{
		NotificationID: uuid.NewString(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}
	log := logger.ForPair(h.logger, input.Match.CandidateID, input.Match.JobID).WithFields(map[string]interface{}{
		"notificationId": out.NotificationID,
		"recruiterId":    input.RecruiterID,
		"policy":         input.Match.Policy,
	})

	if input.Match.Policy == models.PolicyHidden {
		log.Info("Hidden match, nothing to notify", nil)
		out.Status = StatusSkipped
		return out, nil
	}
	if !h.config.EmailEnabled && !h.config.SMSEnabled {
		return out, nil
	}

	recipient, err := h.recipients.Recipient(ctx, input.RecruiterID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewRecipientNotFoundError(input.RecruiterID)
		}
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}

	msg, err := render(messageFor(input))
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("render notification: %w", err))
	}

	if h.config.EmailEnabled && h.mailer != nil && recipient.Email != "" {
		id, err := h.mailer.Send(ctx, aws.Email{
			From:    h.config.FromEmail,
			To:      recipient.Email,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		})
		if err != nil {
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
			log.Error("email send failed", map[string]interface{}{"error": err.Error()})
			return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
		}
		metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
		out.Channels = append(out.Channels, ChannelResult{Channel: ChannelEmail, Status: StatusSent, MessageID: id})
	}

	if h.wantsSMS(input.Match.Policy) && recipient.Phone != "" {
		id, err := h.sms.SendSMS(ctx, recipient.Phone, msg.SMS)
		if err != nil {
			// SMS failures are reported per channel and never fail the job.
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
			log.Warn("SMS send failed", map[string]interface{}{"error": err.Error()})
			out.Channels = append(out.Channels, ChannelResult{Channel: ChannelSMS, Status: StatusFailed, Error: err.Error()})
		} else {
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
			out.Channels = append(out.Channels, ChannelResult{Channel: ChannelSMS, Status: StatusSent, MessageID: id})
		}
	}

	out.Status = summarize(out.Channels)
	log.Info("hot match notification processed", map[string]interface{}{
		"status":   out.Status,
		"channels": len(out.Channels),
	})
	return out, nil
}

func (h *Handler) wantsSMS(policy models.PolicyTier) bool {
	return h.config.SMSEnabled && h.sms != nil &&
		matching.TierRank(policy) >= matching.TierRank(h.config.SMSMinPolicy)
}

func summarize(channels []ChannelResult) string {
	if len(channels) == 0 {
		return StatusDisabled
	}
	for _, c := range channels {
		if c.Status == StatusSent {
			return StatusSent
		}
	}
	return StatusFailed
}

func messageFor(input *Input) messageData {
	m := input.Match
	d := messageData{
		CandidateName: input.CandidateName,
		JobTitle:      input.JobTitle,
		Overall:       m.Overall,
		Policy:        string(m.Policy),
		Reasons:       m.Explainability.TopReasons,
		Risks:         m.Explainability.TopRisks,
		NextAction:    m.Explainability.NextAction,
	}
	if d.CandidateName == "" {
		d.CandidateName = "Candidate " + m.CandidateID
	}
	if d.JobTitle == "" {
		d.JobTitle = "job " + m.JobID
	}
	return d
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
