package notifyhotmatch

import (
	"match-workers/internal/common/validation"
	"match-workers/internal/models"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"

	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationType = "hot_match"
)

type Input struct {
	Match       models.MatchResult `json:"match"`
	RecruiterID string             `json:"recruiterId"`
	// Optional display names; ids are used when empty.
	CandidateName string `json:"candidateName,omitempty"`
	JobTitle      string `json:"jobTitle,omitempty"`
}

type ChannelResult struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Output struct {
	NotificationID string          `json:"notificationId"`
	Status         string          `json:"status"`
	Channels       []ChannelResult `json:"channels"`
	SentAt         string          `json:"sentAt"`
}

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["match", "recruiterId"],
  "properties": {
    "recruiterId": {"type": "string", "minLength": 1},
    "candidateName": {"type": "string"},
    "jobTitle": {"type": "string"},
    "match": {
      "type": "object",
      "required": ["candidateId", "jobId", "overall", "policy"],
      "properties": {
        "candidateId": {"type": "string", "minLength": 1},
        "jobId": {"type": "string", "minLength": 1},
        "overall": {"type": "integer", "minimum": 0, "maximum": 100},
        "policy": {"type": "string", "enum": ["hot", "standard", "maybe", "hidden"]}
      }
    }
  }
}`)
