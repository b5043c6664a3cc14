package evaluatematch

import (
	"time"

	"match-workers/internal/common/validation"
	"match-workers/internal/models"
)

// Input names each side either by id or inline. An inline profile wins over its id.
type Input struct {
	CandidateID string                   `json:"candidateId,omitempty"`
	Candidate   *models.CandidateProfile `json:"candidate,omitempty"`
	JobID       string                   `json:"jobId,omitempty"`
	Job         *models.JobProfile       `json:"job,omitempty"`
	Mode        models.EvaluationMode    `json:"mode,omitempty"`
	Variant     models.ExplainVariant    `json:"variant,omitempty"`
	AsOf        *time.Time               `json:"asOf,omitempty"`
}

type Output struct {
	Match           models.MatchResult `json:"match"`
	RegistryVersion string             `json:"registryVersion"`
	Cached          bool               `json:"cached"`
}

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "allOf": [
    {"anyOf": [{"required": ["candidateId"]}, {"required": ["candidate"]}]},
    {"anyOf": [{"required": ["jobId"]}, {"required": ["job"]}]}
  ],
  "properties": {
    "candidateId": {"type": "string", "minLength": 1},
    "candidate": {"type": "object"},
    "jobId": {"type": "string", "minLength": 1},
    "job": {"type": "object"},
    "mode": {"type": "string", "enum": ["exact", "preview"]},
    "variant": {"type": "string", "enum": ["basic", "enhanced"]},
    "asOf": {"type": "string", "format": "date-time"}
  }
}`)
