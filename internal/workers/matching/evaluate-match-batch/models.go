package evaluatematchbatch

import (
	"encoding/json"

	"match-workers/internal/common/validation"
	"match-workers/internal/models"
	"match-workers/internal/search"
)

const (
	SubjectCandidate = "candidate"
	SubjectJob       = "job"
)

// Input names the subject and its counterparts either by id or inline. The
// inline documents are candidate or job profiles depending on SubjectType.
type Input struct {
	SubjectType    string                `json:"subjectType"`
	SubjectID      string                `json:"subjectId,omitempty"`
	Subject        json.RawMessage       `json:"subject,omitempty"`
	CounterpartIDs []string              `json:"counterpartIds,omitempty"`
	Counterparts   json.RawMessage       `json:"counterparts,omitempty"`
	Mode           models.EvaluationMode `json:"mode,omitempty"`
	Variant        models.ExplainVariant `json:"variant,omitempty"`
	Index          *bool                 `json:"index,omitempty"`
}

type Output struct {
	BatchID         string               `json:"batchId"`
	SubjectType     string               `json:"subjectType"`
	SubjectID       string               `json:"subjectId"`
	RegistryVersion string               `json:"registryVersion"`
	Results         []models.MatchResult `json:"results"`
	PartialCount    int                  `json:"partialCount"`
	Total           int                  `json:"total"`
	// MissingIDs are requested counterparts the profile store does not know.
	MissingIDs []string           `json:"missingIds,omitempty"`
	Indexed    *search.IndexStats `json:"indexed,omitempty"`
}

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["subjectType"],
  "allOf": [
    {"anyOf": [{"required": ["subjectId"]}, {"required": ["subject"]}]},
    {"anyOf": [{"required": ["counterpartIds"]}, {"required": ["counterparts"]}]}
  ],
  "properties": {
    "subjectType": {"type": "string", "enum": ["candidate", "job"]},
    "subjectId": {"type": "string", "minLength": 1},
    "subject": {"type": "object"},
    "counterpartIds": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "counterparts": {
      "type": "array",
      "items": {"type": "object", "required": ["id"], "properties": {"id": {"type": "string", "minLength": 1}}}
    },
    "mode": {"type": "string", "enum": ["exact", "preview"]},
    "variant": {"type": "string", "enum": ["basic", "enhanced"]},
    "index": {"type": "boolean"}
  }
}`)
