package querypostgresql

import (
	"match-workers/internal/common/validation"
	"match-workers/internal/models"
)

type Input struct {
	QueryType    string   `json:"queryType"`
	CandidateID  string   `json:"candidateId,omitempty"`
	CandidateIDs []string `json:"candidateIds,omitempty"`
	JobID        string   `json:"jobId,omitempty"`
	JobIDs       []string `json:"jobIds,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeDomainRegistry   = models.QueryTypeDomainRegistry
	QueryTypeCandidateProfile = models.QueryTypeCandidateProfile
	QueryTypeJobProfile       = models.QueryTypeJobProfile
	QueryTypeCommuteOverride  = models.QueryTypeCommuteOverride
	QueryTypeCommuteEstimate  = models.QueryTypeCommuteEstimate
)

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["queryType"],
  "properties": {
    "queryType": {"type": "string", "minLength": 1},
    "candidateId": {"type": "string"},
    "candidateIds": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 1000},
    "jobId": {"type": "string"},
    "jobIds": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 1000}
  }
}`)
