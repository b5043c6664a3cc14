package queryelasticsearch

import "match-workers/internal/common/validation"

type Input struct {
	QueryType   string     `json:"queryType"`
	JobID       string     `json:"jobId,omitempty"`
	CandidateID string     `json:"candidateId,omitempty"`
	Filters     Filters    `json:"filters"`
	Pagination  Pagination `json:"pagination"`
}

type Filters struct {
	Policies            []string `json:"policies,omitempty"`
	MinOverall          int      `json:"minOverall,omitempty"`
	Mode                string   `json:"mode,omitempty"`
	IncludePartial      bool     `json:"includePartial,omitempty"`
	ExcludeIncompatible bool     `json:"excludeIncompatible,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	Took      int64                    `json:"took"` // milliseconds
}

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["queryType"],
  "properties": {
    "queryType": {"type": "string", "enum": ["matches_for_job", "matches_for_candidate"]},
    "jobId": {"type": "string"},
    "candidateId": {"type": "string"},
    "filters": {
      "type": "object",
      "properties": {
        "policies": {"type": "array", "items": {"type": "string", "enum": ["hot", "standard", "maybe", "hidden"]}},
        "minOverall": {"type": "integer", "minimum": 0, "maximum": 100},
        "mode": {"type": "string", "enum": ["exact", "preview"]}
      }
    },
    "pagination": {
      "type": "object",
      "properties": {
        "from": {"type": "integer", "minimum": 0},
        "size": {"type": "integer", "minimum": 0}
      }
    }
  }
}`)
