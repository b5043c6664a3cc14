package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"match-workers/internal/models"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingSubject   = errors.New("subject id is required")
	ErrIndexNotFound    = errors.New("index not found")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filters narrow a match listing.
type Filters struct {
	Policies            []string
	MinOverall          int
	Mode                string
	IncludePartial      bool
	ExcludeIncompatible bool
}

// MatchQuery lists the indexed matches of one job or one candidate.
type MatchQuery struct {
	Index      string
	QueryType  models.SearchQueryType
	SubjectID  string
	Filters    Filters
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds the search request for a match listing. Hits are ordered
// the way batch results are: tier rank, overall, then counterpart id.
func BuildQuery(mq MatchQuery) (*esapi.SearchRequest, error) {
	if mq.Index == "" {
		return nil, ErrMissingIndex
	}

	var subjectField, counterpartField string
	switch mq.QueryType {
	case models.SearchMatchesForJob:
		subjectField, counterpartField = "jobId", "candidateId"
	case models.SearchMatchesForCandidate:
		subjectField, counterpartField = "candidateId", "jobId"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, mq.QueryType)
	}
	if mq.SubjectID == "" {
		return nil, ErrMissingSubject
	}

	body, err := json.Marshal(buildMatchesQuery(mq, subjectField, counterpartField))
	if err != nil {
		return nil, err
	}

	from, size := clampPage(mq.Pagination.From, mq.Pagination.Size)
	return &esapi.SearchRequest{
		Index:          []string{mq.Index},
		Body:           bytes.NewReader(body),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

func clampPage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return from, size
}

func buildMatchesQuery(mq MatchQuery, subjectField, counterpartField string) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{subjectField: mq.SubjectID}},
	}
	mustNot := []interface{}{}

	mode := mq.Filters.Mode
	if mode == "" {
		mode = string(models.ModeExact)
	}
	filterClauses = append(filterClauses, map[string]interface{}{
		"term": map[string]interface{}{"mode": mode},
	})

	if len(mq.Filters.Policies) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"policy": mq.Filters.Policies},
		})
	}
	if mq.Filters.MinOverall > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"overall": map[string]interface{}{"gte": mq.Filters.MinOverall}},
		})
	}
	if !mq.Filters.IncludePartial {
		mustNot = append(mustNot, map[string]interface{}{"term": map[string]interface{}{"partial": true}})
	}
	if mq.Filters.ExcludeIncompatible {
		mustNot = append(mustNot, map[string]interface{}{"term": map[string]interface{}{"incompatible": true}})
	}

	boolQuery := map[string]interface{}{"filter": filterClauses}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []map[string]interface{}{
			{"tierRank": "desc"},
			{"overall": "desc"},
			{counterpartField: "asc"},
		},
	}
}
