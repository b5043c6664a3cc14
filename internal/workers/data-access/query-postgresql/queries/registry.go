package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"match-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error)

// Params are the lookup keys a query may use.
type Params struct {
	CandidateID  string
	CandidateIDs []string
	JobID        string
	JobIDs       []string
}

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeDomainRegistry:   DomainRegistry,
	models.QueryTypeCandidateProfile: CandidateProfile,
	models.QueryTypeJobProfile:       JobProfile,
	models.QueryTypeCommuteOverride:  CommuteOverride,
	models.QueryTypeCommuteEstimate:  CommuteEstimate,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}
