package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"match-workers/internal/repository"
)

func DomainRegistry(ctx context.Context, db *sql.DB, _ Params) (interface{}, int, int64, error) {
	start := time.Now()
	snap, err := repository.NewDomainStore(db).Snapshot(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	return snap, len(snap.Domains), time.Since(start).Milliseconds(), nil
}

// CandidateProfile loads one candidate by candidateId, or several by candidateIds.
func CandidateProfile(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	store := repository.NewProfileStore(db)
	start := time.Now()

	if len(params.CandidateIDs) > 0 {
		candidates, err := store.Candidates(ctx, params.CandidateIDs)
		if err != nil {
			return nil, 0, 0, err
		}
		return candidates, len(candidates), time.Since(start).Milliseconds(), nil
	}
	if params.CandidateID == "" {
		return nil, 0, 0, fmt.Errorf("%w: candidateId", ErrMissingParam)
	}

	c, err := store.Candidate(ctx, params.CandidateID)
	if err != nil {
		return nil, 0, 0, err
	}
	return c, 1, time.Since(start).Milliseconds(), nil
}

// JobProfile loads one job by jobId, or several by jobIds.
func JobProfile(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	store := repository.NewProfileStore(db)
	start := time.Now()

	if len(params.JobIDs) > 0 {
		jobs, err := store.Jobs(ctx, params.JobIDs)
		if err != nil {
			return nil, 0, 0, err
		}
		return jobs, len(jobs), time.Since(start).Milliseconds(), nil
	}
	if params.JobID == "" {
		return nil, 0, 0, fmt.Errorf("%w: jobId", ErrMissingParam)
	}

	j, err := store.Job(ctx, params.JobID)
	if err != nil {
		return nil, 0, 0, err
	}
	return j, 1, time.Since(start).Milliseconds(), nil
}

// CommuteOverride returns the latest override of a pair; data is nil when there is none.
func CommuteOverride(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	if params.CandidateID == "" || params.JobID == "" {
		return nil, 0, 0, fmt.Errorf("%w: candidateId and jobId", ErrMissingParam)
	}
	start := time.Now()
	o, err := repository.NewCommuteStore(db).Override(ctx, params.CandidateID, params.JobID)
	if err != nil {
		return nil, 0, 0, err
	}
	if o == nil {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	return o, 1, time.Since(start).Milliseconds(), nil
}

func CommuteEstimate(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	if params.CandidateID == "" || params.JobID == "" {
		return nil, 0, 0, fmt.Errorf("%w: candidateId and jobId", ErrMissingParam)
	}
	start := time.Now()
	e, err := repository.NewCommuteStore(db).Estimate(ctx, params.CandidateID, params.JobID)
	if err != nil {
		return nil, 0, 0, err
	}
	if e == nil {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	return e, 1, time.Since(start).Milliseconds(), nil
}
