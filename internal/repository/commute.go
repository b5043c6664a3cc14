package repository

import (
	"context"
	"errors"
	"fmt"

	"match-workers/internal/models"
)

// CommuteStore reads commute_estimates and commute_overrides.
type CommuteStore struct {
	db DBTX
}

func NewCommuteStore(db DBTX) *CommuteStore {
	return &CommuteStore{db: db}
}

// Estimate returns nil without error when no estimate has been computed for the pair.
func (s *CommuteStore) Estimate(ctx context.Context, candidateID, jobID string) (*models.CommuteEstimate, error) {
	e := models.CommuteEstimate{CandidateID: candidateID, JobID: jobID}
	err := s.db.QueryRowContext(ctx, `
		SELECT travel_minutes, mode, computed_at
		FROM commute_estimates
		WHERE candidate_id = $1 AND job_id = $2
		ORDER BY computed_at DESC
		LIMIT 1`, candidateID, jobID).Scan(&e.TravelMinutes, &e.Mode, &e.ComputedAt)
	if errors.Is(notFound(err), ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commute estimate %s/%s: %w", candidateID, jobID, err)
	}
	return &e, nil
}

// Override returns the latest answer for the pair, or nil when there is none.
func (s *CommuteStore) Override(ctx context.Context, candidateID, jobID string) (*models.CommuteOverride, error) {
	o := models.CommuteOverride{CandidateID: candidateID, JobID: jobID}
	var response string
	err := s.db.QueryRowContext(ctx, `
		SELECT accepted_commute_minutes, response, responded_at
		FROM commute_overrides
		WHERE candidate_id = $1 AND job_id = $2
		ORDER BY responded_at DESC
		LIMIT 1`, candidateID, jobID).Scan(&o.AcceptedCommuteMinutes, &response, &o.RespondedAt)
	if errors.Is(notFound(err), ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commute override %s/%s: %w", candidateID, jobID, err)
	}
	o.Response = models.OverrideResponse(response)
	return &o, nil
}
