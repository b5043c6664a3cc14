// Package commute resolves the per-pair commute inputs of a match: the
// precomputed travel estimate and the candidate's override answer.
package commute

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"match-workers/internal/matching"
	"match-workers/internal/models"
)

// Store is the lookup side of repository.CommuteStore.
type Store interface {
	Estimate(ctx context.Context, candidateID, jobID string) (*models.CommuteEstimate, error)
	Override(ctx context.Context, candidateID, jobID string) (*models.CommuteOverride, error)
}

// Resolver implements matching.PairResolver. Every pair costs one limiter
// token, so a large batch cannot flood the store.
type Resolver struct {
	store   Store
	limiter *rate.Limiter
}

var _ matching.PairResolver = (*Resolver)(nil)

// NewResolver limits lookups to perSecond pairs with the given burst.
// perSecond <= 0 disables the limit.
func NewResolver(store Store, perSecond float64, burst int) *Resolver {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Resolver{store: store, limiter: rate.NewLimiter(limit, burst)}
}

func (r *Resolver) Resolve(ctx context.Context, candidate models.CandidateProfile, job models.JobProfile) (matching.PairData, error) {
	var data matching.PairData
	if candidate.ID == "" || job.ID == "" {
		return data, nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return data, fmt.Errorf("commute lookup throttled: %w", err)
	}

	override, err := r.store.Override(ctx, candidate.ID, job.ID)
	if err != nil {
		return data, err
	}
	data.Override = override

	// Remote jobs and accepted overrides settle the commute without an estimate.
	if job.IsRemote() || (override != nil && override.Response == models.OverrideYes) {
		return data, nil
	}

	est, err := r.store.Estimate(ctx, candidate.ID, job.ID)
	if err != nil {
		return data, err
	}
	if est != nil {
		minutes := est.TravelMinutes
		data.TravelMinutes = &minutes
	}
	return data, nil
}
