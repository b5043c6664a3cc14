// Package cache keeps match results and registry snapshots in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/common/metrics"
	"match-workers/internal/matching"
	"match-workers/internal/models"
)

// MatchCache is a cache-aside store for MatchResults. A key changes whenever
// either profile version, the resolved commute data, the registry version,
// the engine version, the mode or the explanation variant changes, so entries
// never need invalidation.
type MatchCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewMatchCache(rdb redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *MatchCache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &MatchCache{rdb: rdb, prefix: prefix, ttl: ttl, logger: log}
}

// Key identifies one evaluation. Profiles must be stored ones: their versions
// are bumped on every write, unlike inline payloads.
func (c *MatchCache) Key(candidate models.CandidateProfile, job models.JobProfile, pair matching.PairData,
	registryVersion string, mode models.EvaluationMode, variant models.ExplainVariant) string {
	return fmt.Sprintf("%s:v%s:%s@%d:%s@%d:%s:%s:%s:%s",
		c.prefix, models.EngineVersion,
		candidate.ID, candidate.Version,
		job.ID, job.Version,
		pairKey(pair),
		registryVersion, mode, variant)
}

func pairKey(pair matching.PairData) string {
	travel := "t-"
	if pair.TravelMinutes != nil {
		travel = fmt.Sprintf("t%d", *pair.TravelMinutes)
	}
	override := "o-"
	if o := pair.Override; o != nil {
		override = fmt.Sprintf("o%s.%d.%d", o.Response, o.AcceptedCommuteMinutes, o.RespondedAt.Unix())
	}
	return travel + "," + override
}

// Get returns the cached result, or ok=false on a miss. Redis failures are
// logged and reported as misses.
func (c *MatchCache) Get(ctx context.Context, key string) (models.MatchResult, bool) {
	var r models.MatchResult
	err := database.GetJSON(ctx, c.rdb, key, &r)
	switch {
	case err == nil:
		metrics.MatchCacheLookups.WithLabelValues("hit").Inc()
		return r, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.MatchCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.MatchCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Match cache read failed", map[string]interface{}{"key": key, "error": err})
	}
	return models.MatchResult{}, false
}

// Set stores r. Partial results are not cached since a retry may resolve the missing input.
func (c *MatchCache) Set(ctx context.Context, key string, r models.MatchResult) {
	if r.Partial {
		return
	}
	if err := database.SetJSON(ctx, c.rdb, key, r, c.ttl); err != nil {
		c.logger.Warn("Match cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
