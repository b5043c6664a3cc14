package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"match-workers/internal/common/logger"
	"match-workers/internal/models"
)

// ErrRegistryUnavailable wraps failures to load the registry snapshot for a batch.
var ErrRegistryUnavailable = errors.New("domain registry unavailable")

// ErrCounterpartWithoutID is returned when a counterpart has no id. Ids are
// the final sort key, so a batch cannot order anonymous counterparts.
var ErrCounterpartWithoutID = errors.New("counterpart without id")

// RegistrySource loads the active registry snapshot.
type RegistrySource interface {
	Registry(ctx context.Context) (*Registry, error)
}

// StaticRegistry serves a fixed, already-built registry.
type StaticRegistry struct {
	R *Registry
}

func (s StaticRegistry) Registry(context.Context) (*Registry, error) {
	return s.R, nil
}

// PairData is what a PairResolver knows about a pair.
type PairData struct {
	TravelMinutes *int
	Override      *models.CommuteOverride
}

// PairResolver performs per-pair external lookups such as commute estimates and overrides.
type PairResolver interface {
	Resolve(ctx context.Context, candidate models.CandidateProfile, job models.JobProfile) (PairData, error)
}

type BatchOptions struct {
	Concurrency   int
	SlowThreshold time.Duration
	Now           func() time.Time
}

type Batch struct {
	engine   *Engine
	registry RegistrySource
	resolver PairResolver
	opts     BatchOptions
	logger   logger.Logger
}

// NewBatch wires an orchestrator. resolver may be nil, in which case pairs carry no commute data.
func NewBatch(engine *Engine, registry RegistrySource, resolver PairResolver, opts BatchOptions, log logger.Logger) *Batch {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Batch{engine: engine, registry: registry, resolver: resolver, opts: opts, logger: log}
}

type BatchRequest struct {
	Mode    models.EvaluationMode
	Variant models.ExplainVariant
}

// BatchResult carries the sorted results and the version of the registry
// snapshot they were scored against.
type BatchResult struct {
	Results         []models.MatchResult
	RegistryVersion string
}

// ForCandidate evaluates one candidate against many jobs, sorted by relevance.
// On cancellation the returned slice is still complete and the context error is returned with it.
func (b *Batch) ForCandidate(ctx context.Context, candidate models.CandidateProfile, jobs []models.JobProfile, req BatchRequest) (BatchResult, error) {
	jobs, err := uniqueByID(jobs, func(j models.JobProfile) (string, int64) { return j.ID, j.Version })
	if err != nil {
		return BatchResult{}, err
	}
	reg, err := b.loadRegistry(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	pc := prepareCandidate(candidate, reg)
	pairs := make([]pair, len(jobs))
	for i, j := range jobs {
		pairs[i] = pair{candidate: pc, job: prepareJob(j, reg), counterpartID: j.ID}
	}
	return b.run(ctx, reg, pairs, req, "candidate", candidate.ID)
}

// ForJob evaluates one job against many candidates, sorted by relevance.
func (b *Batch) ForJob(ctx context.Context, job models.JobProfile, candidates []models.CandidateProfile, req BatchRequest) (BatchResult, error) {
	candidates, err := uniqueByID(candidates, func(c models.CandidateProfile) (string, int64) { return c.ID, c.Version })
	if err != nil {
		return BatchResult{}, err
	}
	reg, err := b.loadRegistry(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	pj := prepareJob(job, reg)
	pairs := make([]pair, len(candidates))
	for i, c := range candidates {
		pairs[i] = pair{candidate: prepareCandidate(c, reg), job: pj, counterpartID: c.ID}
	}
	return b.run(ctx, reg, pairs, req, "job", job.ID)
}

type pair struct {
	candidate     preparedCandidate
	job           preparedJob
	counterpartID string
}

func (b *Batch) loadRegistry(ctx context.Context) (*Registry, error) {
	if b.registry == nil {
		return nil, nil
	}
	reg, err := b.registry.Registry(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return reg, nil
}

func (b *Batch) run(ctx context.Context, reg *Registry, pairs []pair, req BatchRequest, subjectType, subjectID string) (BatchResult, error) {
	start := time.Now()
	asOf := b.opts.Now()
	results := make([]models.MatchResult, len(pairs))
	ids := make([]string, len(pairs))

	g := new(errgroup.Group)
	g.SetLimit(b.opts.Concurrency)
	for i := range pairs {
		g.Go(func() error {
			p := pairs[i]
			in := PairInput{AsOf: asOf, Mode: req.Mode, Variant: req.Variant}
			b.resolvePair(ctx, p, &in)
			results[i] = b.engine.evaluate(p.candidate, p.job, reg, in)
			ids[i] = p.counterpartID
			return nil
		})
	}
	_ = g.Wait()

	SortResults(results, ids)

	partial := 0
	for _, r := range results {
		if r.Partial {
			partial++
		}
	}
	fields := map[string]interface{}{
		"subjectType":  subjectType,
		"subjectId":    subjectID,
		"pairs":        len(results),
		"partialCount": partial,
		"durationMs":   time.Since(start).Milliseconds(),
		"registry":     reg.Version(),
	}
	if b.opts.SlowThreshold > 0 && time.Since(start) > b.opts.SlowThreshold {
		b.logger.Warn("Slow match batch", fields)
	} else {
		b.logger.Debug("Match batch evaluated", fields)
	}

	return BatchResult{Results: results, RegistryVersion: reg.Version()}, ctx.Err()
}

func (b *Batch) resolvePair(ctx context.Context, p pair, in *PairInput) {
	if b.resolver == nil {
		return
	}
	if ctx.Err() != nil {
		in.Issues = append(in.Issues, "commute lookup skipped, batch cancelled")
		return
	}

	data, err := b.resolver.Resolve(ctx, p.candidate.profile, p.job.profile)
	if err != nil {
		in.Issues = append(in.Issues, "commute lookup failed: "+err.Error())
		b.logger.Warn("Pair lookup failed, scoring without commute data", map[string]interface{}{
			"candidateId": p.candidate.profile.ID,
			"jobId":       p.job.profile.ID,
			"error":       err.Error(),
		})
		return
	}
	in.TravelMinutes = data.TravelMinutes
	in.Override = data.Override
}

// SortResults orders by tier rank desc, overall desc, then counterpart id asc.
// ids[i] is the counterpart identifier of results[i]; both slices are reordered together.
func SortResults(results []models.MatchResult, ids []string) {
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, c int) bool {
		ra, rc := results[idx[a]], results[idx[c]]
		if ta, tc := TierRank(ra.Policy), TierRank(rc.Policy); ta != tc {
			return ta > tc
		}
		if ra.Overall != rc.Overall {
			return ra.Overall > rc.Overall
		}
		return ids[idx[a]] < ids[idx[c]]
	})

	sortedResults := make([]models.MatchResult, len(results))
	sortedIDs := make([]string, len(ids))
	for pos, i := range idx {
		sortedResults[pos] = results[i]
		sortedIDs[pos] = ids[i]
	}
	copy(results, sortedResults)
	copy(ids, sortedIDs)
}

// uniqueByID drops duplicate ids independent of input order: the highest
// version wins, and equal versions keep the smallest JSON encoding.
func uniqueByID[T any](items []T, key func(T) (string, int64)) ([]T, error) {
	pos := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id, version := key(item)
		if id == "" {
			return nil, ErrCounterpartWithoutID
		}
		i, dup := pos[id]
		if !dup {
			pos[id] = len(out)
			out = append(out, item)
			continue
		}
		_, kept := key(out[i])
		if version > kept || (version == kept && encodesBefore(item, out[i])) {
			out[i] = item
		}
	}
	return out, nil
}

func encodesBefore(a, b interface{}) bool {
	ea, errA := json.Marshal(a)
	eb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Compare(ea, eb) < 0
}
