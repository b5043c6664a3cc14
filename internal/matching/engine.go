package matching

import (
	"math"
	"time"

	"match-workers/internal/models"
)

// PairInput carries everything about a pair that is resolved outside the engine.
type PairInput struct {
	TravelMinutes *int
	Override      *models.CommuteOverride
	AsOf          time.Time
	Mode          models.EvaluationMode
	Variant       models.ExplainVariant
	// Issues are lookup failures for this pair. Any issue marks the result partial.
	Issues []string
}

// Engine evaluates candidate/job pairs. It holds no state besides its validated configuration
// and is safe for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

type preparedCandidate struct {
	profile models.CandidateProfile
	skills  []string
	domain  domainResolution
}

type preparedJob struct {
	profile    models.JobProfile
	mustHave   []string
	niceToHave []string
	domain     domainResolution
}

func prepareCandidate(c models.CandidateProfile, reg *Registry) preparedCandidate {
	skills := normalizeSkills(c.Skills)
	return preparedCandidate{
		profile: c,
		skills:  skills,
		domain:  reg.dominantDomain(c.DomainKey, c.Title, skills),
	}
}

func prepareJob(j models.JobProfile, reg *Registry) preparedJob {
	must := normalizeSkills(j.MustHaveSkills)
	nice := normalizeSkills(j.NiceToHaveSkills)
	all := append(append([]string{}, must...), nice...)
	return preparedJob{
		profile:    j,
		mustHave:   must,
		niceToHave: nice,
		domain:     reg.dominantDomain(j.DomainKey, j.Title, normalizeSkills(all)),
	}
}

// Evaluate scores one pair. It never fails: missing data scores neutral and is reported as a risk.
func (e *Engine) Evaluate(c models.CandidateProfile, j models.JobProfile, reg *Registry, in PairInput) models.MatchResult {
	return e.evaluate(prepareCandidate(c, reg), prepareJob(j, reg), reg, in)
}

// EvaluateDomains is Evaluate over a plain domain list with an optional commute override.
func (e *Engine) EvaluateDomains(c models.CandidateProfile, j models.JobProfile, domains []models.TechDomain,
	override *models.CommuteOverride, in PairInput) models.MatchResult {
	in.Override = override
	return e.Evaluate(c, j, NewRegistry(models.DomainRegistrySnapshot{Domains: domains}), in)
}

func (e *Engine) evaluate(pc preparedCandidate, pj preparedJob, reg *Registry, in PairInput) models.MatchResult {
	if in.Mode != models.ModePreview {
		in.Mode = models.ModeExact
	}
	if in.Variant != models.ExplainEnhanced {
		in.Variant = models.ExplainBasic
	}

	allowTransfer := pc.domain.Status != domainInvalidReference && pj.domain.Status != domainInvalidReference
	sm := MatchSkills(pc.skills, pj.mustHave, pj.niceToHave, reg, allowTransfer, e.cfg.Skills)
	fit := scoreFit(sm, pc.profile, pj.profile, e.cfg)
	cons := scoreConstraints(pc.profile, pj.profile, in, e.cfg)
	gates := evaluateGates(pc.profile, pj.profile, fit, cons, pc.domain, pj.domain, reg, e.cfg)

	b := e.cfg.Blend
	blend := (b.Fit*float64(fit.Score) + b.Constraints*float64(cons.Score)) / (b.Fit + b.Constraints)
	overall := clampInt(int(math.Round(blend*gates.Multiplier)), 0, 100)
	policy := Classify(overall, gates.Gates.Incompatible(), in.Mode, e.cfg.Thresholds)

	ev := &evaluation{
		candidate: pc.profile,
		job:       pj.profile,
		skills:    sm,
		fit:       fit,
		cons:      cons,
		gates:     gates,
		overall:   overall,
		policy:    policy,
		override:  in.Override,
		issues:    in.Issues,
	}

	return models.MatchResult{
		CandidateID:   pc.profile.ID,
		JobID:         pj.profile.ID,
		EngineVersion: models.EngineVersion,
		Mode:          in.Mode,
		Overall:       overall,
		Fit: models.FitResult{
			Score:     fit.Score,
			Breakdown: fit.Breakdown,
			Details: models.FitDetails{Skills: models.SkillDetails{
				Matched:           sm.Matched,
				Transferable:      sm.Transferable,
				Missing:           sm.Missing,
				MustHaveMissing:   sm.MustHaveMissing,
				NiceToHaveMatched: sm.NiceToHaveMatched,
			}},
		},
		Constraints: models.ConstraintsResult{
			Score:     cons.Score,
			Breakdown: cons.Breakdown,
		},
		GateMultiplier:   gates.Multiplier,
		Gates:            gates.Gates,
		MustHaveCoverage: sm.Coverage,
		Policy:           policy,
		Partial:          len(in.Issues) > 0,
		Explainability:   explain(ev, in.Variant, e.cfg.Explain),
	}
}
