package matching

import (
	"math"

	"match-workers/internal/models"
)

var seniorityLevels = map[models.Seniority]int{
	models.SeniorityJunior:   0,
	models.SeniorityMid:      1,
	models.SenioritySenior:   2,
	models.SeniorityLead:     3,
	models.SeniorityDirector: 4,
}

// SeniorityLevel returns the ordinal of a seniority tag, or false if it is unknown.
func SeniorityLevel(s models.Seniority) (int, bool) {
	lvl, ok := seniorityLevels[models.Seniority(normalizeTag(string(s)))]
	return lvl, ok
}

type factorState int

const (
	factorScored factorState = iota
	factorNoRequirement
	factorMissingData
)

type experienceOutcome struct {
	Score int
	State factorState
	Years float64
	Under float64
	Over  float64
}

type seniorityOutcome struct {
	Score    int
	State    factorState
	Distance int
}

type fitOutcome struct {
	Score      int
	Breakdown  models.FitBreakdown
	Experience experienceOutcome
	Seniority  seniorityOutcome
}

func scoreSkills(m SkillMatch, cfg SkillsConfig) int {
	score := math.Round(100 * m.Coverage)
	if m.NiceToHaveCount > 0 && len(m.NiceToHaveMatched) > 0 {
		score += math.Round(cfg.NiceToHaveBonusMax * float64(len(m.NiceToHaveMatched)) / float64(m.NiceToHaveCount))
	}
	return int(clampFloat(score, 0, 100))
}

func scoreExperience(years *float64, req models.YearsRange, cfg Config) experienceOutcome {
	if req.Min == nil && req.Max == nil {
		return experienceOutcome{Score: 100, State: factorNoRequirement}
	}
	if years == nil {
		return experienceOutcome{Score: cfg.NeutralScore, State: factorMissingData}
	}

	out := experienceOutcome{Years: *years, State: factorScored}
	penalty := 0.0
	if req.Min != nil && *years < *req.Min {
		out.Under = *req.Min - *years
		penalty = out.Under * cfg.Experience.UnderPenaltyPerYear
	} else if req.Max != nil && *years > *req.Max {
		out.Over = *years - *req.Max
		penalty = out.Over * cfg.Experience.OverPenaltyPerYear
	}
	out.Score = int(clampFloat(math.Round(100-penalty), 0, 100))
	return out
}

func scoreSeniority(candidate, required models.Seniority, cfg Config) seniorityOutcome {
	if required == "" {
		return seniorityOutcome{Score: 100, State: factorNoRequirement}
	}
	want, okWant := SeniorityLevel(required)
	have, okHave := SeniorityLevel(candidate)
	if !okWant || !okHave {
		return seniorityOutcome{Score: cfg.NeutralScore, State: factorMissingData, Distance: -1}
	}

	dist := have - want
	if dist < 0 {
		dist = -dist
	}
	score := clampFloat(math.Round(100-float64(dist)*cfg.Seniority.PenaltyPerLevel), 0, 100)
	return seniorityOutcome{Score: int(score), State: factorScored, Distance: dist}
}

func scoreFit(m SkillMatch, c models.CandidateProfile, j models.JobProfile, cfg Config) fitOutcome {
	exp := scoreExperience(c.YearsExperience, j.Experience, cfg)
	sen := scoreSeniority(c.Seniority, j.Seniority, cfg)
	skills := scoreSkills(m, cfg.Skills)

	w := cfg.FitWeights
	score := weightedAverage(
		[]float64{float64(skills), float64(exp.Score), float64(sen.Score)},
		[]float64{w.Skills, w.Experience, w.Seniority},
	)

	return fitOutcome{
		Score: score,
		Breakdown: models.FitBreakdown{
			Skills:     skills,
			Experience: exp.Score,
			Seniority:  sen.Score,
		},
		Experience: exp,
		Seniority:  sen,
	}
}

// weightedAverage rounds to the nearest integer in [0,100]. Weights are validated to sum above zero.
func weightedAverage(values, weights []float64) int {
	var sum, total float64
	for i, v := range values {
		sum += v * weights[i]
		total += weights[i]
	}
	if total <= 0 {
		return 0
	}
	return clampInt(int(math.Round(sum/total)), 0, 100)
}
