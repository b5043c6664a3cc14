package matching

import (
	"math"
	"time"

	"match-workers/internal/models"
)

type salaryOutcome struct {
	Score   int
	State   factorState
	Ask     float64
	Minimum float64
	JobMax  float64
	GapPct  float64
}

type commuteState int

const (
	commuteRemote commuteState = iota
	commuteOverridden
	commuteWithin
	commuteOverrun
	commuteUnknown
)

type commuteOutcome struct {
	Score      int
	State      commuteState
	Travel     int
	MaxMinutes int
	OverrunPct float64
}

type startOutcome struct {
	Score    int
	State    factorState
	Earliest time.Time
	LateDays int
}

type constraintsOutcome struct {
	Score     int
	Breakdown models.ConstraintsBreakdown
	Salary    salaryOutcome
	Commute   commuteOutcome
	Start     startOutcome
}

// salaryAsk returns the candidate's expectation and minimum acceptable figure.
func salaryAsk(s models.SalaryExpectation) (expectation, minimum float64, ok bool) {
	switch {
	case s.Point != nil:
		expectation = *s.Point
	case s.Min != nil && s.Max != nil:
		expectation = (*s.Min + *s.Max) / 2
	case s.Min != nil:
		expectation = *s.Min
	case s.Max != nil:
		expectation = *s.Max
	default:
		return 0, 0, false
	}

	minimum = expectation
	if s.Min != nil {
		minimum = *s.Min
	}
	return expectation, minimum, true
}

func scoreSalary(c models.SalaryExpectation, j models.SalaryRange, cfg Config) salaryOutcome {
	expectation, minimum, ok := salaryAsk(c)
	if !ok {
		return salaryOutcome{Score: cfg.NeutralScore, State: factorMissingData}
	}
	if j.Max == nil || *j.Max <= 0 {
		if j.Min != nil {
			return salaryOutcome{Score: 100, State: factorNoRequirement, Ask: expectation, Minimum: minimum}
		}
		return salaryOutcome{Score: cfg.NeutralScore, State: factorMissingData, Ask: expectation, Minimum: minimum}
	}

	out := salaryOutcome{State: factorScored, Ask: expectation, Minimum: minimum, JobMax: *j.Max}
	if minimum <= out.JobMax && expectation <= out.JobMax {
		out.Score = 100
		return out
	}

	ask := math.Max(expectation, minimum)
	out.GapPct = 100 * (ask - out.JobMax) / out.JobMax
	out.Score = int(clampFloat(math.Round(100-cfg.Salary.DecayPerPercent*out.GapPct), 0, 100))
	return out
}

func scoreCommute(c models.CandidateProfile, j models.JobProfile, travel *int, override *models.CommuteOverride, cfg Config) commuteOutcome {
	if j.IsRemote() {
		return commuteOutcome{Score: 100, State: commuteRemote}
	}
	if acceptedOverride(override, c.ID, j.ID) {
		return commuteOutcome{Score: 100, State: commuteOverridden}
	}
	if travel == nil || c.Commute.MaxMinutes == nil || *c.Commute.MaxMinutes <= 0 {
		out := commuteOutcome{Score: cfg.NeutralScore, State: commuteUnknown}
		if travel != nil {
			out.Travel = *travel
		}
		return out
	}

	out := commuteOutcome{Travel: *travel, MaxMinutes: *c.Commute.MaxMinutes}
	if out.Travel <= out.MaxMinutes {
		out.Score = 100
		out.State = commuteWithin
		return out
	}

	overrun := 100 * float64(out.Travel-out.MaxMinutes) / float64(out.MaxMinutes)
	if j.OfferedWorkModel() == models.WorkModelHybrid {
		days := clampInt(j.OnsiteDaysPerWeek, 1, 5)
		overrun *= float64(days) / 5
	}
	out.OverrunPct = overrun
	out.State = commuteOverrun
	out.Score = int(clampFloat(math.Round(100-cfg.Commute.DecayPerPercent*overrun), 0, 100))
	return out
}

// acceptedOverride is true only for a "yes" override recorded for this exact pair.
func acceptedOverride(o *models.CommuteOverride, candidateID, jobID string) bool {
	if o == nil || o.Response != models.OverrideYes {
		return false
	}
	return o.CandidateID == candidateID && o.JobID == jobID
}

// earliestStart uses availableFrom when present, otherwise asOf plus the notice period.
func earliestStart(c models.CandidateProfile, asOf time.Time) (time.Time, bool) {
	if c.AvailableFrom != nil {
		return truncateDay(*c.AvailableFrom), true
	}
	if c.NoticePeriodDays != nil && !asOf.IsZero() {
		return truncateDay(asOf).AddDate(0, 0, *c.NoticePeriodDays), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func scoreStartDate(c models.CandidateProfile, j models.JobProfile, asOf time.Time, cfg Config) startOutcome {
	if j.StartBy == nil {
		return startOutcome{Score: 100, State: factorNoRequirement}
	}
	earliest, ok := earliestStart(c, asOf)
	if !ok {
		return startOutcome{Score: cfg.NeutralScore, State: factorMissingData}
	}

	out := startOutcome{State: factorScored, Earliest: earliest}
	late := daysBetween(truncateDay(*j.StartBy), earliest)
	if late <= 0 {
		out.Score = 100
		return out
	}
	out.LateDays = late
	out.Score = int(clampFloat(math.Round(100-cfg.StartDate.DecayPerDay*float64(late)), 0, 100))
	return out
}

func scoreConstraints(c models.CandidateProfile, j models.JobProfile, in PairInput, cfg Config) constraintsOutcome {
	sal := scoreSalary(c.Salary, j.Salary, cfg)
	com := scoreCommute(c, j, in.TravelMinutes, in.Override, cfg)
	start := scoreStartDate(c, j, in.AsOf, cfg)

	w := cfg.ConstraintWeights
	score := weightedAverage(
		[]float64{float64(sal.Score), float64(com.Score), float64(start.Score)},
		[]float64{w.Salary, w.Commute, w.StartDate},
	)

	return constraintsOutcome{
		Score: score,
		Breakdown: models.ConstraintsBreakdown{
			Salary:    sal.Score,
			Commute:   com.Score,
			StartDate: start.Score,
		},
		Salary:  sal,
		Commute: com,
		Start:   start,
	}
}
