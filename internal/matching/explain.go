package matching

import (
	"fmt"
	"sort"
	"strings"

	"match-workers/internal/models"
)

// evaluation is the intermediate state explanations are derived from. Nothing here is recomputed.
type evaluation struct {
	candidate models.CandidateProfile
	job       models.JobProfile
	skills    SkillMatch
	fit       fitOutcome
	cons      constraintsOutcome
	gates     gateOutcome
	overall   int
	policy    models.PolicyTier
	override  *models.CommuteOverride
	issues    []string
}

var levelRank = map[models.Level]int{
	models.LevelHigh:   0,
	models.LevelMedium: 1,
	models.LevelLow:    2,
}

func listSkills(skills []string) string {
	const shown = 3
	if len(skills) <= shown {
		return strings.Join(skills, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(skills[:shown], ", "), len(skills)-shown)
}

func (ev *evaluation) reasons() []models.EnhancedReason {
	var out []models.EnhancedReason
	add := func(impact models.Level, format string, args ...interface{}) {
		out = append(out, models.EnhancedReason{Text: fmt.Sprintf(format, args...), Impact: impact})
	}

	sm := ev.skills
	switch {
	case sm.MustHaveCount > 0 && len(sm.Matched) == sm.MustHaveCount:
		add(models.LevelHigh, "Has all %d must-have skills", sm.MustHaveCount)
	case len(sm.Matched) > 0:
		add(models.LevelMedium, "Has %d of %d must-have skills (%s)", len(sm.Matched), sm.MustHaveCount, listSkills(sm.Matched))
	}
	for _, t := range sm.Transferable {
		add(models.LevelMedium, "%s is transferable via %s (%s, %d%%)", t.Skill, t.Via, t.Domain, t.Percent)
	}
	if len(sm.NiceToHaveMatched) > 0 {
		add(models.LevelLow, "Brings nice-to-have skills: %s", listSkills(sm.NiceToHaveMatched))
	}

	if ev.fit.Experience.State == factorScored && ev.fit.Experience.Score == 100 {
		add(models.LevelMedium, "Experience of %.0f years fits the required range", ev.fit.Experience.Years)
	}
	if ev.fit.Seniority.State == factorScored && ev.fit.Seniority.Distance == 0 {
		add(models.LevelMedium, "Seniority matches (%s)", normalizeTag(string(ev.job.Seniority)))
	}

	if ev.cons.Salary.State == factorScored && ev.cons.Salary.Score == 100 {
		add(models.LevelMedium, "Salary expectation is within budget")
	}
	switch ev.cons.Commute.State {
	case commuteRemote:
		add(models.LevelLow, "Remote role, commute does not apply")
	case commuteOverridden:
		add(models.LevelMedium, "Candidate accepted the commute for this job")
	case commuteWithin:
		add(models.LevelLow, "Commute of %d min is within the %d min preference", ev.cons.Commute.Travel, ev.cons.Commute.MaxMinutes)
	}
	if ev.cons.Start.State == factorScored && ev.cons.Start.LateDays == 0 {
		add(models.LevelLow, "Can start by the required date")
	}
	if ev.gates.Domain == domainSame {
		add(models.LevelLow, "Same primary domain (%s)", ev.gates.Job.Key)
	}

	sort.SliceStable(out, func(i, k int) bool {
		return levelRank[out[i].Impact] < levelRank[out[k].Impact]
	})
	return out
}

// riskEntry tags a risk as a data gap (unknown input or failed lookup).
// Lookup failures sort ahead of every other risk.
type riskEntry struct {
	models.EnhancedRisk
	gap    bool
	lookup bool
}

func (ev *evaluation) risks() []riskEntry {
	var out []riskEntry
	add := func(sev models.Level, mitigation, format string, args ...interface{}) {
		out = append(out, riskEntry{EnhancedRisk: models.EnhancedRisk{
			Text:        fmt.Sprintf(format, args...),
			Severity:    sev,
			Mitigatable: mitigation != "",
			Mitigation:  mitigation,
		}})
	}
	addGap := func(sev models.Level, mitigation, format string, args ...interface{}) {
		add(sev, mitigation, format, args...)
		out[len(out)-1].gap = true
	}

	g := ev.gates
	switch g.Domain {
	case domainIncompatible:
		add(models.LevelHigh, "", "Candidate domain %s is incompatible with job domain %s", g.Candidate.Key, g.Job.Key)
	case domainTransferable:
		add(models.LevelLow, "Probe hands-on exposure to "+g.Job.Key, "Different but related domain (%s vs %s)", g.Candidate.Key, g.Job.Key)
	case domainUnrelated:
		add(models.LevelMedium, "Probe hands-on exposure to "+g.Job.Key, "Different domain (%s vs %s)", g.Candidate.Key, g.Job.Key)
	}

	d := g.Gates.Dealbreakers
	if d.Salary < 1 {
		add(models.LevelHigh, "Discuss compensation flexibility", "Minimum salary %.0f exceeds the job maximum %.0f", ev.cons.Salary.Minimum, ev.cons.Salary.JobMax)
	}
	if d.StartDate < 1 {
		add(models.LevelMedium, "Negotiate the start date", "Earliest start is %d days after the required date", ev.cons.Start.LateDays)
	}
	if d.Seniority < 1 {
		add(models.LevelHigh, "", "Seniority differs by %d levels", ev.fit.Seniority.Distance)
	}
	if d.WorkModel < 1 {
		add(models.LevelHigh, "Clarify work model flexibility", "Work model conflict (candidate %s, job %s)", ev.candidate.WorkModel.Normalized(), ev.job.OfferedWorkModel())
	}

	sm := ev.skills
	if len(sm.MustHaveMissing) > 0 {
		sev := models.LevelMedium
		if 2*len(sm.MustHaveMissing) > sm.MustHaveCount {
			sev = models.LevelHigh
		}
		add(sev, "Ask about adjacent experience with "+listSkills(sm.MustHaveMissing), "Missing must-have skills: %s", listSkills(sm.MustHaveMissing))
	}

	exp := ev.fit.Experience
	switch {
	case exp.State == factorMissingData:
		addGap(models.LevelLow, "Confirm years of experience", "Years of experience unknown, scored neutral")
	case exp.Under > 0:
		add(models.LevelMedium, "", "%.1f years below the required experience", exp.Under)
	case exp.Over > 0:
		add(models.LevelLow, "Confirm interest in the level of the role", "%.1f years above the experience range", exp.Over)
	}
	if ev.fit.Seniority.State == factorMissingData {
		addGap(models.LevelLow, "Confirm seniority level", "Seniority unknown, scored neutral")
	} else if ev.fit.Seniority.Distance > 0 && d.Seniority == 1 {
		add(models.LevelLow, "", "Seniority differs by %d level(s)", ev.fit.Seniority.Distance)
	}

	sal := ev.cons.Salary
	if sal.State == factorMissingData {
		addGap(models.LevelLow, "Ask for salary expectations", "Salary data unknown, scored neutral")
	} else if sal.State == factorScored && sal.Score < 100 && d.Salary == 1 {
		add(models.LevelMedium, "Discuss compensation flexibility", "Salary expectation %.0f%% above budget", sal.GapPct)
	}

	com := ev.cons.Commute
	switch com.State {
	case commuteUnknown:
		addGap(models.LevelLow, "Confirm commute tolerance", "Commute data unknown, scored neutral")
	case commuteOverrun:
		add(models.LevelMedium, "Ask about commute flexibility or hybrid days", "Commute of %d min exceeds the %d min preference", com.Travel, com.MaxMinutes)
	}
	if o := ev.override; o != nil && o.CandidateID == ev.candidate.ID && o.JobID == ev.job.ID {
		switch o.Response {
		case models.OverrideConditional:
			add(models.LevelLow, "Clarify the conditions for the commute", "Commute of %d min accepted conditionally", o.AcceptedCommuteMinutes)
		case models.OverrideNo:
			add(models.LevelMedium, "", "Candidate declined a commute of %d min", o.AcceptedCommuteMinutes)
		}
	}

	start := ev.cons.Start
	if start.State == factorMissingData {
		addGap(models.LevelLow, "Confirm availability date", "Availability unknown, scored neutral")
	} else if start.LateDays > 0 && d.StartDate == 1 {
		add(models.LevelLow, "Negotiate the start date", "Available %d days after the required date", start.LateDays)
	}

	for _, res := range []domainResolution{g.Candidate, g.Job} {
		if res.Status == domainInvalidReference {
			addGap(models.LevelLow, "", "Domain %q is not in the registry, domain checks skipped", res.Reference)
		}
	}
	if g.Candidate.Status == domainUnresolved {
		addGap(models.LevelLow, "", "Candidate domain could not be inferred")
	}
	if g.Job.Status == domainUnresolved {
		addGap(models.LevelLow, "", "Job domain could not be inferred")
	}

	for _, issue := range ev.issues {
		addGap(models.LevelMedium, "Retry the evaluation once lookups recover", "Partial result: %s", issue)
		out[len(out)-1].lookup = true
	}

	sort.SliceStable(out, func(i, k int) bool {
		if out[i].lookup != out[k].lookup {
			return out[i].lookup
		}
		return levelRank[out[i].Severity] < levelRank[out[k].Severity]
	})
	return out
}

// whyNot names the single most decisive reason a result is hidden.
func (ev *evaluation) whyNot() string {
	g := ev.gates
	if g.Domain == domainIncompatible {
		return fmt.Sprintf("Candidate domain %s is incompatible with job domain %s", g.Candidate.Key, g.Job.Key)
	}

	d := g.Gates.Dealbreakers
	gates := []struct {
		value float64
		text  string
	}{
		{d.Salary, "Salary minimum exceeds the job budget"},
		{d.StartDate, "Cannot start within the grace window"},
		{d.Seniority, "Seniority gap is too large"},
		{d.WorkModel, "Work model requirements conflict"},
		{d.TechDomain, "Primary domain differs from the job"},
	}
	lowest := -1
	for i, gate := range gates {
		if gate.value < 1 && (lowest < 0 || gate.value < gates[lowest].value) {
			lowest = i
		}
	}
	if lowest >= 0 {
		return gates[lowest].text
	}

	if len(ev.skills.MustHaveMissing) > 0 {
		return "Missing must-have skills: " + listSkills(ev.skills.MustHaveMissing)
	}

	factors := []struct {
		name  string
		score int
	}{
		{"skills", ev.fit.Breakdown.Skills},
		{"experience", ev.fit.Breakdown.Experience},
		{"seniority", ev.fit.Breakdown.Seniority},
		{"salary", ev.cons.Breakdown.Salary},
		{"commute", ev.cons.Breakdown.Commute},
		{"start date", ev.cons.Breakdown.StartDate},
	}
	weakest := factors[0]
	for _, f := range factors[1:] {
		if f.score < weakest.score {
			weakest = f
		}
	}
	return fmt.Sprintf("Overall score %d is below the threshold, weakest factor is %s (%d)", ev.overall, weakest.name, weakest.score)
}

func nextAction(p models.PolicyTier) (action, priority string) {
	switch p {
	case models.PolicyHot:
		return "Contact the candidate now", "high"
	case models.PolicyStandard:
		return "Schedule a screening call", "medium"
	case models.PolicyMaybe:
		return "Review manually before outreach", "low"
	default:
		return "", "none"
	}
}

func explain(ev *evaluation, variant models.ExplainVariant, cfg ExplainConfig) models.Explainability {
	reasons := ev.reasons()
	risks := ev.risks()

	out := models.Explainability{
		Kind:       variant,
		TopReasons: make([]string, 0, cfg.MaxReasons),
		TopRisks:   make([]string, 0, cfg.MaxRisks),
	}
	for i := 0; i < len(reasons) && i < cfg.MaxReasons; i++ {
		out.TopReasons = append(out.TopReasons, reasons[i].Text)
	}
	for i := 0; i < len(risks) && i < cfg.MaxRisks; i++ {
		out.TopRisks = append(out.TopRisks, risks[i].Text)
	}
	for _, r := range risks {
		if r.gap {
			out.DataGaps = append(out.DataGaps, r.Text)
		}
	}

	action, priority := nextAction(ev.policy)
	out.NextAction = action
	if ev.policy == models.PolicyHidden {
		out.WhyNot = ev.whyNot()
	}

	if variant != models.ExplainEnhanced {
		return out
	}

	if action == "" {
		action = "Do not pursue"
	}
	talking := make([]string, 0, 4)
	seen := make(map[string]struct{})
	if len(reasons) > 0 {
		talking = append(talking, reasons[0].Text)
	}
	for _, r := range risks {
		if !r.Mitigatable {
			continue
		}
		if _, dup := seen[r.Mitigation]; dup {
			continue
		}
		seen[r.Mitigation] = struct{}{}
		talking = append(talking, r.Mitigation)
	}

	if reasons == nil {
		reasons = []models.EnhancedReason{}
	}
	enhancedRisks := make([]models.EnhancedRisk, 0, len(risks))
	for _, r := range risks {
		enhancedRisks = append(enhancedRisks, r.EnhancedRisk)
	}
	out.Enhanced = &models.EnhancedExplanation{
		Reasons: reasons,
		Risks:   enhancedRisks,
		RecruiterAction: models.RecruiterAction{
			Action:        action,
			Priority:      priority,
			TalkingPoints: talking,
		},
	}
	return out
}
