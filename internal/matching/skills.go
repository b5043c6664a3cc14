package matching

import (
	"math"
	"sort"

	"match-workers/internal/models"
)

const transferableCredit = 0.5

// SkillMatch is the Skill Matcher output. All lists hold canonical names in ascending order.
type SkillMatch struct {
	MustHaveCount     int
	Matched           []string
	NiceToHaveMatched []string
	Transferable      []models.TransferableSkill
	Missing           []string
	MustHaveMissing   []string
	NiceToHaveCount   int
	Coverage          float64
}

// MatchSkills classifies job skills against candidate skills. Both skill lists must already be
// normalized. allowTransfer=false disables registry-based transferability.
func MatchSkills(candidateSkills, mustHave, niceToHave []string, reg *Registry, allowTransfer bool, cfg SkillsConfig) SkillMatch {
	held := toSet(candidateSkills)
	must := toSet(mustHave)

	var nice []string
	for _, s := range niceToHave {
		if _, dup := must[s]; !dup {
			nice = append(nice, s)
		}
	}

	m := SkillMatch{
		MustHaveCount:     len(mustHave),
		NiceToHaveCount:   len(nice),
		Matched:           []string{},
		NiceToHaveMatched: []string{},
		Transferable:      []models.TransferableSkill{},
		Missing:           []string{},
		MustHaveMissing:   []string{},
	}

	var byDomain map[string][]string
	if allowTransfer && reg.Len() > 0 {
		byDomain = reg.skillsByDomain(candidateSkills)
	}

	for _, s := range mustHave {
		if _, ok := held[s]; ok {
			m.Matched = append(m.Matched, s)
			continue
		}
		if byDomain != nil {
			if t, ok := bestTransfer(s, byDomain, reg, cfg); ok {
				m.Transferable = append(m.Transferable, t)
				continue
			}
		}
		m.Missing = append(m.Missing, s)
		m.MustHaveMissing = append(m.MustHaveMissing, s)
	}

	for _, s := range nice {
		if _, ok := held[s]; ok {
			m.NiceToHaveMatched = append(m.NiceToHaveMatched, s)
		} else {
			m.Missing = append(m.Missing, s)
		}
	}
	sort.Strings(m.Missing)

	if m.MustHaveCount == 0 {
		m.Coverage = 1.0
	} else {
		raw := (float64(len(m.Matched)) + transferableCredit*float64(len(m.Transferable))) / float64(m.MustHaveCount)
		m.Coverage = clampFloat(raw, 0, 1)
	}
	return m
}

// bestTransfer finds the strongest credit for a missing skill: candidate skills in an owning domain
// count at the domain weight, skills in one of its transferable_to domains at the cross-domain factor.
func bestTransfer(skill string, byDomain map[string][]string, reg *Registry, cfg SkillsConfig) (models.TransferableSkill, bool) {
	var best models.TransferableSkill
	found := false

	consider := func(owner, source string, factor float64) {
		held := byDomain[source]
		if len(held) == 0 {
			return
		}
		d, _ := reg.Domain(owner)
		pct := int(clampFloat(math.Round(100*d.Weight*factor), 0, 100))
		if pct <= 0 {
			return
		}
		if !found || pct > best.Percent {
			best = models.TransferableSkill{Skill: skill, Via: held[0], Domain: source, Percent: pct}
			found = true
		}
	}

	for _, owner := range reg.OwnersOf(skill) {
		consider(owner, owner, 1.0)
		for _, target := range reg.transferTargets(owner) {
			consider(owner, target, cfg.CrossDomainTransferFactor)
		}
	}
	return best, found
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
