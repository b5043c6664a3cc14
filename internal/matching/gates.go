package matching

import (
	"match-workers/internal/models"
)

type domainGate int

const (
	domainSame domainGate = iota
	domainTransferable
	domainUnrelated
	domainIncompatible
	domainSkipped
)

type gateOutcome struct {
	Gates      models.Gates
	Multiplier float64
	Domain     domainGate
	Candidate  domainResolution
	Job        domainResolution
}

func evaluateGates(c models.CandidateProfile, j models.JobProfile, fit fitOutcome, cons constraintsOutcome,
	cand, job domainResolution, reg *Registry, cfg Config) gateOutcome {
	d := models.Dealbreakers{Salary: 1, StartDate: 1, Seniority: 1, WorkModel: 1, TechDomain: 1}

	if cons.Salary.State == factorScored && cons.Salary.Minimum > cons.Salary.JobMax*(1+cfg.Salary.GateTolerance) {
		d.Salary = cfg.Gates.Salary
	}

	if cons.Start.State == factorScored && cons.Start.LateDays > cfg.StartDate.GraceDays {
		d.StartDate = cfg.Gates.StartDate
	}

	if fit.Seniority.State == factorScored && fit.Seniority.Distance > cfg.Seniority.GateMaxDistance {
		d.Seniority = cfg.Gates.Seniority
	}

	if workModelConflict(c.WorkModel.Normalized(), j) {
		d.WorkModel = cfg.Gates.WorkModel
	}

	out := gateOutcome{Candidate: cand, Job: job, Domain: domainSkipped}
	if cand.Status == domainResolved && job.Status == domainResolved {
		switch {
		case cand.Key == job.Key:
			out.Domain = domainSame
		case reg.Incompatible(cand.Key, job.Key):
			out.Domain = domainIncompatible
			d.TechDomain = cfg.Gates.DomainIncompatible
		case reg.TransferableTo(cand.Key, job.Key) || reg.TransferableTo(job.Key, cand.Key):
			out.Domain = domainTransferable
			d.TechDomain = cfg.Gates.DomainTransferable
		default:
			out.Domain = domainUnrelated
			d.TechDomain = cfg.Gates.DomainUnrelated
		}
		if out.Domain != domainSame {
			out.Gates.DomainMismatch = &models.DomainMismatch{
				IsIncompatible:  out.Domain == domainIncompatible,
				CandidateDomain: cand.Key,
				JobDomain:       job.Key,
			}
		}
	}

	out.Gates.Dealbreakers = d
	out.Multiplier = clampFloat(d.Product(), 0, 1)
	return out
}

// workModelConflict fires only for remote-only against onsite-only, in either direction.
func workModelConflict(candidate models.WorkModel, j models.JobProfile) bool {
	offered := j.OfferedWorkModel()
	switch candidate {
	case models.WorkModelRemote:
		return offered == models.WorkModelOnsite
	case models.WorkModelOnsite:
		return offered == models.WorkModelRemote
	default:
		return false
	}
}
