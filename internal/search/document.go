// Package search keeps evaluated matches in an Elasticsearch index so
// recruiters can browse them by job, by candidate and by policy tier.
package search

import (
	"time"

	"match-workers/internal/matching"
	"match-workers/internal/models"
)

// Mapping is the index definition of the match index.
const Mapping = `{
  "settings": {"number_of_shards": 1},
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "candidateId":      {"type": "keyword"},
      "jobId":            {"type": "keyword"},
      "mode":             {"type": "keyword"},
      "overall":          {"type": "integer"},
      "fitScore":         {"type": "integer"},
      "constraintsScore": {"type": "integer"},
      "gateMultiplier":   {"type": "float"},
      "mustHaveCoverage": {"type": "float"},
      "policy":           {"type": "keyword"},
      "tierRank":         {"type": "integer"},
      "partial":          {"type": "boolean"},
      "incompatible":     {"type": "boolean"},
      "candidateDomain":  {"type": "keyword"},
      "jobDomain":        {"type": "keyword"},
      "matchedSkills":    {"type": "keyword"},
      "mustHaveMissing":  {"type": "keyword"},
      "topReasons":       {"type": "text"},
      "topRisks":         {"type": "text"},
      "whyNot":           {"type": "text"},
      "nextAction":       {"type": "keyword"},
      "engineVersion":    {"type": "keyword"},
      "registryVersion":  {"type": "keyword"},
      "batchId":          {"type": "keyword"},
      "indexedAt":        {"type": "date"}
    }
  }
}`

// MatchDocument is the flattened, searchable form of a MatchResult.
type MatchDocument struct {
	CandidateID      string    `json:"candidateId"`
	JobID            string    `json:"jobId"`
	Mode             string    `json:"mode"`
	Overall          int       `json:"overall"`
	FitScore         int       `json:"fitScore"`
	ConstraintsScore int       `json:"constraintsScore"`
	GateMultiplier   float64   `json:"gateMultiplier"`
	MustHaveCoverage float64   `json:"mustHaveCoverage"`
	Policy           string    `json:"policy"`
	TierRank         int       `json:"tierRank"`
	Partial          bool      `json:"partial"`
	Incompatible     bool      `json:"incompatible"`
	CandidateDomain  string    `json:"candidateDomain,omitempty"`
	JobDomain        string    `json:"jobDomain,omitempty"`
	MatchedSkills    []string  `json:"matchedSkills"`
	MustHaveMissing  []string  `json:"mustHaveMissing"`
	TopReasons       []string  `json:"topReasons"`
	TopRisks         []string  `json:"topRisks"`
	WhyNot           string    `json:"whyNot,omitempty"`
	NextAction       string    `json:"nextAction,omitempty"`
	EngineVersion    string    `json:"engineVersion"`
	RegistryVersion  string    `json:"registryVersion,omitempty"`
	BatchID          string    `json:"batchId,omitempty"`
	IndexedAt        time.Time `json:"indexedAt"`
}

// DocumentID is one document per pair and mode; re-evaluating a pair overwrites it.
func DocumentID(candidateID, jobID string, mode models.EvaluationMode) string {
	return candidateID + ":" + jobID + ":" + string(mode)
}

func NewDocument(r models.MatchResult, batchID, registryVersion string, at time.Time) MatchDocument {
	doc := MatchDocument{
		CandidateID:      r.CandidateID,
		JobID:            r.JobID,
		Mode:             string(r.Mode),
		Overall:          r.Overall,
		FitScore:         r.Fit.Score,
		ConstraintsScore: r.Constraints.Score,
		GateMultiplier:   r.GateMultiplier,
		MustHaveCoverage: r.MustHaveCoverage,
		Policy:           string(r.Policy),
		TierRank:         matching.TierRank(r.Policy),
		Partial:          r.Partial,
		Incompatible:     r.Gates.Incompatible(),
		MatchedSkills:    r.Fit.Details.Skills.Matched,
		MustHaveMissing:  r.Fit.Details.Skills.MustHaveMissing,
		TopReasons:       r.Explainability.TopReasons,
		TopRisks:         r.Explainability.TopRisks,
		WhyNot:           r.Explainability.WhyNot,
		NextAction:       r.Explainability.NextAction,
		EngineVersion:    r.EngineVersion,
		RegistryVersion:  registryVersion,
		BatchID:          batchID,
		IndexedAt:        at.UTC(),
	}
	if dm := r.Gates.DomainMismatch; dm != nil {
		doc.CandidateDomain = dm.CandidateDomain
		doc.JobDomain = dm.JobDomain
	}
	return doc
}
