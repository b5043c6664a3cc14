// internal/models/commute.go
package models

import "time"

type OverrideResponse string

const (
	OverrideYes         OverrideResponse = "yes"
	OverrideConditional OverrideResponse = "conditional"
	OverrideNo          OverrideResponse = "no"
)

// CommuteOverride records a candidate's answer about a commute longer than their stated preference.
type CommuteOverride struct {
	CandidateID            string           `json:"candidateId"`
	JobID                  string           `json:"jobId"`
	AcceptedCommuteMinutes int              `json:"acceptedCommuteMinutes"`
	Response               OverrideResponse `json:"response"`
	RespondedAt            time.Time        `json:"respondedAt"`
}

// CommuteEstimate is a precomputed travel time for a pair, supplied by an external lookup.
type CommuteEstimate struct {
	CandidateID   string    `json:"candidateId"`
	JobID         string    `json:"jobId"`
	TravelMinutes int       `json:"travelMinutes"`
	Mode          string    `json:"mode,omitempty"`
	ComputedAt    time.Time `json:"computedAt"`
}
