// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeDomainRegistry   QueryType = "domain_registry"
	QueryTypeCandidateProfile QueryType = "candidate_profile"
	QueryTypeJobProfile       QueryType = "job_profile"
	QueryTypeCommuteOverride  QueryType = "commute_override"
	QueryTypeCommuteEstimate  QueryType = "commute_estimate"
)

type SearchQueryType string

const (
	SearchMatchesForJob       SearchQueryType = "matches_for_job"
	SearchMatchesForCandidate SearchQueryType = "matches_for_candidate"
)
