// internal/models/tech_domain.go
package models

// TechDomain is one admin-edited row of the domain registry.
// transferable_to is directional; incompatible_with is read as symmetric.
type TechDomain struct {
	Key              string   `json:"key"`
	DisplayNames     []string `json:"display_names"`
	PrimarySkills    []string `json:"primary_skills"`
	SecondarySkills  []string `json:"secondary_skills"`
	TitleKeywords    []string `json:"title_keywords"`
	TransferableTo   []string `json:"transferable_to"`
	IncompatibleWith []string `json:"incompatible_with"`
	Weight           float64  `json:"weight"`
	Active           bool     `json:"active"`
}

// DomainRegistrySnapshot is the versioned set of domains loaded for one evaluation or batch.
type DomainRegistrySnapshot struct {
	Version string       `json:"version"`
	Domains []TechDomain `json:"domains"`
}
