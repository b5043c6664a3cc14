// internal/models/candidate.go
package models

import (
	"strings"
	"time"
)

type Seniority string

const (
	SeniorityJunior   Seniority = "junior"
	SeniorityMid      Seniority = "mid"
	SenioritySenior   Seniority = "senior"
	SeniorityLead     Seniority = "lead"
	SeniorityDirector Seniority = "director"
)

type WorkModel string

const (
	WorkModelRemote   WorkModel = "remote"
	WorkModelHybrid   WorkModel = "hybrid"
	WorkModelOnsite   WorkModel = "onsite"
	WorkModelFlexible WorkModel = "flexible"
)

// Normalized lower-cases and trims w so "Remote " compares equal to WorkModelRemote.
func (w WorkModel) Normalized() WorkModel {
	return WorkModel(strings.ToLower(strings.TrimSpace(string(w))))
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SalaryExpectation is either a point value or a min/max range. Every field is optional.
type SalaryExpectation struct {
	Point *float64 `json:"point,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

type CommutePreference struct {
	MaxMinutes *int   `json:"maxMinutes,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

type CandidateProfile struct {
	ID               string            `json:"id"`
	Version          int64             `json:"version"`
	Title            string            `json:"title,omitempty"`
	DomainKey        string            `json:"domainKey,omitempty"`
	Skills           []string          `json:"skills"`
	YearsExperience  *float64          `json:"yearsExperience,omitempty"`
	Seniority        Seniority         `json:"seniority,omitempty"`
	Salary           SalaryExpectation `json:"salary"`
	City             string            `json:"city,omitempty"`
	Location         *GeoPoint         `json:"location,omitempty"`
	Commute          CommutePreference `json:"commute"`
	AvailableFrom    *time.Time        `json:"availableFrom,omitempty"`
	NoticePeriodDays *int              `json:"noticePeriodDays,omitempty"`
	WorkModel        WorkModel         `json:"workModel,omitempty"`
}
