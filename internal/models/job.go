// internal/models/job.go
package models

import "time"

type YearsRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type SalaryRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type JobProfile struct {
	ID                string      `json:"id"`
	Version           int64       `json:"version"`
	Title             string      `json:"title,omitempty"`
	DomainKey         string      `json:"domainKey,omitempty"`
	MustHaveSkills    []string    `json:"mustHaveSkills"`
	NiceToHaveSkills  []string    `json:"niceToHaveSkills"`
	Experience        YearsRange  `json:"experience"`
	Seniority         Seniority   `json:"seniority,omitempty"`
	Salary            SalaryRange `json:"salary"`
	City              string      `json:"city,omitempty"`
	Location          *GeoPoint   `json:"location,omitempty"`
	Remote            bool        `json:"remote"`
	OnsiteDaysPerWeek int         `json:"onsiteDaysPerWeek,omitempty"`
	StartBy           *time.Time  `json:"startBy,omitempty"`
	WorkModel         WorkModel   `json:"workModel,omitempty"`
}

// IsRemote reports whether the job requires no onsite presence.
func (j JobProfile) IsRemote() bool {
	return j.Remote || j.WorkModel.Normalized() == WorkModelRemote
}

// OfferedWorkModel resolves the work model from the explicit field or the remote flag.
func (j JobProfile) OfferedWorkModel() WorkModel {
	if wm := j.WorkModel.Normalized(); wm != "" {
		return wm
	}
	if j.Remote {
		return WorkModelRemote
	}
	return ""
}
