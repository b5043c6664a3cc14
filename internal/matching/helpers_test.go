package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"match-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testDomains() []models.TechDomain {
	return []models.TechDomain{
		{
			Key:             "backend_java",
			DisplayNames:    []string{"Backend (Java)"},
			PrimarySkills:   []string{"Java", "Spring", "Hibernate"},
			SecondarySkills: []string{"Maven", "SQL"},
			TitleKeywords:   []string{"java developer", "java engineer"},
			TransferableTo:  []string{"backend_go"},
			Weight:          1.0,
			Active:          true,
		},
		{
			Key:             "backend_go",
			DisplayNames:    []string{"Backend (Go)"},
			PrimarySkills:   []string{"Go", "gRPC"},
			SecondarySkills: []string{"SQL"},
			TitleKeywords:   []string{"go developer", "golang"},
			TransferableTo:  []string{"backend_java", "cloud_devops"},
			Weight:          0.9,
			Active:          true,
		},
		{
			Key:             "cloud_devops",
			DisplayNames:    []string{"Cloud / DevOps"},
			PrimarySkills:   []string{"AWS", "Kubernetes", "Docker", "Terraform"},
			SecondarySkills: []string{"Linux"},
			TitleKeywords:   []string{"devops", "sre"},
			TransferableTo:  []string{"backend_go"},
			Weight:          0.8,
			Active:          true,
		},
		{
			Key:              "embedded_hardware",
			DisplayNames:     []string{"Embedded / Hardware"},
			PrimarySkills:    []string{"C", "RTOS", "FPGA", "Embedded C"},
			TitleKeywords:    []string{"embedded", "firmware"},
			IncompatibleWith: []string{"design"},
			Weight:           1.0,
			Active:           true,
		},
		{
			Key:           "design",
			DisplayNames:  []string{"Product Design"},
			PrimarySkills: []string{"Figma", "Sketch", "UX", "Prototyping"},
			TitleKeywords: []string{"designer"},
			Weight:        1.0,
			Active:        true,
		},
		{
			Key:           "legacy_mainframe",
			PrimarySkills: []string{"COBOL"},
			Weight:        1.0,
			Active:        false,
		},
	}
}

func testRegistry() *Registry {
	return NewRegistry(models.DomainRegistrySnapshot{Version: "test-1", Domains: testDomains()})
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

var testAsOf = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func javaCandidate() models.CandidateProfile {
	return models.CandidateProfile{
		ID:              "cand-1",
		Version:         3,
		Title:           "Senior Java Developer",
		Skills:          []string{"Java", "Spring", "AWS"},
		YearsExperience: f64(6),
		Seniority:       models.SenioritySenior,
		Salary:          models.SalaryExpectation{Point: f64(70000)},
		City:            "Berlin",
		Commute:         models.CommutePreference{MaxMinutes: intp(45), Mode: "transit"},
		AvailableFrom:   day("2026-02-01"),
		WorkModel:       models.WorkModelHybrid,
	}
}

func javaJob() models.JobProfile {
	return models.JobProfile{
		ID:                "job-1",
		Version:           7,
		Title:             "Backend Java Engineer",
		MustHaveSkills:    []string{"java", "spring", "kubernetes"},
		Experience:        models.YearsRange{Min: f64(5), Max: f64(8)},
		Seniority:         models.SenioritySenior,
		Salary:            models.SalaryRange{Min: f64(65000), Max: f64(85000)},
		City:              "Berlin",
		OnsiteDaysPerWeek: 5,
		StartBy:           day("2026-03-01"),
		WorkModel:         models.WorkModelOnsite,
	}
}
