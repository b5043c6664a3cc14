package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-workers/internal/models"
)

// ==========================
// Scenario Tests
// ==========================

func TestEvaluate_JavaSpringAgainstKubernetesJob(t *testing.T) {
	e := testEngine(t)
	in := PairInput{TravelMinutes: intp(30), AsOf: testAsOf}

	res := e.Evaluate(javaCandidate(), javaJob(), testRegistry(), in)

	assert.InDelta(t, 0.83, res.MustHaveCoverage, 0.01)
	assert.Equal(t, []string{"java", "spring"}, res.Fit.Details.Skills.Matched)
	require.Len(t, res.Fit.Details.Skills.Transferable, 1)
	assert.Equal(t, "kubernetes", res.Fit.Details.Skills.Transferable[0].Skill)
	assert.Equal(t, "aws", res.Fit.Details.Skills.Transferable[0].Via)
	assert.Equal(t, 80, res.Fit.Details.Skills.Transferable[0].Percent)
	assert.Empty(t, res.Fit.Details.Skills.MustHaveMissing)

	assert.Equal(t, 100, res.Constraints.Breakdown.Salary)
	assert.Equal(t, 100, res.Constraints.Breakdown.Commute)
	assert.Equal(t, 100, res.Constraints.Breakdown.StartDate)
	assert.Equal(t, 1.0, res.GateMultiplier)
	assert.Nil(t, res.Gates.DomainMismatch)

	assert.Contains(t, []models.PolicyTier{models.PolicyHot, models.PolicyStandard}, res.Policy)
	assert.Equal(t, models.EngineVersion, res.EngineVersion)
	assert.Equal(t, models.ModeExact, res.Mode)
	assert.False(t, res.Partial)
	assert.Empty(t, res.Explainability.WhyNot)
	assert.NotEmpty(t, res.Explainability.NextAction)
}

func TestEvaluate_IncompatibleDomainIsHidden(t *testing.T) {
	e := testEngine(t)
	candidate := models.CandidateProfile{
		ID:     "cand-emb",
		Title:  "Embedded Firmware Engineer",
		Skills: []string{"C", "rtos", "FPGA"},
	}
	job := models.JobProfile{
		ID:             "job-design",
		Title:          "Product Designer",
		MustHaveSkills: []string{"Figma", "UX"},
	}

	res := e.Evaluate(candidate, job, testRegistry(), PairInput{AsOf: testAsOf})

	require.NotNil(t, res.Gates.DomainMismatch)
	assert.True(t, res.Gates.DomainMismatch.IsIncompatible)
	assert.Equal(t, "embedded_hardware", res.Gates.DomainMismatch.CandidateDomain)
	assert.Equal(t, "design", res.Gates.DomainMismatch.JobDomain)
	assert.LessOrEqual(t, res.GateMultiplier, 0.1)
	assert.Equal(t, models.PolicyHidden, res.Policy)
	assert.Contains(t, res.Explainability.WhyNot, "incompatible")
}

func TestEvaluate_IncompatibilityIsSymmetric(t *testing.T) {
	e := testEngine(t)
	candidate := models.CandidateProfile{ID: "cand-des", Title: "Senior Designer", Skills: []string{"figma", "sketch"}}
	job := models.JobProfile{ID: "job-fw", Title: "Firmware Engineer", MustHaveSkills: []string{"c", "fpga"}}

	res := e.Evaluate(candidate, job, testRegistry(), PairInput{AsOf: testAsOf})

	assert.True(t, res.Gates.Incompatible())
	assert.Equal(t, models.PolicyHidden, res.Policy)
}

func TestEvaluate_NoMustHavesMeansFullCoverage(t *testing.T) {
	e := testEngine(t)
	job := javaJob()
	job.MustHaveSkills = nil

	for _, skills := range [][]string{nil, {"cobol"}, {"java", "go"}} {
		c := javaCandidate()
		c.Skills = skills
		res := e.Evaluate(c, job, testRegistry(), PairInput{AsOf: testAsOf})
		assert.Equal(t, 1.0, res.MustHaveCoverage)
		assert.Equal(t, 100, res.Fit.Breakdown.Skills)
	}
}

// ==========================
// Property Tests
// ==========================

func TestEvaluate_Bounds(t *testing.T) {
	e := testEngine(t)
	reg := testRegistry()

	extreme := javaCandidate()
	extreme.Salary = models.SalaryExpectation{Point: f64(900000)}
	extreme.YearsExperience = f64(0)
	extreme.Seniority = models.SeniorityDirector
	extreme.WorkModel = models.WorkModelRemote
	extreme.AvailableFrom = day("2027-06-01")

	tests := []struct {
		name      string
		candidate models.CandidateProfile
		job       models.JobProfile
		in        PairInput
	}{
		{"empty profiles", models.CandidateProfile{}, models.JobProfile{}, PairInput{}},
		{"nil registry", javaCandidate(), javaJob(), PairInput{AsOf: testAsOf}},
		{"everything wrong", extreme, javaJob(), PairInput{TravelMinutes: intp(500), AsOf: testAsOf}},
		{"preview mode", javaCandidate(), javaJob(), PairInput{Mode: models.ModePreview}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reg
			if tt.name == "nil registry" {
				r = nil
			}
			res := e.Evaluate(tt.candidate, tt.job, r, tt.in)

			assert.GreaterOrEqual(t, res.Overall, 0)
			assert.LessOrEqual(t, res.Overall, 100)
			assert.GreaterOrEqual(t, res.MustHaveCoverage, 0.0)
			assert.LessOrEqual(t, res.MustHaveCoverage, 1.0)
			assert.GreaterOrEqual(t, res.GateMultiplier, 0.0)
			assert.LessOrEqual(t, res.GateMultiplier, 1.0)
			assert.NotEmpty(t, res.Policy)
			assert.Equal(t, models.ExplainBasic, res.Explainability.Kind)
			assert.Nil(t, res.Explainability.Enhanced)
		})
	}
}

func TestEvaluate_MonotonicInMatchedMustHaves(t *testing.T) {
	e := testEngine(t)
	reg := testRegistry()
	job := javaJob()
	job.MustHaveSkills = []string{"java", "spring", "hibernate", "kubernetes", "terraform"}

	c := javaCandidate()
	c.Skills = nil
	prevSkills, prevCoverage := -1, -1.0
	for _, s := range job.MustHaveSkills {
		c.Skills = append(c.Skills, s)
		res := e.Evaluate(c, job, reg, PairInput{AsOf: testAsOf})

		assert.GreaterOrEqual(t, res.Fit.Breakdown.Skills, prevSkills, "after adding %s", s)
		assert.GreaterOrEqual(t, res.MustHaveCoverage, prevCoverage, "after adding %s", s)
		prevSkills, prevCoverage = res.Fit.Breakdown.Skills, res.MustHaveCoverage
	}
	assert.Equal(t, 1.0, prevCoverage)
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := testEngine(t)
	reg := testRegistry()
	in := PairInput{TravelMinutes: intp(70), AsOf: testAsOf, Variant: models.ExplainEnhanced}

	first := e.Evaluate(javaCandidate(), javaJob(), reg, in)
	second := e.Evaluate(javaCandidate(), javaJob(), reg, in)

	assert.Equal(t, first, second)
}

func TestEvaluate_AcceptedOverrideForcesCommute(t *testing.T) {
	e := testEngine(t)
	c, j := javaCandidate(), javaJob()

	tests := []struct {
		name     string
		override *models.CommuteOverride
		expected int
	}{
		{
			name:     "yes for this pair",
			override: &models.CommuteOverride{CandidateID: c.ID, JobID: j.ID, AcceptedCommuteMinutes: 120, Response: models.OverrideYes},
			expected: 100,
		},
		{
			name:     "yes for another job",
			override: &models.CommuteOverride{CandidateID: c.ID, JobID: "job-other", AcceptedCommuteMinutes: 120, Response: models.OverrideYes},
			expected: 0,
		},
		{
			name:     "conditional is ignored for scoring",
			override: &models.CommuteOverride{CandidateID: c.ID, JobID: j.ID, AcceptedCommuteMinutes: 120, Response: models.OverrideConditional},
			expected: 0,
		},
		{
			name:     "no override",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(c, j, testRegistry(), PairInput{TravelMinutes: intp(120), Override: tt.override, AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Constraints.Breakdown.Commute)
		})
	}
}

func TestEvaluate_GateDominance(t *testing.T) {
	e := testEngine(t)
	c := models.CandidateProfile{
		ID:              "cand-emb",
		DomainKey:       "embedded_hardware",
		Skills:          []string{"figma", "ux", "sketch"},
		YearsExperience: f64(5),
		Seniority:       models.SenioritySenior,
		Salary:          models.SalaryExpectation{Point: f64(50000)},
	}
	j := models.JobProfile{
		ID:             "job-design",
		DomainKey:      "design",
		MustHaveSkills: []string{"figma", "ux"},
		Seniority:      models.SenioritySenior,
		Salary:         models.SalaryRange{Max: f64(90000)},
		Remote:         true,
	}

	res := e.Evaluate(c, j, testRegistry(), PairInput{AsOf: testAsOf})

	assert.True(t, res.Gates.Incompatible())
	assert.Equal(t, models.PolicyHidden, res.Policy)
	assert.Equal(t, 0.1, res.Gates.Dealbreakers.TechDomain)
}

// ==========================
// Factor Tests
// ==========================

func TestEvaluate_InvalidDomainReferenceSkipsDomainChecks(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.DomainKey = "quantum_computing"

	res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{AsOf: testAsOf, TravelMinutes: intp(20), Variant: models.ExplainEnhanced})

	assert.Empty(t, res.Fit.Details.Skills.Transferable)
	assert.Equal(t, []string{"kubernetes"}, res.Fit.Details.Skills.MustHaveMissing)
	assert.Nil(t, res.Gates.DomainMismatch)
	assert.Equal(t, 1.0, res.Gates.Dealbreakers.TechDomain)
	assertRiskContains(t, res, "not in the registry")
}

func TestEvaluate_InactiveDomainIsInvalidReference(t *testing.T) {
	e := testEngine(t)
	j := javaJob()
	j.DomainKey = "legacy_mainframe"

	res := e.Evaluate(javaCandidate(), j, testRegistry(), PairInput{AsOf: testAsOf, Variant: models.ExplainEnhanced})

	assert.Nil(t, res.Gates.DomainMismatch)
	assertRiskContains(t, res, "legacy_mainframe")
}

func TestEvaluate_DomainMultipliers(t *testing.T) {
	e := testEngine(t)
	reg := testRegistry()

	tests := []struct {
		name      string
		candidate string
		job       string
		expected  float64
	}{
		{"same domain", "backend_java", "backend_java", 1.0},
		{"transferable", "backend_java", "backend_go", 0.95},
		{"transferable either direction", "backend_go", "cloud_devops", 0.95},
		{"unrelated", "cloud_devops", "backend_java", 0.85},
		{"unrelated design", "backend_java", "design", 0.85},
		{"incompatible", "design", "embedded_hardware", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := javaCandidate()
			c.DomainKey = tt.candidate
			j := javaJob()
			j.DomainKey = tt.job
			res := e.Evaluate(c, j, reg, PairInput{AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Gates.Dealbreakers.TechDomain)
		})
	}
}

func TestEvaluate_ExperienceAndSeniority(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name            string
		years           *float64
		seniority       models.Seniority
		expectedExp     int
		expectedSen     int
		expectedSenGate float64
	}{
		{"in range", f64(6), models.SenioritySenior, 100, 100, 1},
		{"under by two years", f64(3), models.SeniorityMid, 60, 75, 1},
		{"over by two years", f64(10), models.SeniorityLead, 90, 75, 1},
		{"unknown", nil, "", 50, 50, 1},
		{"far apart", f64(6), models.SeniorityJunior, 100, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := javaCandidate()
			c.YearsExperience = tt.years
			c.Seniority = tt.seniority
			res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{AsOf: testAsOf})
			assert.Equal(t, tt.expectedExp, res.Fit.Breakdown.Experience)
			assert.Equal(t, tt.expectedSen, res.Fit.Breakdown.Seniority)
			assert.Equal(t, tt.expectedSenGate, res.Gates.Dealbreakers.Seniority)
		})
	}
}

func TestEvaluate_SeniorityGateBeyondTwoLevels(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Seniority = models.SeniorityJunior
	j := javaJob()
	j.Seniority = models.SeniorityLead

	res := e.Evaluate(c, j, testRegistry(), PairInput{AsOf: testAsOf})

	assert.Equal(t, 25, res.Fit.Breakdown.Seniority)
	assert.Equal(t, 0.5, res.Gates.Dealbreakers.Seniority)
}

func TestEvaluate_Salary(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name         string
		salary       models.SalaryExpectation
		expected     int
		expectedGate float64
	}{
		{"point within budget", models.SalaryExpectation{Point: f64(70000)}, 100, 1},
		{"range midpoint above max", models.SalaryExpectation{Min: f64(80000), Max: f64(100000)}, 76, 1},
		{"far above max", models.SalaryExpectation{Point: f64(100000)}, 29, 0.5},
		{"unknown", models.SalaryExpectation{}, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := javaCandidate()
			c.Salary = tt.salary
			res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Constraints.Breakdown.Salary)
			assert.Equal(t, tt.expectedGate, res.Gates.Dealbreakers.Salary)
		})
	}
}

func TestEvaluate_CommuteScaling(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Commute.MaxMinutes = intp(40)

	tests := []struct {
		name     string
		mutate   func(j *models.JobProfile)
		travel   *int
		expected int
	}{
		{"within preference", func(j *models.JobProfile) {}, intp(40), 100},
		{"onsite overrun", func(j *models.JobProfile) {}, intp(60), 0},
		{"hybrid two days", func(j *models.JobProfile) {
			j.WorkModel = models.WorkModelHybrid
			j.OnsiteDaysPerWeek = 2
		}, intp(60), 60},
		{"remote ignores travel", func(j *models.JobProfile) { j.Remote = true }, intp(600), 100},
		{"unknown travel", func(j *models.JobProfile) {}, nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := javaJob()
			tt.mutate(&j)
			res := e.Evaluate(c, j, testRegistry(), PairInput{TravelMinutes: tt.travel, AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Constraints.Breakdown.Commute)
		})
	}
}

func TestEvaluate_StartDate(t *testing.T) {
	e := testEngine(t)
	j := javaJob()
	j.StartBy = day("2026-01-15")

	tests := []struct {
		name         string
		available    string
		notice       *int
		expected     int
		expectedGate float64
	}{
		{"before start-by", "2026-01-10", nil, 100, 1},
		{"ten days late", "2026-01-25", nil, 85, 1},
		{"notice period beyond grace", "", intp(60), 31, 0.6},
		{"unknown", "", nil, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := javaCandidate()
			c.AvailableFrom = nil
			if tt.available != "" {
				c.AvailableFrom = day(tt.available)
			}
			c.NoticePeriodDays = tt.notice
			res := e.Evaluate(c, j, testRegistry(), PairInput{AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Constraints.Breakdown.StartDate)
			assert.Equal(t, tt.expectedGate, res.Gates.Dealbreakers.StartDate)
		})
	}
}

func TestEvaluate_WorkModelGate(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		candidate models.WorkModel
		job       models.WorkModel
		remote    bool
		expected  float64
	}{
		{models.WorkModelRemote, models.WorkModelOnsite, false, 0.3},
		{models.WorkModelOnsite, "", true, 0.3},
		{models.WorkModelRemote, models.WorkModelHybrid, false, 1},
		{models.WorkModelFlexible, models.WorkModelOnsite, false, 1},
		{"", models.WorkModelOnsite, false, 1},
		{"Remote", "Onsite", false, 0.3},
		{" onsite", "REMOTE", false, 0.3},
	}

	for _, tt := range tests {
		t.Run(string(tt.candidate)+"_vs_"+string(tt.job), func(t *testing.T) {
			c := javaCandidate()
			c.WorkModel = tt.candidate
			j := javaJob()
			j.WorkModel = tt.job
			j.Remote = tt.remote
			res := e.Evaluate(c, j, testRegistry(), PairInput{AsOf: testAsOf})
			assert.Equal(t, tt.expected, res.Gates.Dealbreakers.WorkModel)
		})
	}
}

func TestEvaluate_MixedCaseRemoteJobSkipsCommute(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.WorkModel = models.WorkModelRemote
	j := javaJob()
	j.WorkModel = "Remote"

	res := e.Evaluate(c, j, testRegistry(), PairInput{AsOf: testAsOf, TravelMinutes: intp(200)})

	assert.Equal(t, 100, res.Constraints.Breakdown.Commute)
	assert.Equal(t, 1.0, res.Gates.Dealbreakers.WorkModel)
}

// ==========================
// Explainability Tests
// ==========================

func TestEvaluate_EnhancedExplainability(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Salary = models.SalaryExpectation{Point: f64(100000)}

	res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{
		TravelMinutes: intp(30),
		AsOf:          testAsOf,
		Variant:       models.ExplainEnhanced,
	})

	require.Equal(t, models.ExplainEnhanced, res.Explainability.Kind)
	require.NotNil(t, res.Explainability.Enhanced)

	enh := res.Explainability.Enhanced
	require.NotEmpty(t, enh.Risks)
	assert.Equal(t, models.LevelHigh, enh.Risks[0].Severity)
	assert.True(t, enh.Risks[0].Mitigatable)
	assert.Equal(t, "Discuss compensation flexibility", enh.Risks[0].Mitigation)
	assert.Contains(t, enh.RecruiterAction.TalkingPoints, "Discuss compensation flexibility")
	assert.NotEmpty(t, enh.RecruiterAction.Action)
	assert.LessOrEqual(t, len(res.Explainability.TopRisks), 3)
	assert.LessOrEqual(t, len(res.Explainability.TopReasons), 3)
}

func TestEvaluate_MissingDataSurfacesAsRisk(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Salary = models.SalaryExpectation{}
	c.YearsExperience = nil

	res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{AsOf: testAsOf, Variant: models.ExplainEnhanced})

	assert.Equal(t, 50, res.Constraints.Breakdown.Salary)
	assert.Equal(t, 50, res.Fit.Breakdown.Experience)
	assertRiskContains(t, res, "Salary data unknown")
	assertRiskContains(t, res, "Years of experience unknown")
}

func TestEvaluate_LookupFailureLeadsBasicRisks(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Salary = models.SalaryExpectation{Min: f64(120000)}
	c.Seniority = models.SeniorityJunior
	c.WorkModel = models.WorkModelRemote
	c.YearsExperience = nil
	j := javaJob()
	j.Seniority = models.SeniorityDirector

	res := e.Evaluate(c, j, testRegistry(), PairInput{
		AsOf:   testAsOf,
		Issues: []string{"commute lookup failed: maps api timeout"},
	})

	require.True(t, res.Partial)
	ex := res.Explainability
	assert.Equal(t, models.ExplainBasic, ex.Kind)
	require.Len(t, ex.TopRisks, 3)
	assert.Contains(t, ex.TopRisks[0], "maps api timeout")
	assert.Contains(t, ex.TopRisks[1], "Minimum salary 120000 exceeds the job maximum 85000")

	require.Len(t, ex.DataGaps, 3)
	assert.Contains(t, ex.DataGaps[0], "maps api timeout")
	assert.Contains(t, ex.DataGaps, "Years of experience unknown, scored neutral")
	assert.Contains(t, ex.DataGaps, "Commute data unknown, scored neutral")
}

func TestEvaluate_CompleteDataHasNoGaps(t *testing.T) {
	e := testEngine(t)

	res := e.Evaluate(javaCandidate(), javaJob(), testRegistry(), PairInput{AsOf: testAsOf, TravelMinutes: intp(30)})

	assert.False(t, res.Partial)
	assert.Empty(t, res.Explainability.DataGaps)
}

func TestEvaluate_WhyNotForLowScore(t *testing.T) {
	e := testEngine(t)
	c := javaCandidate()
	c.Skills = []string{"cobol"}
	c.Title = ""
	c.YearsExperience = f64(0)
	c.Seniority = models.SeniorityJunior

	res := e.Evaluate(c, javaJob(), testRegistry(), PairInput{AsOf: testAsOf, TravelMinutes: intp(200)})

	assert.Equal(t, models.PolicyHidden, res.Policy)
	assert.Contains(t, res.Explainability.WhyNot, "Missing must-have skills")
	assert.Empty(t, res.Explainability.NextAction)
}

func TestEvaluateDomains_UsesOverride(t *testing.T) {
	e := testEngine(t)
	c, j := javaCandidate(), javaJob()
	override := &models.CommuteOverride{CandidateID: c.ID, JobID: j.ID, Response: models.OverrideYes, AcceptedCommuteMinutes: 90}

	res := e.EvaluateDomains(c, j, testDomains(), override, PairInput{TravelMinutes: intp(90), AsOf: testAsOf})

	assert.Equal(t, 100, res.Constraints.Breakdown.Commute)
	assert.InDelta(t, 0.83, res.MustHaveCoverage, 0.01)
}

func assertRiskContains(t *testing.T, res models.MatchResult, fragment string) {
	t.Helper()
	texts := append([]string{}, res.Explainability.TopRisks...)
	if res.Explainability.Enhanced != nil {
		for _, r := range res.Explainability.Enhanced.Risks {
			texts = append(texts, r.Text)
		}
	}
	for _, text := range texts {
		if strings.Contains(text, fragment) {
			return
		}
	}
	t.Errorf("no risk containing %q in %v", fragment, texts)
}
