// internal/models/match_result.go
package models

const EngineVersion = "3.1"

type EvaluationMode string

const (
	ModeExact   EvaluationMode = "exact"
	ModePreview EvaluationMode = "preview"
)

type PolicyTier string

const (
	PolicyHot      PolicyTier = "hot"
	PolicyStandard PolicyTier = "standard"
	PolicyMaybe    PolicyTier = "maybe"
	PolicyHidden   PolicyTier = "hidden"
)

type ExplainVariant string

const (
	ExplainBasic    ExplainVariant = "basic"
	ExplainEnhanced ExplainVariant = "enhanced"
)

type MatchResult struct {
	CandidateID      string            `json:"candidateId"`
	JobID            string            `json:"jobId"`
	EngineVersion    string            `json:"engineVersion"`
	Mode             EvaluationMode    `json:"mode"`
	Overall          int               `json:"overall"`
	Fit              FitResult         `json:"fit"`
	Constraints      ConstraintsResult `json:"constraints"`
	GateMultiplier   float64           `json:"gateMultiplier"`
	Gates            Gates             `json:"gates"`
	MustHaveCoverage float64           `json:"mustHaveCoverage"`
	Policy           PolicyTier        `json:"policy"`
	Partial          bool              `json:"partial"`
	Explainability   Explainability    `json:"explainability"`
}

type FitResult struct {
	Score     int          `json:"score"`
	Breakdown FitBreakdown `json:"breakdown"`
	Details   FitDetails   `json:"details"`
}

type FitBreakdown struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Seniority  int `json:"seniority"`
}

type FitDetails struct {
	Skills SkillDetails `json:"skills"`
}

type SkillDetails struct {
	Matched           []string            `json:"matched"`
	Transferable      []TransferableSkill `json:"transferable"`
	Missing           []string            `json:"missing"`
	MustHaveMissing   []string            `json:"mustHaveMissing"`
	NiceToHaveMatched []string            `json:"niceToHaveMatched"`
}

// TransferableSkill is a missing must-have credited through a related candidate skill.
type TransferableSkill struct {
	Skill   string `json:"skill"`
	Via     string `json:"via"`
	Domain  string `json:"domain"`
	Percent int    `json:"percent"`
}

type ConstraintsResult struct {
	Score     int                  `json:"score"`
	Breakdown ConstraintsBreakdown `json:"breakdown"`
}

type ConstraintsBreakdown struct {
	Salary    int `json:"salary"`
	Commute   int `json:"commute"`
	StartDate int `json:"startDate"`
}

type Gates struct {
	Dealbreakers   Dealbreakers    `json:"dealbreakers"`
	DomainMismatch *DomainMismatch `json:"domainMismatch,omitempty"`
}

type Dealbreakers struct {
	Salary     float64 `json:"salary"`
	StartDate  float64 `json:"startDate"`
	Seniority  float64 `json:"seniority"`
	WorkModel  float64 `json:"workModel"`
	TechDomain float64 `json:"techDomain"`
}

// Product multiplies all dealbreaker multipliers.
func (d Dealbreakers) Product() float64 {
	return d.Salary * d.StartDate * d.Seniority * d.WorkModel * d.TechDomain
}

type DomainMismatch struct {
	IsIncompatible  bool   `json:"isIncompatible"`
	CandidateDomain string `json:"candidateDomain"`
	JobDomain       string `json:"jobDomain"`
}

// Incompatible is safe to call on results without a domain mismatch.
func (g Gates) Incompatible() bool {
	return g.DomainMismatch != nil && g.DomainMismatch.IsIncompatible
}

// Explainability is a tagged variant: Enhanced is set exactly when Kind is ExplainEnhanced.
type Explainability struct {
	Kind       ExplainVariant       `json:"kind"`
	TopReasons []string             `json:"topReasons"`
	TopRisks   []string             `json:"topRisks"`
	NextAction string               `json:"nextAction,omitempty"`
	WhyNot     string               `json:"whyNot,omitempty"`
	// DataGaps lists every unknown input and failed lookup. It is never truncated.
	DataGaps   []string             `json:"dataGaps,omitempty"`
	Enhanced   *EnhancedExplanation `json:"enhanced,omitempty"`
}

type EnhancedExplanation struct {
	Reasons         []EnhancedReason `json:"enhancedReasons"`
	Risks           []EnhancedRisk   `json:"enhancedRisks"`
	RecruiterAction RecruiterAction  `json:"recruiterAction"`
}

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

type EnhancedReason struct {
	Text   string `json:"text"`
	Impact Level  `json:"impact"`
}

type EnhancedRisk struct {
	Text        string `json:"text"`
	Severity    Level  `json:"severity"`
	Mitigatable bool   `json:"mitigatable"`
	Mitigation  string `json:"mitigation,omitempty"`
}

type RecruiterAction struct {
	Action        string   `json:"action"`
	Priority      string   `json:"priority"`
	TalkingPoints []string `json:"talkingPoints"`
}
