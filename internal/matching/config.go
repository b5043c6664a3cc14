package matching

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned for structurally malformed scoring configuration.
var ErrInvalidConfig = errors.New("invalid scoring configuration")

type FitWeights struct {
	Skills     float64 `mapstructure:"skills" validate:"gte=0"`
	Experience float64 `mapstructure:"experience" validate:"gte=0"`
	Seniority  float64 `mapstructure:"seniority" validate:"gte=0"`
}

type ConstraintWeights struct {
	Salary    float64 `mapstructure:"salary" validate:"gte=0"`
	Commute   float64 `mapstructure:"commute" validate:"gte=0"`
	StartDate float64 `mapstructure:"start_date" validate:"gte=0"`
}

type BlendWeights struct {
	Fit         float64 `mapstructure:"fit" validate:"gte=0"`
	Constraints float64 `mapstructure:"constraints" validate:"gte=0"`
}

type SkillsConfig struct {
	NiceToHaveBonusMax        float64 `mapstructure:"nice_to_have_bonus_max" validate:"gte=0,lte=10"`
	CrossDomainTransferFactor float64 `mapstructure:"cross_domain_transfer_factor" validate:"gte=0,lte=1"`
}

type ExperienceConfig struct {
	UnderPenaltyPerYear float64 `mapstructure:"under_penalty_per_year" validate:"gte=0"`
	OverPenaltyPerYear  float64 `mapstructure:"over_penalty_per_year" validate:"gte=0"`
}

type SeniorityConfig struct {
	PenaltyPerLevel float64 `mapstructure:"penalty_per_level" validate:"gte=0"`
	GateMaxDistance int     `mapstructure:"gate_max_distance" validate:"gte=0,lte=4"`
}

type SalaryConfig struct {
	DecayPerPercent float64 `mapstructure:"decay_per_percent" validate:"gte=0"`
	GateTolerance   float64 `mapstructure:"gate_tolerance" validate:"gte=0"`
}

type CommuteConfig struct {
	DecayPerPercent float64 `mapstructure:"decay_per_percent" validate:"gte=0"`
}

type StartDateConfig struct {
	DecayPerDay float64 `mapstructure:"decay_per_day" validate:"gte=0"`
	GraceDays   int     `mapstructure:"grace_days" validate:"gte=0"`
}

// GateMultipliers are the values a dealbreaker drops to when its rule fires.
type GateMultipliers struct {
	Salary             float64 `mapstructure:"salary" validate:"gte=0,lte=1"`
	StartDate          float64 `mapstructure:"start_date" validate:"gte=0,lte=1"`
	Seniority          float64 `mapstructure:"seniority" validate:"gte=0,lte=1"`
	WorkModel          float64 `mapstructure:"work_model" validate:"gte=0,lte=1"`
	DomainIncompatible float64 `mapstructure:"domain_incompatible" validate:"gte=0,lte=1"`
	DomainTransferable float64 `mapstructure:"domain_transferable" validate:"gte=0,lte=1"`
	DomainUnrelated    float64 `mapstructure:"domain_unrelated" validate:"gte=0,lte=1"`
}

type Thresholds struct {
	Hot          int `mapstructure:"hot" validate:"gte=0,lte=100"`
	Standard     int `mapstructure:"standard" validate:"gte=0,lte=100"`
	Maybe        int `mapstructure:"maybe" validate:"gte=0,lte=100"`
	PreviewMaybe int `mapstructure:"preview_maybe" validate:"gte=0,lte=100"`
}

type ExplainConfig struct {
	MaxReasons int `mapstructure:"max_reasons" validate:"gte=1"`
	MaxRisks   int `mapstructure:"max_risks" validate:"gte=1"`
}

// Config holds every tunable of the scoring engine.
type Config struct {
	FitWeights        FitWeights        `mapstructure:"fit_weights"`
	ConstraintWeights ConstraintWeights `mapstructure:"constraint_weights"`
	Blend             BlendWeights      `mapstructure:"blend"`
	Skills            SkillsConfig      `mapstructure:"skills"`
	Experience        ExperienceConfig  `mapstructure:"experience"`
	Seniority         SeniorityConfig   `mapstructure:"seniority"`
	Salary            SalaryConfig      `mapstructure:"salary"`
	Commute           CommuteConfig     `mapstructure:"commute"`
	StartDate         StartDateConfig   `mapstructure:"start_date"`
	Gates             GateMultipliers   `mapstructure:"gates"`
	Thresholds        Thresholds        `mapstructure:"thresholds"`
	Explain           ExplainConfig     `mapstructure:"explain"`
	NeutralScore      int               `mapstructure:"neutral_score" validate:"gte=0,lte=100"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		FitWeights:        FitWeights{Skills: 0.5, Experience: 0.3, Seniority: 0.2},
		ConstraintWeights: ConstraintWeights{Salary: 1, Commute: 1, StartDate: 1},
		Blend:             BlendWeights{Fit: 0.7, Constraints: 0.3},
		Skills:            SkillsConfig{NiceToHaveBonusMax: 10, CrossDomainTransferFactor: 0.6},
		Experience:        ExperienceConfig{UnderPenaltyPerYear: 20, OverPenaltyPerYear: 5},
		Seniority:         SeniorityConfig{PenaltyPerLevel: 25, GateMaxDistance: 2},
		Salary:            SalaryConfig{DecayPerPercent: 4, GateTolerance: 0.10},
		Commute:           CommuteConfig{DecayPerPercent: 2},
		StartDate:         StartDateConfig{DecayPerDay: 1.5, GraceDays: 30},
		Gates: GateMultipliers{
			Salary:             0.5,
			StartDate:          0.6,
			Seniority:          0.5,
			WorkModel:          0.3,
			DomainIncompatible: 0.1,
			DomainTransferable: 0.95,
			DomainUnrelated:    0.85,
		},
		Thresholds:   Thresholds{Hot: 85, Standard: 70, Maybe: 50, PreviewMaybe: 40},
		Explain:      ExplainConfig{MaxReasons: 3, MaxRisks: 3},
		NeutralScore: 50,
	}
}

var validate = validator.New()

// Validate reports structural problems wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.FitWeights.Skills+c.FitWeights.Experience+c.FitWeights.Seniority <= 0 {
		return fmt.Errorf("%w: fit weights sum to zero", ErrInvalidConfig)
	}
	if c.ConstraintWeights.Salary+c.ConstraintWeights.Commute+c.ConstraintWeights.StartDate <= 0 {
		return fmt.Errorf("%w: constraint weights sum to zero", ErrInvalidConfig)
	}
	if c.Blend.Fit+c.Blend.Constraints <= 0 {
		return fmt.Errorf("%w: blend weights sum to zero", ErrInvalidConfig)
	}

	t := c.Thresholds
	if !(t.Hot >= t.Standard && t.Standard >= t.Maybe && t.Maybe >= t.PreviewMaybe) {
		return fmt.Errorf("%w: thresholds must satisfy hot >= standard >= maybe >= preview_maybe (got %d/%d/%d/%d)",
			ErrInvalidConfig, t.Hot, t.Standard, t.Maybe, t.PreviewMaybe)
	}

	return nil
}
