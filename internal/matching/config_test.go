package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative weight", func(c *Config) { c.FitWeights.Skills = -1 }, true},
		{"zero fit weights", func(c *Config) { c.FitWeights = FitWeights{} }, true},
		{"zero constraint weights", func(c *Config) { c.ConstraintWeights = ConstraintWeights{} }, true},
		{"zero blend", func(c *Config) { c.Blend = BlendWeights{} }, true},
		{"multiplier above one", func(c *Config) { c.Gates.Salary = 1.5 }, true},
		{"unordered thresholds", func(c *Config) { c.Thresholds.Standard = 90 }, true},
		{"preview above maybe", func(c *Config) { c.Thresholds.PreviewMaybe = 60 }, true},
		{"bonus above ten", func(c *Config) { c.Skills.NiceToHaveBonusMax = 25 }, true},
		{"custom but valid", func(c *Config) {
			c.FitWeights = FitWeights{Skills: 2, Experience: 1, Seniority: 1}
			c.Thresholds = Thresholds{Hot: 90, Standard: 75, Maybe: 55, PreviewMaybe: 30}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blend.Fit = -0.7

	e, err := NewEngine(cfg)

	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
