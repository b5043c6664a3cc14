package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-workers/internal/matching"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: matches
    user: ${MATCH_TEST_DB_USER}
  redis:
    address: localhost:6379
workers:
  evaluate-match:
    enabled: true
    max_jobs_active: 20
  notify-hot-match:
    enabled: false
`

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("MATCH_TEST_DB_USER", "scorer")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "scorer", cfg.Database.Postgres.User)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, 8, cfg.Batch.LookupBurst)
	assert.Equal(t, "match", cfg.Cache.KeyPrefix)
	assert.Equal(t, "matches", cfg.MatchIndex.Index)
	assert.Equal(t, "match-workers", cfg.Observability.ServiceName)
	assert.Equal(t, matching.DefaultConfig(), cfg.Scoring)

	w := GetWorkerConfig(cfg, "evaluate-match")
	assert.Equal(t, 20, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "notify-hot-match"))
	assert.True(t, IsWorkerEnabled(cfg, "evaluate-match-batch"))
}

func TestLoadFromFile_PartialScoringOverride(t *testing.T) {
	t.Setenv("MATCH_TEST_DB_USER", "scorer")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML+`
scoring:
  thresholds:
    hot: 90
  gates:
    work_model: 0.2
`))
	require.NoError(t, err)

	def := matching.DefaultConfig()
	assert.Equal(t, 90, cfg.Scoring.Thresholds.Hot)
	assert.Equal(t, def.Thresholds.Standard, cfg.Scoring.Thresholds.Standard)
	assert.Equal(t, 0.2, cfg.Scoring.Gates.WorkModel)
	assert.Equal(t, def.Gates.Salary, cfg.Scoring.Gates.Salary)
	assert.Equal(t, def.FitWeights, cfg.Scoring.FitWeights)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("MATCH_TEST_DB_USER", "scorer")

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: x\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "unordered thresholds",
			yaml: baseYAML + `
scoring:
  thresholds:
    standard: 95
`,
			wantErr: "invalid scoring configuration",
		},
		{
			name: "index without elasticsearch",
			yaml: baseYAML + `
match_index:
  enabled: true
`,
			wantErr: "elasticsearch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, tt.yaml))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}
