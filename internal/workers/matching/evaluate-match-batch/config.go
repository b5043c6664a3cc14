package evaluatematchbatch

import (
	"time"

	"match-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	MaxCounterparts int
	// IndexEnabled is the default for inputs that do not set index.
	IndexEnabled bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 60 * time.Second, MaxCounterparts: 500}
	if cfg == nil {
		return c
	}
	if wcfg, ok := cfg.Workers[TaskType]; ok && wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.Batch.MaxCounterparts > 0 {
		c.MaxCounterparts = cfg.Batch.MaxCounterparts
	}
	c.IndexEnabled = cfg.MatchIndex.Enabled
	return c
}
