package evaluatematch

import (
	"time"

	"match-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	CacheEnabled bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 10 * time.Second}
	if cfg == nil {
		return c
	}
	if wcfg, ok := cfg.Workers[TaskType]; ok && wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	c.CacheEnabled = cfg.Cache.Enabled
	return c
}
