package queryelasticsearch

import (
	"time"

	"match-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second, Index: "matches"}
	if cfg == nil {
		return c
	}
	if wcfg, ok := cfg.Workers[TaskType]; ok && wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if cfg.MatchIndex.Index != "" {
		c.Index = cfg.MatchIndex.Index
	}
	return c
}
