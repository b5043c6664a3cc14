package querypostgresql

import (
	"time"

	"match-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second}
	if cfg != nil {
		if wcfg, ok := cfg.Workers[TaskType]; ok && wcfg.Timeout > 0 {
			c.Timeout = config.GetDuration(wcfg.Timeout)
		}
	}
	return c
}
