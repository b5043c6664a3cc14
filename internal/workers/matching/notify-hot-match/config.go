package notifyhotmatch

import (
	"time"

	"match-workers/internal/common/config"
	"match-workers/internal/models"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	// SMSMinPolicy is the lowest tier that also triggers an SMS.
	SMSMinPolicy models.PolicyTier
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second, SMSMinPolicy: models.PolicyHot}
	if cfg == nil {
		return c
	}
	if wcfg, ok := cfg.Workers[TaskType]; ok && wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	n := cfg.Notifications
	c.EmailEnabled = n.Email.Enabled
	c.FromEmail = n.Email.FromEmail
	c.SMSEnabled = n.SMS.Enabled
	if n.SMS.MinPolicy != "" {
		c.SMSMinPolicy = models.PolicyTier(n.SMS.MinPolicy)
	}
	return c
}
