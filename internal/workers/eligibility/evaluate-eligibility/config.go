// internal/workers/eligibility/evaluate-eligibility/config.go
package evaluateeligibility

import (
	"time"

	"scheme-eligibility/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout:    timeout,
		MaxRetries: wc.MaxRetries,
	}
}
