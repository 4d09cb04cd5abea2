// internal/workers/eligibility/generate-explanation/config.go
package generateexplanation

import (
	"time"

	"scheme-eligibility/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	Alternatives []string
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Config{
		Timeout:      timeout,
		MaxRetries:   wc.MaxRetries,
		Alternatives: cfg.Explanation.FallbackAlternatives,
	}
}
