package explanation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"scheme-eligibility/internal/common/config"
	"scheme-eligibility/internal/common/observability"
)

// New builds the configured backend behind a Service, wrapped in the Redis
// cache when rdb is non-nil and a cache TTL is set.
func New(ctx context.Context, cfg config.ExplanationConfig, rdb redis.Cmdable, obs *observability.Observability, log Logger) (Explainer, error) {
	var generator Generator
	switch cfg.Provider {
	case config.ProviderGateway, "":
		generator = NewGatewayGenerator(GatewayConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			MaxRetries:  cfg.MaxRetries,
		}, log)
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		generator = g
	default:
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Provider)
	}

	var explainer Explainer = NewService(generator, config.GetDuration(cfg.Timeout), obs, log)
	if rdb != nil && cfg.CacheTTL > 0 {
		explainer = NewCachedExplainer(explainer, rdb, config.GetDuration(cfg.CacheTTL), log)
	}
	return explainer, nil
}
