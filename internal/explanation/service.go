package explanation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
	"scheme-eligibility/internal/common/observability"
	"scheme-eligibility/internal/eligibility"
)

// Service implements Explainer on top of a text Generator. It owns the prompt,
// the deadline, the error classification and the fixed next-step lists.
type Service struct {
	generator Generator
	timeout   time.Duration
	obs       *observability.Observability
	logger    Logger
	now       func() time.Time
}

func NewService(generator Generator, timeout time.Duration, obs *observability.Observability, log Logger) *Service {
	return &Service{
		generator: generator,
		timeout:   timeout,
		obs:       obs,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Explain(ctx context.Context, req Request) (*Payload, error) {
	ctx, span := s.obs.StartSpan(ctx, "explanation.generate",
		attribute.String("scheme_id", req.Scheme.ID),
		attribute.String("provider", s.generator.Name()),
	)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, SystemPrompt, BuildUserPrompt(req))
	elapsed := time.Since(start)

	provider := s.generator.Name()
	metrics.ExplanationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	if err != nil {
		stdErr := s.classify(err)
		metrics.ExplanationRequests.WithLabelValues(provider, string(stdErr.Code)).Inc()
		s.obs.RecordExplanationDuration(ctx, elapsed, provider, string(stdErr.Code))
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		s.logger.Error("explanation generation failed", map[string]interface{}{
			"schemeId":  req.Scheme.ID,
			"provider":  provider,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return nil, stdErr
	}

	metrics.ExplanationRequests.WithLabelValues(provider, "success").Inc()
	s.obs.RecordExplanationDuration(ctx, elapsed, provider, "success")

	if strings.TrimSpace(text) == "" {
		text = FallbackExplanation
	}

	isEligible, score, passed := eligibility.Score(req.RuleResults)
	s.logger.Info("explanation generated", map[string]interface{}{
		"schemeId":   req.Scheme.ID,
		"provider":   provider,
		"passed":     passed,
		"total":      len(req.RuleResults),
		"durationMs": elapsed.Milliseconds(),
	})

	return &Payload{
		Success:      true,
		IsEligible:   isEligible,
		OverallScore: score,
		Explanation:  text,
		NextSteps:    NextSteps(isEligible),
		GeneratedAt:  s.now(),
	}, nil
}

func (s *Service) classify(err error) *apperrors.StandardError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewExplanationTimeoutError(s.timeout)
	}
	if stdErr, ok := apperrors.AsStandard(err); ok {
		return stdErr
	}
	return apperrors.NewExplanationFailedError(err)
}
