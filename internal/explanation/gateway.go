package explanation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "scheme-eligibility/internal/common/errors"
	commonhttp "scheme-eligibility/internal/common/http"
)

const chatCompletionsPath = "/v1/chat/completions"

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff time.Duration
}

// GatewayGenerator calls an OpenAI-compatible chat-completions endpoint.
type GatewayGenerator struct {
	config GatewayConfig
	client *commonhttp.Client
	logger Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewGatewayGenerator(config GatewayConfig, log Logger) *GatewayGenerator {
	if config.Backoff <= 0 {
		config.Backoff = 100 * time.Millisecond
	}
	// No client timeout: the caller's context carries the deadline.
	client := commonhttp.NewClient(0)
	if config.APIKey != "" {
		client = client.WithHeader("Authorization", "Bearer "+config.APIKey)
	}
	return &GatewayGenerator{
		config: config,
		client: client,
		logger: log,
	}
}

func (g *GatewayGenerator) Name() string { return "gateway" }

func (g *GatewayGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	}
	url := strings.TrimRight(g.config.BaseURL, "/") + chatCompletionsPath

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.config.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retry, err := g.call(ctx, url, body)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if !retry {
			return "", err
		}
		g.logger.Warn("gateway call failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	return "", lastErr
}

// call makes one request. The bool result reports whether the failure is
// worth retrying.
func (g *GatewayGenerator) call(ctx context.Context, url string, body chatRequest) (string, bool, error) {
	resp, err := g.client.PostJSON(ctx, url, body)
	if err != nil {
		return "", true, apperrors.NewExplanationFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Error("gateway returned error status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(detail),
		})
		return "", classifyStatus(resp.StatusCode) == nil, statusError(resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, apperrors.NewExplanationFailedError(fmt.Errorf("decode response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", false, nil
	}
	return out.Choices[0].Message.Content, false, nil
}

// classifyStatus maps the statuses that must not be retried to their error.
// It returns nil for retryable statuses.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimitError(fmt.Sprintf("status %d", status))
	case status == http.StatusPaymentRequired || status == http.StatusServiceUnavailable:
		return apperrors.NewServiceUnavailableError(fmt.Sprintf("status %d", status))
	case status >= 500:
		return nil
	default:
		return apperrors.NewExplanationFailedError(fmt.Errorf("status %d", status))
	}
}

func statusError(status int) error {
	if err := classifyStatus(status); err != nil {
		return err
	}
	return apperrors.NewExplanationFailedError(fmt.Errorf("status %d", status))
}
