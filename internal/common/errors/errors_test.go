package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewRateLimitError("status 429")
	assert.Equal(t, "StandardError[RATE_LIMIT]: Rate limit exceeded. Please try again in a moment.", err.Error())
	assert.True(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestAsStandard_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("explain: %w", NewServiceUnavailableError("status 402"))

	stdErr, ok := AsStandard(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeServiceUnavailable, stdErr.Code)

	_, ok = AsStandard(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestStandardError_Is(t *testing.T) {
	err := fmt.Errorf("gateway: %w", NewRateLimitError("status 429"))

	assert.ErrorIs(t, err, ErrRateLimit)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
	assert.NotErrorIs(t, fmt.Errorf("plain"), ErrRateLimit)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, Normalize(fmt.Errorf("boom")).Code)
	assert.Equal(t, ErrCodeSchemeNotFound, Normalize(NewSchemeNotFoundError("x")).Code)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{name: "rate limit retried", err: NewRateLimitError("429"), wantCode: "RATE_LIMIT", wantRetries: 2},
		{name: "service unavailable not retried", err: NewServiceUnavailableError("402"), wantCode: "SERVICE_UNAVAILABLE", wantRetries: 0},
		{name: "generic failure retried", err: NewExplanationFailedError(fmt.Errorf("status 500")), wantCode: "EXPLANATION_FAILED", wantRetries: 3},
		{name: "unmapped code falls back to itself", err: NewInvalidTransitionError("startRuleEvaluation", "IDLE", "PROFILE_VALIDATION"), wantCode: "INVALID_TRANSITION", wantRetries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(2), RemainingRetries(3, 3))
	assert.Equal(t, int32(2), RemainingRetries(10, 2))
	assert.Equal(t, int32(0), RemainingRetries(1, 3))
	assert.Equal(t, int32(0), RemainingRetries(0, 3))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeRateLimit:           "AI",
		ErrCodeServiceUnavailable:  "AI",
		ErrCodeExplanationInFlight: "AI",
		ErrCodeInvalidTransition:   "SESSION",
		ErrCodeSessionNotFound:     "SESSION",
		ErrCodeSchemeNotFound:      "CATALOG",
		ErrCodeCatalogInvalid:      "CATALOG",
		ErrCodeInvalidInput:        "VALIDATION",
		ErrCodeInternal:            "INTERNAL",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
	assert.True(t, IsRetryableErrorCode(ErrCodeRateLimit))
	assert.False(t, IsRetryableErrorCode(ErrCodeServiceUnavailable))
}
