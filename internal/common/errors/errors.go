// Package errors provides standardized error codes for the eligibility
// service and their mapping onto BPMN workflow errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRateLimit           ErrorCode = "RATE_LIMIT"
	ErrCodeServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeExplanationFailed   ErrorCode = "EXPLANATION_FAILED"
	ErrCodeExplanationTimeout  ErrorCode = "EXPLANATION_TIMEOUT"
	ErrCodeExplanationInFlight ErrorCode = "EXPLANATION_IN_FLIGHT"

	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeSchemeNotFound    ErrorCode = "SCHEME_NOT_FOUND"
	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeCatalogInvalid    ErrorCode = "CATALOG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any StandardError with the same code, so the sentinels below can
// be used with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrRateLimit           = &StandardError{Code: ErrCodeRateLimit, Message: "rate limited"}
	ErrServiceUnavailable  = &StandardError{Code: ErrCodeServiceUnavailable, Message: "service unavailable"}
	ErrExplanationFailed   = &StandardError{Code: ErrCodeExplanationFailed, Message: "explanation failed"}
	ErrExplanationTimeout  = &StandardError{Code: ErrCodeExplanationTimeout, Message: "explanation timed out"}
	ErrExplanationInFlight = &StandardError{Code: ErrCodeExplanationInFlight, Message: "explanation in flight"}
	ErrInvalidTransition   = &StandardError{Code: ErrCodeInvalidTransition, Message: "invalid transition"}
	ErrSchemeNotFound      = &StandardError{Code: ErrCodeSchemeNotFound, Message: "scheme not found"}
	ErrSessionNotFound     = &StandardError{Code: ErrCodeSessionNotFound, Message: "session not found"}
	ErrInvalidInput        = &StandardError{Code: ErrCodeInvalidInput, Message: "invalid input"}
)

// AsStandard unwraps err to a *StandardError, if it carries one.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewRateLimitError: the explanation provider throttled the caller; back off and retry later.
func NewRateLimitError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimit,
		Message:   "Rate limit exceeded. Please try again in a moment.",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError: the provider refused service (quota, billing,
// outage); do not retry immediately.
func NewServiceUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   "Explanation service temporarily unavailable.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExplanationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExplanationFailed,
		Message:   "Failed to generate explanation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExplanationTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeExplanationTimeout,
		Message:   "Explanation generation timed out",
		Details:   fmt.Sprintf("call exceeded %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExplanationInFlightError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExplanationInFlight,
		Message:   "An explanation request is already in progress",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidTransitionError(operation, stage, required string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   fmt.Sprintf("%s is not allowed in the current stage", operation),
		Details:   fmt.Sprintf("stage: %s, required: %s", stage, required),
		Retryable: false,
		Metadata: map[string]interface{}{
			"operation":     operation,
			"stage":         stage,
			"requiredStage": required,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewSchemeNotFoundError(schemeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemeNotFound,
		Message:   "Scheme not found in catalog",
		Details:   fmt.Sprintf("schemeId: %s", schemeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found or expired",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Scheme catalog failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry Policy and Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeRateLimit:          "RATE_LIMIT",
	ErrCodeServiceUnavailable: "SERVICE_UNAVAILABLE",
	ErrCodeExplanationFailed:  "EXPLANATION_FAILED",
	ErrCodeExplanationTimeout: "EXPLANATION_TIMEOUT",
	ErrCodeSchemeNotFound:     "SCHEME_NOT_FOUND",
	ErrCodeInvalidInput:       "INVALID_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExplanationFailed:
		return 3
	case ErrCodeRateLimit, ErrCodeExplanationTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeRateLimit || code == ErrCodeServiceUnavailable || strings.Contains(codeStr, "EXPLANATION"):
		return "AI"
	case strings.Contains(codeStr, "TRANSITION") || strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "SCHEME") || strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
