package api

import (
	"encoding/json"
	"net/http"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/models"
	"scheme-eligibility/internal/session"
	"scheme-eligibility/internal/voice"
)

// SessionResponse is the wire form of a session snapshot. finalResult is only
// present once the session has reached FinalResult.
type SessionResponse struct {
	SessionID      string                        `json:"sessionId"`
	Stage          models.Stage                  `json:"stage"`
	SelectedScheme *models.Scheme                `json:"selectedScheme,omitempty"`
	Profile        models.UserProfile            `json:"userProfile"`
	RuleResults    []models.RuleEvaluationResult `json:"ruleResults"`
	FinalResult    *models.EligibilityResult     `json:"finalResult,omitempty"`
	Error          string                        `json:"error,omitempty"`
	IsLoading      bool                          `json:"isLoading"`
}

func newSessionResponse(id string, st session.State) *SessionResponse {
	resp := &SessionResponse{
		SessionID:      id,
		Stage:          st.Stage,
		SelectedScheme: st.SelectedScheme,
		Profile:        st.Profile,
		RuleResults:    st.RuleResults,
		Error:          st.Error,
		IsLoading:      st.IsLoading,
	}
	if st.Stage == models.StageFinalResult {
		resp.FinalResult = st.FinalResult
	}
	if resp.RuleResults == nil {
		resp.RuleResults = []models.RuleEvaluationResult{}
	}
	return resp
}

type VoiceResponse struct {
	Session *SessionResponse    `json:"session"`
	Fields  []voice.ParsedField `json:"parsedFields"`
}

type SchemeListResponse struct {
	Schemes []*models.Scheme `json:"schemes"`
	Count   int              `json:"count"`
}

type ErrorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
}

// ErrorResponse carries the error and, for session operations, the state the
// session was left in.
type ErrorResponse struct {
	Error   ErrorBody        `json:"error"`
	Session *SessionResponse `json:"session,omitempty"`
}

// StatusFor maps an error code onto the HTTP status returned for it.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeSchemeNotFound, apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidTransition, apperrors.ErrCodeExplanationInFlight:
		return http.StatusConflict
	case apperrors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeExplanationTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeExplanationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, sess *SessionResponse) {
	stdErr := apperrors.Normalize(err)
	writeJSON(w, StatusFor(stdErr.Code), ErrorResponse{
		Error: ErrorBody{
			Code:    stdErr.Code,
			Message: stdErr.Message,
			Details: stdErr.Details,
		},
		Session: sess,
	})
}
