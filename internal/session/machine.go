package session

import (
	"fmt"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
	"scheme-eligibility/internal/models"
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Attempt identifies one explanation attempt. Reset, GoBack and SelectScheme
// invalidate every outstanding attempt.
type Attempt uint64

// State is the session aggregate. Only Machine mutates it.
type State struct {
	Stage          models.Stage                  `json:"stage"`
	SelectedScheme *models.Scheme                `json:"selectedScheme"`
	Profile        models.UserProfile            `json:"userProfile"`
	RuleResults    []models.RuleEvaluationResult `json:"ruleResults"`
	FinalResult    *models.EligibilityResult     `json:"finalResult"`
	Error          string                        `json:"error,omitempty"`
	IsLoading      bool                          `json:"isLoading"`
}

func initialState() State {
	return State{
		Stage:       models.StageIdle,
		RuleResults: []models.RuleEvaluationResult{},
	}
}

// Machine is the stage state machine of one session. Every forward transition
// checks its required stage; a rejected call leaves the state untouched, logs
// a warning and returns INVALID_TRANSITION. Machine is not safe for
// concurrent use; Controller serializes access.
type Machine struct {
	sessionID string
	state     State
	attempt   Attempt
	logger    Logger
}

func NewMachine(sessionID string, log Logger) *Machine {
	return &Machine{
		sessionID: sessionID,
		state:     initialState(),
		logger:    log,
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.RuleResults = append([]models.RuleEvaluationResult{}, m.state.RuleResults...)
	if m.state.FinalResult != nil {
		fr := *m.state.FinalResult
		fr.RuleResults = append([]models.RuleEvaluationResult{}, fr.RuleResults...)
		fr.NextSteps = append([]string{}, fr.NextSteps...)
		fr.AlternativeSchemes = append([]string{}, fr.AlternativeSchemes...)
		s.FinalResult = &fr
	}
	return s
}

func (m *Machine) Stage() models.Stage { return m.state.Stage }

func (m *Machine) SelectScheme(scheme *models.Scheme) error {
	if scheme == nil {
		return apperrors.NewInvalidInputError("scheme is required")
	}
	if err := m.guard("selectScheme", models.StageIdle); err != nil {
		return err
	}
	m.attempt++
	m.state = initialState()
	m.state.SelectedScheme = scheme
	m.state.Stage = models.StageSchemeSelected
	m.applied("selectScheme", map[string]interface{}{"schemeId": scheme.ID})
	return nil
}

func (m *Machine) StartProfileValidation() error {
	if err := m.guard("startProfileValidation", models.StageSchemeSelected); err != nil {
		return err
	}
	m.state.Stage = models.StageProfileValidation
	m.state.IsLoading = false
	m.applied("startProfileValidation", nil)
	return nil
}

// CompleteProfileValidation merges delta into the profile. The stage does not
// change, so the profile can be edited repeatedly.
func (m *Machine) CompleteProfileValidation(delta models.UserProfile) error {
	if err := m.guard("completeProfileValidation", models.StageProfileValidation); err != nil {
		return err
	}
	merged := m.state.Profile.Merge(delta)
	if err := merged.Validate(); err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	m.state.Profile = merged
	m.applied("completeProfileValidation", nil)
	return nil
}

func (m *Machine) StartRuleEvaluation() error {
	if err := m.guard("startRuleEvaluation", models.StageProfileValidation); err != nil {
		return err
	}
	m.state.Stage = models.StageRuleEvaluation
	m.state.IsLoading = true
	m.state.Error = ""
	m.applied("startRuleEvaluation", nil)
	return nil
}

// CompleteRuleEvaluation stores the ordered results. Explanation is a
// separate step, so the stage does not change.
func (m *Machine) CompleteRuleEvaluation(results []models.RuleEvaluationResult) error {
	if err := m.guard("completeRuleEvaluation", models.StageRuleEvaluation); err != nil {
		return err
	}
	m.state.RuleResults = append([]models.RuleEvaluationResult{}, results...)
	m.state.IsLoading = false
	m.applied("completeRuleEvaluation", map[string]interface{}{"results": len(results)})
	return nil
}

func (m *Machine) StartAIExplanation() (Attempt, error) {
	if err := m.guard("startAIExplanation", models.StageRuleEvaluation); err != nil {
		return 0, err
	}
	m.attempt++
	m.state.Stage = models.StageAIExplanation
	m.state.IsLoading = true
	m.state.Error = ""
	m.applied("startAIExplanation", nil)
	return m.attempt, nil
}

// RetryAIExplanation starts a new attempt from an AIExplanation stage that is
// not loading, i.e. after a failure or after going back from FinalResult.
func (m *Machine) RetryAIExplanation() (Attempt, error) {
	if err := m.guard("retryAIExplanation", models.StageAIExplanation); err != nil {
		return 0, err
	}
	if m.state.IsLoading {
		m.rejected("retryAIExplanation", models.StageAIExplanation)
		return 0, apperrors.NewExplanationInFlightError(m.sessionID)
	}
	m.attempt++
	m.state.IsLoading = true
	m.state.Error = ""
	m.applied("retryAIExplanation", nil)
	return m.attempt, nil
}

// CompleteAIExplanation is the only way into FinalResult. It requires the
// AIExplanation stage with attempt still outstanding.
func (m *Machine) CompleteAIExplanation(attempt Attempt, result models.EligibilityResult) error {
	if err := m.guard("completeAIExplanation", models.StageAIExplanation); err != nil {
		return err
	}
	if !m.outstanding(attempt) {
		m.rejected("completeAIExplanation", models.StageAIExplanation)
		return m.staleAttempt("completeAIExplanation", attempt)
	}
	m.state.Stage = models.StageFinalResult
	m.state.FinalResult = &result
	m.state.IsLoading = false
	m.applied("completeAIExplanation", map[string]interface{}{
		"schemeId":   result.SchemeID,
		"isEligible": result.IsEligible,
	})
	return nil
}

// FailAIExplanation records an explanation failure for attempt. Failures of
// attempts that are no longer outstanding are discarded.
func (m *Machine) FailAIExplanation(attempt Attempt, message string) error {
	if m.state.Stage != models.StageAIExplanation || !m.outstanding(attempt) {
		m.rejected("failAIExplanation", models.StageAIExplanation)
		return m.staleAttempt("failAIExplanation", attempt)
	}
	m.SetError(message)
	return nil
}

// SetError flags the session from any stage without moving it.
func (m *Machine) SetError(message string) {
	m.state.Error = message
	m.state.IsLoading = false
	m.applied("setError", map[string]interface{}{"error": message})
}

// Reset returns to Idle and clears every field.
func (m *Machine) Reset() {
	m.attempt++
	m.state = initialState()
	m.applied("reset", nil)
}

// GoBack moves to the predecessor stage. Going back from SchemeSelected is a
// full reset; going back from Idle does nothing.
func (m *Machine) GoBack() {
	from := m.state.Stage
	switch from {
	case models.StageIdle:
		return
	case models.StageSchemeSelected:
		m.Reset()
		return
	case models.StageFinalResult:
		m.state.FinalResult = nil
	}
	m.attempt++
	m.state.Stage = from - 1
	m.state.IsLoading = false
	m.state.Error = ""
	m.applied("goBack", map[string]interface{}{"from": from.String()})
}

func (m *Machine) outstanding(attempt Attempt) bool {
	return m.state.IsLoading && attempt == m.attempt
}

func (m *Machine) guard(operation string, required models.Stage) error {
	if m.state.Stage == required {
		return nil
	}
	m.rejected(operation, required)
	return apperrors.NewInvalidTransitionError(operation, m.state.Stage.String(), required.String())
}

func (m *Machine) staleAttempt(operation string, attempt Attempt) error {
	err := apperrors.NewInvalidTransitionError(operation, m.state.Stage.String(), models.StageAIExplanation.String())
	err.Details = fmt.Sprintf("attempt %d is no longer outstanding", attempt)
	return err
}

func (m *Machine) rejected(operation string, required models.Stage) {
	metrics.StageTransitions.WithLabelValues(operation, "rejected").Inc()
	m.logger.Warn("invalid stage transition", map[string]interface{}{
		"sessionId":     m.sessionID,
		"operation":     operation,
		"stage":         m.state.Stage.String(),
		"requiredStage": required.String(),
	})
}

func (m *Machine) applied(operation string, fields map[string]interface{}) {
	metrics.StageTransitions.WithLabelValues(operation, "applied").Inc()
	logFields := map[string]interface{}{
		"sessionId": m.sessionID,
		"operation": operation,
		"stage":     m.state.Stage.String(),
	}
	for k, v := range fields {
		logFields[k] = v
	}
	m.logger.Debug("stage transition", logFields)
}
