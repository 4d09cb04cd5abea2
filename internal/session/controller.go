package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/observability"
	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/explanation"
	"scheme-eligibility/internal/models"
	"scheme-eligibility/internal/voice"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Schemes   SchemeSource
	Sequencer *eligibility.Sequencer
	Explainer Explainer
	// Alternatives are suggested when an assessment is not eligible.
	Alternatives []string
	Obs          *observability.Observability
	Logger       Logger
}

// Controller owns one session's Machine and runs the wizard steps against it.
// All state changes go through the machine under mu; the lock is released
// only while the explanation collaborator is being called.
type Controller struct {
	id   string
	deps Deps

	mu         sync.Mutex
	machine    *Machine
	lastActive time.Time
}

func NewController(id string, deps Deps) *Controller {
	return &Controller{
		id:         id,
		deps:       deps,
		machine:    NewMachine(id, deps.Logger),
		lastActive: time.Now(),
	}
}

func (c *Controller) ID() string { return c.id }

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) SelectScheme(schemeID string) (State, error) {
	scheme, err := c.deps.Schemes.MustGet(schemeID)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.apply(func(m *Machine) error { return m.SelectScheme(scheme) })
}

func (c *Controller) StartProfileValidation() (State, error) {
	return c.apply(func(m *Machine) error { return m.StartProfileValidation() })
}

func (c *Controller) UpdateProfile(delta models.UserProfile) (State, error) {
	return c.apply(func(m *Machine) error { return m.CompleteProfileValidation(delta) })
}

// ApplyVoiceTranscript parses a transcript and merges what it recognised.
func (c *Controller) ApplyVoiceTranscript(transcript string) (State, []voice.ParsedField, error) {
	fields := voice.Parse(transcript)
	state, err := c.apply(func(m *Machine) error {
		return m.CompleteProfileValidation(voice.ToDelta(fields))
	})
	return state, fields, err
}

// Evaluate enters RuleEvaluation, runs the sequencer over the current profile
// and stores the ordered results.
func (c *Controller) Evaluate() (State, error) {
	return c.apply(func(m *Machine) error {
		if err := m.StartRuleEvaluation(); err != nil {
			return err
		}
		st := m.state
		outcome := c.deps.Sequencer.Run(st.SelectedScheme, st.Profile)
		return m.CompleteRuleEvaluation(outcome.Results)
	})
}

// Explain runs one explanation attempt. From RuleEvaluation it starts the
// step; from a failed AIExplanation it retries. A call while an attempt is
// outstanding is rejected with EXPLANATION_IN_FLIGHT. If the session moves on
// while the collaborator is working, the late response is discarded.
func (c *Controller) Explain(ctx context.Context) (State, error) {
	c.mu.Lock()
	c.lastActive = time.Now()

	var (
		attempt Attempt
		err     error
	)
	switch st := c.machine.state; {
	case st.Stage == models.StageAIExplanation && st.IsLoading:
		c.mu.Unlock()
		return c.Snapshot(), apperrors.NewExplanationInFlightError(c.id)
	case st.Stage == models.StageAIExplanation:
		attempt, err = c.machine.RetryAIExplanation()
	default:
		attempt, err = c.machine.StartAIExplanation()
	}
	if err != nil {
		state := c.machine.State()
		c.mu.Unlock()
		return state, err
	}

	st := c.machine.state
	req := explanation.NewRequest(st.SelectedScheme, st.Profile, st.RuleResults)
	c.mu.Unlock()

	payload, callErr := c.callExplainer(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if callErr != nil {
		stdErr := apperrors.Normalize(callErr)
		if stdErr.Code == apperrors.ErrCodeInternal {
			stdErr = apperrors.NewExplanationFailedError(callErr)
		}
		if err := c.machine.FailAIExplanation(attempt, stdErr.Message); err != nil {
			return c.machine.State(), err
		}
		return c.machine.State(), stdErr
	}

	result := explanation.BuildResult(req, payload, c.deps.Alternatives)
	if err := c.machine.CompleteAIExplanation(attempt, result); err != nil {
		return c.machine.State(), err
	}
	c.deps.Obs.RecordAssessment(ctx, result.SchemeID, result.IsEligible)
	c.deps.Logger.Info("assessment completed", map[string]interface{}{
		"sessionId":    c.id,
		"schemeId":     result.SchemeID,
		"isEligible":   result.IsEligible,
		"overallScore": result.OverallScore,
	})
	return c.machine.State(), nil
}

// callExplainer turns a panic in the collaborator into EXPLANATION_FAILED so
// the attempt is always settled.
func (c *Controller) callExplainer(ctx context.Context, req explanation.Request) (payload *explanation.Payload, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.deps.Logger.Error("explanation collaborator panicked", map[string]interface{}{
				"sessionId": c.id,
				"schemeId":  req.Scheme.ID,
				"panic":     fmt.Sprint(rec),
			})
			payload = nil
			err = apperrors.NewExplanationFailedError(fmt.Errorf("panic: %v", rec))
		}
	}()
	return c.deps.Explainer.Explain(ctx, req)
}

func (c *Controller) GoBack() State {
	state, _ := c.apply(func(m *Machine) error {
		m.GoBack()
		return nil
	})
	return state
}

func (c *Controller) Reset() State {
	state, _ := c.apply(func(m *Machine) error {
		m.Reset()
		return nil
	})
	return state
}

func (c *Controller) apply(fn func(m *Machine) error) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
	err := fn(c.machine)
	return c.machine.State(), err
}
