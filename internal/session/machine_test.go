package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/logger"
	"scheme-eligibility/internal/models"
)

func testScheme() *models.Scheme {
	return &models.Scheme{
		ID:       "pm-kisan",
		Name:     "PM-KISAN",
		Category: models.CategoryAgriculture,
		Ministry: "Ministry of Agriculture & Farmers Welfare",
		Eligibility: []models.EligibilityCriterion{
			{ID: "pk-1", Field: "hasLand", Operator: models.OperatorEquals,
				Value: models.EqualsValue{Value: models.BoolScalar(true)}, Description: "Must own cultivable land"},
			{ID: "pk-2", Field: "landHolding", Operator: models.OperatorLessThan,
				Value: models.ThresholdValue{Limit: 2}, Description: "Land holding must be less than 2 hectares"},
		},
	}
}

func testResult() models.EligibilityResult {
	return models.EligibilityResult{
		SchemeID:     "pm-kisan",
		IsEligible:   true,
		OverallScore: 100,
		RuleResults: []models.RuleEvaluationResult{
			{CriterionID: "pk-1", Passed: true, Reason: "Must own cultivable land - Verified"},
		},
		AIExplanation: "ok",
		GeneratedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	return NewMachine("session-1", logger.NewTestLogger(t))
}

// advance drives a fresh machine to the target stage along the legal path and
// returns the attempt of the last startAIExplanation, if any.
func advance(t *testing.T, m *Machine, target models.Stage) Attempt {
	t.Helper()
	var attempt Attempt
	steps := []func() error{
		func() error { return m.SelectScheme(testScheme()) },
		func() error { return m.StartProfileValidation() },
		func() error { return m.StartRuleEvaluation() },
		func() error {
			a, err := m.StartAIExplanation()
			attempt = a
			return err
		},
		func() error { return m.CompleteAIExplanation(attempt, testResult()) },
	}
	for i := 0; i < int(target); i++ {
		require.NoError(t, steps[i]())
	}
	require.Equal(t, target, m.Stage())
	return attempt
}

func TestMachine_InitialState(t *testing.T) {
	st := newTestMachine(t).State()

	assert.Equal(t, models.StageIdle, st.Stage)
	assert.Nil(t, st.SelectedScheme)
	assert.True(t, st.Profile.IsEmpty())
	assert.Empty(t, st.RuleResults)
	assert.Nil(t, st.FinalResult)
	assert.Empty(t, st.Error)
	assert.False(t, st.IsLoading)
}

func TestMachine_HappyPath(t *testing.T) {
	m := newTestMachine(t)

	require.NoError(t, m.SelectScheme(testScheme()))
	assert.Equal(t, models.StageSchemeSelected, m.Stage())

	require.NoError(t, m.StartProfileValidation())
	require.NoError(t, m.CompleteProfileValidation(models.UserProfile{HasLand: models.Ptr(true)}))
	require.NoError(t, m.CompleteProfileValidation(models.UserProfile{LandHolding: models.Ptr(1.5)}))
	assert.Equal(t, models.StageProfileValidation, m.Stage())
	assert.Equal(t, models.UserProfile{HasLand: models.Ptr(true), LandHolding: models.Ptr(1.5)}, m.State().Profile)

	require.NoError(t, m.StartRuleEvaluation())
	assert.True(t, m.State().IsLoading)

	results := []models.RuleEvaluationResult{{CriterionID: "pk-1", Passed: true}, {CriterionID: "pk-2", Passed: true}}
	require.NoError(t, m.CompleteRuleEvaluation(results))
	st := m.State()
	assert.Equal(t, models.StageRuleEvaluation, st.Stage)
	assert.False(t, st.IsLoading)
	assert.Equal(t, results, st.RuleResults)

	attempt, err := m.StartAIExplanation()
	require.NoError(t, err)
	assert.True(t, m.State().IsLoading)

	require.NoError(t, m.CompleteAIExplanation(attempt, testResult()))
	st = m.State()
	assert.Equal(t, models.StageFinalResult, st.Stage)
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.FinalResult)
	assert.Equal(t, "pm-kisan", st.FinalResult.SchemeID)
}

func TestMachine_GuardRejections(t *testing.T) {
	tests := []struct {
		name  string
		stage models.Stage
		call  func(m *Machine) error
	}{
		{"select scheme twice", models.StageSchemeSelected, func(m *Machine) error { return m.SelectScheme(testScheme()) }},
		{"profile validation from idle", models.StageIdle, func(m *Machine) error { return m.StartProfileValidation() }},
		{"profile update before validation", models.StageSchemeSelected, func(m *Machine) error {
			return m.CompleteProfileValidation(models.UserProfile{Age: models.Ptr(30)})
		}},
		{"rule evaluation from scheme selected", models.StageSchemeSelected, func(m *Machine) error { return m.StartRuleEvaluation() }},
		{"complete rules from profile validation", models.StageProfileValidation, func(m *Machine) error {
			return m.CompleteRuleEvaluation(nil)
		}},
		{"explanation from profile validation", models.StageProfileValidation, func(m *Machine) error {
			_, err := m.StartAIExplanation()
			return err
		}},
		{"complete explanation from rule evaluation", models.StageRuleEvaluation, func(m *Machine) error {
			return m.CompleteAIExplanation(1, testResult())
		}},
		{"complete explanation from final result", models.StageFinalResult, func(m *Machine) error {
			return m.CompleteAIExplanation(1, testResult())
		}},
		{"start explanation from final result", models.StageFinalResult, func(m *Machine) error {
			_, err := m.StartAIExplanation()
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			advance(t, m, tt.stage)
			before := m.State()

			err := tt.call(m)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
			assert.Equal(t, before, m.State())
		})
	}
}

func TestMachine_RejectionIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := NewMachine("session-42", logger.NewZapAdapter(zap.New(core)))

	_, err := m.StartAIExplanation()
	require.Error(t, err)

	entries := logs.FilterMessage("invalid stage transition").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "startAIExplanation", fields["operation"])
	assert.Equal(t, "IDLE", fields["stage"])
	assert.Equal(t, "RULE_EVALUATION", fields["requiredStage"])
	assert.Equal(t, "session-42", fields["sessionId"])
}

func TestMachine_CompleteExplanationOutsideStage(t *testing.T) {
	m := newTestMachine(t)
	advance(t, m, models.StageRuleEvaluation)

	err := m.CompleteAIExplanation(1, testResult())

	require.Error(t, err)
	st := m.State()
	assert.Equal(t, models.StageRuleEvaluation, st.Stage)
	assert.Nil(t, st.FinalResult)
}

func TestMachine_ExplanationFailureKeepsStage(t *testing.T) {
	m := newTestMachine(t)
	attempt := advance(t, m, models.StageAIExplanation)

	require.NoError(t, m.FailAIExplanation(attempt, "Rate limit exceeded. Please try again in a moment."))

	st := m.State()
	assert.Equal(t, models.StageAIExplanation, st.Stage)
	assert.Equal(t, "Rate limit exceeded. Please try again in a moment.", st.Error)
	assert.Nil(t, st.FinalResult)
	assert.False(t, st.IsLoading)

	// The failed attempt can no longer complete.
	require.Error(t, m.CompleteAIExplanation(attempt, testResult()))
	assert.Equal(t, models.StageAIExplanation, m.Stage())

	retry, err := m.RetryAIExplanation()
	require.NoError(t, err)
	assert.NotEqual(t, attempt, retry)
	assert.Empty(t, m.State().Error)
	assert.True(t, m.State().IsLoading)

	require.NoError(t, m.CompleteAIExplanation(retry, testResult()))
	assert.Equal(t, models.StageFinalResult, m.Stage())
}

func TestMachine_RetryWhileLoading(t *testing.T) {
	m := newTestMachine(t)
	advance(t, m, models.StageAIExplanation)

	_, err := m.RetryAIExplanation()
	assert.ErrorIs(t, err, apperrors.ErrExplanationInFlight)
	assert.True(t, m.State().IsLoading)
}

func TestMachine_StaleAttemptIsDiscarded(t *testing.T) {
	tests := []struct {
		name      string
		interrupt func(m *Machine)
	}{
		{"reset", func(m *Machine) { m.Reset() }},
		{"go back", func(m *Machine) { m.GoBack() }},
		{"go back and restart", func(m *Machine) {
			m.GoBack()
			_, err := m.StartAIExplanation()
			require.NoError(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			attempt := advance(t, m, models.StageAIExplanation)

			tt.interrupt(m)
			stage := m.Stage()

			assert.Error(t, m.CompleteAIExplanation(attempt, testResult()))
			assert.Error(t, m.FailAIExplanation(attempt, "late failure"))
			assert.Equal(t, stage, m.Stage())
			assert.Nil(t, m.State().FinalResult)
			assert.Empty(t, m.State().Error)
		})
	}
}

func TestMachine_GoBack(t *testing.T) {
	tests := []struct {
		from models.Stage
		want models.Stage
	}{
		{models.StageIdle, models.StageIdle},
		{models.StageSchemeSelected, models.StageIdle},
		{models.StageProfileValidation, models.StageSchemeSelected},
		{models.StageRuleEvaluation, models.StageProfileValidation},
		{models.StageAIExplanation, models.StageRuleEvaluation},
		{models.StageFinalResult, models.StageAIExplanation},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			m := newTestMachine(t)
			advance(t, m, tt.from)

			m.GoBack()

			st := m.State()
			assert.Equal(t, tt.want, st.Stage)
			assert.False(t, st.IsLoading)
			assert.Nil(t, st.FinalResult)
			if tt.want == models.StageIdle {
				assert.Nil(t, st.SelectedScheme)
			} else {
				assert.NotNil(t, st.SelectedScheme)
			}
		})
	}
}

func TestMachine_GoBackRoundTrip(t *testing.T) {
	profile := models.UserProfile{HasLand: models.Ptr(true), LandHolding: models.Ptr(1.5)}
	results := []models.RuleEvaluationResult{{CriterionID: "pk-1", Passed: true}, {CriterionID: "pk-2", Passed: true}}

	setup := func(t *testing.T) *Machine {
		m := newTestMachine(t)
		require.NoError(t, m.SelectScheme(testScheme()))
		require.NoError(t, m.StartProfileValidation())
		require.NoError(t, m.CompleteProfileValidation(profile))
		require.NoError(t, m.StartRuleEvaluation())
		require.NoError(t, m.CompleteRuleEvaluation(results))
		return m
	}

	t.Run("profile validation", func(t *testing.T) {
		m := setup(t)
		m.GoBack()
		m.GoBack()
		require.Equal(t, models.StageSchemeSelected, m.Stage())

		require.NoError(t, m.StartProfileValidation())
		assert.Equal(t, models.StageProfileValidation, m.Stage())
		assert.Equal(t, profile, m.State().Profile)
		assert.Equal(t, results, m.State().RuleResults)
	})

	t.Run("rule evaluation", func(t *testing.T) {
		m := setup(t)
		m.GoBack()
		require.NoError(t, m.StartRuleEvaluation())
		assert.Equal(t, models.StageRuleEvaluation, m.Stage())
		assert.Equal(t, profile, m.State().Profile)
		assert.Equal(t, results, m.State().RuleResults)
	})

	t.Run("ai explanation", func(t *testing.T) {
		m := setup(t)
		_, err := m.StartAIExplanation()
		require.NoError(t, err)
		m.GoBack()
		_, err = m.StartAIExplanation()
		require.NoError(t, err)
		assert.Equal(t, models.StageAIExplanation, m.Stage())
		assert.Equal(t, results, m.State().RuleResults)
	})

	t.Run("scheme selected is irreversible", func(t *testing.T) {
		m := newTestMachine(t)
		require.NoError(t, m.SelectScheme(testScheme()))
		m.GoBack()
		assert.Nil(t, m.State().SelectedScheme)
		assert.Error(t, m.StartProfileValidation())
	})
}

func TestMachine_SetErrorFromAnyStage(t *testing.T) {
	for stage := models.StageIdle; stage <= models.StageFinalResult; stage++ {
		t.Run(stage.String(), func(t *testing.T) {
			m := newTestMachine(t)
			advance(t, m, stage)

			m.SetError("something broke")

			st := m.State()
			assert.Equal(t, stage, st.Stage)
			assert.Equal(t, "something broke", st.Error)
			assert.False(t, st.IsLoading)
		})
	}
}

func TestMachine_ResetClearsEverything(t *testing.T) {
	m := newTestMachine(t)
	advance(t, m, models.StageFinalResult)
	m.SetError("x")

	m.Reset()

	assert.Equal(t, initialState(), m.State())
}

func TestMachine_InvalidProfileDelta(t *testing.T) {
	m := newTestMachine(t)
	advance(t, m, models.StageProfileValidation)
	require.NoError(t, m.CompleteProfileValidation(models.UserProfile{Age: models.Ptr(40)}))

	gender := models.Gender("unknown")
	err := m.CompleteProfileValidation(models.UserProfile{Gender: &gender, Age: models.Ptr(41)})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 40, *m.State().Profile.Age)
}

func TestMachine_StateIsACopy(t *testing.T) {
	m := newTestMachine(t)
	advance(t, m, models.StageFinalResult)

	st := m.State()
	st.FinalResult.RuleResults[0].Passed = false
	st.RuleResults = append(st.RuleResults, models.RuleEvaluationResult{CriterionID: "x"})

	assert.True(t, m.State().FinalResult.RuleResults[0].Passed)
	assert.Empty(t, m.State().RuleResults)
}

// Random call sequences: rejected calls never change state, stages only move
// one step at a time (or back to Idle) and a final result exists exactly in
// FinalResult.
func TestMachine_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		m := NewMachine("random", logger.NewNoOpLogger())
		var lastAttempt Attempt

		ops := []func() error{
			func() error { return m.SelectScheme(testScheme()) },
			func() error { return m.StartProfileValidation() },
			func() error { return m.CompleteProfileValidation(models.UserProfile{Age: models.Ptr(rng.Intn(90))}) },
			func() error { return m.StartRuleEvaluation() },
			func() error { return m.CompleteRuleEvaluation([]models.RuleEvaluationResult{{CriterionID: "pk-1"}}) },
			func() error {
				a, err := m.StartAIExplanation()
				if err == nil {
					lastAttempt = a
				}
				return err
			},
			func() error {
				a, err := m.RetryAIExplanation()
				if err == nil {
					lastAttempt = a
				}
				return err
			},
			func() error { return m.CompleteAIExplanation(lastAttempt, testResult()) },
			func() error { return m.FailAIExplanation(lastAttempt, "failed") },
			func() error { m.GoBack(); return nil },
			func() error { m.Reset(); return nil },
			func() error { m.SetError("oops"); return nil },
		}

		for step := 0; step < 40; step++ {
			before := m.State()
			err := ops[rng.Intn(len(ops))]()
			after := m.State()

			if err != nil {
				require.Equal(t, before, after, "rejected call mutated state (run %d step %d)", run, step)
			}
			delta := int(after.Stage) - int(before.Stage)
			require.True(t, delta >= -1 && delta <= 1 || after.Stage == models.StageIdle,
				"stage jumped from %s to %s", before.Stage, after.Stage)
			require.Equal(t, after.Stage == models.StageFinalResult, after.FinalResult != nil)
			if after.Stage == models.StageFinalResult && before.Stage != models.StageFinalResult {
				require.Equal(t, models.StageAIExplanation, before.Stage)
			}
		}
	}
}
