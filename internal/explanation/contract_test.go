package explanation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-eligibility/internal/models"
)

func kisanRequest(passed ...bool) Request {
	results := make([]models.RuleEvaluationResult, len(passed))
	for i, p := range passed {
		results[i] = models.RuleEvaluationResult{
			CriterionID: []string{"pk-1", "pk-2", "pk-3"}[i],
			Passed:      p,
			Reason:      "criterion",
		}
	}
	return Request{
		Scheme: models.SchemeSummary{
			ID:          "pm-kisan",
			Name:        "PM-KISAN",
			Description: "Income support to farmer families",
			Ministry:    "Ministry of Agriculture & Farmers Welfare",
			Benefits:    []string{"₹6,000 per year"},
		},
		Profile:     models.UserProfile{HasLand: models.Ptr(true), LandHolding: models.Ptr(1.5)},
		RuleResults: results,
	}
}

func TestNextSteps(t *testing.T) {
	eligible := NextSteps(true)
	require.Len(t, eligible, 5)
	assert.Equal(t, "Gather all required documents mentioned in the scheme details", eligible[0])

	ineligible := NextSteps(false)
	require.Len(t, ineligible, 5)
	assert.Equal(t, "Review the unmet eligibility criteria carefully", ineligible[0])

	eligible[0] = "mutated"
	assert.NotEqual(t, "mutated", NextSteps(true)[0])
}

func TestAlternatives(t *testing.T) {
	fallback := []string{"pmay", "ayushman-bharat"}

	tests := []struct {
		name       string
		schemeID   string
		isEligible bool
		want       []string
	}{
		{name: "eligible gets none", schemeID: "pm-kisan", isEligible: true, want: []string{}},
		{name: "ineligible gets fallback", schemeID: "pm-kisan", want: []string{"pmay", "ayushman-bharat"}},
		{name: "evaluated scheme excluded", schemeID: "pmay", want: []string{"ayushman-bharat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Alternatives(tt.schemeID, tt.isEligible, fallback))
		})
	}
}

func TestBuildResult(t *testing.T) {
	generatedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("verdict comes from rule results, not payload", func(t *testing.T) {
		req := kisanRequest(true, false)
		payload := &Payload{
			Success:      true,
			IsEligible:   true,
			OverallScore: 100,
			Explanation:  "You qualify.",
			NextSteps:    []string{"step"},
			GeneratedAt:  generatedAt,
		}

		result := BuildResult(req, payload, []string{"pmay", "ayushman-bharat"})

		assert.Equal(t, "pm-kisan", result.SchemeID)
		assert.False(t, result.IsEligible)
		assert.Equal(t, 50, result.OverallScore)
		assert.Equal(t, req.RuleResults, result.RuleResults)
		assert.Equal(t, "You qualify.", result.AIExplanation)
		assert.Equal(t, []string{"step"}, result.NextSteps)
		assert.Equal(t, []string{"pmay", "ayushman-bharat"}, result.AlternativeSchemes)
		assert.Equal(t, generatedAt, result.GeneratedAt)
	})

	t.Run("eligible has no alternatives and default next steps", func(t *testing.T) {
		result := BuildResult(kisanRequest(true, true), &Payload{Explanation: "ok"}, []string{"pmay"})

		assert.True(t, result.IsEligible)
		assert.Equal(t, 100, result.OverallScore)
		assert.Empty(t, result.AlternativeSchemes)
		assert.Equal(t, NextSteps(true), result.NextSteps)
		assert.False(t, result.GeneratedAt.IsZero())
	})
}
