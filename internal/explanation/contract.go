package explanation

import (
	"context"
	"time"

	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/models"
)

// FallbackExplanation replaces an empty model response.
const FallbackExplanation = "Unable to generate explanation. Please try again."

var eligibleNextSteps = []string{
	"Gather all required documents mentioned in the scheme details",
	"Visit the official scheme portal or nearest Common Service Centre (CSC)",
	"Submit your application with verified documents",
	"Keep your application reference number for tracking",
	"Check your registered mobile/email for status updates",
}

var ineligibleNextSteps = []string{
	"Review the unmet eligibility criteria carefully",
	"Check if any documents can help prove eligibility",
	"Visit your local Block Development Office for guidance",
	"Consider alternative schemes that may better match your profile",
	"Keep your documents updated for future applications",
}

// Request is what the explanation collaborator receives: the scheme's
// descriptive fields, the full profile and the ordered rule results.
type Request struct {
	Scheme      models.SchemeSummary          `json:"scheme"`
	Profile     models.UserProfile            `json:"userProfile"`
	RuleResults []models.RuleEvaluationResult `json:"ruleResults"`
}

func NewRequest(scheme *models.Scheme, profile models.UserProfile, results []models.RuleEvaluationResult) Request {
	return Request{
		Scheme:      scheme.Summary(),
		Profile:     profile,
		RuleResults: results,
	}
}

// Payload is the success response of the collaborator.
type Payload struct {
	Success      bool      `json:"success"`
	IsEligible   bool      `json:"isEligible"`
	OverallScore int       `json:"overallScore"`
	Explanation  string    `json:"explanation"`
	NextSteps    []string  `json:"nextSteps"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Explainer produces a Payload for a request. Failures are
// *errors.StandardError values carrying RATE_LIMIT, SERVICE_UNAVAILABLE,
// EXPLANATION_TIMEOUT or EXPLANATION_FAILED.
type Explainer interface {
	Explain(ctx context.Context, req Request) (*Payload, error)
}

// Generator turns a prompt into free text. Implemented by the gateway and
// Gemini backends.
type Generator interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NextSteps returns a fresh copy of the fixed next-step list for the verdict.
func NextSteps(isEligible bool) []string {
	src := ineligibleNextSteps
	if isEligible {
		src = eligibleNextSteps
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Alternatives derives the alternative-scheme suggestions: none when
// eligible, otherwise the fallback ids minus the evaluated scheme.
func Alternatives(schemeID string, isEligible bool, fallback []string) []string {
	out := []string{}
	if isEligible {
		return out
	}
	for _, id := range fallback {
		if id != schemeID {
			out = append(out, id)
		}
	}
	return out
}

// BuildResult converts a collaborator payload into the final result record.
// The verdict and score are recomputed from the rule results; the payload
// only contributes text, next steps and the timestamp.
func BuildResult(req Request, payload *Payload, fallback []string) models.EligibilityResult {
	isEligible, score, _ := eligibility.Score(req.RuleResults)

	results := make([]models.RuleEvaluationResult, len(req.RuleResults))
	copy(results, req.RuleResults)

	nextSteps := payload.NextSteps
	if len(nextSteps) == 0 {
		nextSteps = NextSteps(isEligible)
	}
	generatedAt := payload.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	return models.EligibilityResult{
		SchemeID:           req.Scheme.ID,
		IsEligible:         isEligible,
		OverallScore:       score,
		RuleResults:        results,
		AIExplanation:      payload.Explanation,
		NextSteps:          nextSteps,
		AlternativeSchemes: Alternatives(req.Scheme.ID, isEligible, fallback),
		GeneratedAt:        generatedAt,
	}
}
