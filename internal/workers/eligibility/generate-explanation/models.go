// internal/workers/eligibility/generate-explanation/models.go
package generateexplanation

import "scheme-eligibility/internal/models"

type Input struct {
	SchemeID    string                        `json:"schemeId"`
	Profile     models.UserProfile            `json:"profile"`
	RuleResults []models.RuleEvaluationResult `json:"ruleResults"`
}

type Output struct {
	EligibilityResult models.EligibilityResult `json:"eligibilityResult"`
}

const inputSchema = `{
	"type": "object",
	"required": ["schemeId", "profile", "ruleResults"],
	"properties": {
		"schemeId": {"type": "string", "minLength": 1},
		"profile": {"type": "object"},
		"ruleResults": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["criterionId", "passed"],
				"properties": {
					"criterionId": {"type": "string"},
					"passed": {"type": "boolean"},
					"reason": {"type": "string"}
				}
			}
		}
	}
}`
