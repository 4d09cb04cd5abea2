// internal/workers/eligibility/evaluate-eligibility/models.go
package evaluateeligibility

import "scheme-eligibility/internal/models"

type Input struct {
	SchemeID string             `json:"schemeId"`
	Profile  models.UserProfile `json:"profile"`
}

type Output struct {
	SchemeID     string                        `json:"schemeId"`
	RuleResults  []models.RuleEvaluationResult `json:"ruleResults"`
	IsEligible   bool                          `json:"isEligible"`
	OverallScore int                           `json:"overallScore"`
	PassedCount  int                           `json:"passedCount"`
	TotalCount   int                           `json:"totalCount"`
	Diagnostics  []string                      `json:"diagnostics,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"required": ["schemeId", "profile"],
	"properties": {
		"schemeId": {"type": "string", "minLength": 1},
		"profile": {"type": "object"}
	}
}`
