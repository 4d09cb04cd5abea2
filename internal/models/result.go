package models

import "time"

// RuleEvaluationResult is the verdict for one criterion, in criteria order.
type RuleEvaluationResult struct {
	CriterionID string `json:"criterionId"`
	Passed      bool   `json:"passed"`
	Reason      string `json:"reason"`
}

// EligibilityResult is created once, on the transition into FinalResult.
type EligibilityResult struct {
	SchemeID           string                 `json:"schemeId"`
	IsEligible         bool                   `json:"isEligible"`
	OverallScore       int                    `json:"overallScore"`
	RuleResults        []RuleEvaluationResult `json:"ruleResults"`
	AIExplanation      string                 `json:"aiExplanation"`
	NextSteps          []string               `json:"nextSteps"`
	AlternativeSchemes []string               `json:"alternativeSchemes"`
	GeneratedAt        time.Time              `json:"generatedAt"`
}
