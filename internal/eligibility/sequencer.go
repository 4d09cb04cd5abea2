package eligibility

import (
	"errors"
	"math"
	"strconv"

	"scheme-eligibility/internal/common/metrics"
	"scheme-eligibility/internal/models"
)

var ErrNoCriteria = errors.New("scheme has no eligibility criteria")

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Outcome is the ordered rule results for one scheme plus the aggregate verdict.
type Outcome struct {
	SchemeID     string                        `json:"schemeId"`
	Results      []models.RuleEvaluationResult `json:"ruleResults"`
	PassedCount  int                           `json:"passedCount"`
	TotalCount   int                           `json:"totalCount"`
	IsEligible   bool                          `json:"isEligible"`
	OverallScore int                           `json:"overallScore"`
	Diagnostics  []string                      `json:"diagnostics,omitempty"`
}

type Sequencer struct {
	logger Logger
}

func NewSequencer(log Logger) *Sequencer {
	return &Sequencer{logger: log}
}

// Run evaluates every criterion of the scheme in declared order.
func (s *Sequencer) Run(scheme *models.Scheme, profile models.UserProfile) *Outcome {
	out := &Outcome{
		SchemeID: scheme.ID,
		Results:  make([]models.RuleEvaluationResult, 0, len(scheme.Eligibility)),
	}

	for _, c := range scheme.Eligibility {
		result, err := Check(c, &profile)
		if err != nil {
			out.Diagnostics = append(out.Diagnostics, result.Reason)
			s.logger.Warn("criterion could not be evaluated", map[string]interface{}{
				"schemeId":    scheme.ID,
				"criterionId": c.ID,
				"operator":    string(c.Operator),
				"error":       err.Error(),
			})
		}
		out.Results = append(out.Results, result)
	}

	out.IsEligible, out.OverallScore, out.PassedCount = Score(out.Results)
	out.TotalCount = len(out.Results)

	if out.TotalCount == 0 {
		out.Diagnostics = append(out.Diagnostics, ErrNoCriteria.Error())
		s.logger.Warn("scheme has no criteria", map[string]interface{}{
			"schemeId": scheme.ID,
		})
	}

	metrics.RuleEvaluations.WithLabelValues(scheme.ID, strconv.FormatBool(out.IsEligible)).Inc()

	s.logger.Debug("rule evaluation finished", map[string]interface{}{
		"schemeId":     scheme.ID,
		"passed":       out.PassedCount,
		"total":        out.TotalCount,
		"overallScore": out.OverallScore,
	})
	return out
}

// Score aggregates ordered results: eligible only when there is at least one
// result and all passed; the score is round(100 * passed / total), 0 when
// there are no results.
func Score(results []models.RuleEvaluationResult) (isEligible bool, overallScore int, passed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	if len(results) == 0 {
		return false, 0, 0
	}
	overallScore = int(math.Round(100 * float64(passed) / float64(len(results))))
	return passed == len(results), overallScore, passed
}
