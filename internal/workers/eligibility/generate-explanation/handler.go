// internal/workers/eligibility/generate-explanation/handler.go
package generateexplanation

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scheme-eligibility/internal/common/camunda"
	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/validation"
	"scheme-eligibility/internal/explanation"
	"scheme-eligibility/internal/models"
)

const TaskType = "generate-explanation"

var schema = validation.MustCompile(TaskType+"-input", inputSchema)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type SchemeSource interface {
	MustGet(id string) (*models.Scheme, error)
}

// Handler asks the explanation service about already evaluated rule results
// and completes the job with the final eligibility result. Explanation
// failures go through the ErrorHandler: RATE_LIMIT, EXPLANATION_TIMEOUT and
// EXPLANATION_FAILED are retried by the engine, SERVICE_UNAVAILABLE is thrown
// into the process.
type Handler struct {
	config     *Config
	schemes    SchemeSource
	explainer  explanation.Explainer
	errHandler *apperrors.ErrorHandler
	logger     Logger
}

func NewHandler(config *Config, schemes SchemeSource, explainer explanation.Explainer, log Logger) *Handler {
	return &Handler{
		config:     config,
		schemes:    schemes,
		explainer:  explainer,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"taskType":    TaskType,
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job.Variables, schema, &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := input.Profile.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	scheme, err := h.schemes.MustGet(input.SchemeID)
	if err != nil {
		return nil, err
	}
	if err := checkResults(scheme, input.RuleResults); err != nil {
		return nil, err
	}

	req := explanation.NewRequest(scheme, input.Profile, input.RuleResults)
	payload, err := h.explainer.Explain(ctx, req)
	if err != nil {
		return nil, err
	}

	result := explanation.BuildResult(req, payload, h.config.Alternatives)
	h.logger.Info("explanation generated", map[string]interface{}{
		"schemeId":     result.SchemeID,
		"isEligible":   result.IsEligible,
		"overallScore": result.OverallScore,
	})
	return &Output{EligibilityResult: result}, nil
}

// checkResults requires one result per criterion, in criteria order.
func checkResults(scheme *models.Scheme, results []models.RuleEvaluationResult) error {
	if len(results) != len(scheme.Eligibility) {
		return apperrors.NewInvalidInputError(fmt.Sprintf(
			"scheme %s has %d criteria, got %d rule results", scheme.ID, len(scheme.Eligibility), len(results)))
	}
	for i, c := range scheme.Eligibility {
		if results[i].CriterionID != c.ID {
			return apperrors.NewInvalidInputError(fmt.Sprintf(
				"rule result %d is for %q, expected %q", i, results[i].CriterionID, c.ID))
		}
	}
	return nil
}
