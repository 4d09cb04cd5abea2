// internal/workers/eligibility/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scheme-eligibility/internal/common/camunda"
	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/validation"
	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/models"
)

const TaskType = "evaluate-eligibility"

var schema = validation.MustCompile(TaskType+"-input", inputSchema)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type SchemeSource interface {
	MustGet(id string) (*models.Scheme, error)
}

// Handler runs the rule sequencer for a scheme and profile taken from the
// process variables.
type Handler struct {
	config     *Config
	schemes    SchemeSource
	sequencer  *eligibility.Sequencer
	errHandler *apperrors.ErrorHandler
	logger     Logger
}

func NewHandler(config *Config, schemes SchemeSource, sequencer *eligibility.Sequencer, log Logger) *Handler {
	return &Handler{
		config:     config,
		schemes:    schemes,
		sequencer:  sequencer,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"taskType":    TaskType,
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if err := input.Profile.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	scheme, err := h.schemes.MustGet(input.SchemeID)
	if err != nil {
		return nil, err
	}

	outcome := h.sequencer.Run(scheme, input.Profile)
	return &Output{
		SchemeID:     outcome.SchemeID,
		RuleResults:  outcome.Results,
		IsEligible:   outcome.IsEligible,
		OverallScore: outcome.OverallScore,
		PassedCount:  outcome.PassedCount,
		TotalCount:   outcome.TotalCount,
		Diagnostics:  outcome.Diagnostics,
	}, nil
}
