// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
	"scheme-eligibility/internal/common/observability"
	"scheme-eligibility/internal/common/validation"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// JobHandler processes one job. A returned error means the handler already
// reported the failure to the engine; it is only logged and counted here.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   Logger
	taskType string
}

func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, obs *observability.Observability, logger Logger) *CamundaWorker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, obs, logger)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	w := &CamundaWorker{
		worker:   builder.Open(),
		logger:   logger,
		taskType: taskType,
	}
	logger.Info("worker started", map[string]interface{}{"taskType": taskType, "maxJobsActive": opts.MaxJobsActive})
	return w
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}

func instrument(taskType string, handler JobHandler, obs *observability.Observability, logger Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		status := "completed"
		if err := handler.Handle(client, job); err != nil {
			status = "failed"
			code := string(apperrors.Normalize(err).Code)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
			logger.Error("handler returned error", map[string]interface{}{
				"taskType": taskType,
				"jobKey":   job.Key,
				"error":    err.Error(),
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(context.Background(), taskType, status)
		obs.RecordJobDuration(context.Background(), elapsed, taskType, status)
	}
}

// DecodeVariables validates the job variables against schema and decodes
// them into v. Failures are INVALID_INPUT.
func DecodeVariables(variables string, schema *validation.Schema, v interface{}) error {
	var doc interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewInvalidInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}
	if err := json.Unmarshal([]byte(variables), v); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
