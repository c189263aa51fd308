// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task handler that can run as a job worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// StartWorker opens a job worker for taskType using the per-worker limits.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) worker.JobWorker {
	log.Info("starting job worker", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()
}

// Jobs completes or fails jobs for one task type and keeps the worker metrics.
type Jobs struct {
	taskType     string
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	registry     *registry.ActivityRegistry
}

func NewJobs(taskType string, log logger.Logger) *Jobs {
	return &Jobs{
		taskType:     taskType,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// WithRegistry enables input schema checks in Decode.
func (j *Jobs) WithRegistry(reg *registry.ActivityRegistry) *Jobs {
	j.registry = reg
	return j
}

// Decode validates the job variables against the registered input schema and unmarshals them into v.
func (j *Jobs) Decode(job entities.Job, v interface{}) error {
	raw := []byte(job.Variables)
	if j.registry != nil {
		var vars map[string]interface{}
		if err := json.Unmarshal(raw, &vars); err != nil {
			return errors.NewInvalidInputError("parse variables: " + err.Error())
		}
		if err := j.registry.ValidateInput(j.taskType, vars); err != nil {
			return errors.NewInvalidInputError(err.Error())
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.NewInvalidInputError("parse variables: " + err.Error())
	}
	return nil
}

// Complete sends output as the job's variables.
func (j *Jobs) Complete(client worker.JobClient, job entities.Job, output interface{}, started time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		j.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		j.Fail(client, job, errors.NewInternalError(err), started)
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		j.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(j.taskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(j.taskType).Observe(time.Since(started).Seconds())
}

// Fail routes err through the job error handler.
func (j *Jobs) Fail(client worker.JobClient, job entities.Job, err error, started time.Time) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(j.taskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(j.taskType).Observe(time.Since(started).Seconds())
	j.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}
