// internal/workers/communication/draft-outreach/handler.go
package draftoutreach

import (
	"context"
	"time"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/camunda"
	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/dataset"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sales-draft-outreach"
)

type Handler struct {
	config    *Config
	analysis  *analyzeprospect.Handler
	signature string
	jobs      *camunda.Jobs
	logger    logger.Logger
}

func NewHandler(config *Config, port classifier.Port, store *dataset.Store, log logger.Logger) *Handler {
	analysis := analyzeprospect.NewHandler(&analyzeprospect.Config{
		NamePrompt:    config.NamePrompt,
		MaxIterations: config.MaxIterations,
		Timeout:       config.Timeout,
	}, port, store, log)

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		analysis:  analysis,
		signature: Signature(config.SignOff, config.SenderName),
		jobs:      camunda.NewJobs(TaskType, log),
		logger:    log,
	}
}

// WithRegistry enables input validation for jobs.
func (h *Handler) WithRegistry(reg *registry.ActivityRegistry) *Handler {
	h.jobs.WithRegistry(reg)
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := h.jobs.Decode(job, &input); err != nil {
		h.jobs.Fail(client, job, err, started)
		return
	}

	ctx, cancel := budget.WithTracker(context.Background(), budget.NewTracker(h.config.MaxIterations, h.config.Timeout))
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.jobs.Fail(client, job, err, started)
		return
	}

	h.jobs.Complete(client, job, output, started)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("businessName or query is required")
	}

	analyzed, err := h.analysis.Report(ctx, &analyzeprospect.Input{
		BusinessName: input.BusinessName,
		Query:        input.Query,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		BusinessName: analyzed.BusinessName,
		Found:        analyzed.Found,
		Status:       analyzed.Status,
		Partial:      analyzed.Partial,
	}
	if !analyzed.Found {
		return output, nil
	}

	output.Brief = BuildBrief(analyzed.Report, input.UserSegment, h.signature)

	h.logger.Info("outreach brief built", map[string]interface{}{
		"businessName": output.BusinessName,
		"segment":      output.Brief.Segment,
		"urgency":      output.Brief.Urgency,
	})
	return output, nil
}
