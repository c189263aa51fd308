// internal/workers/insights/analyze-prospect/handler.go
package analyzeprospect

import (
	"context"
	"strings"
	"time"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/camunda"
	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sales-analyze-prospect"
)

type Handler struct {
	config   *Config
	store    *dataset.Store
	resolver *Resolver
	jobs     *camunda.Jobs
	logger   logger.Logger
}

func NewHandler(config *Config, port classifier.Port, store *dataset.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		store:    store,
		resolver: NewResolver(port, store, config.NamePrompt, log),
		jobs:     camunda.NewJobs(TaskType, log),
		logger:   log,
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
	output, err := h.Report(ctx, input)
	if err != nil || !output.Found {
		return output, err
	}

	h.logger.Info("prospect analyzed", map[string]interface{}{
		"businessName": output.Report.BusinessName,
		"dScore":       output.Report.Metrics.DScore,
		"weaknesses":   len(output.Report.SWOT.Weaknesses),
	})
	return output, nil
}

// Report resolves the business input names and analyzes it. A business missing from the
// dataset comes back as an Output with a PROSPECT_NOT_FOUND status, not an error.
func (h *Handler) Report(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || (strings.TrimSpace(input.BusinessName) == "" && strings.TrimSpace(input.Query) == "") {
		return nil, apperrors.NewInvalidInputError("businessName or query is required")
	}

	output := &Output{BusinessName: strings.TrimSpace(input.BusinessName)}
	if output.BusinessName == "" {
		res, err := h.resolver.Resolve(ctx, input.Query)
		if err != nil {
			return nil, err
		}
		output.BusinessName = res.Name
		output.Partial = res.Partial
	}

	report, err := Analyze(h.store, output.BusinessName)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeProspectNotFound) {
			h.logger.Info("prospect not found", map[string]interface{}{
				"businessName": output.BusinessName,
			})
			output.Status = models.StatusFromError(err)
			return output, nil
		}
		return nil, err
	}

	output.Found = true
	output.BusinessName = report.BusinessName
	output.Report = report
	return output, nil
}
