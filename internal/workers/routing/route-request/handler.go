// internal/workers/routing/route-request/handler.go
package routerequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/camunda"
	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sales-route-request"
)

var (
	ErrRoutingFailed = errors.New("ROUTING_FAILED")
)

type Handler struct {
	config *Config
	port   classifier.Port
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, port classifier.Port, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		port:   port,
		jobs:   camunda.NewJobs(TaskType, log),
		logger: log,
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
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewInvalidInputError("message is required")
	}

	history := input.History
	if w := h.config.HistoryWindow; w >= 0 && len(history) > w {
		history = history[len(history)-w:]
	}

	raw, err := h.port.Complete(ctx, classifier.OpRoute, BuildPrompt(h.config.Prompt, input.Message, history))
	if err != nil {
		h.logger.Warn("router classification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrRoutingFailed, err)
	}

	decision := ParseDecision(raw)
	h.logger.Info("request routed", map[string]interface{}{
		"route":       decision.Route,
		"userSegment": decision.UserSegment,
		"historySize": len(history),
	})

	return &Output{
		UserSegment: decision.UserSegment,
		Route:       decision.Route,
		Raw:         raw,
	}, nil
}
