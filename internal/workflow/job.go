// internal/workflow/job.go
package workflow

import (
	"context"
	"time"

	"sales-assistant/internal/common/camunda"
	"sales-assistant/internal/common/logger"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sales-run-turn"
)

type TurnInput struct {
	Query string `json:"query"`
}

// TurnHandler runs a whole turn as a single job so a BPMN process can drive the assistant.
type TurnHandler struct {
	engine *Engine
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewTurnHandler(engine *Engine, log logger.Logger) *TurnHandler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &TurnHandler{
		engine: engine,
		jobs:   camunda.NewJobs(TaskType, log),
		logger: log,
	}
}

func (h *TurnHandler) WithRegistry(reg *registry.ActivityRegistry) *TurnHandler {
	h.jobs.WithRegistry(reg)
	return h
}

func (h *TurnHandler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input TurnInput
	if err := h.jobs.Decode(job, &input); err != nil {
		h.jobs.Fail(client, job, err, started)
		return
	}

	result := h.engine.RunTurn(context.Background(), input.Query)
	h.jobs.Complete(client, job, result, started)
}
