package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/workflow"
)

// Handlers holds the engine the tools drive.
type Handlers struct {
	engine *workflow.Engine
	logger logger.Logger
}

func NewHandlers(engine *workflow.Engine, log logger.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		logger: log.WithFields(map[string]interface{}{"component": "mcp"}),
	}
}

type RunTurnRequest struct {
	Query string `json:"query"`
}

// HandleRunTurn runs one turn. Expected failures come back inside the payload, not as tool errors.
func (h *Handlers) HandleRunTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunTurnRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInputError(err.Error())), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return errorResult(errors.NewInvalidInputError("query is required")), nil
	}

	result := h.engine.RunTurn(ctx, input.Query)
	h.logger.Debug("tool call served", map[string]interface{}{
		"tool":   ToolRunTurn,
		"turnId": result.TurnID,
		"route":  result.Route,
	})
	return successResult(result)
}

func (h *Handlers) HandleClearContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.ClearContext()
	return successResult(map[string]interface{}{"cleared": true})
}

func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.engine.Status())
}

// errorResult renders a StandardError as an error tool result.
func errorResult(err error) *mcp.CallToolResult {
	stdErr := errors.AsStandardError(err)
	content, _ := json.Marshal(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    stdErr.Code,
			"message": stdErr.Message,
			"details": stdErr.Details,
		},
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
