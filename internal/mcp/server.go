// Package mcp exposes the turn API as Model Context Protocol tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/workflow"
)

const (
	ToolRunTurn      = "run_turn"
	ToolClearContext = "clear_context"
	ToolStatus       = "status"
)

var runTurnToolDef = mcp.NewTool(ToolRunTurn,
	mcp.WithDescription("Route one sales-assistant message and return the handler payload: ranked prospects, a prospect report, an outreach brief or a status marker."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The user's message, e.g. \"Find computer contractors in Texas with low local presence\""),
	),
)

var clearContextToolDef = mcp.NewTool(ToolClearContext,
	mcp.WithDescription("Forget the conversation history and the remembered user segment."),
)

var statusToolDef = mcp.NewTool(ToolStatus,
	mcp.WithDescription("Report dataset size and conversation state."),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = []toolEntry{
	{def: runTurnToolDef, handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRunTurn }},
	{def: clearContextToolDef, handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClearContext }},
	{def: statusToolDef, handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus }},
}

// ToolNames lists the registered tools in registration order.
func ToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for _, e := range toolRegistry {
		names = append(names, e.def.Name)
	}
	return names
}

func NewServer(engine *workflow.Engine, version string, log logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"sales-assistant",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(engine, log)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools on stdin/stdout until the client disconnects.
func Run(engine *workflow.Engine, version string, log logger.Logger) error {
	return server.ServeStdio(NewServer(engine, version, log))
}
