package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/conversation"
	"sales-assistant/internal/dataset/datasettest"
	"sales-assistant/internal/models"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"
	"sales-assistant/internal/workflow"
)

func testEngine(t *testing.T) *workflow.Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := datasettest.Sample()
	port := classifier.NewStatic("").
		On("Current message: Find", "SALESREP|prospecting").
		On("Current message: Bye", "SALESREP|end").
		On("Query: ", `{"filters":[{"field":"State","operator":"equals","value":"TX"}]}`)

	return workflow.NewEngine(workflow.Config{}, workflow.Deps{
		Router:        routerequest.NewHandler(routerequest.LoadConfig(), port, log),
		Prospecting:   findprospects.NewHandler(findprospects.LoadConfig(), port, store, log),
		Insights:      analyzeprospect.NewHandler(analyzeprospect.LoadConfig(), port, store, log),
		Communication: draftoutreach.NewHandler(draftoutreach.LoadConfig(), port, store, log),
		Conversation:  conversation.New(conversation.DefaultMaxEntries),
		Store:         store,
	}, log)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestToolNames(t *testing.T) {
	assert.Equal(t, []string{ToolRunTurn, ToolClearContext, ToolStatus}, ToolNames())
}

func TestRunTurnToolRequiresQuery(t *testing.T) {
	assert.Equal(t, []string{"query"}, runTurnToolDef.InputSchema.Required)
	assert.Contains(t, runTurnToolDef.InputSchema.Properties, "query")
	assert.NotNil(t, NewServer(testEngine(t), "test", logger.NewTestLogger(t)))
}

func TestHandleRunTurn(t *testing.T) {
	h := NewHandlers(testEngine(t), logger.NewTestLogger(t))

	result, err := h.HandleRunTurn(context.Background(), makeRequest(map[string]any{
		"query": "Find businesses in Texas",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var turn struct {
		TurnID  string       `json:"turnId"`
		Route   models.Route `json:"route"`
		Payload struct {
			Kind       models.PayloadKind `json:"kind"`
			Candidates []map[string]any   `json:"candidates"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &turn))
	assert.NotEmpty(t, turn.TurnID)
	assert.Equal(t, models.RouteProspecting, turn.Route)
	assert.Equal(t, models.PayloadCandidates, turn.Payload.Kind)
	require.NotEmpty(t, turn.Payload.Candidates)
	for _, c := range turn.Payload.Candidates {
		assert.Contains(t, c["Location"], "TX")
		assert.Contains(t, c, "Prospect Business Name")
	}
}

func TestHandleRunTurn_InvalidInput(t *testing.T) {
	h := NewHandlers(testEngine(t), logger.NewTestLogger(t))

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing query", map[string]any{}},
		{"blank query", map[string]any{"query": "   "}},
		{"wrong type", map[string]any{"query": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleRunTurn(context.Background(), makeRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), "INVALID_INPUT")
		})
	}
}

func TestHandleClearContext(t *testing.T) {
	engine := testEngine(t)
	h := NewHandlers(engine, logger.NewTestLogger(t))

	engine.RunTurn(context.Background(), "Bye")
	require.Equal(t, 1, engine.Conversation().Len())

	result, err := h.HandleClearContext(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"cleared":true}`, resultText(t, result))
	assert.Zero(t, engine.Conversation().Len())
}

func TestHandleStatus(t *testing.T) {
	h := NewHandlers(testEngine(t), logger.NewTestLogger(t))

	result, err := h.HandleStatus(context.Background(), makeRequest(nil))
	require.NoError(t, err)

	var st workflow.Readiness
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &st))
	assert.True(t, st.Ready)
	assert.Equal(t, 6, st.DatasetRecords)
}
