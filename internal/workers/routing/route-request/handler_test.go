// internal/workers/routing/route-request/handler_test.go
package routerequest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Port Implementation
// ==========================

type MockPort struct {
	mock.Mock
}

func (m *MockPort) Complete(ctx context.Context, operation, prompt string) (string, error) {
	args := m.Called(ctx, operation, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockPort) Extract(ctx context.Context, operation, prompt, schema string) (json.RawMessage, error) {
	args := m.Called(ctx, operation, prompt, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// ==========================
// Decision parsing
// ==========================

func TestParseDecision(t *testing.T) {
	tests := []struct {
		raw         string
		wantSegment models.Segment
		wantRoute   models.Route
	}{
		{"SALESREP|insights", models.SegmentSalesRep, models.RouteInsights},
		{"DEMANDGEN|prospecting", models.SegmentDemandGen, models.RouteProspecting},
		{" sales rep | Communication ", models.SegmentSalesRep, models.RouteCommunication},
		{"SALESREP|end", models.SegmentSalesRep, models.RouteTerminate},
		{"prospecting", models.SegmentUnknown, models.RouteProspecting},
		{"I think this is insights or prospecting", models.SegmentUnknown, models.RouteProspecting},
		{"OTHER|insights and prospecting", models.SegmentUnknown, models.RouteProspecting},
		{"DEMANDGEN|goodbye", models.SegmentDemandGen, models.RouteTerminate},
		{"", models.SegmentUnknown, models.RouteTerminate},
		{"SALESREP|insights|extra", models.SegmentSalesRep, models.RouteInsights},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d := ParseDecision(tt.raw)
			assert.Equal(t, tt.wantSegment, d.UserSegment)
			assert.Equal(t, tt.wantRoute, d.Route)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("", "Find plumbers", nil)
	assert.Contains(t, prompt, "Previous context: No previous context")
	assert.Contains(t, prompt, "Current message: Find plumbers")

	prompt = BuildPrompt("ctx={history} msg={message}", "hi", []string{"a", "b"})
	assert.Equal(t, `ctx=["a", "b"] msg=hi`, prompt)
}

// ==========================
// Handler
// ==========================

func TestExecute(t *testing.T) {
	port := classifier.NewStatic("").
		On("Current message: Draft", "SALESREP|communication").
		On("Current message: Find", "DEMANDGEN|prospecting")
	h := NewHandler(LoadConfig(), port, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Message: "Find plumbers in Texas"})
	require.NoError(t, err)
	assert.Equal(t, models.RouteProspecting, out.Route)
	assert.Equal(t, models.SegmentDemandGen, out.UserSegment)
	assert.Equal(t, models.RouteDecision{UserSegment: models.SegmentDemandGen, Route: models.RouteProspecting}, out.Decision())
}

func TestExecute_CallsCompleteOnce(t *testing.T) {
	port := new(MockPort)
	port.On("Complete", mock.Anything, classifier.OpRoute, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Current message: Write to Bayou IT Services") &&
			strings.Contains(p, `["Find IT firms in Louisiana"]`)
	})).Return("DEMANDGEN|communication", nil).Once()

	h := NewHandler(LoadConfig(), port, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		Message: "Write to Bayou IT Services",
		History: []string{"Find IT firms in Louisiana"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RouteCommunication, out.Route)
	assert.Equal(t, "DEMANDGEN|communication", out.Raw)

	port.AssertExpectations(t)
	port.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_TrimsHistoryWindow(t *testing.T) {
	port := classifier.NewStatic("SALESREP|insights")
	h := NewHandler(LoadConfig(), port, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{
		Message: "Tell me about Alamo Tech Repair",
		History: []string{"q1", "q2", "q3", "q4", "q5"},
	})
	require.NoError(t, err)

	prompts := port.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `["q3", "q4", "q5"]`)
	assert.NotContains(t, prompts[0], `"q2"`)
}

func TestExecute_Errors(t *testing.T) {
	h := NewHandler(LoadConfig(), classifier.NewStatic("").OnError("boom", apperrors.NewClassifierTimeoutError(classifier.OpRoute)), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "  "})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	_, err = h.Execute(context.Background(), &Input{Message: "boom"})
	assert.True(t, errors.Is(err, ErrRoutingFailed))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeClassifierTimeout))
}

func TestExecute_BudgetExhausted(t *testing.T) {
	h := NewHandler(LoadConfig(), classifier.NewStatic("SALESREP|insights"), logger.NewTestLogger(t))

	ctx, cancel := budget.WithTracker(context.Background(), budget.NewTracker(0, time.Second))
	defer cancel()

	_, err := h.Execute(ctx, &Input{Message: "anything"})
	assert.True(t, errors.Is(err, ErrRoutingFailed))
	assert.True(t, budget.IsExceeded(ctx, err))
}
