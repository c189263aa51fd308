// Package workflow runs one user turn: route, dispatch to exactly one handler, end.
package workflow

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/common/observability"
	"sales-assistant/internal/conversation"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// TurnResult is what every surface returns for one message.
type TurnResult struct {
	TurnID      string         `json:"turnId"`
	Route       models.Route   `json:"route"`
	UserSegment models.Segment `json:"userSegment"`
	Payload     models.Payload `json:"payload"`
	States      []State        `json:"states"`
	DurationMs  int64          `json:"durationMs"`
}

type Config struct {
	MaxIterations int
	Timeout       time.Duration
	HistoryWindow int
	// Classifier names the configured provider for readiness reports.
	Classifier string
}

// Deps are the collaborators a turn needs. Observability may be nil.
type Deps struct {
	Router        *routerequest.Handler
	Prospecting   *findprospects.Handler
	Insights      *analyzeprospect.Handler
	Communication *draftoutreach.Handler
	Conversation  *conversation.Context
	Store         *dataset.Store
	Observability *observability.Observability
}

type Engine struct {
	config Config
	deps   Deps
	logger logger.Logger
}

func NewEngine(config Config, deps Deps, log logger.Logger) *Engine {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = 3
	}
	if deps.Conversation == nil {
		deps.Conversation = conversation.New(conversation.DefaultMaxEntries)
	}
	return &Engine{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "workflow"}),
	}
}

// RunTurn never returns an error: every failure comes back as a status payload.
func (e *Engine) RunTurn(ctx context.Context, query string) (result TurnResult) {
	start := time.Now()
	result = TurnResult{
		TurnID:      uuid.NewString(),
		Route:       models.RouteTerminate,
		UserSegment: models.SegmentUnknown,
	}
	log := e.logger.WithFields(map[string]interface{}{"turnId": result.TurnID})

	ctx, span := e.deps.Observability.StartSpan(ctx, "turn", attribute.String("turn.id", result.TurnID))
	defer span.End()

	m := newMachine()
	defer func() {
		if r := recover(); r != nil {
			log.Error("turn panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			result.Payload = statusPayload(errors.NewInternalError(fmt.Errorf("panic: %v", r)))
		}
		result.States = m.trail
		result.DurationMs = time.Since(start).Milliseconds()
		e.finish(ctx, log, query, start, &result)
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		result.Payload = statusPayload(errors.NewInvalidInputError("query is required"))
		e.mustAdvance(m, StateEnd)
		return result
	}

	decision, err := e.route(ctx, query)
	if err != nil {
		log.Warn("routing failed, terminating turn", map[string]interface{}{"error": err.Error()})
		result.Payload = e.failurePayload(ctx, err, true)
		e.mustAdvance(m, StateEnd)
		return result
	}

	result.Route = decision.Route
	result.UserSegment = decision.UserSegment
	e.deps.Conversation.SetSegment(decision.UserSegment)

	next := stateFor(decision.Route)
	e.mustAdvance(m, next)
	if next == StateEnd {
		result.Payload = models.TerminatedPayload()
		return result
	}

	result.Payload = e.dispatch(ctx, next, query, e.segment(decision.UserSegment))
	e.mustAdvance(m, StateEnd)
	return result
}

// ClearContext wipes the conversation log and user context.
func (e *Engine) ClearContext() {
	e.deps.Conversation.Clear()
	e.logger.Info("conversation context cleared", nil)
}

func (e *Engine) Conversation() *conversation.Context {
	return e.deps.Conversation
}

func (e *Engine) route(ctx context.Context, query string) (models.RouteDecision, error) {
	ctx, span := e.deps.Observability.StartSpan(ctx, "router")
	defer span.End()

	ctx, cancel := e.handlerContext(ctx)
	defer cancel()

	out, err := e.deps.Router.Execute(ctx, &routerequest.Input{
		Message: query,
		History: e.deps.Conversation.RecentQueries(e.config.HistoryWindow),
	})
	if err != nil {
		if budget.IsExceeded(ctx, err) && !errors.HasCode(err, errors.ErrCodeBudgetExceeded) {
			err = fmt.Errorf("%w: %w", errors.NewBudgetExceededError("router"), err)
		}
		return models.RouteDecision{}, err
	}
	return out.Decision(), nil
}

func (e *Engine) dispatch(ctx context.Context, state State, query string, segment models.Segment) models.Payload {
	ctx, span := e.deps.Observability.StartSpan(ctx, "handler."+string(state))
	defer span.End()

	ctx, cancel := e.handlerContext(ctx)
	defer cancel()

	var (
		payload models.Payload
		err     error
	)
	switch state {
	case StateProspecting:
		var out *findprospects.Output
		if out, err = e.deps.Prospecting.Execute(ctx, &findprospects.Input{Query: query}); err == nil {
			payload = out.Payload()
		}
	case StateInsights:
		var out *analyzeprospect.Output
		if out, err = e.deps.Insights.Execute(ctx, &analyzeprospect.Input{Query: query}); err == nil {
			payload = out.Payload()
		}
	case StateCommunication:
		var out *draftoutreach.Output
		if out, err = e.deps.Communication.Execute(ctx, &draftoutreach.Input{Query: query, UserSegment: segment}); err == nil {
			payload = out.Payload()
		}
	default:
		err = errors.NewInternalError(fmt.Errorf("no handler for state %s", state))
	}

	if err != nil {
		e.logger.Warn("handler failed", map[string]interface{}{
			"state": state,
			"error": err.Error(),
		})
		return e.failurePayload(ctx, err, false)
	}
	return payload
}

// handlerContext attaches a fresh iteration and wall-clock budget.
func (e *Engine) handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return budget.WithTracker(ctx, budget.NewTracker(e.config.MaxIterations, e.config.Timeout))
}

// failurePayload converts a handler or router error into the status envelope.
func (e *Engine) failurePayload(ctx context.Context, err error, routing bool) models.Payload {
	if budget.IsExceeded(ctx, err) {
		if !errors.HasCode(err, errors.ErrCodeBudgetExceeded) {
			err = errors.NewBudgetExceededError(err.Error())
		}
		p := statusPayload(err)
		p.Partial = true
		return p
	}
	if routing {
		return statusPayload(errors.NewRoutingFailedError(err))
	}
	return statusPayload(err)
}

func statusPayload(err error) models.Payload {
	return models.StatusPayload(models.StatusFromError(err))
}

// segment falls back to the remembered segment when the router could not tell.
func (e *Engine) segment(s models.Segment) models.Segment {
	if s == models.SegmentUnknown {
		return e.deps.Conversation.Segment()
	}
	return s
}

func (e *Engine) mustAdvance(m *machine, next State) {
	if err := m.advance(next); err != nil {
		panic(err)
	}
}

// finish records metrics and appends the turn to the conversation unless the caller went away.
func (e *Engine) finish(ctx context.Context, log logger.Logger, query string, start time.Time, result *TurnResult) {
	route, segment := string(result.Route), string(result.UserSegment)
	metrics.TurnsTotal.WithLabelValues(route, segment).Inc()
	metrics.TurnDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	e.deps.Observability.RecordTurn(ctx, route, segment)
	e.deps.Observability.RecordTurnDuration(ctx, time.Since(start), route)

	if stderrors.Is(ctx.Err(), context.Canceled) {
		log.Warn("turn abandoned, not recorded", map[string]interface{}{"route": route})
		return
	}
	if strings.TrimSpace(query) != "" {
		e.deps.Conversation.Append(conversation.Entry{
			Query:     query,
			Timestamp: start.UTC(),
			Response:  responseText(result.Payload),
		})
	}

	log.Info("turn completed", map[string]interface{}{
		"route":       route,
		"userSegment": segment,
		"payloadKind": result.Payload.Kind,
		"partial":     result.Payload.Partial,
		"states":      result.States,
		"durationMs":  result.DurationMs,
	})
}

func responseText(p models.Payload) string {
	if p.Summary != "" {
		return p.Summary
	}
	return p.String()
}

// Readiness is what the status command and /ready report.
type Readiness struct {
	Ready               bool           `json:"ready"`
	Classifier          string         `json:"classifier"`
	DatasetRecords      int            `json:"datasetRecords"`
	ConversationEntries int            `json:"conversationEntries"`
	MaxEntries          int            `json:"maxEntries"`
	UserSegment         models.Segment `json:"userSegment"`
	RecentQueries       []string       `json:"recentQueries"`
}

func (e *Engine) Status() Readiness {
	records := 0
	if e.deps.Store != nil {
		records = e.deps.Store.Len()
	}
	return Readiness{
		Ready:               records > 0 && e.deps.Router != nil,
		Classifier:          e.config.Classifier,
		DatasetRecords:      records,
		ConversationEntries: e.deps.Conversation.Len(),
		MaxEntries:          e.deps.Conversation.MaxEntries(),
		UserSegment:         e.deps.Conversation.Segment(),
		RecentQueries:       e.deps.Conversation.RecentQueries(e.config.HistoryWindow),
	}
}
