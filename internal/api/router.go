// Package api serves the turn API over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/conversation"
	"sales-assistant/internal/models"
	"sales-assistant/internal/workflow"
)

// maxBodyBytes caps a turn request body.
const maxBodyBytes = 64 << 10

type Handler struct {
	engine *workflow.Engine
	logger logger.Logger
}

// NewRouter wires the health, metrics and turn routes. requestTimeout bounds a single request.
func NewRouter(engine *workflow.Engine, requestTimeout time.Duration, log logger.Logger) http.Handler {
	h := &Handler{
		engine: engine,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.requestLogger)
	if requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(requestTimeout))
	}

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/turns", h.RunTurn)
		r.Get("/context", h.GetContext)
		r.Delete("/context", h.ClearContext)
	})
	return r
}

type TurnRequest struct {
	Query string `json:"query"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	code := http.StatusOK
	if !st.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (h *Handler) RunTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.NewInvalidInputError("decode body: "+err.Error()))
		return
	}
	// A blank query still gets a turn envelope carrying an INVALID_INPUT status.
	writeJSON(w, http.StatusOK, h.engine.RunTurn(r.Context(), req.Query))
}

type contextView struct {
	UserSegment models.Segment       `json:"userSegment"`
	Entries     []conversation.Entry `json:"entries"`
	MaxEntries  int                  `json:"maxEntries"`
}

func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	conv := h.engine.Conversation()
	writeJSON(w, http.StatusOK, contextView{
		UserSegment: conv.Segment(),
		Entries:     conv.Entries(),
		MaxEntries:  conv.MaxEntries(),
	})
}

func (h *Handler) ClearContext(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearContext()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"requestId":  chimiddleware.GetReqID(r.Context()),
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.StandardError) {
	writeJSON(w, status, map[string]interface{}{"error": err})
}
