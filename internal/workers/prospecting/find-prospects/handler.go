// internal/workers/prospecting/find-prospects/handler.go
package findprospects

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/camunda"
	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
	"sales-assistant/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sales-find-prospects"
)

// broaderStems maps query keywords to the category fragment searched when filtering finds nothing.
var broaderStems = []struct {
	keyword  string
	category string
}{
	{"computer", "computer"},
	{"contractor", "contract"},
}

type Handler struct {
	config *Config
	port   classifier.Port
	store  *dataset.Store
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, port classifier.Port, store *dataset.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		port:   port,
		store:  store,
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
	if input == nil || strings.TrimSpace(input.Query) == "" {
		return nil, apperrors.NewInvalidInputError("query is required")
	}

	start := time.Now()
	output := &Output{}

	// 1. Filter extraction
	fs, err := classifier.ExtractInto[models.FilterSet](ctx, h.port, classifier.OpExtractFilters,
		BuildPrompt(h.config.Prompt, input.Query), models.FilterSetSchema)
	switch {
	case err == nil:
		output.Filters = fs.Filters
	case budget.IsExceeded(ctx, err):
		h.logger.Warn("budget exhausted during filter extraction, scoring unfiltered", map[string]interface{}{
			"error": err.Error(),
		})
		output.Partial = true
	default:
		metrics.FilterFallbacks.WithLabelValues("extraction_failed").Inc()
		h.logger.Warn("filter extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		status := models.StatusFromError(err)
		status.Status = models.StatusFailedToProcess
		output.Status = status
		return output, nil
	}

	h.logger.Info("filters extracted", map[string]interface{}{
		"filters": describeFilters(output.Filters),
	})

	// 2. Structured filtering
	filtered := ApplyFilters(h.store, output.Filters, h.logger)
	intent := ParseIntent(input.Query)

	var results []models.ScoredCandidate
	if len(filtered) == 0 {
		// 3. Broader search
		metrics.FilterFallbacks.WithLabelValues("broader_search").Inc()
		results = h.broaderSearch(input.Query, intent)
		if len(results) == 0 {
			metrics.FilterFallbacks.WithLabelValues("category_suggestions").Inc()
			output.Status = &models.StatusMarker{
				Status:              models.StatusNoExactMatches,
				Suggestion:          models.SuggestionCategories,
				AvailableCategories: h.store.CategoryCounts(h.config.SuggestionLimit),
			}
			return output, nil
		}
	} else {
		// 4. Strict relevance scoring
		for _, r := range filtered {
			c := Score(r, intent, false)
			switch {
			case c.FilteredOut:
				output.Excluded = append(output.Excluded, c)
			case c.Relevance > 0:
				results = append(results, c)
			}
		}

		// 5. Relaxed fallback
		if len(results) == 0 {
			metrics.FilterFallbacks.WithLabelValues("relaxed_scoring").Inc()
			for _, r := range head(filtered, h.config.FallbackSize) {
				results = append(results, Score(r, intent, true))
			}
		}
	}

	// 6. Ranking
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > h.config.MaxResults {
		results = results[:h.config.MaxResults]
	}

	if len(results) == 0 {
		output.Status = &models.StatusMarker{Status: models.StatusNoProspects}
		return output, nil
	}

	output.Candidates = results
	output.Summary = Summarize(results)

	duration := time.Since(start).Milliseconds()
	h.logger.Info("prospect search completed", map[string]interface{}{
		"filteredCount": len(filtered),
		"outputCount":   len(results),
		"excludedCount": len(output.Excluded),
		"durationMs":    duration,
	})
	if duration > 500 {
		h.logger.Warn("prospect search exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return output, nil
}

// broaderSearch unions the first matches per category stem found in the query, scored relaxed.
func (h *Handler) broaderSearch(query string, intent Intent) []models.ScoredCandidate {
	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []models.ScoredCandidate

	for _, stem := range broaderStems {
		if !strings.Contains(q, stem.keyword) {
			continue
		}
		taken := 0
		for _, r := range h.store.All() {
			if taken >= h.config.BroaderPerStem {
				break
			}
			if !strings.Contains(strings.ToLower(r.PrimaryCategory()), stem.category) {
				continue
			}
			taken++
			if seen[r.Name()] {
				continue
			}
			seen[r.Name()] = true
			out = append(out, Score(r, intent, true))
		}
		h.logger.Info("broader search stem matched", map[string]interface{}{
			"stem":    stem.category,
			"matches": taken,
		})
	}
	return out
}

func head(rows []models.Record, n int) []models.Record {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// Summarize renders the one-line summary kept in the conversation log.
func Summarize(candidates []models.ScoredCandidate) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range candidates {
		for _, g := range c.Gaps {
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	top := ""
	for _, g := range order {
		if counts[g] > counts[top] {
			top = g
		}
	}

	noun := "prospects"
	if len(candidates) == 1 {
		noun = "prospect"
	}
	if top == "" {
		return fmt.Sprintf("%d %s found. No common digital gaps.", len(candidates), noun)
	}
	return fmt.Sprintf("%d %s found. Most common gap: %s.", len(candidates), noun, top)
}

func describeFilters(filters []models.FilterCondition) []string {
	out := make([]string, len(filters))
	for i, f := range filters {
		out[i] = f.String()
	}
	return out
}
