// internal/workers/insights/analyze-prospect/resolve.go
package analyzeprospect

import (
	"context"
	"strings"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/dataset"
)

// NameSchema is the shape the name extractor must return.
const NameSchema = `{
  "type": "object",
  "required": ["business_name"],
  "properties": {
    "business_name": {"type": "string"}
  }
}`

type nameExtraction struct {
	BusinessName string `json:"business_name"`
}

// Resolution is the outcome of resolving a query to a business name.
type Resolution struct {
	Name    string
	Partial bool
}

// Resolver turns a free-text query into a dataset business name.
type Resolver struct {
	port   classifier.Port
	store  *dataset.Store
	prompt string
	logger logger.Logger
}

func NewResolver(port classifier.Port, store *dataset.Store, prompt string, log logger.Logger) *Resolver {
	if prompt == "" {
		prompt = DefaultNamePrompt
	}
	return &Resolver{port: port, store: store, prompt: prompt, logger: log}
}

// Resolve asks the classifier for the name and keeps it when the store knows it. Otherwise it
// falls back to the longest dataset name contained in the query, then to the raw extraction.
// Only budget exhaustion is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, query string) (Resolution, error) {
	var res Resolution

	extracted, err := classifier.ExtractInto[nameExtraction](ctx, r.port, classifier.OpExtractName,
		strings.ReplaceAll(r.prompt, "{query}", query), NameSchema)
	switch {
	case err == nil:
		name := strings.TrimSpace(extracted.BusinessName)
		if record, ok := r.store.FindByName(name); ok {
			res.Name = record.Name()
			return res, nil
		}
		res.Name = name
	case budget.IsExceeded(ctx, err):
		res.Partial = true
	default:
		r.logger.Warn("name extraction failed, scanning dataset names", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if contained := r.LongestContainedName(query); contained != "" {
		res.Name = contained
	}
	if res.Name == "" && res.Partial {
		return res, err
	}
	return res, nil
}

// LongestContainedName returns the longest business name that appears in text, ignoring case.
func (r *Resolver) LongestContainedName(text string) string {
	lower := strings.ToLower(text)
	best := ""
	for _, name := range r.store.Names() {
		if name == "" || len(name) <= len(best) {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			best = name
		}
	}
	return best
}
