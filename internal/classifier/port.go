// Package classifier is the language-model boundary: free-text completion for routing and
// schema-checked structured extraction for filters and names.
package classifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"sales-assistant/internal/common/budget"
	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/common/validation"
)

// Port is implemented by every provider. Extract must return a single JSON object; validation happens in ExtractInto.
type Port interface {
	Complete(ctx context.Context, operation, prompt string) (string, error)
	Extract(ctx context.Context, operation, prompt, schema string) (json.RawMessage, error)
}

// Operation names used for metrics and error details.
const (
	OpRoute          = "route"
	OpExtractFilters = "extract_filters"
	OpExtractName    = "extract_name"
)

// ExtractInto runs a structured extraction, validates it against schema and decodes it into T.
func ExtractInto[T any](ctx context.Context, p Port, operation, prompt, schema string) (T, error) {
	var zero T

	raw, err := p.Extract(ctx, operation, prompt, schema)
	if err != nil {
		return zero, err
	}

	raw = json.RawMessage(StripCodeFence(string(raw)))
	result, err := validation.ValidateJSON([]byte(schema), raw)
	if err != nil {
		metrics.ClassifierCalls.WithLabelValues(operation, "malformed").Inc()
		return zero, errors.NewClassifierMalformedError(operation, err.Error())
	}
	if !result.Valid {
		metrics.ClassifierCalls.WithLabelValues(operation, "invalid").Inc()
		return zero, errors.NewClassifierMalformedError(operation, result.Error())
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, errors.NewClassifierMalformedError(operation, err.Error())
	}
	return out, nil
}

// StripCodeFence removes a surrounding ```json fence some models add despite instructions.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// spendAttempt charges one budget iteration for a provider attempt.
func spendAttempt(ctx context.Context) error {
	return budget.Spend(ctx)
}

// observe records the outcome of a provider call and passes err through.
func observe(operation string, err error) error {
	outcome := "success"
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			outcome = strings.ToLower(string(stdErr.Code))
		} else {
			outcome = "error"
		}
	}
	metrics.ClassifierCalls.WithLabelValues(operation, outcome).Inc()
	return err
}
