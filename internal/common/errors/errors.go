// Package errors provides the standard error model shared by the assistant's handlers,
// its turn envelope and the workflow-engine job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassifierFailed      ErrorCode = "CLASSIFIER_FAILED"
	ErrCodeClassifierTimeout     ErrorCode = "CLASSIFIER_TIMEOUT"
	ErrCodeClassifierMalformed   ErrorCode = "CLASSIFIER_MALFORMED_RESPONSE"
	ErrCodeClassifierRateLimited ErrorCode = "CLASSIFIER_RATE_LIMITED"

	ErrCodeDatasetLoadFailed ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeDatasetEmpty      ErrorCode = "DATASET_EMPTY"

	ErrCodeProspectNotFound ErrorCode = "PROSPECT_NOT_FOUND"
	ErrCodeNoMatch          ErrorCode = "NO_MATCH"
	ErrCodeBudgetExceeded   ErrorCode = "BUDGET_EXCEEDED"
	ErrCodeRoutingFailed    ErrorCode = "ROUTING_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeEngineUnavailable        ErrorCode = "ENGINE_UNAVAILABLE"

	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewClassifierFailedError wraps a transport or provider failure of the classifier.
func NewClassifierFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeClassifierFailed, "Classifier call failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true)
}

// NewClassifierTimeoutError reports a classifier call that exceeded its deadline.
func NewClassifierTimeoutError(operation string) *StandardError {
	return newError(ErrCodeClassifierTimeout, "Classifier call timed out",
		fmt.Sprintf("operation: %s", operation), true)
}

// NewClassifierMalformedError reports output that failed schema validation or parsing.
func NewClassifierMalformedError(operation, details string) *StandardError {
	return newError(ErrCodeClassifierMalformed, "Classifier returned a malformed response",
		fmt.Sprintf("operation: %s, %s", operation, details), false)
}

// NewClassifierRateLimitedError reports a 429 from the provider.
func NewClassifierRateLimitedError(operation string) *StandardError {
	return newError(ErrCodeClassifierRateLimited, "Classifier rate limited",
		fmt.Sprintf("operation: %s", operation), true)
}

func NewDatasetLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeDatasetLoadFailed, "Dataset could not be loaded",
		fmt.Sprintf("source: %s, error: %v", source, err), false)
}

func NewDatasetEmptyError(source string) *StandardError {
	return newError(ErrCodeDatasetEmpty, "Dataset contains no usable records",
		fmt.Sprintf("source: %s", source), false)
}

// NewProspectNotFoundError is the lookup-miss signal of the detail analyzer.
func NewProspectNotFoundError(name string) *StandardError {
	return newError(ErrCodeProspectNotFound, "Prospect not found",
		fmt.Sprintf("businessName: %s", name), false)
}

func NewNoMatchError(details string) *StandardError {
	return newError(ErrCodeNoMatch, "No prospects matched the query", details, false)
}

// NewBudgetExceededError reports an exhausted iteration or wall-clock budget.
func NewBudgetExceededError(details string) *StandardError {
	return newError(ErrCodeBudgetExceeded, "Handler budget exceeded", details, false)
}

func NewRoutingFailedError(err error) *StandardError {
	return newError(ErrCodeRoutingFailed, "Request could not be routed", err.Error(), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

// NewEngineUnavailableError reports a workflow-engine gateway that could not be reached.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeEngineUnavailable, "Workflow engine unavailable",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternalError, "Unexpected error", err.Error(), false)
}

// ==========================
// 3. Classification helpers
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassifierFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeClassifierTimeout,
		ErrCodeClassifierRateLimited:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CLASSIFIER") || strings.Contains(codeStr, "ROUTING"):
		return "AI"
	case strings.HasPrefix(codeStr, "DATASET") || strings.Contains(codeStr, "PROSPECT") || codeStr == string(ErrCodeNoMatch):
		return "DATASET"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "ENGINE"):
		return "ENGINE"
	case strings.Contains(codeStr, "BUDGET"):
		return "BUDGET"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err is, or wraps, a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}
