// internal/common/errors/bpmn.go
package errors

import (
	"fmt"
	"time"
)

// BPMNError represents an error thrown back to the workflow engine from a job worker.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail/throw variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// BPMNErrorMapping maps internal codes onto the error codes modelled in the sales process.
// Codes missing from the map are passed through unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeClassifierFailed:      "CLASSIFIER_FAILED",
	ErrCodeClassifierTimeout:     "CLASSIFIER_FAILED",
	ErrCodeClassifierMalformed:   "CLASSIFIER_FAILED",
	ErrCodeClassifierRateLimited: "CLASSIFIER_FAILED",
	ErrCodeProspectNotFound:      "PROSPECT_NOT_FOUND",
	ErrCodeNoMatch:               "NO_MATCH",
	ErrCodeBudgetExceeded:        "BUDGET_EXCEEDED",
	ErrCodeRoutingFailed:         "ROUTING_FAILED",
	ErrCodeInvalidInput:          "INVALID_INPUT",
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}
