package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeClassifierFailed, 3},
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeSearchQueryFailed, 3},
		{ErrCodeClassifierTimeout, 2},
		{ErrCodeClassifierRateLimited, 2},
		{ErrCodeClassifierMalformed, 0},
		{ErrCodeProspectNotFound, 0},
		{ErrCodeBudgetExceeded, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeClassifierTimeout, "AI"},
		{ErrCodeRoutingFailed, "AI"},
		{ErrCodeDatasetEmpty, "DATASET"},
		{ErrCodeProspectNotFound, "DATASET"},
		{ErrCodeNoMatch, "DATASET"},
		{ErrCodeQueryExecutionFailed, "DATABASE"},
		{ErrCodeSearchQueryFailed, "SEARCH"},
		{ErrCodeBudgetExceeded, "BUDGET"},
		{ErrCodeInvalidInput, "VALIDATION"},
		{ErrCodeInternalError, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	notFound := NewProspectNotFoundError("Acme")
	wrapped := fmt.Errorf("lookup: %w", notFound)
	assert.Same(t, notFound, AsStandardError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeProspectNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeNoMatch))

	plain := AsStandardError(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestWithMetadata(t *testing.T) {
	err := NewNoMatchError("no rows").WithMetadata("stage", "broader")
	assert.Equal(t, "broader", err.Metadata["stage"])
	assert.Contains(t, err.Error(), "NO_MATCH")
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("mapped retryable code", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewClassifierTimeoutError("route"))
		assert.Equal(t, "CLASSIFIER_FAILED", bpmn.Code)
		assert.True(t, bpmn.Retryable)
		assert.Equal(t, 2, bpmn.Retries)
		assert.Equal(t, "CLASSIFIER_TIMEOUT", bpmn.ErrorVariables["originalErrorCode"])
		assert.Equal(t, "AI", bpmn.ErrorVariables["errorCategory"])
	})

	t.Run("unmapped code passes through", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewQueryExecutionFailedError("SELECT 1", context.DeadlineExceeded))
		assert.Equal(t, "QUERY_EXECUTION_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
	})

	t.Run("non retryable has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewProspectNotFoundError("Acme"))
		assert.Equal(t, "PROSPECT_NOT_FOUND", bpmn.Code)
		assert.Zero(t, bpmn.Retries)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "PROSPECT_NOT_FOUND", vars["errorCode"])
		assert.Equal(t, false, vars["retryable"])
	})
}
