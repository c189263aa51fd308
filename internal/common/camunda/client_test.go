package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"sales-assistant/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{stderrors.New("rpc error: code = Unavailable desc = connection refused"), true},
		{stderrors.New("context deadline exceeded"), true},
		{stderrors.New("NOT_FOUND: job not found"), false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableZeebeError(tt.err))
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}}}

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return stderrors.New("unavailable")
			}
			return nil
		}, "publish")
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted transient errors map to engine unavailable", func(t *testing.T) {
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			return stderrors.New("connection refused")
		}, "publish")
		assert.True(t, errors.HasCode(err, errors.ErrCodeEngineUnavailable))
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		calls := 0
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("invalid argument")
		}, "publish")
		assert.Equal(t, 1, calls)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInternalError))
	})
}
