package budget

import (
	"context"
	"testing"
	"time"

	"sales-assistant/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_IterationCap(t *testing.T) {
	tr := NewTracker(3, time.Minute)
	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Spend())
	}
	err := tr.Spend()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBudgetExceeded))
	assert.Equal(t, 3, tr.Spent())
}

func TestTracker_Deadline(t *testing.T) {
	tr := NewTracker(10, -time.Millisecond)
	err := tr.Spend()
	assert.True(t, errors.HasCode(err, errors.ErrCodeBudgetExceeded))
}

func TestNilTrackerNeverRefuses(t *testing.T) {
	assert.NoError(t, Spend(context.Background()))
	assert.Zero(t, FromContext(context.Background()).Spent())
}

func TestWithTracker(t *testing.T) {
	tr := NewTracker(1, 50*time.Millisecond)
	ctx, cancel := WithTracker(context.Background(), tr)
	defer cancel()

	assert.Same(t, tr, FromContext(ctx))
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, tr.Deadline(), deadline)

	require.NoError(t, Spend(ctx))
	err := Spend(ctx)
	assert.True(t, IsExceeded(ctx, err))

	<-ctx.Done()
	assert.True(t, IsExceeded(ctx, context.DeadlineExceeded))
}
