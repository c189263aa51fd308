// Package budget bounds the classifier calls a single handler invocation may make.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sales-assistant/internal/common/errors"
)

// Tracker counts iterations against a cap and a wall-clock deadline.
type Tracker struct {
	mu            sync.Mutex
	maxIterations int
	deadline      time.Time
	spent         int
}

func NewTracker(maxIterations int, timeout time.Duration) *Tracker {
	return &Tracker{
		maxIterations: maxIterations,
		deadline:      time.Now().Add(timeout),
	}
}

// Spend consumes one iteration. It returns a BUDGET_EXCEEDED error once the cap or deadline is hit.
func (t *Tracker) Spend() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Now().After(t.deadline) {
		return errors.NewBudgetExceededError(fmt.Sprintf("wall clock exhausted after %d iterations", t.spent))
	}
	if t.spent >= t.maxIterations {
		return errors.NewBudgetExceededError(fmt.Sprintf("iteration cap %d reached", t.maxIterations))
	}
	t.spent++
	return nil
}

func (t *Tracker) Spent() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spent
}

func (t *Tracker) Deadline() time.Time {
	return t.deadline
}

type trackerKey struct{}

// WithTracker returns a context carrying t whose deadline is no later than the tracker's.
func WithTracker(ctx context.Context, t *Tracker) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, trackerKey{}, t)
	return context.WithDeadline(ctx, t.deadline)
}

// FromContext returns the tracker in ctx, or nil. A nil tracker never refuses.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// Spend consumes one iteration from the tracker carried by ctx, if any.
func Spend(ctx context.Context) error {
	return FromContext(ctx).Spend()
}

// IsExceeded reports whether err signals an exhausted budget, including a deadline hit.
func IsExceeded(ctx context.Context, err error) bool {
	if errors.HasCode(err, errors.ErrCodeBudgetExceeded) {
		return true
	}
	return FromContext(ctx) != nil && ctx.Err() == context.DeadlineExceeded
}
