package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservability_NoJaeger(t *testing.T) {
	o := New("sales-assistant-test", "")
	defer o.Shutdown()

	ctx, span := o.StartSpan(context.Background(), "turn")
	assert.NotNil(t, ctx)
	span.End()

	assert.NotPanics(t, func() {
		o.RecordTurn(ctx, "prospecting", "SalesRep")
		o.RecordTurnDuration(ctx, 15*time.Millisecond, "prospecting")
	})
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		_, span := o.StartSpan(context.Background(), "turn")
		span.End()
		o.RecordTurn(context.Background(), "end", "Unknown")
		o.Shutdown()
	})
}
