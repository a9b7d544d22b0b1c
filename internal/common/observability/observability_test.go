package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"restaurant-agent/internal/common/logger"
)

func TestNew_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("restaurant-agent-test", logger.NewTestLogger(t), WithSpanProcessor(recorder))
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "agent.classifying", attribute.String("intent.tag", "revenue"))
	assert.True(t, span.SpanContext().IsValid())
	obs.RecordRequest(ctx, "answered", 120*time.Millisecond)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "agent.classifying", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("intent.tag", "revenue"))
}

func TestNewNoop(t *testing.T) {
	obs := NewNoop()

	_, span := obs.StartSpan(context.Background(), "agent.process_message")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NotPanics(t, func() {
		obs.RecordRequest(context.Background(), "timeout", time.Second)
		obs.Shutdown()
	})
}

func TestNilObservability(t *testing.T) {
	var obs *Observability
	assert.NotNil(t, obs.Tracer())
	assert.NotPanics(t, func() { obs.RecordRequest(context.Background(), "busy", 0) })
}
