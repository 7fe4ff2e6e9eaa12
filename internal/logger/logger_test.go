package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"

	"workflow/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestContextFieldsIncludeServiceName(t *testing.T) {
	log, err := New("info", "json")
	require.NoError(t, err)

	sugared, ok := log.(*SugaredLogger)
	require.True(t, ok)
	sugared.SetServiceName("workflow-notifier")

	ctx := logging.WithEventID(context.Background(), "evt-9")
	fields := sugared.getContextFields(ctx)
	assert.Equal(t, []interface{}{"event_id", "evt-9", "service_name", "workflow-notifier"}, fields)

	ctx = logging.WithServiceName(ctx, "other")
	fields = sugared.getContextFields(ctx)
	assert.Equal(t, []interface{}{"event_id", "evt-9", "service_name", "other"}, fields)
}

func TestNamedKeepsServiceName(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	log.(*SugaredLogger).SetServiceName("svc")

	child := log.Named("dispatcher")
	assert.Equal(t, "svc", child.(*SugaredLogger).serviceName)
}

func TestContextFieldsFallBackToSpanTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	sugared := NopLogger().(*SugaredLogger)
	assert.Equal(t, []interface{}{"trace_id", "4bf92f3577b34da6a3ce929d0e0e4736"}, sugared.getContextFields(ctx))

	ctx = logging.WithTraceID(ctx, "explicit")
	assert.Equal(t, []interface{}{"trace_id", "explicit"}, sugared.getContextFields(ctx))
}
