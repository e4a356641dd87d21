package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := InitWriter("debug", "json", &buf)
	require.NoError(t, err)

	l.Info("deployment queued", zap.String("deployment_uuid", "abc123"))
	Sync()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "deployment queued", line["message"])
	require.Equal(t, "info", line["level"])
	require.Equal(t, "abc123", line["deployment_uuid"])
	require.Same(t, l, L())
}

func TestInitRejectsBadInput(t *testing.T) {
	_, err := Init("loud", "json")
	require.Error(t, err)
	_, err = Init("info", "xml")
	require.Error(t, err)
}

func TestCtxAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	_, err := InitWriter("info", "json", &buf)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	Ctx(trace.ContextWithSpanContext(context.Background(), sc)).Info("dispatch")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, sc.TraceID().String(), line["trace_id"])
	require.Equal(t, sc.SpanID().String(), line["span_id"])

	buf.Reset()
	Ctx(context.Background()).Info("plain")
	line = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.NotContains(t, line, "trace_id")
}
