package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jz3el/luxemart-ecommerce/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

func setup(t *testing.T) {
	t.Helper()
	p, err := Setup(context.Background(), Config{ServiceName: "storefront-test", SampleRatio: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
}

func spanContextOf(t *testing.T, traceparent string) trace.SpanContext {
	t.Helper()
	var got trace.SpanContext
	h := otelhttp.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = trace.SpanContextFromContext(r.Context())
	}), "test")

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if traceparent != "" {
		req.Header.Set("traceparent", traceparent)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestSetup_ContinuesIncomingTrace(t *testing.T) {
	setup(t)

	sc := spanContextOf(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	require.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.NotEqual(t, "00f067aa0ba902b7", sc.SpanID().String(), "server span is a child")
}

func TestSetup_StartsTraceWithoutHeader(t *testing.T) {
	setup(t)

	sc := spanContextOf(t, "")

	assert.True(t, sc.IsValid())
	assert.True(t, sc.IsSampled())
}

func TestSetup_LogLinesCarryTraceID(t *testing.T) {
	setup(t)
	var buf bytes.Buffer
	log := logger.New(&buf, "info")

	h := otelhttp.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.InfoContext(r.Context(), "handled")
	}), "test")
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.NotEmpty(t, rec["span_id"])
}
