package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracingMiddlewareOpensServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var sawTrace trace.TraceID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := trace.SpanFromContext(r.Context()).SpanContext()
		require.True(t, sc.IsValid(), "handlers below the middleware must run inside the server span")
		sawTrace = sc.TraceID()
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	TracingMiddleware("test-server", LoggingMiddleware(inner)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/inventory/1/available", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, sawTrace, spans[0].SpanContext().TraceID())
}
