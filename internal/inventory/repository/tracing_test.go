package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestTracingLedgerSpansJoinCallerTrace(t *testing.T) {
	recorder := installSpanRecorder(t)
	ledger := NewGormStockLedgerWithTracing(newTestDB(t))
	seedRecord(t, ledger.GormStockLedger, 1, 10, 3)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "request")

	available, err := ledger.GetAvailableWithContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, available)
	require.NoError(t, ledger.AdjustWithContext(ctx, 1, 5, 0))
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	names := []string{spans[0].Name(), spans[1].Name(), spans[2].Name()}
	assert.Equal(t, []string{"ledger.GetAvailable", "ledger.Adjust", "request"}, names)
	for _, span := range spans {
		assert.Equal(t, parent.SpanContext().TraceID(), span.SpanContext().TraceID())
	}
}

func TestTracingLedgerRecordsErrors(t *testing.T) {
	recorder := installSpanRecorder(t)
	ledger := NewGormStockLedgerWithTracing(newTestDB(t))

	_, err := ledger.GetAvailableWithContext(context.Background(), 42)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestTracingLedgerSurvivesWithTx(t *testing.T) {
	db := newTestDB(t)
	ledger := NewGormStockLedgerWithTracing(db)

	bound := ledger.WithTx(db)
	_, ok := bound.(*GormStockLedgerWithTracing)
	assert.True(t, ok, "rebinding to a transaction must keep the decorator")
}
