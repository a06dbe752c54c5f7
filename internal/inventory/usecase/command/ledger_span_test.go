package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/denly1/motoshop/internal/inventory/repository"
)

func TestReserveEmitsLedgerSpans(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 1, 10)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	handler := NewReserveStockHandler(env.db, repository.NewGormStockLedgerWithTracing(env.db), env.recorder)
	require.NoError(t, handler.Handle(context.Background(), ReserveStockCommand{
		OrderID: 1,
		Items:   []ReservationItem{{ProductID: 1, Quantity: 4}},
	}))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "ledger.Adjust",
		"the reservation write must reach the tracing decorator through the transaction-bound ledger")
}
