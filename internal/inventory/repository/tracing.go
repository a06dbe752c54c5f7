package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormStockLedgerWithTracing wraps GormStockLedger with tracing
type GormStockLedgerWithTracing struct {
	*GormStockLedger
}

// NewGormStockLedgerWithTracing creates a new ledger with tracing
func NewGormStockLedgerWithTracing(db *gorm.DB) *GormStockLedgerWithTracing {
	return &GormStockLedgerWithTracing{
		GormStockLedger: NewGormStockLedger(db),
	}
}

// WithTx rebinds the ledger to a transaction without losing the
// decorator, so in-transaction reads and writes still produce spans.
func (r *GormStockLedgerWithTracing) WithTx(tx *gorm.DB) domain.StockLedger {
	return &GormStockLedgerWithTracing{
		GormStockLedger: &GormStockLedger{db: tx, clock: r.clock},
	}
}

// GetAvailableWithContext reads available stock under a span.
func (r *GormStockLedgerWithTracing) GetAvailableWithContext(ctx context.Context, productID uint) (int, error) {
	_, span := tracer.Start(ctx, "ledger.GetAvailable",
		trace.WithAttributes(
			attribute.Int("inventory.product_id", int(productID)),
		),
	)
	defer span.End()

	available, err := r.GormStockLedger.GetAvailable(productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("inventory.available", available))
	return available, nil
}

// AdjustWithContext applies deltas under a span.
func (r *GormStockLedgerWithTracing) AdjustWithContext(ctx context.Context, productID uint, deltaQuantity, deltaReserved int) error {
	_, span := tracer.Start(ctx, "ledger.Adjust",
		trace.WithAttributes(
			attribute.Int("inventory.product_id", int(productID)),
			attribute.Int("inventory.delta_quantity", deltaQuantity),
			attribute.Int("inventory.delta_reserved", deltaReserved),
		),
	)
	defer span.End()

	if err := r.GormStockLedger.Adjust(productID, deltaQuantity, deltaReserved); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
