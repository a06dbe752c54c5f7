package command

import (
	"context"

	"github.com/denly1/motoshop/internal/inventory/domain"
)

// spanAwareLedger is implemented by ledger decorators that can attach
// their operations to the caller's trace.
type spanAwareLedger interface {
	GetAvailableWithContext(ctx context.Context, productID uint) (int, error)
	AdjustWithContext(ctx context.Context, productID uint, deltaQuantity, deltaReserved int) error
}

// adjustStock applies deltas through the span-aware variant when the
// wired ledger provides one.
func adjustStock(ctx context.Context, ledger domain.StockLedger, productID uint, deltaQuantity, deltaReserved int) error {
	if sl, ok := ledger.(spanAwareLedger); ok {
		return sl.AdjustWithContext(ctx, productID, deltaQuantity, deltaReserved)
	}
	return ledger.Adjust(productID, deltaQuantity, deltaReserved)
}
