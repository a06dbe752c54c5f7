package query

import (
	"context"
	"fmt"

	"github.com/denly1/motoshop/internal/inventory/domain"
)

// GetAvailableQuery represents the query for a product's available stock
type GetAvailableQuery struct {
	ProductID uint
}

// GetAvailableHandler handles get available query
type GetAvailableHandler struct {
	ledger domain.StockLedger
}

// spanAwareReader is implemented by ledger decorators that can attach
// the read to the caller's trace.
type spanAwareReader interface {
	GetAvailableWithContext(ctx context.Context, productID uint) (int, error)
}

// NewGetAvailableHandler creates a new get available handler
func NewGetAvailableHandler(ledger domain.StockLedger) *GetAvailableHandler {
	return &GetAvailableHandler{ledger: ledger}
}

// Handle executes the get available query. The result is advisory: any
// decision that depends on availability must re-read it inside the
// deciding transaction.
func (h *GetAvailableHandler) Handle(ctx context.Context, q GetAvailableQuery) (int, error) {
	if q.ProductID == 0 {
		return 0, fmt.Errorf("product_id is required")
	}
	if r, ok := h.ledger.(spanAwareReader); ok {
		return r.GetAvailableWithContext(ctx, q.ProductID)
	}
	return h.ledger.GetAvailable(q.ProductID)
}
