package query

import (
	"fmt"

	"github.com/denly1/motoshop/internal/inventory/domain"
)

// GetInventoryQuery represents the query to fetch one inventory row
type GetInventoryQuery struct {
	ProductID uint
}

// GetInventoryHandler handles get inventory query
type GetInventoryHandler struct {
	ledger domain.StockLedger
}

// NewGetInventoryHandler creates a new get inventory handler
func NewGetInventoryHandler(ledger domain.StockLedger) *GetInventoryHandler {
	return &GetInventoryHandler{ledger: ledger}
}

// Handle executes the get inventory query
func (h *GetInventoryHandler) Handle(q GetInventoryQuery) (*domain.InventoryRecord, error) {
	if q.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	return h.ledger.FindByProductID(q.ProductID)
}
