package query

import (
	"github.com/denly1/motoshop/internal/inventory/domain"
)

// ListInventoryQuery represents the query to list inventory rows
type ListInventoryQuery struct {
	Limit  int
	Offset int
}

// ListInventoryHandler handles list inventory query
type ListInventoryHandler struct {
	ledger domain.StockLedger
}

// NewListInventoryHandler creates a new list inventory handler
func NewListInventoryHandler(ledger domain.StockLedger) *ListInventoryHandler {
	return &ListInventoryHandler{ledger: ledger}
}

// Handle executes the list inventory query
func (h *ListInventoryHandler) Handle(q ListInventoryQuery) ([]domain.InventoryRecord, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return h.ledger.FindAll(q.Limit, q.Offset)
}
