package query

import (
	"github.com/denly1/motoshop/internal/order/domain"
)

// ListOrdersQuery represents the query to list orders, optionally scoped
// to one user.
type ListOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListOrdersHandler handles list orders query
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(q ListOrdersQuery) ([]domain.Order, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.UserID != 0 {
		return h.repo.FindByUserID(q.UserID, q.Limit, q.Offset)
	}
	return h.repo.FindAll(q.Limit, q.Offset)
}
