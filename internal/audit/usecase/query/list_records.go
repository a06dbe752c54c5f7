package query

import (
	"fmt"

	"github.com/denly1/motoshop/internal/audit/domain"
)

// ListRecordsQuery represents the query to list audit records
type ListRecordsQuery struct {
	Entity   string
	RecordID uint
	Limit    int
	Offset   int
}

// ListRecordsHandler handles list records query
type ListRecordsHandler struct {
	repo domain.AuditRepository
}

// NewListRecordsHandler creates a new list records handler
func NewListRecordsHandler(repo domain.AuditRepository) *ListRecordsHandler {
	return &ListRecordsHandler{repo: repo}
}

// Handle executes the list records query
func (h *ListRecordsHandler) Handle(q ListRecordsQuery) ([]domain.Record, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	var (
		records []domain.Record
		err     error
	)
	if q.Entity != "" {
		records, err = h.repo.FindByEntity(q.Entity, q.RecordID, q.Limit, q.Offset)
	} else {
		records, err = h.repo.FindAll(q.Limit, q.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}
