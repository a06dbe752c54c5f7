package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the product has no inventory row.
	ErrNotFound = errors.New("inventory record not found")

	// ErrInvariantViolation means a write would break
	// 0 <= reserved_quantity <= quantity. Correct callers never trigger
	// it; treat an occurrence as a bug.
	ErrInvariantViolation = errors.New("inventory invariant violated")
)

// InsufficientStockError reports the first line item of a reservation that
// could not be satisfied. The whole reservation is abandoned when it is
// returned.
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}
