package command

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/pkg/database"
)

// ReservationItem is one line of a reservation request.
type ReservationItem struct {
	ProductID uint
	Quantity  int
}

// ReserveStockCommand represents the command to reserve stock for an
// order's line items.
type ReserveStockCommand struct {
	OrderID     uint
	ActorUserID *uint
	Items       []ReservationItem
}

// ReserveStockHandler reserves stock for all line items of an order, or
// for none of them. Rows are locked in ascending product-id order so that
// concurrent reservations over overlapping product sets cannot deadlock;
// availability is checked per line in input order against the locked rows.
type ReserveStockHandler struct {
	db       *gorm.DB
	ledger   domain.StockLedger
	recorder *audit.Recorder
}

// NewReserveStockHandler creates a new reserve stock handler
func NewReserveStockHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *ReserveStockHandler {
	return &ReserveStockHandler{db: db, ledger: ledger, recorder: recorder}
}

// Handle executes the reservation in its own transaction, retrying
// transparently on store-level serialization conflicts.
func (h *ReserveStockHandler) Handle(ctx context.Context, cmd ReserveStockCommand) error {
	if err := validateReservation(cmd); err != nil {
		return err
	}
	return database.WithRetry(ctx, func() error {
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return h.HandleInTx(ctx, tx, cmd)
		})
	})
}

// HandleInTx executes the reservation inside the caller's transaction.
// The checkout flow uses this so an insufficient-stock failure rolls the
// whole order back.
func (h *ReserveStockHandler) HandleInTx(ctx context.Context, tx *gorm.DB, cmd ReserveStockCommand) error {
	if err := validateReservation(cmd); err != nil {
		return err
	}

	ledger := h.ledger.WithTx(tx)

	productIDs := distinctProductIDs(cmd.Items)
	locked, err := ledger.LockByProductIDs(productIDs)
	if err != nil {
		return err
	}
	if len(locked) != len(productIDs) {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, missingProductID(productIDs, locked))
	}

	before := make(map[uint]domain.InventoryRecord, len(locked))
	available := make(map[uint]int, len(locked))
	for _, rec := range locked {
		before[rec.ProductID] = rec
		available[rec.ProductID] = rec.Available()
	}

	// Check every line in input order; the first shortfall aborts the
	// whole reservation. Duplicate product ids within one request drain
	// the same availability.
	for _, item := range cmd.Items {
		if available[item.ProductID] < item.Quantity {
			return &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Available: available[item.ProductID],
				Requested: item.Quantity,
			}
		}
		available[item.ProductID] -= item.Quantity
	}

	totals := quantityByProduct(cmd.Items)
	reservations := make([]domain.StockReservation, 0, len(cmd.Items))
	for _, id := range productIDs {
		if err := adjustStock(ctx, ledger, id, 0, totals[id]); err != nil {
			return err
		}
	}
	for _, item := range cmd.Items {
		reservations = append(reservations, domain.StockReservation{
			OrderID:   cmd.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Status:    domain.ReservationActive,
		})
	}
	if err := ledger.CreateReservations(reservations); err != nil {
		return err
	}

	for _, id := range productIDs {
		prev := before[id]
		next := prev
		next.ReservedQuantity += totals[id]
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
			auditdomain.EntityInventory, prev.ID, prev, next)
	}

	return nil
}

func validateReservation(cmd ReserveStockCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if len(cmd.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	for _, item := range cmd.Items {
		if item.ProductID == 0 {
			return fmt.Errorf("product_id is required")
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive")
		}
	}
	return nil
}

// distinctProductIDs returns the distinct product ids of the request in
// ascending order, which is also the global lock order.
func distinctProductIDs(items []ReservationItem) []uint {
	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func quantityByProduct(items []ReservationItem) map[uint]int {
	totals := make(map[uint]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}

func missingProductID(wanted []uint, found []domain.InventoryRecord) uint {
	present := make(map[uint]struct{}, len(found))
	for _, rec := range found {
		present[rec.ProductID] = struct{}{}
	}
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			return id
		}
	}
	return 0
}
