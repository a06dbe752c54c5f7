package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/inventory/usecase/query"
	"github.com/denly1/motoshop/pkg/database"
	"github.com/denly1/motoshop/pkg/logger"
)

// InventoryHandler handles HTTP requests for inventory
type InventoryHandler struct {
	// Command handlers
	createHandler  *command.CreateInventoryHandler
	adjustHandler  *command.AdjustStockHandler
	reserveHandler *command.ReserveStockHandler
	releaseHandler *command.ReleaseStockHandler
	commitHandler  *command.CommitStockHandler

	// Query handlers
	getHandler       *query.GetInventoryHandler
	availableHandler *query.GetAvailableHandler
	listHandler      *query.ListInventoryHandler

	reservationOutcomes *prometheus.CounterVec
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *InventoryHandler {
	reservationOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservation_outcomes_total",
			Help: "Reservation attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	prometheus.MustRegister(reservationOutcomes)

	return &InventoryHandler{
		createHandler:       command.NewCreateInventoryHandler(db, ledger, recorder),
		adjustHandler:       command.NewAdjustStockHandler(db, ledger, recorder),
		reserveHandler:      command.NewReserveStockHandler(db, ledger, recorder),
		releaseHandler:      command.NewReleaseStockHandler(db, ledger, recorder),
		commitHandler:       command.NewCommitStockHandler(db, ledger, recorder),
		getHandler:          query.NewGetInventoryHandler(ledger),
		availableHandler:    query.NewGetAvailableHandler(ledger),
		listHandler:         query.NewListInventoryHandler(ledger),
		reservationOutcomes: reservationOutcomes,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Reserve handles POST /api/inventory/reserve
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID uint `json:"order_id"`
		Items   []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cmd := command.ReserveStockCommand{
		OrderID:     req.OrderID,
		ActorUserID: actorFromRequest(r),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.ReservationItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := h.reserveHandler.Handle(r.Context(), cmd); err != nil {
		h.reservationOutcomes.WithLabelValues("reserve", outcomeLabel(err)).Inc()
		h.respondReservationError(w, r, err)
		return
	}

	h.reservationOutcomes.WithLabelValues("reserve", "ok").Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Stock reserved"})
}

// Release handles POST /api/inventory/release/{order_id}
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	err := h.releaseHandler.Handle(r.Context(), command.ReleaseStockCommand{
		OrderID:     orderID,
		ActorUserID: actorFromRequest(r),
	})
	if err != nil {
		h.reservationOutcomes.WithLabelValues("release", outcomeLabel(err)).Inc()
		h.respondReservationError(w, r, err)
		return
	}

	h.reservationOutcomes.WithLabelValues("release", "ok").Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Reservation released"})
}

// Commit handles POST /api/inventory/commit/{order_id}
func (h *InventoryHandler) Commit(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	err := h.commitHandler.Handle(r.Context(), command.CommitStockCommand{
		OrderID:     orderID,
		ActorUserID: actorFromRequest(r),
	})
	if err != nil {
		h.reservationOutcomes.WithLabelValues("commit", outcomeLabel(err)).Inc()
		h.respondReservationError(w, r, err)
		return
	}

	h.reservationOutcomes.WithLabelValues("commit", "ok").Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Reservation committed"})
}

// AdjustStock handles PATCH /api/inventory/{product_id}/stock
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	err := h.adjustHandler.Handle(r.Context(), command.AdjustStockCommand{
		ProductID:   productID,
		Delta:       req.Delta,
		ActorUserID: actorFromRequest(r),
	})
	if err != nil {
		h.respondReservationError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Stock adjusted"})
}

// GetAvailable handles GET /api/inventory/{product_id}/available
func (h *InventoryHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDFromPath(w, r)
	if !ok {
		return
	}

	available, err := h.availableHandler.Handle(r.Context(), query.GetAvailableQuery{ProductID: productID})
	if err != nil {
		h.respondReservationError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    map[string]interface{}{"product_id": productID, "available": available},
	})
}

// GetInventory handles GET /api/inventory/{product_id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDFromPath(w, r)
	if !ok {
		return
	}

	record, err := h.getHandler.Handle(query.GetInventoryQuery{ProductID: productID})
	if err != nil {
		h.respondReservationError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: record})
}

// ListInventory handles GET /api/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.listHandler.Handle(query.ListInventoryQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list inventory")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list inventory"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: records})
}

// RegisterRoutes registers inventory routes. Mutating routes require an
// authenticated caller; stock adjustment is admin-only.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router, authed, admin func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/inventory", h.ListInventory).Methods("GET")
	router.HandleFunc("/api/inventory/reserve", authed(h.Reserve)).Methods("POST")
	router.HandleFunc("/api/inventory/release/{order_id}", authed(h.Release)).Methods("POST")
	router.HandleFunc("/api/inventory/commit/{order_id}", authed(h.Commit)).Methods("POST")
	router.HandleFunc("/api/inventory/{product_id}/available", h.GetAvailable).Methods("GET")
	router.HandleFunc("/api/inventory/{product_id}/stock", admin(h.AdjustStock)).Methods("PATCH")
	router.HandleFunc("/api/inventory/{product_id}", h.GetInventory).Methods("GET")
}

func (h *InventoryHandler) respondReservationError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   insufficient.Error(),
			Data: map[string]interface{}{
				"product_id": insufficient.ProductID,
				"available":  insufficient.Available,
				"requested":  insufficient.Requested,
			},
		})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, database.ErrTransient):
		respondJSON(w, http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domain.ErrInvariantViolation):
		logger.Error(r.Context()).Err(err).Msg("Inventory invariant violated")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	default:
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	}
}

func outcomeLabel(err error) string {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.Is(err, database.ErrTransient):
		return "conflict"
	default:
		return "error"
	}
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["order_id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

func productIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["product_id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return 0, false
	}
	return uint(id), true
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
