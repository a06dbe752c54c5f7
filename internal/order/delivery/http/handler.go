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
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/internal/order/repository"
	"github.com/denly1/motoshop/internal/order/usecase/command"
	"github.com/denly1/motoshop/internal/order/usecase/query"
	productdomain "github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/internal/server/middleware"
	"github.com/denly1/motoshop/pkg/database"
	"github.com/denly1/motoshop/pkg/logger"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	createHandler     *command.CreateOrderHandler
	transitionHandler *command.TransitionOrderHandler

	getHandler  *query.GetOrderHandler
	listHandler *query.ListOrdersHandler

	transitionCounter *prometheus.CounterVec
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	db *gorm.DB,
	orders domain.OrderRepository,
	products productdomain.ProductRepository,
	ledger invdomain.StockLedger,
	recorder *audit.Recorder,
	publisher command.StatusPublisher,
) *OrderHandler {
	reserve := invcommand.NewReserveStockHandler(db, ledger, recorder)
	release := invcommand.NewReleaseStockHandler(db, ledger, recorder)
	commit := invcommand.NewCommitStockHandler(db, ledger, recorder)

	transitionCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Order status transitions by target and outcome",
		},
		[]string{"target", "outcome"},
	)
	prometheus.MustRegister(transitionCounter)

	return &OrderHandler{
		createHandler:     command.NewCreateOrderHandler(db, orders, products, reserve, recorder),
		transitionHandler: command.NewTransitionOrderHandler(db, orders, release, commit, recorder, publisher),
		getHandler:        query.NewGetOrderHandler(orders),
		listHandler:       query.NewListOrdersHandler(orders),
		transitionCounter: transitionCounter,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cmd := command.CreateOrderCommand{
		UserID:      *actor,
		ActorUserID: actor,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    order,
	})
}

// TransitionOrder handles PATCH /api/orders/{id}/status
func (h *OrderHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	err := h.transitionHandler.Handle(r.Context(), command.TransitionOrderCommand{
		OrderID:     id,
		Target:      domain.Status(req.Status),
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.transitionCounter.WithLabelValues(req.Status, "rejected").Inc()
		h.respondError(w, r, err)
		return
	}

	h.transitionCounter.WithLabelValues(req.Status, "ok").Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Order status updated"})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	order, err := h.getHandler.Handle(query.GetOrderQuery{OrderID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

// ListOrders handles GET /api/orders. Admins see every order; everyone
// else sees their own.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var userID uint
	if role, _ := r.Context().Value(middleware.RoleKey).(string); role != "admin" {
		if actor := middleware.ActorFromContext(r.Context()); actor != nil {
			userID = *actor
		}
	}

	orders, err := h.listHandler.Handle(query.ListOrdersQuery{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list orders"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

// RegisterRoutes registers order routes. Checkout is guarded by the
// idempotency middleware so a retried submission cannot double-order.
func (h *OrderHandler) RegisterRoutes(router *mux.Router, authed, admin, idempotent func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/orders", authed(idempotent(h.CreateOrder))).Methods("POST")
	router.HandleFunc("/api/orders", authed(h.ListOrders)).Methods("GET")
	router.HandleFunc("/api/orders/{id}", authed(h.GetOrder)).Methods("GET")
	router.HandleFunc("/api/orders/{id}/status", admin(h.TransitionOrder)).Methods("PATCH")
}

func (h *OrderHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidTransition *domain.InvalidTransitionError
		insufficient      *invdomain.InsufficientStockError
	)
	switch {
	case errors.As(err, &invalidTransition):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   invalidTransition.Error(),
			Data: map[string]interface{}{
				"from": invalidTransition.From,
				"to":   invalidTransition.To,
			},
		})
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
	case errors.Is(err, repository.ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
	case errors.Is(err, database.ErrTransient):
		respondJSON(w, http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
	default:
		logger.Error(r.Context()).Err(err).Msg("Order request failed")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	}
}

func idFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
