package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/internal/product/usecase/command"
	"github.com/denly1/motoshop/internal/product/usecase/query"
	"github.com/denly1/motoshop/internal/server/middleware"
	"github.com/denly1/motoshop/pkg/logger"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	deleteHandler *command.DeleteProductHandler

	getHandler  *query.GetProductHandler
	listHandler *query.ListProductsHandler
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, repo domain.ProductRepository, ledger invdomain.StockLedger, recorder *audit.Recorder) *ProductHandler {
	inventoryCreate := invcommand.NewCreateInventoryHandler(db, ledger, recorder)
	return &ProductHandler{
		createHandler: command.NewCreateProductHandler(db, repo, inventoryCreate, recorder),
		updateHandler: command.NewUpdateProductHandler(db, repo, recorder),
		deleteHandler: command.NewDeleteProductHandler(db, repo, ledger, recorder),
		getHandler:    query.NewGetProductHandler(repo),
		listHandler:   query.NewListProductsHandler(repo),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Price        decimal.Decimal `json:"price"`
		SKU          string          `json:"sku"`
		CategoryID   *uint           `json:"category_id"`
		InitialStock int             `json:"initial_stock"`
		Warehouse    string          `json:"warehouse"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.createHandler.Handle(r.Context(), command.CreateProductCommand{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		SKU:          req.SKU,
		CategoryID:   req.CategoryID,
		InitialStock: req.InitialStock,
		Warehouse:    req.Warehouse,
		ActorUserID:  middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct handles PATCH /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		CategoryID  *uint            `json:"category_id"`
		IsActive    *bool            `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), command.UpdateProductCommand{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{
		ProductID:   id,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted successfully"})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	product, err := h.getHandler.Handle(query.GetProductQuery{ProductID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	categoryID, _ := strconv.ParseUint(r.URL.Query().Get("category_id"), 10, 32)

	products, err := h.listHandler.Handle(query.ListProductsQuery{
		CategoryID: uint(categoryID),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list products"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

// RegisterRoutes registers product routes; catalog mutations are
// admin-only.
func (h *ProductHandler) RegisterRoutes(router *mux.Router, admin func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/api/products", admin(h.CreateProduct)).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.GetProduct).Methods("GET")
	router.HandleFunc("/api/products/{id}", admin(h.UpdateProduct)).Methods("PATCH")
	router.HandleFunc("/api/products/{id}", admin(h.DeleteProduct)).Methods("DELETE")
}

func (h *ProductHandler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrProductNotFound) {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
		return
	}
	respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

func idFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
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
