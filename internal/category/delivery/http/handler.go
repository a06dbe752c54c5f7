package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	"github.com/denly1/motoshop/internal/category/domain"
	"github.com/denly1/motoshop/internal/category/usecase/command"
	"github.com/denly1/motoshop/internal/server/middleware"
	"github.com/denly1/motoshop/pkg/logger"
)

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	manageHandler *command.ManageCategoryHandler
	repo          domain.CategoryRepository
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(db *gorm.DB, repo domain.CategoryRepository, recorder *audit.Recorder) *CategoryHandler {
	return &CategoryHandler{
		manageHandler: command.NewManageCategoryHandler(db, repo, recorder),
		repo:          repo,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	category, err := h.manageHandler.Create(r.Context(), command.CreateCategoryCommand{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{Success: true, Data: category})
}

// UpdateCategory handles PATCH /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ParentID    *uint   `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	category, err := h.manageHandler.Update(r.Context(), command.UpdateCategoryCommand{
		CategoryID:  id,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: category})
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	err := h.manageHandler.Delete(r.Context(), command.DeleteCategoryCommand{
		CategoryID:  id,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Category deleted successfully"})
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 50
	}

	categories, err := h.repo.FindAll(limit, offset)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list categories")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list categories"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: categories})
}

// GetCategory handles GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	category, err := h.repo.FindByID(id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: category})
}

// RegisterRoutes registers category routes; mutations are admin-only.
func (h *CategoryHandler) RegisterRoutes(router *mux.Router, admin func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/categories", h.ListCategories).Methods("GET")
	router.HandleFunc("/api/categories", admin(h.CreateCategory)).Methods("POST")
	router.HandleFunc("/api/categories/{id}", h.GetCategory).Methods("GET")
	router.HandleFunc("/api/categories/{id}", admin(h.UpdateCategory)).Methods("PATCH")
	router.HandleFunc("/api/categories/{id}", admin(h.DeleteCategory)).Methods("DELETE")
}

func (h *CategoryHandler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrCategoryNotFound) {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

func idFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid category ID"})
		return 0, false
	}
	return uint(id), true
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
