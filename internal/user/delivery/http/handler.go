package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	"github.com/denly1/motoshop/internal/server/middleware"
	"github.com/denly1/motoshop/internal/user/domain"
	"github.com/denly1/motoshop/internal/user/usecase/command"
	"github.com/denly1/motoshop/internal/user/usecase/query"
	"github.com/denly1/motoshop/pkg/logger"
)

// UserHandler handles HTTP requests for users
type UserHandler struct {
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler
	updateHandler   *command.UpdateUserHandler
	toggleHandler   *command.ToggleActiveHandler

	getHandler  *query.GetUserHandler
	listHandler *query.ListUsersHandler
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, repo domain.UserRepository, recorder *audit.Recorder) *UserHandler {
	return &UserHandler{
		registerHandler: command.NewRegisterUserHandler(db, repo, recorder),
		loginHandler:    command.NewLoginUserHandler(repo),
		updateHandler:   command.NewUpdateUserHandler(db, repo, recorder),
		toggleHandler:   command.NewToggleActiveHandler(db, repo, recorder),
		getHandler:      query.NewGetUserHandler(repo),
		listHandler:     query.NewListUsersHandler(repo),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.registerHandler.Handle(r.Context(), command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{Success: true, Data: user})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	resp, err := h.loginHandler.Handle(command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// GetUser handles GET /api/users/{id}. Users can read themselves; admins
// can read anyone.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	if !h.canAccess(r, id) {
		respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "Access denied"})
		return
	}

	user, err := h.getHandler.Handle(query.GetUserQuery{UserID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.listHandler.Handle(query.ListUsersQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list users")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list users"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

// UpdateUser handles PATCH /api/users/{id}. Users can update themselves;
// admins can update anyone.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	if !h.canAccess(r, id) {
		respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "Access denied"})
		return
	}

	var req struct {
		Email    *string `json:"email"`
		FullName *string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.updateHandler.Handle(r.Context(), command.UpdateUserCommand{
		UserID:      id,
		Email:       req.Email,
		FullName:    req.FullName,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// ToggleActive handles PATCH /api/users/{id}/active
func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.toggleHandler.Handle(r.Context(), command.ToggleActiveCommand{
		UserID:      id,
		IsActive:    req.IsActive,
		ActorUserID: middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// RegisterRoutes registers user routes; register and login are public.
func (h *UserHandler) RegisterRoutes(router *mux.Router, authed, admin func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/users/register", h.Register).Methods("POST")
	router.HandleFunc("/api/users/login", h.Login).Methods("POST")
	router.HandleFunc("/api/users", admin(h.ListUsers)).Methods("GET")
	router.HandleFunc("/api/users/{id}", authed(h.GetUser)).Methods("GET")
	router.HandleFunc("/api/users/{id}", authed(h.UpdateUser)).Methods("PATCH")
	router.HandleFunc("/api/users/{id}/active", admin(h.ToggleActive)).Methods("PATCH")
}

func (h *UserHandler) canAccess(r *http.Request, targetID uint) bool {
	if role, _ := r.Context().Value(middleware.RoleKey).(string); role == domain.RoleAdmin {
		return true
	}
	actor := middleware.ActorFromContext(r.Context())
	return actor != nil && *actor == targetID
}

func (h *UserHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "User not found"})
		return
	}
	logger.Error(r.Context()).Err(err).Msg("User request failed")
	respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

func idFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid user ID"})
		return 0, false
	}
	return uint(id), true
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
