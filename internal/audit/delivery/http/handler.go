package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/audit/usecase/query"
	"github.com/denly1/motoshop/pkg/logger"
)

// AuditHandler exposes read-only access to the audit log.
type AuditHandler struct {
	listHandler *query.ListRecordsHandler
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(repo domain.AuditRepository) *AuditHandler {
	return &AuditHandler{
		listHandler: query.NewListRecordsHandler(repo),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListRecords handles GET /api/audit
func (h *AuditHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entity := r.URL.Query().Get("entity")
	recordID, _ := strconv.ParseUint(r.URL.Query().Get("record_id"), 10, 32)

	records, err := h.listHandler.Handle(query.ListRecordsQuery{
		Entity:   entity,
		RecordID: uint(recordID),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list audit records")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list audit records",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// RegisterRoutes registers audit routes on the router. The audit log is
// admin-only; the caller wraps these routes in the admin middleware.
func (h *AuditHandler) RegisterRoutes(router *mux.Router, admin func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/audit", admin(h.ListRecords)).Methods("GET")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
