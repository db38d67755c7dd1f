package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/feed"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/store"
)

type runIngestionPayload struct {
	Mappings []feed.MappingOverride `json:"mappings"`
}

type ingestionResponse struct {
	ID           uuid.UUID  `json:"id"`
	SupplierID   uuid.UUID  `json:"supplier_id"`
	Status       string     `json:"status"`
	ItemsTotal   int32      `json:"items_total"`
	ItemsSuccess int32      `json:"items_success"`
	ItemsErrors  int32      `json:"items_errors"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	UIDDegraded  bool       `json:"uid_degraded"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMS   *int64     `json:"duration_ms,omitempty"`
}

func toIngestionResponse(ing store.Ingestion) ingestionResponse {
	return ingestionResponse{
		ID:           ing.ID,
		SupplierID:   ing.SupplierID,
		Status:       ing.Status,
		ItemsTotal:   ing.ItemsTotal,
		ItemsSuccess: ing.ItemsSuccess,
		ItemsErrors:  ing.ItemsErrors,
		ErrorMessage: ing.ErrorMessage,
		UIDDegraded:  ing.UIDDegraded,
		StartedAt:    ing.StartedAt,
		CompletedAt:  ing.CompletedAt,
		DurationMS:   ing.DurationMS,
	}
}

// PostSupplierIngestions starts one synchronous ingestion run. Pipeline
// failures come back in the result envelope with success=false; only
// infrastructure errors surface as 5xx.
func (s *Server) PostSupplierIngestions(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	var req runIngestionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	sp, err := s.Suppliers.SupplierByID(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	running, err := s.Store.HasRunningIngestion(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}
	if running {
		httpx.WriteError(w, r, http.StatusConflict, "run_in_progress",
			"An ingestion is already running for this supplier", nil)
		return
	}

	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "ingestion.start",
		EntityType:  "supplier",
		EntityID:    &supplierID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
	})

	result, err := s.Runner.Run(r.Context(), sp, req.Mappings)
	if err != nil {
		s.Logger.Error("start ingestion run", "supplier_id", supplierID, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to start ingestion run", nil)
		return
	}
	s.Suppliers.Invalidate(supplierID)

	ingestionID := result.Results.IngestionID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "ingestion.finish",
		EntityType:  "ingestion",
		EntityID:    &ingestionID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Metadata: map[string]any{
			"status":         result.Results.Status,
			"total_products": result.Results.TotalProducts,
		},
	})

	httpx.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) GetSupplierIngestions(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 || parsed > 500 {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_query", "limit must be between 1 and 500", nil)
			return
		}
		limit = int32(parsed)
	}

	ingestions, err := s.Store.ListIngestions(r.Context(), actor.WorkspaceID, supplierID, limit)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	out := make([]ingestionResponse, 0, len(ingestions))
	for _, ing := range ingestions {
		out = append(out, toIngestionResponse(ing))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ingestions": out})
}

func (s *Server) GetIngestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	ingestionID, ok := parseID(w, r, chi.URLParam(r, "ingestionId"))
	if !ok {
		return
	}

	ing, err := s.Store.IngestionByID(r.Context(), actor.WorkspaceID, ingestionID)
	if err != nil {
		s.writeStoreError(w, r, err, "Ingestion not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toIngestionResponse(ing))
}
