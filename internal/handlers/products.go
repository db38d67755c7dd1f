package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/store"
)

type productResponse struct {
	UID         string         `json:"uid"`
	SupplierID  uuid.UUID      `json:"supplier_id"`
	IngestionID uuid.UUID      `json:"ingestion_id"`
	Fields      map[string]any `json:"fields"`
	SourceFile  string         `json:"source_file"`
	ImportedAt  time.Time      `json:"imported_at"`
}

func toProductResponse(p store.ProductRow) productResponse {
	return productResponse{
		UID:         p.UID,
		SupplierID:  p.SupplierID,
		IngestionID: p.IngestionID,
		Fields:      p.Fields,
		SourceFile:  p.SourceFile,
		ImportedAt:  p.ImportedAt,
	}
}

// GetProducts lists mapped rows for one supplier, paginated by limit/offset.
func (s *Server) GetProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	supplierID, err := uuid.Parse(r.URL.Query().Get("supplier_id"))
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_query", "supplier_id query parameter is required", nil)
		return
	}

	limit, ok := queryInt32(w, r, "limit", 100, 1, 1000)
	if !ok {
		return
	}
	offset, ok := queryInt32(w, r, "offset", 0, 0, 1<<30)
	if !ok {
		return
	}

	products, err := s.Store.ListProducts(r.Context(), actor.WorkspaceID, supplierID, limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": out})
}

func queryInt32(w http.ResponseWriter, r *http.Request, name string, fallback, min, max int32) (int32, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || int32(parsed) < min || int32(parsed) > max {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_query", name+" is out of range", nil)
		return 0, false
	}
	return int32(parsed), true
}
