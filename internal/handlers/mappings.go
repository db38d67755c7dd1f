package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/store"
)

type mappingPayload struct {
	SourceKey string `json:"source_key"`
	FieldKey  string `json:"field_key"`
}

type replaceMappingsPayload struct {
	Mappings []mappingPayload `json:"mappings"`
}

func (s *Server) GetSupplierMappings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	if _, err := s.Suppliers.SupplierByID(r.Context(), actor.WorkspaceID, supplierID); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	mappings, err := s.Store.ListFieldMappings(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	out := make([]mappingPayload, 0, len(mappings))
	for _, fm := range mappings {
		out = append(out, mappingPayload{SourceKey: fm.SourceKey, FieldKey: fm.FieldKey})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"mappings": out})
}

// PutSupplierMappings replaces the supplier's whole mapping set.
func (s *Server) PutSupplierMappings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	var req replaceMappingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	if _, err := s.Suppliers.SupplierByID(r.Context(), actor.WorkspaceID, supplierID); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	seen := map[string]struct{}{}
	mappings := make([]store.FieldMapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		sourceKey := strings.TrimSpace(m.SourceKey)
		fieldKey := strings.TrimSpace(m.FieldKey)
		if sourceKey == "" || fieldKey == "" {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body",
				"Every mapping needs source_key and field_key", nil)
			return
		}
		lower := strings.ToLower(sourceKey)
		if _, dup := seen[lower]; dup {
			httpx.WriteError(w, r, http.StatusBadRequest, "duplicate_source_key",
				"At most one mapping per source field", map[string]any{"source_key": sourceKey})
			return
		}
		seen[lower] = struct{}{}
		mappings = append(mappings, store.FieldMapping{
			ID:          uuid.New(),
			WorkspaceID: actor.WorkspaceID,
			SupplierID:  supplierID,
			SourceKey:   sourceKey,
			FieldKey:    fieldKey,
		})
	}

	if err := s.Store.ReplaceFieldMappings(r.Context(), actor.WorkspaceID, supplierID, mappings); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "mappings.replace",
		EntityType:  "supplier",
		EntityID:    &supplierID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Metadata:    map[string]any{"count": len(mappings)},
	})

	out := make([]mappingPayload, 0, len(mappings))
	for _, fm := range mappings {
		out = append(out, mappingPayload{SourceKey: fm.SourceKey, FieldKey: fm.FieldKey})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"mappings": out})
}
