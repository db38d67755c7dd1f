package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/store"
)

type supplierPayload struct {
	Name         *string `json:"name"`
	SourceKind   *string `json:"source_kind"`
	SourceURL    *string `json:"source_url"`
	AuthUsername *string `json:"auth_username"`
	AuthPassword *string `json:"auth_password"`
	Schedule     *string `json:"schedule"`
	UIDSourceKey *string `json:"uid_source_key"`
	IsDraft      *bool   `json:"is_draft"`
}

type supplierResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	SourceKind          string     `json:"source_kind"`
	SourceURL           *string    `json:"source_url,omitempty"`
	SourcePath          *string    `json:"source_path,omitempty"`
	AuthUsername        *string    `json:"auth_username,omitempty"`
	HasCredentials      bool       `json:"has_credentials"`
	Schedule            *string    `json:"schedule,omitempty"`
	UIDSourceKey        *string    `json:"uid_source_key,omitempty"`
	IsDraft             bool       `json:"is_draft"`
	Status              string     `json:"status"`
	LastSyncStatus      *string    `json:"last_sync_status,omitempty"`
	LastSyncCompletedAt *time.Time `json:"last_sync_completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toSupplierResponse(sp store.Supplier) supplierResponse {
	return supplierResponse{
		ID:                  sp.ID,
		Name:                sp.Name,
		SourceKind:          sp.SourceKind,
		SourceURL:           sp.SourceURL,
		SourcePath:          sp.SourcePath,
		AuthUsername:        sp.AuthUsername,
		HasCredentials:      len(sp.AuthPasswordSealed) > 0,
		Schedule:            sp.Schedule,
		UIDSourceKey:        sp.UIDSourceKey,
		IsDraft:             sp.IsDraft,
		Status:              sp.Status,
		LastSyncStatus:      sp.LastSyncStatus,
		LastSyncCompletedAt: sp.LastSyncCompletedAt,
		CreatedAt:           sp.CreatedAt,
		UpdatedAt:           sp.UpdatedAt,
	}
}

func validSourceKind(kind string) bool {
	return kind == store.SourceKindURL || kind == store.SourceKindUpload
}

func (s *Server) PostSuppliers(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req supplierPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Supplier name is required", nil)
		return
	}

	sp := store.Supplier{
		ID:          uuid.New(),
		WorkspaceID: actor.WorkspaceID,
		Name:        strings.TrimSpace(*req.Name),
		SourceKind:  store.SourceKindURL,
		IsDraft:     true,
		Status:      "draft",
	}
	if req.SourceKind != nil {
		if !validSourceKind(*req.SourceKind) {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "source_kind must be url or upload", nil)
			return
		}
		sp.SourceKind = *req.SourceKind
	}
	sp.SourceURL = trimmedOrNil(req.SourceURL)
	sp.AuthUsername = trimmedOrNil(req.AuthUsername)
	sp.Schedule = trimmedOrNil(req.Schedule)
	sp.UIDSourceKey = trimmedOrNil(req.UIDSourceKey)
	if req.IsDraft != nil {
		sp.IsDraft = *req.IsDraft
		if !sp.IsDraft {
			sp.Status = "active"
		}
	}

	if req.AuthPassword != nil && *req.AuthPassword != "" {
		sealed, err := s.Box.Seal(*req.AuthPassword)
		if err != nil {
			s.Logger.Error("seal supplier credentials", "error", err)
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to store credentials", nil)
			return
		}
		sp.AuthPasswordSealed = sealed
	}

	if err := s.Store.CreateSupplier(r.Context(), &sp); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	supplierID := sp.ID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "supplier.create",
		EntityType:  "supplier",
		EntityID:    &supplierID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Metadata:    map[string]any{"name": sp.Name, "source_kind": sp.SourceKind},
	})

	httpx.WriteJSON(w, http.StatusCreated, toSupplierResponse(sp))
}

func (s *Server) GetSuppliers(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	suppliers, err := s.Store.ListSuppliers(r.Context(), actor.WorkspaceID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	out := make([]supplierResponse, 0, len(suppliers))
	for _, sp := range suppliers {
		out = append(out, toSupplierResponse(sp))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"suppliers": out})
}

func (s *Server) GetSupplier(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	sp, err := s.Suppliers.SupplierByID(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSupplierResponse(sp))
}

func (s *Server) PatchSupplier(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	var req supplierPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	sp, err := s.Store.SupplierByID(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	if req.UIDSourceKey != nil && !equalOptional(sp.UIDSourceKey, trimmedOrNil(req.UIDSourceKey)) {
		frozen, err := s.Store.HasCompletedIngestion(r.Context(), actor.WorkspaceID, supplierID)
		if err != nil {
			s.writeStoreError(w, r, err, "Supplier not found")
			return
		}
		if frozen {
			httpx.WriteError(w, r, http.StatusConflict, "uid_key_frozen",
				"uid_source_key cannot change after a completed import", nil)
			return
		}
		sp.UIDSourceKey = trimmedOrNil(req.UIDSourceKey)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Supplier name cannot be empty", nil)
			return
		}
		sp.Name = name
	}
	if req.SourceKind != nil {
		if !validSourceKind(*req.SourceKind) {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "source_kind must be url or upload", nil)
			return
		}
		sp.SourceKind = *req.SourceKind
	}
	if req.SourceURL != nil {
		sp.SourceURL = trimmedOrNil(req.SourceURL)
	}
	if req.AuthUsername != nil {
		sp.AuthUsername = trimmedOrNil(req.AuthUsername)
	}
	if req.AuthPassword != nil {
		if *req.AuthPassword == "" {
			sp.AuthPasswordSealed = nil
		} else {
			sealed, err := s.Box.Seal(*req.AuthPassword)
			if err != nil {
				s.Logger.Error("seal supplier credentials", "error", err)
				httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to store credentials", nil)
				return
			}
			sp.AuthPasswordSealed = sealed
		}
	}
	if req.Schedule != nil {
		sp.Schedule = trimmedOrNil(req.Schedule)
	}
	if req.IsDraft != nil {
		sp.IsDraft = *req.IsDraft
		if !sp.IsDraft && sp.Status == "draft" {
			sp.Status = "active"
		}
	}

	if err := s.Store.UpdateSupplier(r.Context(), &sp); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}
	s.Suppliers.Invalidate(supplierID)

	httpx.WriteJSON(w, http.StatusOK, toSupplierResponse(sp))
}

func (s *Server) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	sp, err := s.Store.SupplierByID(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	if err := s.Store.DeleteSupplier(r.Context(), actor.WorkspaceID, supplierID); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}
	s.Suppliers.Invalidate(supplierID)

	if sp.SourceKind == store.SourceKindUpload && sp.SourcePath != nil {
		if err := s.Blobs.Remove(r.Context(), []string{*sp.SourcePath}); err != nil {
			s.Logger.Warn("remove supplier blob", "path", *sp.SourcePath, "error", err)
		}
	}

	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "supplier.delete",
		EntityType:  "supplier",
		EntityID:    &supplierID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Metadata:    map[string]any{"name": sp.Name},
	})

	w.WriteHeader(http.StatusNoContent)
}

// GetSupplierFields fetches the supplier's current feed and returns the
// field names the parsers can see, for the mapping wizard.
func (s *Server) GetSupplierFields(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	supplierID, ok := parseID(w, r, chi.URLParam(r, "supplierId"))
	if !ok {
		return
	}

	sp, err := s.Suppliers.SupplierByID(r.Context(), actor.WorkspaceID, supplierID)
	if err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}

	keys, err := s.Runner.DiscoverFields(r.Context(), sp)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadGateway, "fetch_failed", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
