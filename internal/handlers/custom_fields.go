package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/feed"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/store"
)

var fieldKeyRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var validDatatypes = map[string]struct{}{
	feed.DatatypeText:   {},
	feed.DatatypeNumber: {},
	feed.DatatypeBool:   {},
	feed.DatatypeDate:   {},
	feed.DatatypeJSON:   {},
}

type customFieldPayload struct {
	Key              *string `json:"key"`
	Name             *string `json:"name"`
	Datatype         *string `json:"datatype"`
	IsRequired       *bool   `json:"is_required"`
	IsUnique         *bool   `json:"is_unique"`
	SortOrder        *int32  `json:"sort_order"`
	UseForCategories *bool   `json:"use_for_categories"`
}

type customFieldResponse struct {
	ID               uuid.UUID `json:"id"`
	Key              string    `json:"key"`
	Name             string    `json:"name"`
	Datatype         string    `json:"datatype"`
	IsRequired       bool      `json:"is_required"`
	IsUnique         bool      `json:"is_unique"`
	SortOrder        int32     `json:"sort_order"`
	UseForCategories bool      `json:"use_for_categories"`
	CreatedAt        time.Time `json:"created_at"`
}

func toCustomFieldResponse(cf store.CustomField) customFieldResponse {
	return customFieldResponse{
		ID:               cf.ID,
		Key:              cf.Key,
		Name:             cf.Name,
		Datatype:         cf.Datatype,
		IsRequired:       cf.IsRequired,
		IsUnique:         cf.IsUnique,
		SortOrder:        cf.SortOrder,
		UseForCategories: cf.UseForCategories,
		CreatedAt:        cf.CreatedAt,
	}
}

func (s *Server) PostCustomFields(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req customFieldPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if req.Key == nil || !fieldKeyRe.MatchString(*req.Key) {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body",
			"key must be a lowercase machine name (letters, digits, underscores)", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Field name is required", nil)
		return
	}
	datatype := feed.DatatypeText
	if req.Datatype != nil {
		if _, valid := validDatatypes[*req.Datatype]; !valid {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body",
				"datatype must be one of text, number, bool, date, json", nil)
			return
		}
		datatype = *req.Datatype
	}

	cf := store.CustomField{
		ID:          uuid.New(),
		WorkspaceID: actor.WorkspaceID,
		Key:         *req.Key,
		Name:        strings.TrimSpace(*req.Name),
		Datatype:    datatype,
	}
	if req.IsRequired != nil {
		cf.IsRequired = *req.IsRequired
	}
	if req.IsUnique != nil {
		cf.IsUnique = *req.IsUnique
	}
	if req.SortOrder != nil {
		cf.SortOrder = *req.SortOrder
	}
	if req.UseForCategories != nil {
		cf.UseForCategories = *req.UseForCategories
	}

	if err := s.Store.CreateCustomField(r.Context(), &cf); err != nil {
		if isUniqueViolation(err) {
			httpx.WriteError(w, r, http.StatusConflict, "duplicate_key",
				"A field with this key already exists in the workspace", nil)
			return
		}
		s.writeStoreError(w, r, err, "Custom field not found")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCustomFieldResponse(cf))
}

func (s *Server) GetCustomFields(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	fields, err := s.Store.ListCustomFields(r.Context(), actor.WorkspaceID)
	if err != nil {
		s.writeStoreError(w, r, err, "Custom field not found")
		return
	}

	out := make([]customFieldResponse, 0, len(fields))
	for _, cf := range fields {
		out = append(out, toCustomFieldResponse(cf))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"custom_fields": out})
}

func (s *Server) PatchCustomField(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	fieldID, ok := parseID(w, r, chi.URLParam(r, "fieldId"))
	if !ok {
		return
	}

	var req customFieldPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	cf, err := s.Store.CustomFieldByID(r.Context(), actor.WorkspaceID, fieldID)
	if err != nil {
		s.writeStoreError(w, r, err, "Custom field not found")
		return
	}

	// Key is stable once created.
	if req.Key != nil && *req.Key != cf.Key {
		httpx.WriteError(w, r, http.StatusConflict, "key_immutable", "Field key cannot be changed", nil)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Field name cannot be empty", nil)
			return
		}
		cf.Name = name
	}
	if req.Datatype != nil {
		if _, valid := validDatatypes[*req.Datatype]; !valid {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body",
				"datatype must be one of text, number, bool, date, json", nil)
			return
		}
		cf.Datatype = *req.Datatype
	}
	if req.IsRequired != nil {
		cf.IsRequired = *req.IsRequired
	}
	if req.IsUnique != nil {
		cf.IsUnique = *req.IsUnique
	}
	if req.SortOrder != nil {
		cf.SortOrder = *req.SortOrder
	}
	if req.UseForCategories != nil {
		cf.UseForCategories = *req.UseForCategories
	}

	if err := s.Store.UpdateCustomField(r.Context(), &cf); err != nil {
		s.writeStoreError(w, r, err, "Custom field not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCustomFieldResponse(cf))
}

func (s *Server) DeleteCustomField(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	fieldID, ok := parseID(w, r, chi.URLParam(r, "fieldId"))
	if !ok {
		return
	}

	if err := s.Store.DeleteCustomField(r.Context(), actor.WorkspaceID, fieldID); err != nil {
		s.writeStoreError(w, r, err, "Custom field not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
