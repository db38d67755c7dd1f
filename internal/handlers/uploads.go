package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/store"
)

var uploadExtensions = map[string]string{
	".xml":  "application/xml",
	".json": "application/json",
	".csv":  "text/csv",
}

// PostSupplierUpload stores a feed file in the blob store and switches the
// supplier to the upload source kind. The previous blob, if any, is removed
// after the supplier row is updated.
func (s *Server) PostSupplierUpload(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, supported := uploadExtensions[ext]
	if !supported {
		httpx.WriteError(w, r, http.StatusBadRequest, "unsupported_file_type",
			"Only .xml, .json and .csv feed files are accepted", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Failed to read uploaded file", nil)
		return
	}
	if len(data) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Uploaded file is empty", nil)
		return
	}

	blobPath := fmt.Sprintf("%s/%s/feed%s", actor.WorkspaceID, supplierID, ext)
	if err := s.Blobs.Upload(r.Context(), blobPath, data, contentType); err != nil {
		s.Logger.Error("upload feed blob", "path", blobPath, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to store uploaded file", nil)
		return
	}

	previousPath := sp.SourcePath
	sp.SourceKind = store.SourceKindUpload
	sp.SourcePath = &blobPath
	if err := s.Store.UpdateSupplier(r.Context(), &sp); err != nil {
		s.writeStoreError(w, r, err, "Supplier not found")
		return
	}
	s.Suppliers.Invalidate(supplierID)

	if previousPath != nil && *previousPath != blobPath {
		if err := s.Blobs.Remove(r.Context(), []string{*previousPath}); err != nil {
			s.Logger.Warn("remove replaced blob", "path", *previousPath, "error", err)
		}
	}

	_ = s.Audit.Log(r.Context(), audit.Entry{
		WorkspaceID: actor.WorkspaceID,
		Action:      "supplier.upload",
		EntityType:  "supplier",
		EntityID:    &supplierID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Metadata:    map[string]any{"filename": header.Filename, "size_bytes": len(data)},
	})

	httpx.WriteJSON(w, http.StatusOK, toSupplierResponse(sp))
}
