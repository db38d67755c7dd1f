package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/feedgrid-platform/api/internal/auth"
	"github.com/feedgrid-platform/api/internal/store"
)

type AuthMiddleware struct {
	Store *store.Store
}

func (m AuthMiddleware) RequireWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "Workspace token required", nil)
			return
		}

		workspace, err := m.Store.WorkspaceByTokenHash(r.Context(), auth.HashToken(strings.TrimSpace(token)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "Workspace token is invalid", nil)
				return
			}
			writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load workspace", nil)
			return
		}

		ctx := WithActor(r.Context(), Actor{
			WorkspaceID:   workspace.ID,
			WorkspaceSlug: workspace.Slug,
			WorkspaceName: workspace.Name,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
