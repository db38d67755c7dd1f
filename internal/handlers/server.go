package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/blob"
	"github.com/feedgrid-platform/api/internal/config"
	"github.com/feedgrid-platform/api/internal/feed"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/secrets"
	"github.com/feedgrid-platform/api/internal/store"
)

type Server struct {
	Config    config.Config
	Store     *store.Store
	Suppliers *store.SupplierCache
	Blobs     blob.Store
	Box       *secrets.Box
	Runner    *feed.Runner
	Audit     *audit.Logger
	Logger    *slog.Logger
}

func NewServer(cfg config.Config, st *store.Store, suppliers *store.SupplierCache, blobs blob.Store, box *secrets.Box, runner *feed.Runner, auditLogger *audit.Logger, logger *slog.Logger) *Server {
	return &Server{
		Config:    cfg,
		Store:     st,
		Suppliers: suppliers,
		Blobs:     blobs,
		Box:       box,
		Runner:    runner,
		Audit:     auditLogger,
		Logger:    logger,
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor returns the authenticated workspace or writes a 401. Routes behind
// RequireWorkspace always have one; the guard covers misconfigured wiring.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Workspace token required", nil)
		return middleware.Actor{}, false
	}
	return actor, true
}

func parseID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_id", "Malformed id in path", nil)
		return uuid.Nil, false
	}
	return id, true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// writeStoreError maps store-level failures to the API envelope.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", notFoundMessage, nil)
		return
	}
	s.Logger.Error("store error", "error", err, "path", r.URL.Path)
	httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Unexpected storage failure", nil)
}
