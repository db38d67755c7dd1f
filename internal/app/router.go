package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/feedgrid-platform/api/internal/audit"
	"github.com/feedgrid-platform/api/internal/blob"
	"github.com/feedgrid-platform/api/internal/config"
	"github.com/feedgrid-platform/api/internal/feed"
	"github.com/feedgrid-platform/api/internal/handlers"
	"github.com/feedgrid-platform/api/internal/httpx"
	"github.com/feedgrid-platform/api/internal/middleware"
	"github.com/feedgrid-platform/api/internal/secrets"
	"github.com/feedgrid-platform/api/internal/store"
)

// findOpenAPISpec locates openapi.yaml relative to the working directory,
// walking up so tests running from package directories still find it.
func findOpenAPISpec() (string, error) {
	candidates := []string{
		"openapi.yaml",
		filepath.Join("..", "openapi.yaml"),
		filepath.Join("..", "..", "openapi.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("openapi.yaml not found from working directory")
}

func NewRouter(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) (http.Handler, error) {
	specPath, err := findOpenAPISpec()
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	st := store.New(pool)
	blobs, err := blob.NewFSStore(cfg.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	box := secrets.NewBox(cfg.CredentialKey)
	suppliers := store.NewSupplierCache(st, cfg.SupplierCacheTTL)
	fetcher := feed.NewFetcher(cfg.FetchTimeout, cfg.FetchUserAgent, cfg.FetchRatePerSec, cfg.FetchBurst, blobs, box)
	runner := &feed.Runner{Store: st, Fetcher: fetcher, Logger: logger}
	auditLogger := audit.NewLogger(st)

	h := handlers.NewServer(cfg, st, suppliers, blobs, box, runner, auditLogger, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathSuffix: "/upload", MaxBytes: cfg.UploadMaxFileBytes},
	}))

	api := chi.NewRouter()
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	authMW := middleware.AuthMiddleware{Store: st}
	apiLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)

	api.Group(func(public chi.Router) {
		public.Get("/health", h.GetHealth)
	})

	api.Group(func(protected chi.Router) {
		protected.Use(apiLimiter.Middleware("Too many requests"))
		protected.Use(authMW.RequireWorkspace)

		protected.Post("/suppliers", h.PostSuppliers)
		protected.Get("/suppliers", h.GetSuppliers)
		protected.Get("/suppliers/{supplierId}", h.GetSupplier)
		protected.Patch("/suppliers/{supplierId}", h.PatchSupplier)
		protected.Delete("/suppliers/{supplierId}", h.DeleteSupplier)
		protected.Post("/suppliers/{supplierId}/upload", h.PostSupplierUpload)
		protected.Get("/suppliers/{supplierId}/fields", h.GetSupplierFields)
		protected.Get("/suppliers/{supplierId}/mappings", h.GetSupplierMappings)
		protected.Put("/suppliers/{supplierId}/mappings", h.PutSupplierMappings)
		protected.Post("/suppliers/{supplierId}/ingestions", h.PostSupplierIngestions)
		protected.Get("/suppliers/{supplierId}/ingestions", h.GetSupplierIngestions)
		protected.Get("/ingestions/{ingestionId}", h.GetIngestion)

		protected.Post("/custom-fields", h.PostCustomFields)
		protected.Get("/custom-fields", h.GetCustomFields)
		protected.Patch("/custom-fields/{fieldId}", h.PatchCustomField)
		protected.Delete("/custom-fields/{fieldId}", h.DeleteCustomField)

		protected.Get("/products", h.GetProducts)
	})

	r.Mount("/api", api)
	return r, nil
}
