package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

// RunStore is the persistence surface an ingestion run needs. *store.Store
// satisfies it; tests substitute fakes.
type RunStore interface {
	CreateIngestion(ctx context.Context, ing *store.Ingestion) error
	FinishIngestion(ctx context.Context, ing *store.Ingestion) error
	UpdateSupplierSyncStatus(ctx context.Context, workspaceID, supplierID uuid.UUID, status, syncStatus string, completedAt time.Time) error
	ListFieldMappings(ctx context.Context, workspaceID, supplierID uuid.UUID) ([]store.FieldMapping, error)
	ListCustomFields(ctx context.Context, workspaceID uuid.UUID) ([]store.CustomField, error)
	ProductFieldsByUID(ctx context.Context, workspaceID, supplierID uuid.UUID) (map[string]map[string]any, error)
	UpsertProducts(ctx context.Context, products []store.ProductRow) (int, error)
	AllocateUIDs(ctx context.Context, workspaceID uuid.UUID, count int) ([]string, error)
}

// RunStats is the run summary returned to API callers and recorded on the
// ingestion row.
type RunStats struct {
	TotalProducts   int       `json:"total_products"`
	NewProducts     int       `json:"new_products"`
	UpdatedProducts int       `json:"updated_products"`
	Errors          int       `json:"errors"`
	DurationMS      int64     `json:"duration_ms"`
	Status          string    `json:"status"`
	IngestionID     uuid.UUID `json:"ingestion_id"`
	UIDDegraded     bool      `json:"uid_degraded,omitempty"`
	Error           string    `json:"error,omitempty"`
}

type Result struct {
	Success bool     `json:"success"`
	Results RunStats `json:"results"`
}

// Runner executes one ingestion run start to finish: fetch, detect, parse,
// resolve mapping, allocate uids, merge, upsert, bookkeeping. One call is one
// run; concurrency control per supplier lives with the caller.
type Runner struct {
	Store   RunStore
	Fetcher ContentFetcher
	Logger  *slog.Logger
}

// Run returns an error only when the run record itself cannot be created.
// Pipeline failures are reported through the failed run record and the
// returned Result, never rolled back.
func (r *Runner) Run(ctx context.Context, sp store.Supplier, overrides []MappingOverride) (Result, error) {
	started := time.Now().UTC()
	ing := &store.Ingestion{
		ID:          uuid.New(),
		WorkspaceID: sp.WorkspaceID,
		SupplierID:  sp.ID,
		Status:      store.IngestionRunning,
		StartedAt:   started,
	}
	if err := r.Store.CreateIngestion(ctx, ing); err != nil {
		return Result{}, err
	}

	outcome, err := r.execute(ctx, sp, ing, overrides)

	completed := time.Now().UTC()
	duration := completed.Sub(started).Milliseconds()
	ing.CompletedAt = &completed
	ing.DurationMS = &duration

	if err != nil {
		msg := err.Error()
		ing.Status = store.IngestionFailed
		ing.ErrorMessage = &msg
		if finishErr := r.Store.FinishIngestion(ctx, ing); finishErr != nil {
			r.Logger.Error("mark ingestion failed", "ingestion_id", ing.ID, "error", finishErr)
		}
		r.Logger.Error("ingestion failed",
			"workspace_id", sp.WorkspaceID, "supplier_id", sp.ID,
			"ingestion_id", ing.ID, "duration_ms", duration, "error", msg)
		return Result{
			Success: false,
			Results: RunStats{
				Status:      store.IngestionFailed,
				IngestionID: ing.ID,
				DurationMS:  duration,
				Error:       msg,
			},
		}, nil
	}

	ing.Status = store.IngestionCompleted
	ing.ItemsTotal = int32(outcome.total)
	ing.ItemsSuccess = int32(outcome.upserted)
	ing.ItemsErrors = int32(outcome.dropped)
	ing.UIDDegraded = outcome.uidDegraded
	if finishErr := r.Store.FinishIngestion(ctx, ing); finishErr != nil {
		r.Logger.Error("mark ingestion completed", "ingestion_id", ing.ID, "error", finishErr)
	}
	if updErr := r.Store.UpdateSupplierSyncStatus(ctx, sp.WorkspaceID, sp.ID, "active", store.IngestionCompleted, completed); updErr != nil {
		r.Logger.Error("update supplier sync status", "supplier_id", sp.ID, "error", updErr)
	}

	r.Logger.Info("ingestion completed",
		"workspace_id", sp.WorkspaceID, "supplier_id", sp.ID, "ingestion_id", ing.ID,
		"items_total", outcome.total, "new", outcome.added, "updated", outcome.updated,
		"dropped", outcome.dropped, "uid_degraded", outcome.uidDegraded, "duration_ms", duration)

	return Result{
		Success: true,
		Results: RunStats{
			TotalProducts:   outcome.total,
			NewProducts:     outcome.added,
			UpdatedProducts: outcome.updated,
			Errors:          outcome.dropped,
			DurationMS:      duration,
			Status:          store.IngestionCompleted,
			IngestionID:     ing.ID,
			UIDDegraded:     outcome.uidDegraded,
		},
	}, nil
}

type runOutcome struct {
	total       int
	added       int
	updated     int
	dropped     int
	upserted    int
	uidDegraded bool
}

func (r *Runner) execute(ctx context.Context, sp store.Supplier, ing *store.Ingestion, overrides []MappingOverride) (runOutcome, error) {
	content, err := r.Fetcher.Fetch(ctx, sp)
	if err != nil {
		return runOutcome{}, err
	}

	format := Detect(content.ContentType, content.Body)
	records, err := Parse(content.Body, format)
	if err != nil {
		return runOutcome{}, err
	}
	if len(records) == 0 {
		return runOutcome{}, nil
	}

	mappings, err := r.Store.ListFieldMappings(ctx, sp.WorkspaceID, sp.ID)
	if err != nil {
		return runOutcome{}, err
	}
	fields, err := r.Store.ListCustomFields(ctx, sp.WorkspaceID)
	if err != nil {
		return runOutcome{}, err
	}

	recordKeys := collectRecordKeys(records)
	resolved := ResolveMapping(mappings, overrides, fields, recordKeys)

	uids, degraded := AllocateUIDs(ctx, r.Store, sp.WorkspaceID, len(records))
	if degraded {
		r.Logger.Warn("uid allocation degraded to local counter",
			"workspace_id", sp.WorkspaceID, "supplier_id", sp.ID, "count", len(records))
	}

	existing, err := r.Store.ProductFieldsByUID(ctx, sp.WorkspaceID, sp.ID)
	if err != nil {
		return runOutcome{}, err
	}

	rows, stats := BuildRows(records, uids, resolved, existing, RowMeta{
		WorkspaceID: sp.WorkspaceID,
		SupplierID:  sp.ID,
		IngestionID: ing.ID,
		SourceFile:  content.SourceFile,
		ImportedAt:  ing.StartedAt,
	})

	upserted, err := r.Store.UpsertProducts(ctx, rows)
	if err != nil {
		return runOutcome{}, err
	}

	return runOutcome{
		total:       len(records),
		added:       stats.New,
		updated:     stats.Updated,
		dropped:     stats.Dropped,
		upserted:    upserted,
		uidDegraded: degraded,
	}, nil
}

// DiscoverFields fetches the supplier's feed and returns the sorted field
// names the parsers can see, for the mapping wizard.
func (r *Runner) DiscoverFields(ctx context.Context, sp store.Supplier) ([]string, error) {
	content, err := r.Fetcher.Fetch(ctx, sp)
	if err != nil {
		return nil, err
	}
	format := Detect(content.ContentType, content.Body)
	return DiscoverFieldNames(content.Body, format), nil
}

func collectRecordKeys(records []Record) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
