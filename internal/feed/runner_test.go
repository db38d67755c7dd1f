package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

type fakeRunStore struct {
	nextUID       int
	mappings      []store.FieldMapping
	fields        []store.CustomField
	existing      map[string]map[string]any
	allocErr      error
	createErr     error
	upsertErr     error
	created       []store.Ingestion
	finished      []store.Ingestion
	upserted      []store.ProductRow
	supplierSyncs int
}

func (f *fakeRunStore) CreateIngestion(ctx context.Context, ing *store.Ingestion) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *ing)
	return nil
}

func (f *fakeRunStore) FinishIngestion(ctx context.Context, ing *store.Ingestion) error {
	f.finished = append(f.finished, *ing)
	return nil
}

func (f *fakeRunStore) UpdateSupplierSyncStatus(ctx context.Context, workspaceID, supplierID uuid.UUID, status, syncStatus string, completedAt time.Time) error {
	f.supplierSyncs++
	return nil
}

func (f *fakeRunStore) ListFieldMappings(ctx context.Context, workspaceID, supplierID uuid.UUID) ([]store.FieldMapping, error) {
	return f.mappings, nil
}

func (f *fakeRunStore) ListCustomFields(ctx context.Context, workspaceID uuid.UUID) ([]store.CustomField, error) {
	return f.fields, nil
}

func (f *fakeRunStore) ProductFieldsByUID(ctx context.Context, workspaceID, supplierID uuid.UUID) (map[string]map[string]any, error) {
	if f.existing == nil {
		return map[string]map[string]any{}, nil
	}
	return f.existing, nil
}

func (f *fakeRunStore) UpsertProducts(ctx context.Context, products []store.ProductRow) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, products...)
	return len(products), nil
}

func (f *fakeRunStore) AllocateUIDs(ctx context.Context, workspaceID uuid.UUID, count int) ([]string, error) {
	if f.allocErr != nil {
		return nil, f.allocErr
	}
	uids := make([]string, count)
	for i := range uids {
		f.nextUID++
		uids[i] = strconv.Itoa(f.nextUID)
	}
	return uids, nil
}

type fakeFetcher struct {
	content Content
	err     error
}

func (f fakeFetcher) Fetch(ctx context.Context, sp store.Supplier) (Content, error) {
	return f.content, f.err
}

func testSupplier() store.Supplier {
	url := "https://example.com/feed.csv"
	return store.Supplier{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Name:        "Acme",
		SourceKind:  store.SourceKindURL,
		SourceURL:   &url,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerSuccessfulRun(t *testing.T) {
	st := &fakeRunStore{
		nextUID:  100,
		mappings: []store.FieldMapping{{SourceKey: "name", FieldKey: "name"}, {SourceKey: "price", FieldKey: "price"}},
		fields: []store.CustomField{
			{ID: uuid.New(), Key: "name", Datatype: DatatypeText},
			{ID: uuid.New(), Key: "price", Datatype: DatatypeNumber},
		},
	}
	runner := &Runner{
		Store: st,
		Fetcher: fakeFetcher{content: Content{
			Body:        "name,price\nWidget,10.50\nGadget,3\n",
			ContentType: "text/csv",
			SourceFile:  "https://example.com/feed.csv",
		}},
		Logger: discardLogger(),
	}

	result, err := runner.Run(context.Background(), testSupplier(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Results.TotalProducts != 2 || result.Results.NewProducts != 2 {
		t.Fatalf("unexpected counters: %+v", result.Results)
	}
	if result.Results.Status != store.IngestionCompleted {
		t.Fatalf("expected completed status, got %q", result.Results.Status)
	}

	if len(st.created) != 1 || st.created[0].Status != store.IngestionRunning {
		t.Fatalf("expected run record created in running state, got %+v", st.created)
	}
	if len(st.finished) != 1 || st.finished[0].Status != store.IngestionCompleted {
		t.Fatalf("expected run finished completed, got %+v", st.finished)
	}
	if st.finished[0].ItemsTotal != 2 || st.finished[0].ItemsSuccess != 2 {
		t.Fatalf("unexpected run counters: %+v", st.finished[0])
	}
	if st.supplierSyncs != 1 {
		t.Fatalf("expected supplier sync status update, got %d", st.supplierSyncs)
	}

	if len(st.upserted) != 2 {
		t.Fatalf("expected 2 upserted rows, got %d", len(st.upserted))
	}
	if st.upserted[0].UID != "101" || st.upserted[1].UID != "102" {
		t.Fatalf("expected allocated uids in parse order, got %v %v", st.upserted[0].UID, st.upserted[1].UID)
	}
	if st.upserted[0].Fields["price"] != 10.5 {
		t.Fatalf("expected coerced price, got %v", st.upserted[0].Fields["price"])
	}
}

func TestRunnerFetchFailureMarksRunFailed(t *testing.T) {
	st := &fakeRunStore{}
	runner := &Runner{
		Store:   st,
		Fetcher: fakeFetcher{err: &FetchError{Source: "https://example.com/feed.csv", StatusCode: 503, StatusText: "Service Unavailable"}},
		Logger:  discardLogger(),
	}

	result, err := runner.Run(context.Background(), testSupplier(), nil)
	if err != nil {
		t.Fatalf("pipeline failures should not surface as errors, got %v", err)
	}
	if result.Success {
		t.Fatal("expected failed result")
	}
	if result.Results.Status != store.IngestionFailed || result.Results.Error == "" {
		t.Fatalf("unexpected failure stats: %+v", result.Results)
	}

	if len(st.finished) != 1 || st.finished[0].Status != store.IngestionFailed {
		t.Fatalf("expected run marked failed, got %+v", st.finished)
	}
	if st.finished[0].ErrorMessage == nil {
		t.Fatal("expected error message recorded on run")
	}
	if st.supplierSyncs != 0 {
		t.Fatal("supplier status must stay untouched on failure")
	}
}

func TestRunnerCreateFailureReturnsError(t *testing.T) {
	st := &fakeRunStore{createErr: errors.New("db down")}
	runner := &Runner{Store: st, Fetcher: fakeFetcher{}, Logger: discardLogger()}

	if _, err := runner.Run(context.Background(), testSupplier(), nil); err == nil {
		t.Fatal("expected error when run record cannot be created")
	}
	if len(st.finished) != 0 {
		t.Fatal("no finish call expected when create fails")
	}
}

func TestRunnerDegradedUIDAllocation(t *testing.T) {
	st := &fakeRunStore{
		allocErr: errors.New("sequence unavailable"),
		fields:   []store.CustomField{{ID: uuid.New(), Key: "name", Datatype: DatatypeText}},
		mappings: []store.FieldMapping{{SourceKey: "name", FieldKey: "name"}},
	}
	runner := &Runner{
		Store:   st,
		Fetcher: fakeFetcher{content: Content{Body: "name\nA\nB\n", ContentType: "text/csv"}},
		Logger:  discardLogger(),
	}

	result, err := runner.Run(context.Background(), testSupplier(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("degraded allocation should still complete, got %+v", result)
	}
	if !result.Results.UIDDegraded {
		t.Fatal("expected uid_degraded flag on result")
	}
	if len(st.finished) != 1 || !st.finished[0].UIDDegraded {
		t.Fatal("expected uid_degraded recorded on run")
	}
	if st.upserted[0].UID != "1" || st.upserted[1].UID != "2" {
		t.Fatalf("expected local fallback uids, got %v %v", st.upserted[0].UID, st.upserted[1].UID)
	}
}

func TestRunnerReimportIsIdempotent(t *testing.T) {
	field := store.CustomField{ID: uuid.New(), Key: "price", Datatype: DatatypeNumber}
	st := &fakeRunStore{
		mappings: []store.FieldMapping{{SourceKey: "price", FieldKey: "price"}},
		fields:   []store.CustomField{field},
		existing: map[string]map[string]any{"1": {"price": 10.5, "stock": 4.0}},
	}
	runner := &Runner{
		Store:   st,
		Fetcher: fakeFetcher{content: Content{Body: "price\n10.50\n", ContentType: "text/csv"}},
		Logger:  discardLogger(),
	}

	result, err := runner.Run(context.Background(), testSupplier(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results.UpdatedProducts != 1 || result.Results.NewProducts != 0 {
		t.Fatalf("expected the existing row updated, got %+v", result.Results)
	}
	if st.upserted[0].Fields["price"] != 10.5 {
		t.Fatalf("expected unchanged coerced value, got %v", st.upserted[0].Fields["price"])
	}
	if st.upserted[0].Fields["stock"] != 4.0 {
		t.Fatalf("expected unmapped stored field preserved, got %v", st.upserted[0].Fields)
	}
}

func TestRunnerDiscoverFields(t *testing.T) {
	runner := &Runner{
		Store:   &fakeRunStore{},
		Fetcher: fakeFetcher{content: Content{Body: `{"products":[{"sku":"A","name":"X"}]}`, ContentType: "application/json"}},
		Logger:  discardLogger(),
	}

	fields, err := runner.DiscoverFields(context.Background(), testSupplier())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 || fields[0] != "name" || fields[1] != "sku" {
		t.Fatalf("expected sorted discovered fields, got %v", fields)
	}
}
