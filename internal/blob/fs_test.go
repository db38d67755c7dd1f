package blob

import (
	"context"
	"errors"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	path := "ws-1/sup-1/feed.csv"
	if err := s.Upload(ctx, path, []byte("sku,name\n1,Widget\n"), "text/csv"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	data, contentType, err := s.Download(ctx, path)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "sku,name\n1,Widget\n" {
		t.Fatalf("unexpected content: %q", data)
	}
	if contentType != "text/csv" {
		t.Fatalf("expected text/csv, got %q", contentType)
	}

	if err := s.Remove(ctx, []string{path}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := s.Download(ctx, path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestFSStoreMissingBlob(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, _, err := s.Download(context.Background(), "ws-1/missing.xml"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreRemoveIsIdempotent(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Remove(context.Background(), []string{"ws-1/never-uploaded.json"}); err != nil {
		t.Fatalf("remove of missing blob should not error, got %v", err)
	}
}
