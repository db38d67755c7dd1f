package feed

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
)

type stubAllocator struct {
	uids []string
	err  error
}

func (a stubAllocator) AllocateUIDs(ctx context.Context, workspaceID uuid.UUID, count int) ([]string, error) {
	return a.uids, a.err
}

func TestAllocateUIDsPrimaryPath(t *testing.T) {
	uids, degraded := AllocateUIDs(context.Background(), stubAllocator{uids: []string{"100", "101"}}, uuid.New(), 2)
	if degraded {
		t.Fatal("expected non-degraded allocation")
	}
	if len(uids) != 2 || uids[0] != "100" || uids[1] != "101" {
		t.Fatalf("unexpected uids: %v", uids)
	}
}

func TestAllocateUIDsFallbackOnError(t *testing.T) {
	uids, degraded := AllocateUIDs(context.Background(), stubAllocator{err: errors.New("allocator down")}, uuid.New(), 3)
	if !degraded {
		t.Fatal("expected degraded flag on allocator failure")
	}
	for i, uid := range uids {
		if uid != strconv.Itoa(i+1) {
			t.Fatalf("expected local sequence 1..N, got %v", uids)
		}
	}
}

func TestAllocateUIDsFallbackOnShortBatch(t *testing.T) {
	_, degraded := AllocateUIDs(context.Background(), stubAllocator{uids: []string{"100"}}, uuid.New(), 2)
	if !degraded {
		t.Fatal("expected degraded flag on short batch")
	}
}

func TestAllocateUIDsZeroCount(t *testing.T) {
	uids, degraded := AllocateUIDs(context.Background(), stubAllocator{}, uuid.New(), 0)
	if uids != nil || degraded {
		t.Fatalf("expected empty non-degraded result, got %v %v", uids, degraded)
	}
}
