package feed

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// UIDAllocator hands out workspace-scoped numeric uids, one per parsed
// record. The production implementation is the store's atomic counter.
type UIDAllocator interface {
	AllocateUIDs(ctx context.Context, workspaceID uuid.UUID, count int) ([]string, error)
}

// AllocateUIDs requests a batch from the allocator and falls back to a local
// "1".."N" sequence when the call fails or returns the wrong batch size.
// The fallback is not unique across runs; degraded=true lets the caller mark
// the run accordingly.
func AllocateUIDs(ctx context.Context, alloc UIDAllocator, workspaceID uuid.UUID, count int) (uids []string, degraded bool) {
	if count <= 0 {
		return nil, false
	}

	uids, err := alloc.AllocateUIDs(ctx, workspaceID, count)
	if err == nil && len(uids) == count {
		return uids, false
	}

	uids = make([]string, count)
	for i := range uids {
		uids[i] = strconv.Itoa(i + 1)
	}
	return uids, true
}
