package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// AllocateUIDs reserves a contiguous batch of workspace-scoped numeric uids
// from the uid_sequences counter row. The increment is a single atomic
// statement, so concurrent runs in one workspace never receive overlapping
// batches.
func (s *Store) AllocateUIDs(ctx context.Context, workspaceID uuid.UUID, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var next int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO uid_sequences (workspace_id, next_uid)
		VALUES ($1, $2 + 1)
		ON CONFLICT (workspace_id) DO UPDATE SET next_uid = uid_sequences.next_uid + $2
		RETURNING next_uid`,
		workspaceID, int64(count),
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("allocate uids: %w", err)
	}

	uids := make([]string, count)
	first := next - int64(count)
	for i := range uids {
		uids[i] = strconv.FormatInt(first+int64(i), 10)
	}
	return uids, nil
}
