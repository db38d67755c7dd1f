package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type AuditRow struct {
	WorkspaceID uuid.UUID
	Action      string
	EntityType  string
	EntityID    *uuid.UUID
	RequestID   *string
	Metadata    []byte
}

func (s *Store) InsertAuditLog(ctx context.Context, row AuditRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (id, workspace_id, action, entity_type, entity_id, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), row.WorkspaceID, row.Action, row.EntityType, row.EntityID, row.RequestID, row.Metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
