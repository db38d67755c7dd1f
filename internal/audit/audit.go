package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

type Logger struct {
	store *store.Store
}

func NewLogger(s *store.Store) *Logger {
	return &Logger{store: s}
}

type Entry struct {
	WorkspaceID uuid.UUID
	Action      string
	EntityType  string
	EntityID    *uuid.UUID
	RequestID   string
	Metadata    map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) error {
	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = encoded
	}

	row := store.AuditRow{
		WorkspaceID: entry.WorkspaceID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		Metadata:    metadata,
	}
	if entry.EntityID != nil {
		row.EntityID = entry.EntityID
	}
	if entry.RequestID != "" {
		row.RequestID = &entry.RequestID
	}

	if err := l.store.InsertAuditLog(ctx, row); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
