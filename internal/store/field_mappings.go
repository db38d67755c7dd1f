package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) ListFieldMappings(ctx context.Context, workspaceID, supplierID uuid.UUID) ([]FieldMapping, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, supplier_id, source_key, field_key, created_at
		FROM field_mappings
		WHERE workspace_id = $1 AND supplier_id = $2
		ORDER BY source_key`,
		workspaceID, supplierID,
	)
	if err != nil {
		return nil, fmt.Errorf("list field mappings: %w", err)
	}
	defer rows.Close()

	var mappings []FieldMapping
	for rows.Next() {
		var fm FieldMapping
		if err := rows.Scan(&fm.ID, &fm.WorkspaceID, &fm.SupplierID, &fm.SourceKey, &fm.FieldKey, &fm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan field mapping: %w", err)
		}
		mappings = append(mappings, fm)
	}
	return mappings, rows.Err()
}

// ReplaceFieldMappings swaps the supplier's whole mapping set in one
// transaction: saving from the mapping editor is always a full replace.
func (s *Store) ReplaceFieldMappings(ctx context.Context, workspaceID, supplierID uuid.UUID, mappings []FieldMapping) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace mappings: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM field_mappings WHERE workspace_id = $1 AND supplier_id = $2`,
		workspaceID, supplierID,
	); err != nil {
		return fmt.Errorf("delete field mappings: %w", err)
	}

	for _, fm := range mappings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO field_mappings (id, workspace_id, supplier_id, source_key, field_key)
			VALUES ($1, $2, $3, $4, $5)`,
			fm.ID, workspaceID, supplierID, fm.SourceKey, fm.FieldKey,
		); err != nil {
			return fmt.Errorf("insert field mapping %q: %w", fm.SourceKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace mappings: %w", err)
	}
	return nil
}
