package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const supplierColumns = `id, workspace_id, name, source_kind, source_url, source_path,
	auth_username, auth_password_sealed, schedule, uid_source_key, is_draft, status,
	last_sync_status, last_sync_completed_at, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (Supplier, error) {
	var sp Supplier
	err := row.Scan(
		&sp.ID, &sp.WorkspaceID, &sp.Name, &sp.SourceKind, &sp.SourceURL, &sp.SourcePath,
		&sp.AuthUsername, &sp.AuthPasswordSealed, &sp.Schedule, &sp.UIDSourceKey,
		&sp.IsDraft, &sp.Status, &sp.LastSyncStatus, &sp.LastSyncCompletedAt,
		&sp.CreatedAt, &sp.UpdatedAt,
	)
	return sp, err
}

func (s *Store) CreateSupplier(ctx context.Context, sp *Supplier) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (
			id, workspace_id, name, source_kind, source_url, source_path,
			auth_username, auth_password_sealed, schedule, uid_source_key, is_draft, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		sp.ID, sp.WorkspaceID, sp.Name, sp.SourceKind, sp.SourceURL, sp.SourcePath,
		sp.AuthUsername, sp.AuthPasswordSealed, sp.Schedule, sp.UIDSourceKey,
		sp.IsDraft, sp.Status,
	)
	if err := row.Scan(&sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (s *Store) SupplierByID(ctx context.Context, workspaceID, supplierID uuid.UUID) (Supplier, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, supplierID,
	)
	return scanSupplier(row)
}

func (s *Store) ListSuppliers(ctx context.Context, workspaceID uuid.UUID) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE workspace_id = $1
		ORDER BY created_at`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *Store) UpdateSupplier(ctx context.Context, sp *Supplier) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE suppliers SET
			name = $3, source_kind = $4, source_url = $5, source_path = $6,
			auth_username = $7, auth_password_sealed = $8, schedule = $9,
			uid_source_key = $10, is_draft = $11, status = $12, updated_at = now()
		WHERE workspace_id = $1 AND id = $2
		RETURNING updated_at`,
		sp.WorkspaceID, sp.ID, sp.Name, sp.SourceKind, sp.SourceURL, sp.SourcePath,
		sp.AuthUsername, sp.AuthPasswordSealed, sp.Schedule, sp.UIDSourceKey,
		sp.IsDraft, sp.Status,
	)
	if err := row.Scan(&sp.UpdatedAt); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

// DeleteSupplier cascades to field_mappings, feed_ingestions and
// products_mapped via the schema's foreign keys. Blob cleanup is the caller's
// job since the store does not know about the blob directory.
func (s *Store) DeleteSupplier(ctx context.Context, workspaceID, supplierID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM suppliers WHERE workspace_id = $1 AND id = $2`,
		workspaceID, supplierID,
	)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateSupplierSyncStatus(ctx context.Context, workspaceID, supplierID uuid.UUID, status, syncStatus string, completedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE suppliers SET
			status = $3, is_draft = false,
			last_sync_status = $4, last_sync_completed_at = $5, updated_at = now()
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, supplierID, status, syncStatus, completedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier sync status: %w", err)
	}
	return nil
}

// HasCompletedIngestion reports whether the supplier ever finished a run; the
// uid source key is frozen once this is true.
func (s *Store) HasCompletedIngestion(ctx context.Context, workspaceID, supplierID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM feed_ingestions
			WHERE workspace_id = $1 AND supplier_id = $2 AND status = 'completed'
		)`,
		workspaceID, supplierID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completed ingestions: %w", err)
	}
	return exists, nil
}
