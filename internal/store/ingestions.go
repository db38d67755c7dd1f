package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const ingestionColumns = `id, workspace_id, supplier_id, status, items_total, items_success,
	items_errors, error_message, uid_degraded, started_at, completed_at, duration_ms`

func scanIngestion(row interface{ Scan(...any) error }) (Ingestion, error) {
	var ing Ingestion
	err := row.Scan(
		&ing.ID, &ing.WorkspaceID, &ing.SupplierID, &ing.Status,
		&ing.ItemsTotal, &ing.ItemsSuccess, &ing.ItemsErrors,
		&ing.ErrorMessage, &ing.UIDDegraded, &ing.StartedAt, &ing.CompletedAt, &ing.DurationMS,
	)
	return ing, err
}

func (s *Store) CreateIngestion(ctx context.Context, ing *Ingestion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feed_ingestions (id, workspace_id, supplier_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ing.ID, ing.WorkspaceID, ing.SupplierID, ing.Status, ing.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ingestion: %w", err)
	}
	return nil
}

// FinishIngestion writes the terminal state exactly once, on the success or
// failure branch of a run.
func (s *Store) FinishIngestion(ctx context.Context, ing *Ingestion) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE feed_ingestions SET
			status = $3, items_total = $4, items_success = $5, items_errors = $6,
			error_message = $7, uid_degraded = $8, completed_at = $9, duration_ms = $10
		WHERE workspace_id = $1 AND id = $2`,
		ing.WorkspaceID, ing.ID, ing.Status,
		ing.ItemsTotal, ing.ItemsSuccess, ing.ItemsErrors,
		ing.ErrorMessage, ing.UIDDegraded, ing.CompletedAt, ing.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("finish ingestion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) IngestionByID(ctx context.Context, workspaceID, ingestionID uuid.UUID) (Ingestion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+ingestionColumns+`
		FROM feed_ingestions
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, ingestionID,
	)
	return scanIngestion(row)
}

func (s *Store) ListIngestions(ctx context.Context, workspaceID, supplierID uuid.UUID, limit int32) ([]Ingestion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+ingestionColumns+`
		FROM feed_ingestions
		WHERE workspace_id = $1 AND supplier_id = $2
		ORDER BY started_at DESC
		LIMIT $3`,
		workspaceID, supplierID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	defer rows.Close()

	var ingestions []Ingestion
	for rows.Next() {
		ing, err := scanIngestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingestion: %w", err)
		}
		ingestions = append(ingestions, ing)
	}
	return ingestions, rows.Err()
}

func (s *Store) HasRunningIngestion(ctx context.Context, workspaceID, supplierID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM feed_ingestions
			WHERE workspace_id = $1 AND supplier_id = $2 AND status = 'running'
		)`,
		workspaceID, supplierID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check running ingestions: %w", err)
	}
	return exists, nil
}
