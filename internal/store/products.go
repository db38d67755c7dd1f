package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductFieldsByUID loads the current fields of every mapped row for a
// supplier in one query; the merge engine works against this snapshot instead
// of doing per-row reads during a run.
func (s *Store) ProductFieldsByUID(ctx context.Context, workspaceID, supplierID uuid.UUID) (map[string]map[string]any, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uid, fields
		FROM products_mapped
		WHERE workspace_id = $1 AND supplier_id = $2`,
		workspaceID, supplierID,
	)
	if err != nil {
		return nil, fmt.Errorf("load product fields: %w", err)
	}
	defer rows.Close()

	snapshot := map[string]map[string]any{}
	for rows.Next() {
		var uid string
		var fields map[string]any
		if err := rows.Scan(&uid, &fields); err != nil {
			return nil, fmt.Errorf("scan product fields: %w", err)
		}
		snapshot[uid] = fields
	}
	return snapshot, rows.Err()
}

// UpsertProducts writes the batch keyed by (workspace_id, supplier_id, uid).
// The conflict action is a plain row replace: field merging already happened
// in memory.
func (s *Store) UpsertProducts(ctx context.Context, products []ProductRow) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO products_mapped (id, workspace_id, supplier_id, uid, ingestion_id, fields, source_file, imported_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (workspace_id, supplier_id, uid) DO UPDATE SET
				ingestion_id = EXCLUDED.ingestion_id,
				fields = EXCLUDED.fields,
				source_file = EXCLUDED.source_file,
				imported_at = EXCLUDED.imported_at`,
			p.ID, p.WorkspaceID, p.SupplierID, p.UID, p.IngestionID, p.Fields, p.SourceFile, p.ImportedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("upsert product: %w", err)
		}
	}
	return len(products), nil
}

func (s *Store) ListProducts(ctx context.Context, workspaceID, supplierID uuid.UUID, limit, offset int32) ([]ProductRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, supplier_id, uid, ingestion_id, fields, source_file, imported_at
		FROM products_mapped
		WHERE workspace_id = $1 AND supplier_id = $2
		ORDER BY uid
		LIMIT $3 OFFSET $4`,
		workspaceID, supplierID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []ProductRow
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.SupplierID, &p.UID, &p.IngestionID, &p.Fields, &p.SourceFile, &p.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
